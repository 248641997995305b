package leagueconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"gopkg.in/yaml.v3"
)

// LeagueFile is the YAML document that declares leagues for local runs and
// for seeding Postgres.
type LeagueFile struct {
	Leagues []LeagueEntry `yaml:"leagues"`
}

// LeagueEntry is one league in a LeagueFile. Settings is free-form and parsed
// with the same fail-open rules as the database column.
type LeagueEntry struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	SeasonStart string         `yaml:"season_start"`
	SeasonEnd   string         `yaml:"season_end"`
	Settings    map[string]any `yaml:"settings"`
}

// SettingsJSON renders the entry's settings as the JSON stored in league_settings.
func (e LeagueEntry) SettingsJSON() ([]byte, error) {
	if e.Settings == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.Settings)
}

// Config converts the entry into the engine's view of the league.
func (e LeagueEntry) Config() (models.LeagueConfig, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return models.LeagueConfig{}, fmt.Errorf("league %q: invalid id: %w", e.Name, err)
	}
	start, err := leagueclock.ParseDate(e.SeasonStart)
	if err != nil {
		return models.LeagueConfig{}, fmt.Errorf("league %s: season_start: %w", id, err)
	}
	end, err := leagueclock.ParseDate(e.SeasonEnd)
	if err != nil {
		return models.LeagueConfig{}, fmt.Errorf("league %s: season_end: %w", id, err)
	}
	raw, err := e.SettingsJSON()
	if err != nil {
		return models.LeagueConfig{}, fmt.Errorf("league %s: settings: %w", id, err)
	}

	settings := ParseSettings(raw)
	return models.LeagueConfig{
		LeagueID:           id,
		WaiverDays:         settings.WaiverDays,
		AllowDirectReserve: settings.AllowDirectReserve,
		ReserveCapacity:    settings.ReserveCapacity,
		SeasonStart:        start,
		SeasonEnd:          end,
	}, nil
}

// LoadLeagueFile reads and decodes a league YAML file.
func LoadLeagueFile(path string) (*LeagueFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read league file: %w", err)
	}
	var file LeagueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse league file: %w", err)
	}
	return &file, nil
}

// StaticReader serves league configuration from memory.
type StaticReader struct {
	leagues map[uuid.UUID]models.LeagueConfig
}

// NewStaticReader builds a reader from already-parsed configs.
func NewStaticReader(configs ...models.LeagueConfig) *StaticReader {
	r := &StaticReader{leagues: make(map[uuid.UUID]models.LeagueConfig, len(configs))}
	for _, cfg := range configs {
		r.leagues[cfg.LeagueID] = cfg
	}
	return r
}

// NewStaticReaderFromFile builds a reader from every league in file.
func NewStaticReaderFromFile(file *LeagueFile) (*StaticReader, error) {
	configs := make([]models.LeagueConfig, 0, len(file.Leagues))
	for _, entry := range file.Leagues {
		cfg, err := entry.Config()
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return NewStaticReader(configs...), nil
}

// ReadLeagueConfig returns the configured league or models.ErrNotFound.
func (r *StaticReader) ReadLeagueConfig(_ context.Context, leagueID uuid.UUID) (models.LeagueConfig, error) {
	cfg, ok := r.leagues[leagueID]
	if !ok {
		return models.LeagueConfig{}, fmt.Errorf("league %s: %w", leagueID, models.ErrNotFound)
	}
	return cfg, nil
}
