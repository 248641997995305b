package leagueconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/sqlc-dev/pqtype"
)

// Repository reads league configuration from the leagues table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a league config Repository over a lib/pq handle
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type leagueRow struct {
	Settings    pqtype.NullRawMessage
	SeasonStart sql.NullTime
	SeasonEnd   sql.NullTime
}

// ReadLeagueConfig loads one league's settings and season boundaries.
func (r *Repository) ReadLeagueConfig(ctx context.Context, leagueID uuid.UUID) (models.LeagueConfig, error) {
	const query = `SELECT league_settings, season_start, season_end FROM leagues WHERE id = $1`

	var row leagueRow
	err := r.db.QueryRowContext(ctx, query, leagueID).Scan(&row.Settings, &row.SeasonStart, &row.SeasonEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LeagueConfig{}, fmt.Errorf("league %s: %w", leagueID, models.ErrNotFound)
		}
		return models.LeagueConfig{}, fmt.Errorf("failed to read league config: %w", err)
	}
	return row.toModel(leagueID), nil
}

func (row leagueRow) toModel(leagueID uuid.UUID) models.LeagueConfig {
	var raw []byte
	if row.Settings.Valid {
		raw = row.Settings.RawMessage
	}
	settings := ParseSettings(raw)

	cfg := models.LeagueConfig{
		LeagueID:           leagueID,
		WaiverDays:         settings.WaiverDays,
		AllowDirectReserve: settings.AllowDirectReserve,
		ReserveCapacity:    settings.ReserveCapacity,
	}
	if row.SeasonStart.Valid {
		cfg.SeasonStart = leagueclock.DateOf(row.SeasonStart.Time, time.UTC)
	}
	if row.SeasonEnd.Valid {
		cfg.SeasonEnd = leagueclock.DateOf(row.SeasonEnd.Time, time.UTC)
	}
	return cfg
}
