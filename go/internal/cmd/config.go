package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mcdev12/dynasty-ownership/go/internal/dbconfig"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/waivers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	backendSQLite   = "sqlite"
	backendPostgres = "postgres"
)

// Config is the YAML file. Connection secrets come from the environment.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Store struct {
		Backend    string `yaml:"backend"`
		SQLitePath string `yaml:"sqlite_path"`
		Migrate    bool   `yaml:"migrate"`
	} `yaml:"store"`

	League struct {
		Timezone    string `yaml:"timezone"`
		LeaguesFile string `yaml:"leagues_file"`
	} `yaml:"league"`

	Waivers struct {
		SweepSchedule string `yaml:"sweep_schedule"`
	} `yaml:"waivers"`

	Relay struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"relay"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Env dbconfig.Env `yaml:"-"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Store.Backend = backendSQLite
	cfg.Store.SQLitePath = "ownership.db"
	cfg.Store.Migrate = true
	cfg.League.Timezone = "UTC"
	cfg.League.LeaguesFile = "leagues.yaml"
	cfg.Waivers.SweepSchedule = waivers.DefaultSchedule
	cfg.Log.Level = "info"
	return cfg
}

// loadConfig reads path over the defaults. A missing file leaves the
// defaults in place.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	env, err := dbconfig.LoadEnv()
	if err != nil {
		return nil, err
	}
	cfg.Env = env

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case backendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("store.sqlite_path is required for the sqlite backend")
		}
	case backendPostgres:
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if _, err := leagueclock.LoadLocation(c.League.Timezone); err != nil {
		return fmt.Errorf("league.timezone: %w", err)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// parseLogLevel resolves a configured level name. Unknown or empty names log a
// warning and fall back to info.
func parseLogLevel(raw string) zerolog.Level {
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		log.Warn().Err(err).Str("level", raw).Msg("unknown log level, using info")
		return zerolog.InfoLevel
	}
	if level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
