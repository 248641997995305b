package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueconfig"
	"github.com/mcdev12/dynasty-ownership/go/internal/ownership"
	"github.com/mcdev12/dynasty-ownership/go/internal/playerstatus"
	"github.com/mcdev12/dynasty-ownership/go/internal/projector"
	"github.com/mcdev12/dynasty-ownership/go/internal/storage/postgres"
	"github.com/mcdev12/dynasty-ownership/go/internal/storage/sqlite"
	"github.com/mcdev12/dynasty-ownership/go/internal/txlog"
	"github.com/mcdev12/dynasty-ownership/go/internal/waivers"
	"github.com/rs/zerolog/log"
)

// Store is the method set both storage backends provide.
type Store interface {
	ownership.Repository
	projector.Repository
	txlog.Repository
	waivers.Repository
	playerstatus.Source
}

// Backend is an opened store plus the league settings reader that goes
// with it.
type Backend struct {
	Store   Store
	Leagues projector.LeagueConfigReader
	// NotifyURL is set when the relay can LISTEN for new transactions.
	NotifyURL string
	closers   []func()
}

func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func setupBackend(ctx context.Context, cfg *Config) (*Backend, error) {
	if cfg.Store.Backend == backendPostgres {
		return setupPostgres(ctx, cfg)
	}
	return setupSQLite(cfg)
}

func setupPostgres(ctx context.Context, cfg *Config) (*Backend, error) {
	dsn := cfg.Env.DB.DSN()

	store, err := postgres.New(ctx, postgres.ClientConfig{DSN: dsn})
	if err != nil {
		return nil, err
	}
	b := &Backend{Store: store, NotifyURL: dsn}
	b.closers = append(b.closers, store.Close)

	if cfg.Store.Migrate {
		if err := store.RunMigrations(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// League settings live in the leagues table, read over database/sql.
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	b.closers = append(b.closers, func() { db.Close() })
	if err := db.PingContext(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	b.Leagues = leagueconfig.NewRepository(db)

	log.Info().
		Str("host", cfg.Env.DB.Host).
		Int("port", cfg.Env.DB.Port).
		Str("database", cfg.Env.DB.Database).
		Msg("connected to postgres")
	return b, nil
}

func setupSQLite(cfg *Config) (*Backend, error) {
	file, err := leagueconfig.LoadLeagueFile(cfg.League.LeaguesFile)
	if err != nil {
		return nil, err
	}
	leagues, err := leagueconfig.NewStaticReaderFromFile(file)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(cfg.Store.SQLitePath)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("path", cfg.Store.SQLitePath).
		Int("leagues", len(file.Leagues)).
		Msg("opened sqlite store")
	return &Backend{
		Store:   store,
		Leagues: leagues,
		closers: []func(){func() { store.Close() }},
	}, nil
}
