package main

import (
	"context"

	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/ownership"
	"github.com/mcdev12/dynasty-ownership/go/internal/playerstatus"
	"github.com/mcdev12/dynasty-ownership/go/internal/projector"
	"github.com/mcdev12/dynasty-ownership/go/internal/txlog"
	"github.com/mcdev12/dynasty-ownership/go/internal/waivers"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Ownership *ownership.Service
	Sweeper   *waivers.Sweeper
	closers   []func()
}

func (s *Services) Close() {
	for _, c := range s.closers {
		c()
	}
}

func setupServices(ctx context.Context, cfg *Config, backend *Backend, clock *leagueclock.Clock) (*Services, error) {
	// Wire up dependency injection chain
	// Store → App layer → hooks → Service layer
	svcs := &Services{}

	statuses, err := setupStatusLookup(ctx, cfg, backend.Store, svcs)
	if err != nil {
		return nil, err
	}

	projectorApp := projector.NewApp(backend.Store, backend.Leagues, statuses, clock)
	txLog := txlog.NewLog(backend.Store, clock)

	// Hooks run in order: transaction log, then projection.
	ownershipApp := ownership.NewApp(backend.Store, backend.Leagues, clock,
		ownership.TransactionLogHook(txLog),
		ownership.ProjectorHook(projectorApp),
	)

	svcs.Ownership = ownership.NewService(ownershipApp, projectorApp, clock)
	svcs.Sweeper = waivers.NewSweeper(backend.Store, clock, cfg.Waivers.SweepSchedule)
	return svcs, nil
}

func setupStatusLookup(ctx context.Context, cfg *Config, source playerstatus.Source, svcs *Services) (projector.StatusLookup, error) {
	redisCfg := cfg.Env.Redis
	if redisCfg.Addr == "" {
		return playerstatus.NewLookup(source), nil
	}

	rdb, err := playerstatus.NewRedisClient(ctx, playerstatus.RedisConfig{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	if err != nil {
		return nil, err
	}
	svcs.closers = append(svcs.closers, func() { rdb.Close() })

	log.Info().Str("addr", redisCfg.Addr).Dur("ttl", redisCfg.CacheTTL).Msg("player status cache enabled")
	return playerstatus.NewCachedLookup(rdb, source, redisCfg.CacheTTL), nil
}
