// Package waivers releases players whose waiver period has ended.
package waivers

import (
	"context"
	"fmt"
	"time"

	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSchedule runs five minutes after midnight in the league timezone.
const DefaultSchedule = "5 0 * * *"

// Repository defines what the sweeper needs from the ownership store
type Repository interface {
	ReleaseExpiredWaivers(ctx context.Context, today leagueclock.Date) (int, error)
}

// Sweeper deletes WAIVER records on or after their release date. Claims also
// clear expired waivers lazily; the sweeper makes the release visible without
// waiting for one.
type Sweeper struct {
	repo     Repository
	clock    *leagueclock.Clock
	schedule string
	timeout  time.Duration
}

// NewSweeper creates a Sweeper. An empty schedule uses DefaultSchedule.
func NewSweeper(repo Repository, clock *leagueclock.Clock, schedule string) *Sweeper {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Sweeper{
		repo:     repo,
		clock:    clock,
		schedule: schedule,
		timeout:  time.Minute,
	}
}

// RunOnce releases every waiver due today or earlier.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	today := s.clock.Today()
	released, err := s.repo.ReleaseExpiredWaivers(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to release expired waivers: %w", err)
	}
	log.Info().Str("today", today.String()).Int("released", released).Msg("waiver sweep complete")
	return released, nil
}

// Run schedules RunOnce on the cron schedule, evaluated in the league
// timezone, until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.clock.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(s.schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if _, err := s.RunOnce(runCtx); err != nil {
			log.Error().Err(err).Msg("waiver sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid waiver schedule %q: %w", s.schedule, err)
	}

	c.Start()
	log.Info().Str("schedule", s.schedule).Str("timezone", s.clock.Location().String()).Msg("waiver sweeper started")

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("waiver sweeper stopped")
	return nil
}
