// Package projector expands a roster claim into one placement row per
// remaining season day.
package projector

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/rs/zerolog/log"
)

// App generates daily placements
type App struct {
	repo     Repository
	configs  LeagueConfigReader
	statuses StatusLookup
	clock    *leagueclock.Clock
}

// NewApp creates a new projector App
func NewApp(repo Repository, configs LeagueConfigReader, statuses StatusLookup, clock *leagueclock.Clock) *App {
	return &App{
		repo:     repo,
		configs:  configs,
		statuses: statuses,
		clock:    clock,
	}
}

// Project writes a placement for every date from max(season start, today)
// through season end. The slot is decided once and applied to every row.
// Rows are upserted, so calling Project again for the same claim is safe.
func (a *App) Project(ctx context.Context, req ProjectRequest) (int, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}

	cfg, err := a.configs.ReadLeagueConfig(ctx, req.LeagueID)
	if err != nil {
		return 0, fmt.Errorf("failed to read league config: %w", err)
	}

	today := a.clock.Today()
	dates := ProjectionRange(cfg, today)
	if len(dates) == 0 {
		log.Debug().
			Str("league_id", req.LeagueID.String()).
			Str("player_id", req.PlayerID.String()).
			Str("today", today.String()).
			Msg("season over, nothing to project")
		return 0, nil
	}

	slot, err := a.decideSlot(ctx, req, cfg, today)
	if err != nil {
		return 0, err
	}

	placements := make([]models.DailyPlacement, 0, len(dates))
	for _, d := range dates {
		placements = append(placements, models.DailyPlacement{
			LeagueID: req.LeagueID,
			PlayerID: req.PlayerID,
			HolderID: req.HolderID,
			GameDate: d,
			Slot:     slot,
		})
	}

	written, err := a.repo.UpsertPlacements(ctx, placements)
	if err != nil {
		return 0, fmt.Errorf("failed to write placements: %w", err)
	}

	log.Info().
		Str("league_id", req.LeagueID.String()).
		Str("player_id", req.PlayerID.String()).
		Str("holder_id", req.HolderID.String()).
		Str("slot", string(slot)).
		Str("from", dates[0].String()).
		Str("to", dates[len(dates)-1].String()).
		Int("rows", written).
		Msg("projected placements")
	return written, nil
}

// Reproject regenerates placements for a player the holder currently has
// ON_TEAM. It is the out-of-band repair path when the post-claim projection
// failed.
func (a *App) Reproject(ctx context.Context, req ProjectRequest) (int, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}

	o, err := a.repo.GetOwnership(ctx, req.LeagueID, req.PlayerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, ErrNotRostered
		}
		return 0, fmt.Errorf("failed to get ownership: %w", err)
	}
	if o.HolderID != req.HolderID || o.Status != models.OwnershipStatusOnTeam {
		return 0, ErrNotRostered
	}

	return a.Project(ctx, req)
}

// Placements lists a manager's placements for one date.
func (a *App) Placements(ctx context.Context, leagueID, holderID uuid.UUID, date leagueclock.Date) ([]models.DailyPlacement, error) {
	placements, err := a.repo.ListPlacementsOnDate(ctx, leagueID, holderID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list placements: %w", err)
	}
	return placements, nil
}

// PlayerSchedule lists every placement row held for a player, ordered by date.
func (a *App) PlayerSchedule(ctx context.Context, leagueID, playerID uuid.UUID) ([]models.DailyPlacement, error) {
	placements, err := a.repo.ListPlacementsForPlayer(ctx, leagueID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player placements: %w", err)
	}
	return placements, nil
}

// ProjectionRange returns the dates from max(season start, today) through
// season end inclusive, or nil when that range is empty.
func ProjectionRange(cfg models.LeagueConfig, today leagueclock.Date) []leagueclock.Date {
	if cfg.SeasonEnd.IsZero() {
		return nil
	}
	return leagueclock.DatesBetween(leagueclock.MaxDate(cfg.SeasonStart, today), cfg.SeasonEnd)
}

// decideSlot picks the single slot for the whole range. Reserve capacity is
// checked against today's usage only.
func (a *App) decideSlot(ctx context.Context, req ProjectRequest, cfg models.LeagueConfig, today leagueclock.Date) (models.Slot, error) {
	if req.Slot != nil {
		slot, err := models.ParseSlot(string(*req.Slot))
		if err == nil {
			return slot, nil
		}
		// Unknown slots fall through to the automatic decision.
		log.Warn().
			Err(err).
			Str("league_id", req.LeagueID.String()).
			Str("player_id", req.PlayerID.String()).
			Msg("ignoring requested slot")
	}

	if !cfg.ReserveEnabled() {
		return models.SlotBench, nil
	}

	status := a.statuses.LookupPlayerStatus(ctx, req.PlayerID)
	if !status.ReserveEligible() {
		return models.SlotBench, nil
	}

	used, err := a.repo.CountSlotOnDate(ctx, req.LeagueID, req.HolderID, today, models.SlotReserve, req.PlayerID)
	if err != nil {
		return "", fmt.Errorf("failed to count reserve placements: %w", err)
	}
	if used >= cfg.ReserveCapacity {
		log.Debug().
			Str("league_id", req.LeagueID.String()).
			Str("holder_id", req.HolderID.String()).
			Int("used", used).
			Int("capacity", cfg.ReserveCapacity).
			Msg("reserve full, placing on bench")
		return models.SlotBench, nil
	}
	return models.SlotReserve, nil
}

func validateRequest(req ProjectRequest) error {
	if req.LeagueID == uuid.Nil || req.PlayerID == uuid.Nil || req.HolderID == uuid.Nil {
		return errors.New("league_id, player_id and holder_id are required")
	}
	return nil
}
