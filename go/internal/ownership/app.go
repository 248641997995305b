// Package ownership arbitrates add and drop claims on players in a league.
package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/rs/zerolog/log"
)

// App handles claim arbitration business logic
type App struct {
	repo    Repository
	configs LeagueConfigReader
	clock   *leagueclock.Clock
	hooks   []Hook
}

// NewApp creates a new ownership App. Hooks run in the given order after
// every committed add or drop.
func NewApp(repo Repository, configs LeagueConfigReader, clock *leagueclock.Clock, hooks ...Hook) *App {
	return &App{
		repo:    repo,
		configs: configs,
		clock:   clock,
		hooks:   hooks,
	}
}

// Add claims a free agent for req.HolderID.
//
// The read of the current record is only a fast path for a clear rejection
// message. The store's (league, player) uniqueness decides concurrent claims:
// a losing insert surfaces as ErrRaceLost.
func (a *App) Add(ctx context.Context, req AddRequest) (*models.Ownership, error) {
	if err := validateAdd(req); err != nil {
		return nil, err
	}

	existing, err := a.repo.GetOwnership(ctx, req.LeagueID, req.PlayerID)
	switch {
	case errors.Is(err, models.ErrNotFound):
	case err != nil:
		return nil, storeErr("get ownership", err)
	default:
		if err := a.clearExpiredWaiver(ctx, existing, req.HolderID); err != nil {
			return nil, err
		}
	}

	now := a.clock.Now()
	record := models.Ownership{
		LeagueID:   req.LeagueID,
		PlayerID:   req.PlayerID,
		HolderID:   req.HolderID,
		Status:     models.OwnershipStatusOnTeam,
		AcquiredAt: now,
	}
	if err := a.repo.InsertOwnership(ctx, record); err != nil {
		if errors.Is(err, models.ErrConflict) {
			log.Info().
				Str("league_id", req.LeagueID.String()).
				Str("player_id", req.PlayerID.String()).
				Str("holder_id", req.HolderID.String()).
				Msg("claim lost race")
			return nil, ErrRaceLost
		}
		return nil, storeErr("insert ownership", err)
	}

	log.Info().
		Str("league_id", req.LeagueID.String()).
		Str("player_id", req.PlayerID.String()).
		Str("holder_id", req.HolderID.String()).
		Msg("player added")

	a.runHooks(ctx, Event{
		Type:       models.TransactionTypeAdd,
		LeagueID:   req.LeagueID,
		PlayerID:   req.PlayerID,
		HolderID:   req.HolderID,
		Slot:       req.Slot,
		OccurredAt: now,
	})
	return &record, nil
}

// clearExpiredWaiver rejects a claim on an owned player, unless the record is
// a waiver whose release date has arrived, in which case the record is
// removed and the claim may proceed.
func (a *App) clearExpiredWaiver(ctx context.Context, existing *models.Ownership, holderID uuid.UUID) error {
	today := a.clock.Today()
	if !existing.WaiverExpired(today) {
		return rejectExisting(existing, holderID)
	}

	cleared, err := a.repo.DeleteExpiredWaiver(ctx, existing.LeagueID, existing.PlayerID, today)
	if err != nil {
		return storeErr("delete expired waiver", err)
	}
	if cleared {
		log.Info().
			Str("league_id", existing.LeagueID.String()).
			Str("player_id", existing.PlayerID.String()).
			Str("release_date", existing.ReleaseDate.String()).
			Msg("released expired waiver")
	}
	// Not cleared means someone else removed or replaced it first; the insert
	// decides.
	return nil
}

func rejectExisting(existing *models.Ownership, holderID uuid.UUID) error {
	switch {
	case existing.OnWaivers():
		if existing.ReleaseDate != nil {
			return fmt.Errorf("%w (clears %s)", ErrOnWaivers, existing.ReleaseDate)
		}
		return ErrOnWaivers
	case existing.HolderID == holderID:
		return ErrOwnedBySelf
	default:
		return ErrOwnedByOther
	}
}

// Drop releases a player. A drop on the same league-timezone day as the
// acquisition deletes the record outright; any later drop puts the player on
// waivers until today + waiver_days.
func (a *App) Drop(ctx context.Context, req DropRequest) (*DropResult, error) {
	if err := validateDrop(req); err != nil {
		return nil, err
	}

	existing, err := a.repo.GetOwnership(ctx, req.LeagueID, req.PlayerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrNotOwned
		}
		return nil, storeErr("get ownership", err)
	}
	if existing.HolderID != req.HolderID {
		return nil, ErrNotYourPlayer
	}
	if existing.OnWaivers() {
		return nil, ErrNotOwned
	}

	now := a.clock.Now()
	today := a.clock.DateOf(now)

	// Future placements go first so the player stops showing up on rosters
	// whichever branch is taken below. A failure here is repaired by the next
	// projection's upsert.
	if purged, err := a.repo.DeletePlacementsFrom(ctx, req.LeagueID, req.PlayerID, req.HolderID, today); err != nil {
		log.Warn().
			Err(err).
			Str("league_id", req.LeagueID.String()).
			Str("player_id", req.PlayerID.String()).
			Str("holder_id", req.HolderID.String()).
			Msg("failed to purge future placements, continuing drop")
	} else {
		log.Debug().Int("rows", purged).Str("player_id", req.PlayerID.String()).Msg("purged future placements")
	}

	var result DropResult
	if a.clock.SameDay(existing.AcquiredAt, now) {
		deleted, err := a.repo.DeleteOwnership(ctx, req.LeagueID, req.PlayerID, req.HolderID)
		if err != nil {
			return nil, storeErr("delete ownership", err)
		}
		if !deleted {
			return nil, ErrNotOwned
		}
		result = DropResult{Outcome: DropOutcomeDeleted}
	} else {
		releaseDate := today.AddDays(a.waiverDays(ctx, req.LeagueID))
		waived, err := a.repo.WaiveOwnership(ctx, req.LeagueID, req.PlayerID, req.HolderID, now, releaseDate)
		if err != nil {
			return nil, storeErr("waive ownership", err)
		}
		if !waived {
			return nil, ErrNotOwned
		}
		result = DropResult{Outcome: DropOutcomeWaived, ReleaseDate: &releaseDate}
	}

	log.Info().
		Str("league_id", req.LeagueID.String()).
		Str("player_id", req.PlayerID.String()).
		Str("holder_id", req.HolderID.String()).
		Str("outcome", string(result.Outcome)).
		Msg("player dropped")

	a.runHooks(ctx, Event{
		Type:       models.TransactionTypeDrop,
		LeagueID:   req.LeagueID,
		PlayerID:   req.PlayerID,
		HolderID:   req.HolderID,
		OccurredAt: now,
	})
	return &result, nil
}

// waiverDays reads the league's waiver freeze, falling back to the default
// when the league config cannot be read.
func (a *App) waiverDays(ctx context.Context, leagueID uuid.UUID) int {
	cfg, err := a.configs.ReadLeagueConfig(ctx, leagueID)
	if err != nil {
		log.Warn().Err(err).Str("league_id", leagueID.String()).Msg("failed to read league config, using default waiver days")
		return models.DefaultWaiverDays
	}
	if cfg.WaiverDays < 0 {
		return models.DefaultWaiverDays
	}
	return cfg.WaiverDays
}

// GetOwnership returns the current record, or nil when the player is a free agent.
func (a *App) GetOwnership(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Ownership, error) {
	if leagueID == uuid.Nil || playerID == uuid.Nil {
		return nil, fmt.Errorf("%w: league_id and player_id are required", ErrValidation)
	}
	o, err := a.repo.GetOwnership(ctx, leagueID, playerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, storeErr("get ownership", err)
	}
	return o, nil
}

// ListRoster returns every ON_TEAM and WAIVER record a manager holds in a league.
func (a *App) ListRoster(ctx context.Context, leagueID, holderID uuid.UUID) ([]models.Ownership, error) {
	if leagueID == uuid.Nil || holderID == uuid.Nil {
		return nil, fmt.Errorf("%w: league_id and holder_id are required", ErrValidation)
	}
	records, err := a.repo.ListOwnershipsByHolder(ctx, leagueID, holderID)
	if err != nil {
		return nil, storeErr("list ownerships", err)
	}
	return records, nil
}

func validateAdd(req AddRequest) error {
	return validateIDs(req.LeagueID, req.PlayerID, req.HolderID)
}

func validateDrop(req DropRequest) error {
	return validateIDs(req.LeagueID, req.PlayerID, req.HolderID)
}

func validateIDs(leagueID, playerID, holderID uuid.UUID) error {
	switch {
	case leagueID == uuid.Nil:
		return fmt.Errorf("%w: league_id is required", ErrValidation)
	case playerID == uuid.Nil:
		return fmt.Errorf("%w: player_id is required", ErrValidation)
	case holderID == uuid.Nil:
		return fmt.Errorf("%w: holder_id is required", ErrValidation)
	}
	return nil
}
