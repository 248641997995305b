package projector

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_collaborators.go github.com/mcdev12/dynasty-ownership/go/internal/projector LeagueConfigReader,StatusLookup

// Repository defines what the projector needs from the placement store
type Repository interface {
	UpsertPlacements(ctx context.Context, placements []models.DailyPlacement) (int, error)
	CountSlotOnDate(ctx context.Context, leagueID, holderID uuid.UUID, date leagueclock.Date, slot models.Slot, excludePlayer uuid.UUID) (int, error)
	ListPlacementsOnDate(ctx context.Context, leagueID, holderID uuid.UUID, date leagueclock.Date) ([]models.DailyPlacement, error)
	ListPlacementsForPlayer(ctx context.Context, leagueID, playerID uuid.UUID) ([]models.DailyPlacement, error)
	GetOwnership(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Ownership, error)
}

// LeagueConfigReader provides per-league season boundaries and reserve rules
type LeagueConfigReader interface {
	ReadLeagueConfig(ctx context.Context, leagueID uuid.UUID) (models.LeagueConfig, error)
}

// StatusLookup reports a player's real-world status. Implementations never fail;
// they fall back to ACTIVE.
type StatusLookup interface {
	LookupPlayerStatus(ctx context.Context, playerID uuid.UUID) models.PlayerStatus
}
