package ownership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
)

// Repository defines what the app layer needs from the ownership store.
// InsertOwnership must return models.ErrConflict when the (league, player) key
// is already taken; that constraint is what arbitrates concurrent claims.
type Repository interface {
	GetOwnership(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Ownership, error)
	InsertOwnership(ctx context.Context, o models.Ownership) error
	DeleteOwnership(ctx context.Context, leagueID, playerID, holderID uuid.UUID) (bool, error)
	WaiveOwnership(ctx context.Context, leagueID, playerID, holderID uuid.UUID, now time.Time, releaseDate leagueclock.Date) (bool, error)
	DeleteExpiredWaiver(ctx context.Context, leagueID, playerID uuid.UUID, today leagueclock.Date) (bool, error)
	ListOwnershipsByHolder(ctx context.Context, leagueID, holderID uuid.UUID) ([]models.Ownership, error)
	DeletePlacementsFrom(ctx context.Context, leagueID, playerID, holderID uuid.UUID, from leagueclock.Date) (int, error)
}

// LeagueConfigReader defines what the app layer needs from league settings
type LeagueConfigReader interface {
	ReadLeagueConfig(ctx context.Context, leagueID uuid.UUID) (models.LeagueConfig, error)
}
