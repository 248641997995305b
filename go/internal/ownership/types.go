package ownership

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
)

// AddRequest claims a free agent for HolderID. Slot is optional.
type AddRequest struct {
	LeagueID uuid.UUID
	PlayerID uuid.UUID
	HolderID uuid.UUID
	Slot     *models.Slot
}

// DropRequest releases a player HolderID currently owns.
type DropRequest struct {
	LeagueID uuid.UUID
	PlayerID uuid.UUID
	HolderID uuid.UUID
}

// DropOutcome says which branch a drop took
type DropOutcome string

const (
	DropOutcomeDeleted DropOutcome = "DELETED"
	DropOutcomeWaived  DropOutcome = "WAIVED"
)

// DropResult describes a committed drop. ReleaseDate is set only for WAIVED.
type DropResult struct {
	Outcome     DropOutcome
	ReleaseDate *leagueclock.Date
}

// Event is handed to post-commit hooks after an ownership change is durable.
type Event struct {
	Type       models.TransactionType
	LeagueID   uuid.UUID
	PlayerID   uuid.UUID
	HolderID   uuid.UUID
	Slot       *models.Slot
	OccurredAt time.Time
}
