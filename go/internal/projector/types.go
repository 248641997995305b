package projector

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
)

// ErrNotRostered is returned by Reproject when the holder does not currently
// have the player ON_TEAM.
var ErrNotRostered = errors.New("player is not on this manager's roster")

// ProjectRequest identifies the claim whose remaining season is projected.
// A nil Slot lets the projector decide.
type ProjectRequest struct {
	LeagueID uuid.UUID
	PlayerID uuid.UUID
	HolderID uuid.UUID
	Slot     *models.Slot
}
