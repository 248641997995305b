// Package playerstatus answers "what is this player's real-world status".
// Lookups never fail; anything that goes wrong reads as ACTIVE, which keeps
// the player out of the reserve slot.
package playerstatus

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Source is the backing store of player statuses
type Source interface {
	GetPlayerStatus(ctx context.Context, playerID uuid.UUID) (models.PlayerStatus, error)
}

// Lookup reads statuses straight from a Source.
type Lookup struct {
	source Source
}

// NewLookup creates an uncached Lookup
func NewLookup(source Source) *Lookup {
	return &Lookup{source: source}
}

// LookupPlayerStatus returns the player's status, or ACTIVE when unknown.
func (l *Lookup) LookupPlayerStatus(ctx context.Context, playerID uuid.UUID) models.PlayerStatus {
	status, _ := resolve(ctx, l.source, playerID)
	return status
}

// resolve reports the status and whether it is safe to cache.
func resolve(ctx context.Context, source Source, playerID uuid.UUID) (models.PlayerStatus, bool) {
	status, err := source.GetPlayerStatus(ctx, playerID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.PlayerStatusActive, true
	case err != nil:
		log.Warn().Err(err).Str("player_id", playerID.String()).Msg("player status lookup failed, assuming active")
		return models.PlayerStatusActive, false
	}

	status = models.PlayerStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if status == "" {
		return models.PlayerStatusActive, true
	}
	return status, true
}
