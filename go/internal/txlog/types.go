package txlog

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
)

// Envelope is the JSON body published for every transaction.
type Envelope struct {
	EventID         uuid.UUID              `json:"event_id"`
	Type            models.TransactionType `json:"type"`
	LeagueID        uuid.UUID              `json:"league_id"`
	PlayerID        uuid.UUID              `json:"player_id"`
	HolderID        uuid.UUID              `json:"holder_id"`
	TransactionTime time.Time              `json:"transaction_time"`
}

// NewEnvelope builds the published form of a transaction.
func NewEnvelope(t models.Transaction) Envelope {
	return Envelope{
		EventID:         t.ID,
		Type:            t.Type,
		LeagueID:        t.LeagueID,
		PlayerID:        t.PlayerID,
		HolderID:        t.HolderID,
		TransactionTime: t.TransactionTime.UTC(),
	}
}
