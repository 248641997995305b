package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of ownership change being logged
type TransactionType string

const (
	TransactionTypeAdd  TransactionType = "ADD"
	TransactionTypeDrop TransactionType = "DROP"
)

// Transaction is an append-only record of an ownership change.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	LeagueID        uuid.UUID       `json:"league_id"`
	PlayerID        uuid.UUID       `json:"player_id"`
	HolderID        uuid.UUID       `json:"holder_id"`
	Type            TransactionType `json:"transaction_type"`
	TransactionTime time.Time       `json:"transaction_time"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"` // Relay delivery marker
}
