// Package txlog keeps the append-only ADD/DROP history and relays it to
// subscribers.
package txlog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Log appends transaction records.
type Log struct {
	repo  Repository
	clock *leagueclock.Clock
}

// NewLog creates a new transaction Log
func NewLog(repo Repository, clock *leagueclock.Clock) *Log {
	return &Log{repo: repo, clock: clock}
}

// Append records one ADD or DROP. Records are never updated afterwards except
// for relay delivery bookkeeping.
func (l *Log) Append(ctx context.Context, leagueID, playerID, holderID uuid.UUID, txType models.TransactionType) (*models.Transaction, error) {
	if txType != models.TransactionTypeAdd && txType != models.TransactionTypeDrop {
		return nil, fmt.Errorf("unknown transaction type %q", txType)
	}

	t := models.Transaction{
		ID:              uuid.New(),
		LeagueID:        leagueID,
		PlayerID:        playerID,
		HolderID:        holderID,
		Type:            txType,
		TransactionTime: l.clock.Now(),
	}
	if err := l.repo.InsertTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	log.Debug().
		Str("transaction_id", t.ID.String()).
		Str("type", string(t.Type)).
		Str("league_id", leagueID.String()).
		Str("player_id", playerID.String()).
		Msg("transaction appended")
	return &t, nil
}
