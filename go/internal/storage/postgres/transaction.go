package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
)

const transactionSelectCols = `id, league_id, player_id, holder_id, transaction_type, transaction_time, published_at`

func scanTransactionRow(row pgx.Row) (*models.Transaction, error) {
	var (
		t      models.Transaction
		txType string
	)
	if err := row.Scan(&t.ID, &t.LeagueID, &t.PlayerID, &t.HolderID, &txType, &t.TransactionTime, &t.PublishedAt); err != nil {
		return nil, err
	}
	t.Type = models.TransactionType(txType)
	return &t, nil
}

// InsertTransaction appends a transaction record. The insert trigger notifies
// NotifyChannel with the new id.
func (s *Store) InsertTransaction(ctx context.Context, t models.Transaction) error {
	const query = `
		INSERT INTO transactions (` + transactionSelectCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.LeagueID, t.PlayerID, t.HolderID, string(t.Type), t.TransactionTime, t.PublishedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert transaction %s: %w", t.ID, err)
	}
	return nil
}

// FetchUnpublishedTransactions returns up to limit undelivered transactions, oldest first.
func (s *Store) FetchUnpublishedTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	const query = `
		SELECT ` + transactionSelectCols + ` FROM transactions
		WHERE published_at IS NULL
		ORDER BY transaction_time, id
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch unpublished transactions: %w", err)
	}
	return scanTransactionRows(rows)
}

// FetchTransactionByID returns a single transaction.
func (s *Store) FetchTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	const query = `SELECT ` + transactionSelectCols + ` FROM transactions WHERE id = $1`

	t, err := scanTransactionRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: fetch transaction %s: %w", id, err)
	}
	return t, nil
}

// MarkTransactionPublished records delivery of a transaction.
func (s *Store) MarkTransactionPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `UPDATE transactions SET published_at = $2 WHERE id = $1 AND published_at IS NULL`

	if _, err := s.pool.Exec(ctx, query, id, at); err != nil {
		return fmt.Errorf("postgres: mark transaction published %s: %w", id, err)
	}
	return nil
}

// ListTransactions returns a player's transaction history in a league.
func (s *Store) ListTransactions(ctx context.Context, leagueID, playerID uuid.UUID) ([]models.Transaction, error) {
	const query = `
		SELECT ` + transactionSelectCols + ` FROM transactions
		WHERE league_id = $1 AND player_id = $2
		ORDER BY transaction_time, id`

	rows, err := s.pool.Query(ctx, query, leagueID, playerID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list transactions: %w", err)
	}
	return scanTransactionRows(rows)
}

func scanTransactionRows(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransactionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
