package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/mcdev12/dynasty-ownership/go/internal/sqlutil"
)

const transactionCols = `id, league_id, player_id, holder_id, transaction_type, transaction_time, published_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		id, leagueID, playerID, holderID, txType string
		txTime                                   int64
		publishedAt                              sql.NullInt64
	)
	if err := row.Scan(&id, &leagueID, &playerID, &holderID, &txType, &txTime, &publishedAt); err != nil {
		return nil, err
	}

	t := &models.Transaction{
		Type:            models.TransactionType(txType),
		TransactionTime: sqlutil.FromMillis(txTime),
		PublishedAt:     sqlutil.FromNullMillis(publishedAt),
	}
	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	if t.LeagueID, err = uuid.Parse(leagueID); err != nil {
		return nil, fmt.Errorf("parse league_id: %w", err)
	}
	if t.PlayerID, err = uuid.Parse(playerID); err != nil {
		return nil, fmt.Errorf("parse player_id: %w", err)
	}
	if t.HolderID, err = uuid.Parse(holderID); err != nil {
		return nil, fmt.Errorf("parse holder_id: %w", err)
	}
	return t, nil
}

// InsertTransaction appends a transaction record.
func (s *Store) InsertTransaction(ctx context.Context, t models.Transaction) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.LeagueID.String(), t.PlayerID.String(), t.HolderID.String(),
		string(t.Type), sqlutil.ToMillis(t.TransactionTime), sqlutil.ToNullMillis(t.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert transaction: %w", err)
	}
	return nil
}

// FetchUnpublishedTransactions returns up to limit transactions the relay has
// not delivered yet, oldest first.
func (s *Store) FetchUnpublishedTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+transactionCols+` FROM transactions
		 WHERE published_at IS NULL
		 ORDER BY transaction_time, id
		 LIMIT ?`,
		limit,
	)
}

// FetchTransactionByID returns a single transaction.
func (s *Store) FetchTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+transactionCols+` FROM transactions WHERE id = ?`, id.String())
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: fetch transaction: %w", err)
	}
	return t, nil
}

// MarkTransactionPublished records delivery of a transaction.
func (s *Store) MarkTransactionPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`UPDATE transactions SET published_at = ? WHERE id = ? AND published_at IS NULL`,
		sqlutil.ToMillis(at), id.String(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: mark transaction published: %w", err)
	}
	return nil
}

// ListTransactions returns a player's transaction history in a league.
func (s *Store) ListTransactions(ctx context.Context, leagueID, playerID uuid.UUID) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+transactionCols+` FROM transactions
		 WHERE league_id = ? AND player_id = ?
		 ORDER BY transaction_time, id`,
		leagueID.String(), playerID.String(),
	)
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
