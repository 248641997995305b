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

// GetPlayerStatus returns the stored real-world status of a player.
func (s *Store) GetPlayerStatus(ctx context.Context, playerID uuid.UUID) (models.PlayerStatus, error) {
	var status string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT status FROM player_statuses WHERE player_id = ?`, playerID.String(),
	).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("sqlite: get player status: %w", err)
	}
	return models.PlayerStatus(status), nil
}

// UpsertPlayerStatus records a player's real-world status.
func (s *Store) UpsertPlayerStatus(ctx context.Context, playerID uuid.UUID, status models.PlayerStatus, at time.Time) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO player_statuses (player_id, status, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (player_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		playerID.String(), string(status), sqlutil.ToMillis(at),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert player status: %w", err)
	}
	return nil
}
