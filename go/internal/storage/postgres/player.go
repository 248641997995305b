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

// GetPlayerStatus returns the stored real-world status of a player.
func (s *Store) GetPlayerStatus(ctx context.Context, playerID uuid.UUID) (models.PlayerStatus, error) {
	const query = `SELECT status FROM player_statuses WHERE player_id = $1`

	var status string
	if err := s.pool.QueryRow(ctx, query, playerID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrNotFound
		}
		return "", fmt.Errorf("postgres: get player status %s: %w", playerID, err)
	}
	return models.PlayerStatus(status), nil
}

// UpsertPlayerStatus records a player's real-world status.
func (s *Store) UpsertPlayerStatus(ctx context.Context, playerID uuid.UUID, status models.PlayerStatus, at time.Time) error {
	const query = `
		INSERT INTO player_statuses (player_id, status, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (player_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`

	if _, err := s.pool.Exec(ctx, query, playerID, string(status), at); err != nil {
		return fmt.Errorf("postgres: upsert player status %s: %w", playerID, err)
	}
	return nil
}
