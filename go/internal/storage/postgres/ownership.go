package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/mcdev12/dynasty-ownership/go/internal/sqlutil"
)

const ownershipSelectCols = `league_id, player_id, holder_id, status, acquired_at, release_date`

func scanOwnershipRow(row pgx.Row) (*models.Ownership, error) {
	var (
		o           models.Ownership
		status      string
		releaseDate *time.Time
	)
	if err := row.Scan(&o.LeagueID, &o.PlayerID, &o.HolderID, &status, &o.AcquiredAt, &releaseDate); err != nil {
		return nil, err
	}
	o.Status = models.OwnershipStatus(status)
	o.ReleaseDate = sqlutil.FromNullTimeDate(releaseDate)
	return &o, nil
}

// GetOwnership returns the record for (league, player) or models.ErrNotFound.
func (s *Store) GetOwnership(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Ownership, error) {
	const query = `SELECT ` + ownershipSelectCols + ` FROM ownerships WHERE league_id = $1 AND player_id = $2`

	o, err := scanOwnershipRow(s.pool.QueryRow(ctx, query, leagueID, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get ownership %s/%s: %w", leagueID, playerID, err)
	}
	return o, nil
}

// InsertOwnership creates a new record; a duplicate key yields models.ErrConflict.
func (s *Store) InsertOwnership(ctx context.Context, o models.Ownership) error {
	const query = `
		INSERT INTO ownerships (` + ownershipSelectCols + `)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		o.LeagueID, o.PlayerID, o.HolderID, string(o.Status), o.AcquiredAt,
		sqlutil.ToNullTimeDate(o.ReleaseDate),
	)
	if err != nil {
		if sqlutil.IsUniqueViolation(err) {
			return fmt.Errorf("postgres: insert ownership %s/%s: %w", o.LeagueID, o.PlayerID, models.ErrConflict)
		}
		return fmt.Errorf("postgres: insert ownership %s/%s: %w", o.LeagueID, o.PlayerID, err)
	}
	return nil
}

// DeleteOwnership removes an ON_TEAM record held by holderID.
func (s *Store) DeleteOwnership(ctx context.Context, leagueID, playerID, holderID uuid.UUID) (bool, error) {
	const query = `
		DELETE FROM ownerships
		WHERE league_id = $1 AND player_id = $2 AND holder_id = $3 AND status = 'ON_TEAM'`

	tag, err := s.pool.Exec(ctx, query, leagueID, playerID, holderID)
	if err != nil {
		return false, fmt.Errorf("postgres: delete ownership %s/%s: %w", leagueID, playerID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// WaiveOwnership transitions an ON_TEAM record held by holderID to WAIVER.
func (s *Store) WaiveOwnership(ctx context.Context, leagueID, playerID, holderID uuid.UUID, now time.Time, releaseDate leagueclock.Date) (bool, error) {
	const query = `
		UPDATE ownerships SET
			status       = 'WAIVER',
			acquired_at  = $4,
			release_date = $5
		WHERE league_id = $1 AND player_id = $2 AND holder_id = $3 AND status = 'ON_TEAM'`

	tag, err := s.pool.Exec(ctx, query, leagueID, playerID, holderID, now, releaseDate.Time(time.UTC))
	if err != nil {
		return false, fmt.Errorf("postgres: waive ownership %s/%s: %w", leagueID, playerID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExpiredWaiver removes one WAIVER record whose release date has arrived.
func (s *Store) DeleteExpiredWaiver(ctx context.Context, leagueID, playerID uuid.UUID, today leagueclock.Date) (bool, error) {
	const query = `
		DELETE FROM ownerships
		WHERE league_id = $1 AND player_id = $2 AND status = 'WAIVER' AND release_date <= $3`

	tag, err := s.pool.Exec(ctx, query, leagueID, playerID, today.Time(time.UTC))
	if err != nil {
		return false, fmt.Errorf("postgres: delete expired waiver %s/%s: %w", leagueID, playerID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ReleaseExpiredWaivers removes every WAIVER record whose release date has arrived.
func (s *Store) ReleaseExpiredWaivers(ctx context.Context, today leagueclock.Date) (int, error) {
	const query = `DELETE FROM ownerships WHERE status = 'WAIVER' AND release_date <= $1`

	tag, err := s.pool.Exec(ctx, query, today.Time(time.UTC))
	if err != nil {
		return 0, fmt.Errorf("postgres: release expired waivers: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListOwnershipsByHolder returns every record a manager holds in a league.
func (s *Store) ListOwnershipsByHolder(ctx context.Context, leagueID, holderID uuid.UUID) ([]models.Ownership, error) {
	const query = `
		SELECT ` + ownershipSelectCols + ` FROM ownerships
		WHERE league_id = $1 AND holder_id = $2
		ORDER BY acquired_at`

	rows, err := s.pool.Query(ctx, query, leagueID, holderID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list ownerships: %w", err)
	}
	defer rows.Close()

	var out []models.Ownership
	for rows.Next() {
		o, err := scanOwnershipRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan ownership: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
