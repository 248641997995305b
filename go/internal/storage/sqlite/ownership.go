package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/mcdev12/dynasty-ownership/go/internal/sqlutil"
)

const ownershipCols = `league_id, player_id, holder_id, status, acquired_at, release_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwnership(row rowScanner) (*models.Ownership, error) {
	var (
		leagueID, playerID, holderID, status string
		acquiredAt                           int64
		releaseDate                          sql.NullString
	)
	if err := row.Scan(&leagueID, &playerID, &holderID, &status, &acquiredAt, &releaseDate); err != nil {
		return nil, err
	}

	o := &models.Ownership{
		Status:     models.OwnershipStatus(status),
		AcquiredAt: sqlutil.FromMillis(acquiredAt),
	}
	var err error
	if o.LeagueID, err = uuid.Parse(leagueID); err != nil {
		return nil, fmt.Errorf("parse league_id: %w", err)
	}
	if o.PlayerID, err = uuid.Parse(playerID); err != nil {
		return nil, fmt.Errorf("parse player_id: %w", err)
	}
	if o.HolderID, err = uuid.Parse(holderID); err != nil {
		return nil, fmt.Errorf("parse holder_id: %w", err)
	}
	if o.ReleaseDate, err = sqlutil.FromNullDate(releaseDate); err != nil {
		return nil, fmt.Errorf("parse release_date: %w", err)
	}
	return o, nil
}

// GetOwnership returns the ownership record for (league, player) or
// models.ErrNotFound when the player is a free agent.
func (s *Store) GetOwnership(ctx context.Context, leagueID, playerID uuid.UUID) (*models.Ownership, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+ownershipCols+` FROM ownerships WHERE league_id = ? AND player_id = ?`,
		leagueID.String(), playerID.String(),
	)
	o, err := scanOwnership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get ownership: %w", err)
	}
	return o, nil
}

// InsertOwnership creates a new record. A second insert for the same
// (league, player) fails with models.ErrConflict; it never overwrites.
func (s *Store) InsertOwnership(ctx context.Context, o models.Ownership) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO ownerships (`+ownershipCols+`) VALUES (?, ?, ?, ?, ?, ?)`,
		o.LeagueID.String(), o.PlayerID.String(), o.HolderID.String(),
		string(o.Status), sqlutil.ToMillis(o.AcquiredAt), sqlutil.ToNullDate(o.ReleaseDate),
	)
	if err != nil {
		if sqlutil.IsUniqueViolation(err) {
			return fmt.Errorf("sqlite: insert ownership: %w", models.ErrConflict)
		}
		return fmt.Errorf("sqlite: insert ownership: %w", err)
	}
	return nil
}

// DeleteOwnership removes an ON_TEAM record held by holderID. It reports
// whether a row was deleted.
func (s *Store) DeleteOwnership(ctx context.Context, leagueID, playerID, holderID uuid.UUID) (bool, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM ownerships
		 WHERE league_id = ? AND player_id = ? AND holder_id = ? AND status = ?`,
		leagueID.String(), playerID.String(), holderID.String(), string(models.OwnershipStatusOnTeam),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: delete ownership: %w", err)
	}
	return affected(res)
}

// WaiveOwnership transitions an ON_TEAM record held by holderID to WAIVER.
func (s *Store) WaiveOwnership(ctx context.Context, leagueID, playerID, holderID uuid.UUID, now time.Time, releaseDate leagueclock.Date) (bool, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE ownerships
		 SET status = ?, acquired_at = ?, release_date = ?
		 WHERE league_id = ? AND player_id = ? AND holder_id = ? AND status = ?`,
		string(models.OwnershipStatusWaiver), sqlutil.ToMillis(now), releaseDate.String(),
		leagueID.String(), playerID.String(), holderID.String(), string(models.OwnershipStatusOnTeam),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: waive ownership: %w", err)
	}
	return affected(res)
}

// DeleteExpiredWaiver removes a single WAIVER record whose release date is on
// or before today.
func (s *Store) DeleteExpiredWaiver(ctx context.Context, leagueID, playerID uuid.UUID, today leagueclock.Date) (bool, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM ownerships
		 WHERE league_id = ? AND player_id = ? AND status = ? AND release_date <= ?`,
		leagueID.String(), playerID.String(), string(models.OwnershipStatusWaiver), today.String(),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: delete expired waiver: %w", err)
	}
	return affected(res)
}

// ReleaseExpiredWaivers removes every WAIVER record whose release date is on
// or before today and returns how many players became free agents.
func (s *Store) ReleaseExpiredWaivers(ctx context.Context, today leagueclock.Date) (int, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM ownerships WHERE status = ? AND release_date <= ?`,
		string(models.OwnershipStatusWaiver), today.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: release expired waivers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return int(n), nil
}

// ListOwnershipsByHolder returns every record a manager holds in a league.
func (s *Store) ListOwnershipsByHolder(ctx context.Context, leagueID, holderID uuid.UUID) ([]models.Ownership, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+ownershipCols+` FROM ownerships
		 WHERE league_id = ? AND holder_id = ?
		 ORDER BY acquired_at`,
		leagueID.String(), holderID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list ownerships: %w", err)
	}
	defer rows.Close()

	var out []models.Ownership
	for rows.Next() {
		o, err := scanOwnership(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan ownership: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return n > 0, nil
}
