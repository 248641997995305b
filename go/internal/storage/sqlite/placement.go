package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/mcdev12/dynasty-ownership/go/internal/sqlutil"
)

const upsertPlacementSQL = `
INSERT INTO daily_placements (league_id, player_id, holder_id, game_date, slot)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (league_id, player_id, game_date)
DO UPDATE SET holder_id = excluded.holder_id, slot = excluded.slot`

// UpsertPlacements writes placements keyed on (league, player, game_date) in a
// single transaction. Re-running with the same rows is a no-op.
func (s *Store) UpsertPlacements(ctx context.Context, placements []models.DailyPlacement) (int, error) {
	if len(placements) == 0 {
		return 0, nil
	}

	err := sqlutil.WithTx(ctx, s.sqlDB, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertPlacementSQL)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range placements {
			if _, err := stmt.ExecContext(ctx,
				p.LeagueID.String(), p.PlayerID.String(), p.HolderID.String(),
				p.GameDate.String(), string(p.Slot),
			); err != nil {
				return fmt.Errorf("upsert placement %s: %w", p.GameDate, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sqlite: upsert placements: %w", err)
	}
	return len(placements), nil
}

// DeletePlacementsFrom deletes a holder's placements for a player on or after from.
func (s *Store) DeletePlacementsFrom(ctx context.Context, leagueID, playerID, holderID uuid.UUID, from leagueclock.Date) (int, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM daily_placements
		 WHERE league_id = ? AND player_id = ? AND holder_id = ? AND game_date >= ?`,
		leagueID.String(), playerID.String(), holderID.String(), from.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: delete placements: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return int(n), nil
}

// CountSlotOnDate counts a holder's placements in slot on date, ignoring
// excludePlayer.
func (s *Store) CountSlotOnDate(ctx context.Context, leagueID, holderID uuid.UUID, date leagueclock.Date, slot models.Slot, excludePlayer uuid.UUID) (int, error) {
	var count int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM daily_placements
		 WHERE league_id = ? AND holder_id = ? AND game_date = ? AND slot = ? AND player_id <> ?`,
		leagueID.String(), holderID.String(), date.String(), string(slot), excludePlayer.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count placements: %w", err)
	}
	return count, nil
}

// ListPlacementsOnDate returns a holder's placements for one date.
func (s *Store) ListPlacementsOnDate(ctx context.Context, leagueID, holderID uuid.UUID, date leagueclock.Date) ([]models.DailyPlacement, error) {
	return s.queryPlacements(ctx,
		`SELECT league_id, player_id, holder_id, game_date, slot FROM daily_placements
		 WHERE league_id = ? AND holder_id = ? AND game_date = ?
		 ORDER BY player_id`,
		leagueID.String(), holderID.String(), date.String(),
	)
}

// ListPlacementsForPlayer returns every placement row for a player in a league.
func (s *Store) ListPlacementsForPlayer(ctx context.Context, leagueID, playerID uuid.UUID) ([]models.DailyPlacement, error) {
	return s.queryPlacements(ctx,
		`SELECT league_id, player_id, holder_id, game_date, slot FROM daily_placements
		 WHERE league_id = ? AND player_id = ?
		 ORDER BY game_date`,
		leagueID.String(), playerID.String(),
	)
}

func (s *Store) queryPlacements(ctx context.Context, query string, args ...any) ([]models.DailyPlacement, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list placements: %w", err)
	}
	defer rows.Close()

	var out []models.DailyPlacement
	for rows.Next() {
		var leagueID, playerID, holderID, gameDate, slot string
		if err := rows.Scan(&leagueID, &playerID, &holderID, &gameDate, &slot); err != nil {
			return nil, fmt.Errorf("sqlite: scan placement: %w", err)
		}
		p := models.DailyPlacement{Slot: models.Slot(slot)}
		if p.LeagueID, err = uuid.Parse(leagueID); err != nil {
			return nil, fmt.Errorf("sqlite: parse league_id: %w", err)
		}
		if p.PlayerID, err = uuid.Parse(playerID); err != nil {
			return nil, fmt.Errorf("sqlite: parse player_id: %w", err)
		}
		if p.HolderID, err = uuid.Parse(holderID); err != nil {
			return nil, fmt.Errorf("sqlite: parse holder_id: %w", err)
		}
		if p.GameDate, err = leagueclock.ParseDate(gameDate); err != nil {
			return nil, fmt.Errorf("sqlite: parse game_date: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
