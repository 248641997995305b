package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
)

const upsertPlacementSQL = `
	INSERT INTO daily_placements (league_id, player_id, holder_id, game_date, slot)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (league_id, player_id, game_date)
	DO UPDATE SET holder_id = EXCLUDED.holder_id, slot = EXCLUDED.slot`

// UpsertPlacements writes placements keyed on (league, player, game_date) as
// one batched transaction.
func (s *Store) UpsertPlacements(ctx context.Context, placements []models.DailyPlacement) (int, error) {
	if len(placements) == 0 {
		return 0, nil
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range placements {
			batch.Queue(upsertPlacementSQL,
				p.LeagueID, p.PlayerID, p.HolderID, p.GameDate.Time(time.UTC), string(p.Slot))
		}

		br := tx.SendBatch(ctx, batch)
		for _, p := range placements {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("upsert placement %s: %w", p.GameDate, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("postgres: upsert placements: %w", err)
	}
	return len(placements), nil
}

// DeletePlacementsFrom deletes a holder's placements for a player on or after from.
func (s *Store) DeletePlacementsFrom(ctx context.Context, leagueID, playerID, holderID uuid.UUID, from leagueclock.Date) (int, error) {
	const query = `
		DELETE FROM daily_placements
		WHERE league_id = $1 AND player_id = $2 AND holder_id = $3 AND game_date >= $4`

	tag, err := s.pool.Exec(ctx, query, leagueID, playerID, holderID, from.Time(time.UTC))
	if err != nil {
		return 0, fmt.Errorf("postgres: delete placements: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CountSlotOnDate counts a holder's placements in slot on date, ignoring excludePlayer.
func (s *Store) CountSlotOnDate(ctx context.Context, leagueID, holderID uuid.UUID, date leagueclock.Date, slot models.Slot, excludePlayer uuid.UUID) (int, error) {
	const query = `
		SELECT COUNT(*) FROM daily_placements
		WHERE league_id = $1 AND holder_id = $2 AND game_date = $3 AND slot = $4 AND player_id <> $5`

	var count int64
	if err := s.pool.QueryRow(ctx, query, leagueID, holderID, date.Time(time.UTC), string(slot), excludePlayer).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count placements: %w", err)
	}
	return int(count), nil
}

// ListPlacementsOnDate returns a holder's placements for one date.
func (s *Store) ListPlacementsOnDate(ctx context.Context, leagueID, holderID uuid.UUID, date leagueclock.Date) ([]models.DailyPlacement, error) {
	const query = `
		SELECT league_id, player_id, holder_id, game_date, slot FROM daily_placements
		WHERE league_id = $1 AND holder_id = $2 AND game_date = $3
		ORDER BY player_id`

	rows, err := s.pool.Query(ctx, query, leagueID, holderID, date.Time(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("postgres: list placements: %w", err)
	}
	return scanPlacementRows(rows)
}

// ListPlacementsForPlayer returns every placement row for a player in a league.
func (s *Store) ListPlacementsForPlayer(ctx context.Context, leagueID, playerID uuid.UUID) ([]models.DailyPlacement, error) {
	const query = `
		SELECT league_id, player_id, holder_id, game_date, slot FROM daily_placements
		WHERE league_id = $1 AND player_id = $2
		ORDER BY game_date`

	rows, err := s.pool.Query(ctx, query, leagueID, playerID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list placements: %w", err)
	}
	return scanPlacementRows(rows)
}

func scanPlacementRows(rows pgx.Rows) ([]models.DailyPlacement, error) {
	defer rows.Close()

	var out []models.DailyPlacement
	for rows.Next() {
		var (
			p        models.DailyPlacement
			gameDate time.Time
			slot     string
		)
		if err := rows.Scan(&p.LeagueID, &p.PlayerID, &p.HolderID, &gameDate, &slot); err != nil {
			return nil, fmt.Errorf("postgres: scan placement: %w", err)
		}
		p.GameDate = leagueclock.DateOf(gameDate, time.UTC)
		p.Slot = models.Slot(slot)
		out = append(out, p)
	}
	return out, rows.Err()
}
