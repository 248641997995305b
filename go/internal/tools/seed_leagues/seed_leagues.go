package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/dynasty-ownership/go/internal/dbconfig"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueconfig"
)

func main() {
	path := "leagues.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the league file
	file, err := leagueconfig.LoadLeagueFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load leagues: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read db env: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var (
		total  = len(file.Leagues)
		upsert int
		errs   int
	)

	for _, entry := range file.Leagues {
		lc, err := entry.Config()
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping league %q: %v\n", entry.Name, err)
			errs++
			continue
		}
		settings, err := entry.SettingsJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping league %q: %v\n", entry.Name, err)
			errs++
			continue
		}

		_, err = pool.Exec(ctx, `
            INSERT INTO leagues (id, name, league_settings, season_start, season_end)
            VALUES ($1, $2, $3, $4, $5)
            ON CONFLICT (id) DO UPDATE SET
              name            = EXCLUDED.name,
              league_settings = EXCLUDED.league_settings,
              season_start    = EXCLUDED.season_start,
              season_end      = EXCLUDED.season_end,
              updated_at      = NOW()
        `,
			lc.LeagueID, entry.Name, string(settings),
			lc.SeasonStart.Time(time.UTC), lc.SeasonEnd.Time(time.UTC),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error upserting league %s: %v\n", lc.LeagueID, err)
			errs++
			continue
		}
		upsert++
	}

	// 4) Print summary
	fmt.Printf("Leagues seed complete: %d total, %d upserted, %d errors\n", total, upsert, errs)
}
