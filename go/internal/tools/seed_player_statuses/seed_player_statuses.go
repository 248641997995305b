package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/dbconfig"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/mcdev12/dynasty-ownership/go/internal/playerstatus"
	"github.com/mcdev12/dynasty-ownership/go/internal/storage/postgres"
)

// PlayerStatus mirrors one entry of the JSON snapshot
type PlayerStatus struct {
	PlayerID uuid.UUID `json:"player_id"`
	Status   string    `json:"status"`
}

type statusWriter interface {
	UpsertPlayerStatus(ctx context.Context, playerID uuid.UUID, status models.PlayerStatus, updatedAt time.Time) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, playerID uuid.UUID) error
}

type seedResult struct {
	total, written, errs int
}

// seedStatuses upserts every valid entry and drops its cached status. cache
// may be nil when no Redis is configured. A failed invalidation is reported
// but does not undo the write.
func seedStatuses(ctx context.Context, store statusWriter, cache cacheInvalidator, statuses []PlayerStatus, now time.Time) seedResult {
	res := seedResult{total: len(statuses)}
	for _, s := range statuses {
		if s.PlayerID == uuid.Nil || s.Status == "" {
			res.errs++
			continue
		}
		if err := store.UpsertPlayerStatus(ctx, s.PlayerID, models.PlayerStatus(s.Status), now); err != nil {
			fmt.Fprintf(os.Stderr, "error writing status for %s: %v\n", s.PlayerID, err)
			res.errs++
			continue
		}
		res.written++
		if cache == nil {
			continue
		}
		if err := cache.Invalidate(ctx, s.PlayerID); err != nil {
			fmt.Fprintf(os.Stderr, "error invalidating cached status for %s: %v\n", s.PlayerID, err)
			res.errs++
		}
	}
	return res
}

func main() {
	path := "player_statuses.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		os.Exit(1)
	}
	var statuses []PlayerStatus
	if err := json.Unmarshal(data, &statuses); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal statuses: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect to DB and, when configured, the status cache
	env, err := dbconfig.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read env: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	store, err := postgres.New(ctx, postgres.ClientConfig{DSN: env.DB.DSN()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var cache cacheInvalidator
	if env.Redis.Addr != "" {
		rdb, err := playerstatus.NewRedisClient(ctx, playerstatus.RedisConfig{
			Addr:     env.Redis.Addr,
			Password: env.Redis.Password,
			DB:       env.Redis.DB,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "redis connect error: %v\n", err)
			os.Exit(1)
		}
		defer rdb.Close()
		cache = playerstatus.NewCachedLookup(rdb, store, env.Redis.CacheTTL)
	}

	// 3) Upsert statuses
	res := seedStatuses(ctx, store, cache, statuses, time.Now())
	fmt.Printf("Player statuses seed: total=%d written=%d errors=%d\n", res.total, res.written, res.errs)
}
