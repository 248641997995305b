package txlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/rs/zerolog/log"
)

type RelayConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY; empty means poll only
	NotifyChannel    string        // Channel the transactions insert trigger notifies
	FallbackInterval time.Duration // How often to poll for missed transactions
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int // Max transactions fetched per poll
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		NotifyChannel:    "ownership_transactions",
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// Relay moves unpublished transactions to a Publisher and marks them
// published. Delivery is at least once.
type Relay struct {
	repo      Repository
	publisher Publisher
	clock     *leagueclock.Clock
	listener  *pq.Listener
	cfg       RelayConfig

	mu            sync.Mutex
	running       bool
	published     uint64
	lastPublished time.Time
}

// NewRelay creates a Relay. With a DatabaseURL it LISTENs on NotifyChannel
// and polls as a fallback; without one it only polls.
func NewRelay(repo Repository, publisher Publisher, clock *leagueclock.Clock, cfg RelayConfig) (*Relay, error) {
	r := &Relay{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
	if cfg.DatabaseURL == "" {
		log.Info().Dur("fallback_interval", cfg.FallbackInterval).Msg("transaction relay running poll-only")
		return r, nil
	}

	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for notifications")

	r.listener = l
	return r, nil
}

// Start runs the relay until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	log.Info().
		Str("channel", r.cfg.NotifyChannel).
		Dur("fallback_interval", r.cfg.FallbackInterval).
		Msg("transaction relay started")

	r.setRunning(true)
	defer r.setRunning(false)

	// Drain anything left over from before a restart.
	if _, err := r.ProcessUnpublished(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unpublished transactions")
	}

	fallbackTicker := time.NewTicker(r.cfg.FallbackInterval)
	defer fallbackTicker.Stop()

	var (
		notify <-chan *pq.Notification
		ping   <-chan time.Time
	)
	if r.listener != nil {
		notify = r.listener.Notify
		pingTicker := time.NewTicker(r.cfg.PingInterval)
		defer pingTicker.Stop()
		ping = pingTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("transaction relay shutting down")
			return r.Stop()
		case note := <-notify:
			if note == nil {
				// Connection was re-established; notifications may have been missed.
				if _, err := r.ProcessUnpublished(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process unpublished transactions")
				}
				continue
			}
			if err := r.HandleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.C:
			if _, err := r.ProcessUnpublished(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unpublished transactions")
			}
		case <-ping:
			if err := r.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

// Stop closes the LISTEN connection, if any.
func (r *Relay) Stop() error {
	if r.listener == nil {
		return nil
	}
	return r.listener.Close()
}

// HandleNotification publishes the transaction whose id is the notify payload.
func (r *Relay) HandleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid transaction ID in notification: %w", err)
	}

	t, err := r.repo.FetchTransactionByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch transaction: %w", err)
	}
	if t.PublishedAt != nil {
		return nil
	}
	return r.publishWithRetry(ctx, *t)
}

// ProcessUnpublished publishes one batch of undelivered transactions, oldest
// first, and returns how many were delivered.
func (r *Relay) ProcessUnpublished(ctx context.Context) (int, error) {
	pending, err := r.repo.FetchUnpublishedTransactions(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unpublished transactions: %w", err)
	}

	published := 0
	for _, t := range pending {
		if err := r.publishWithRetry(ctx, t); err != nil {
			log.Error().Err(err).Str("transaction_id", t.ID.String()).Msg("failed to publish transaction")
			continue
		}
		published++
	}
	return published, nil
}

// publishWithRetry publishes with linear backoff, then marks the transaction published.
func (r *Relay) publishWithRetry(ctx context.Context, t models.Transaction) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.cfg.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := r.publisher.Publish(ctx, t); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("transaction_id", t.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		if err := r.repo.MarkTransactionPublished(ctx, t.ID, r.clock.Now()); err != nil {
			return fmt.Errorf("failed to mark transaction published: %w", err)
		}
		r.recordPublished()

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("transaction_id", t.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}

func (r *Relay) setRunning(running bool) {
	r.mu.Lock()
	r.running = running
	r.mu.Unlock()
}

func (r *Relay) recordPublished() {
	r.mu.Lock()
	r.published++
	r.lastPublished = r.clock.Now()
	r.mu.Unlock()
}

// Stats reports whether the relay loop is running, how many transactions it
// has delivered and when it last delivered one.
func (r *Relay) Stats() (running bool, published uint64, last time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running, r.published, r.lastPublished
}
