package txlog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// pendingScanLimit caps how many pending transactions a health check reads.
const pendingScanLimit = 1000

type HealthStatus struct {
	Healthy             bool      `json:"healthy"`
	RelayRunning        bool      `json:"relay_running"`
	PublisherConnected  bool      `json:"publisher_connected"`
	Published           uint64    `json:"published"`
	LastPublished       time.Time `json:"last_published"`
	PendingTransactions int       `json:"pending_transactions"`
	Errors              []string  `json:"errors"`
}

// ConnectionChecker reports broker connectivity.
type ConnectionChecker interface {
	IsConnected() bool
}

// HealthChecker reports relay liveness. The relay is unhealthy when its loop
// is not running, the broker is unreachable or the oldest pending transaction
// has waited longer than the threshold.
type HealthChecker struct {
	relay     *Relay
	repo      Repository
	conn      ConnectionChecker
	threshold time.Duration
}

// NewHealthChecker creates a HealthChecker. conn may be nil.
func NewHealthChecker(relay *Relay, repo Repository, conn ConnectionChecker, threshold time.Duration) *HealthChecker {
	return &HealthChecker{
		relay:     relay,
		repo:      repo,
		conn:      conn,
		threshold: threshold,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, Errors: []string{}}

	status.RelayRunning, status.Published, status.LastPublished = h.relay.Stats()
	if !status.RelayRunning {
		status.Healthy = false
		status.Errors = append(status.Errors, "relay not running")
	}

	status.PublisherConnected = true
	if h.conn != nil && !h.conn.IsConnected() {
		status.PublisherConnected = false
		status.Healthy = false
		status.Errors = append(status.Errors, "publisher disconnected")
	}

	pending, err := h.repo.FetchUnpublishedTransactions(ctx, pendingScanLimit)
	if err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("failed to read pending transactions: %v", err))
		return status
	}
	status.PendingTransactions = len(pending)

	if len(pending) > 0 {
		if age := h.relay.clock.Now().Sub(pending[0].TransactionTime); age > h.threshold {
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("oldest pending transaction waiting %s", age))
		}
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to encode relay health")
	}
}
