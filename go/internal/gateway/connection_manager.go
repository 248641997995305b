package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/dynasty-ownership/go/internal/txlog"
	"github.com/rs/zerolog/log"
)

// ConnectionManager keeps per-league pools of feed subscribers and fans
// ownership events out to them.
type ConnectionManager struct {
	leagues map[uuid.UUID]map[*Subscriber]struct{}
	mu      sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan txlog.Envelope
}

// Subscriber is one websocket client watching a league's feed. A non-nil
// HolderID narrows the feed to that holder's transactions.
type Subscriber struct {
	ID       string
	LeagueID uuid.UUID
	HolderID *uuid.UUID
	Conn     *websocket.Conn
	Send     chan []byte
	Manager  *ConnectionManager

	ConnectedAt time.Time
	closeOnce   sync.Once
}

type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	if config.SendBuffer <= 0 {
		config.SendBuffer = 256
	}
	return &ConnectionManager{
		leagues: make(map[uuid.UUID]map[*Subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan txlog.Envelope, 1000),
	}
}

// Start drains the broadcast queue until ctx is done.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return
		case env := <-cm.broadcastCh:
			cm.handleBroadcast(env)
		}
	}
}

// Subscribe upgrades the request and registers the client on the league pool.
func (cm *ConnectionManager) Subscribe(w http.ResponseWriter, r *http.Request, leagueID uuid.UUID, holderID *uuid.UUID) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	sub := &Subscriber{
		ID:          uuid.New().String(),
		LeagueID:    leagueID,
		HolderID:    holderID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBuffer),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}
	cm.register(sub)

	go sub.writePump()
	go sub.readPump()

	log.Info().
		Str("subscriber_id", sub.ID).
		Str("league_id", leagueID.String()).
		Msg("feed subscriber connected")
	return nil
}

func (cm *ConnectionManager) register(sub *Subscriber) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	pool := cm.leagues[sub.LeagueID]
	if pool == nil {
		pool = make(map[*Subscriber]struct{})
		cm.leagues[sub.LeagueID] = pool
	}
	pool[sub] = struct{}{}
}

func (cm *ConnectionManager) unregister(sub *Subscriber) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	pool, ok := cm.leagues[sub.LeagueID]
	if !ok {
		return
	}
	if _, ok := pool[sub]; !ok {
		return
	}
	delete(pool, sub)
	sub.closeOnce.Do(func() { close(sub.Send) })
	if len(pool) == 0 {
		delete(cm.leagues, sub.LeagueID)
	}

	log.Info().
		Str("subscriber_id", sub.ID).
		Str("league_id", sub.LeagueID.String()).
		Msg("feed subscriber disconnected")
}

// Broadcast queues an event for the subscribers of its league. The event is
// dropped when the queue is full.
func (cm *ConnectionManager) Broadcast(env txlog.Envelope) {
	select {
	case cm.broadcastCh <- env:
	default:
		log.Warn().
			Str("league_id", env.LeagueID.String()).
			Str("event_id", env.EventID.String()).
			Msg("broadcast channel full, dropping event")
	}
}

func (cm *ConnectionManager) handleBroadcast(env txlog.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	// Sends happen under the read lock so unregister cannot close a Send
	// channel mid-broadcast.
	var delivered int
	var slow []*Subscriber
	cm.mu.RLock()
	for sub := range cm.leagues[env.LeagueID] {
		if sub.HolderID != nil && *sub.HolderID != env.HolderID {
			continue
		}
		select {
		case sub.Send <- data:
			delivered++
		default:
			slow = append(slow, sub)
		}
	}
	cm.mu.RUnlock()

	for _, sub := range slow {
		log.Warn().
			Str("subscriber_id", sub.ID).
			Msg("subscriber send buffer full, closing connection")
		cm.unregister(sub)
		sub.Conn.Close()
	}

	log.Debug().
		Str("event_type", string(env.Type)).
		Str("league_id", env.LeagueID.String()).
		Int("subscribers", delivered).
		Msg("event broadcasted")
}

// Stats reports connected subscribers per league.
type Stats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveLeagues    int            `json:"active_leagues"`
	PerLeague        map[string]int `json:"league_connections"`
}

func (cm *ConnectionManager) Stats() Stats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	st := Stats{PerLeague: make(map[string]int, len(cm.leagues))}
	for leagueID, pool := range cm.leagues {
		st.TotalConnections += len(pool)
		st.PerLeague[leagueID.String()] = len(pool)
	}
	st.ActiveLeagues = len(cm.leagues)
	return st
}

func (s *Subscriber) writePump() {
	ticker := time.NewTicker(s.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		s.Conn.Close()
		s.Manager.unregister(s)
	}()

	for {
		select {
		case msg, ok := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(s.Manager.config.WriteTimeout))
			if !ok {
				s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Error().Err(err).Str("subscriber_id", s.ID).Msg("failed to write event")
				return
			}
		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(s.Manager.config.WriteTimeout))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services control frames; the feed is one-way.
func (s *Subscriber) readPump() {
	defer func() {
		s.Manager.unregister(s)
		s.Conn.Close()
	}()

	s.Conn.SetReadLimit(s.Manager.config.MaxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(s.Manager.config.ReadTimeout))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(s.Manager.config.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := s.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("subscriber_id", s.ID).Msg("unexpected websocket close")
			}
			return
		}
		s.Conn.SetReadDeadline(time.Now().Add(s.Manager.config.ReadTimeout))
	}
}
