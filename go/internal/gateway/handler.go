package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler serves the league feed endpoints.
type WebSocketHandler struct {
	manager *ConnectionManager
}

func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{manager: cm}
}

// HandleLeagueFeed upgrades GET /ws/leagues/{league_id}. An optional
// holder_id query parameter narrows the feed to one holder.
func (h *WebSocketHandler) HandleLeagueFeed(w http.ResponseWriter, r *http.Request) {
	leagueID, err := uuid.Parse(r.PathValue("league_id"))
	if err != nil {
		http.Error(w, "invalid league_id format", http.StatusBadRequest)
		return
	}

	var holderID *uuid.UUID
	if raw := r.URL.Query().Get("holder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid holder_id format", http.StatusBadRequest)
			return
		}
		holderID = &id
	}

	// Upgrade writes its own error response.
	if err := h.manager.Subscribe(w, r, leagueID, holderID); err != nil {
		log.Error().
			Err(err).
			Str("league_id", leagueID.String()).
			Msg("failed to upgrade feed connection")
	}
}

func (h *WebSocketHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.manager.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to encode stats")
	}
}

func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/leagues/{league_id}", h.HandleLeagueFeed)
	mux.HandleFunc("GET /ws/stats", h.HandleStats)
}
