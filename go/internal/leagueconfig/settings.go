// Package leagueconfig reads the per-league settings the ownership engine
// depends on. Reads fail open: anything missing or malformed falls back to a
// documented default instead of blocking a claim or drop.
package leagueconfig

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mcdev12/dynasty-ownership/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Settings is the ownership-relevant subset of a league's settings document.
type Settings struct {
	WaiverDays         int
	AllowDirectReserve bool
	ReserveCapacity    int
}

type rawSettings struct {
	WaiverDays         json.RawMessage `json:"waiver_days"`
	AllowDirectReserve json.RawMessage `json:"allow_direct_reserve"`
	ReserveCapacity    json.RawMessage `json:"reserve_capacity"`
}

// DefaultSettings are used for any field that is missing or unparseable.
func DefaultSettings() Settings {
	return Settings{
		WaiverDays:         models.DefaultWaiverDays,
		AllowDirectReserve: false,
		ReserveCapacity:    0,
	}
}

// ParseSettings decodes a league_settings JSON document. waiver_days and
// reserve_capacity accept a number or a numeric string.
func ParseSettings(data []byte) Settings {
	out := DefaultSettings()
	if len(data) == 0 {
		return out
	}

	var raw rawSettings
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Msg("malformed league settings, using defaults")
		return out
	}

	if n, ok := parseCount(raw.WaiverDays); ok {
		out.WaiverDays = n
	}
	if b, ok := parseBool(raw.AllowDirectReserve); ok {
		out.AllowDirectReserve = b
	}
	if n, ok := parseCount(raw.ReserveCapacity); ok {
		out.ReserveCapacity = n
	}
	return out
}

// parseCount accepts 3, 3.0 or "3". Negative or fractional values are rejected.
func parseCount(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(strings.TrimSpace(s))
	}

	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || f < 0 || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func parseBool(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return parsed, true
		}
	}
	return false, false
}
