package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
)

// Slot represents the roster slot a player occupies on a given day
type Slot string

const (
	SlotBench   Slot = "BENCH"
	SlotReserve Slot = "RESERVE" // Capacity-limited minor league slot
)

// ParseSlot validates a caller-supplied slot. Matching ignores case.
func ParseSlot(s string) (Slot, error) {
	slot := Slot(strings.ToUpper(strings.TrimSpace(s)))
	switch slot {
	case SlotBench, SlotReserve:
		return slot, nil
	default:
		return "", fmt.Errorf("invalid slot: %q", s)
	}
}

// DailyPlacement is one day of a rostered player's slot schedule.
type DailyPlacement struct {
	LeagueID uuid.UUID        `json:"league_id"`
	PlayerID uuid.UUID        `json:"player_id"`
	HolderID uuid.UUID        `json:"holder_id"`
	GameDate leagueclock.Date `json:"game_date"`
	Slot     Slot             `json:"slot"`
}
