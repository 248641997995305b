package models

import (
	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
)

// DefaultWaiverDays applies when a league's waiver setting is missing or unparseable.
const DefaultWaiverDays = 2

// LeagueConfig is the slice of league settings the ownership engine reads.
type LeagueConfig struct {
	LeagueID           uuid.UUID        `json:"league_id"`
	WaiverDays         int              `json:"waiver_days"`
	AllowDirectReserve bool             `json:"allow_direct_reserve"`
	ReserveCapacity    int              `json:"reserve_capacity"`
	SeasonStart        leagueclock.Date `json:"season_start"`
	SeasonEnd          leagueclock.Date `json:"season_end"`
}

// ReserveEnabled reports whether automatic reserve placement is possible at all.
func (c LeagueConfig) ReserveEnabled() bool {
	return c.AllowDirectReserve && c.ReserveCapacity > 0
}
