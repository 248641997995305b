package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-ownership/go/internal/leagueclock"
)

// OwnershipStatus represents where a rostered player sits in the claim lifecycle
type OwnershipStatus string

const (
	OwnershipStatusOnTeam OwnershipStatus = "ON_TEAM"
	OwnershipStatusWaiver OwnershipStatus = "WAIVER"
)

// Ownership is the authoritative (league, player) -> holder record.
// A player with no Ownership in a league is a free agent.
type Ownership struct {
	LeagueID    uuid.UUID         `json:"league_id"`
	PlayerID    uuid.UUID         `json:"player_id"`
	HolderID    uuid.UUID         `json:"holder_id"`
	Status      OwnershipStatus   `json:"status"`
	AcquiredAt  time.Time         `json:"acquired_at"`
	ReleaseDate *leagueclock.Date `json:"release_date,omitempty"` // Set only while on waivers
}

// OnWaivers reports whether the record is in the waiver freeze.
func (o *Ownership) OnWaivers() bool {
	return o.Status == OwnershipStatusWaiver
}

// WaiverExpired reports whether a waiver record has reached its release date.
func (o *Ownership) WaiverExpired(today leagueclock.Date) bool {
	if !o.OnWaivers() || o.ReleaseDate == nil {
		return false
	}
	return !today.Before(*o.ReleaseDate)
}
