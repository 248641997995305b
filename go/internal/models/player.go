package models

// PlayerStatus is the real-world status tag reported for a player
type PlayerStatus string

const (
	PlayerStatusActive    PlayerStatus = "ACTIVE" // Top-tier active major designation
	PlayerStatusDisabled  PlayerStatus = "DISABLED"
	PlayerStatusMinors    PlayerStatus = "MINORS"
	PlayerStatusSuspended PlayerStatus = "SUSPENDED"
	PlayerStatusUnknown   PlayerStatus = "UNKNOWN"
)

// ReserveEligible reports whether a player with this status may be placed
// directly into a reserve slot. Only the active major designation is excluded.
func (s PlayerStatus) ReserveEligible() bool {
	return s != PlayerStatusActive
}
