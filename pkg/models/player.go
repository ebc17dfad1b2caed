package models

import "time"

// Player represents a connected player
type Player struct {
	// From JWT claims, or generated for guests
	ID       string `json:"id"`
	Username string `json:"username"`
	Guest    bool   `json:"guest"`

	// Connection state
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`

	// ID of the game session bound to this player's connection
	SessionID string `json:"session_id"`
}

// Touch records activity from the player
func (p *Player) Touch(now time.Time) {
	p.LastSeen = now
}
