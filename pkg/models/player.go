package models

import (
	"time"

	"github.com/gravitas-games/hexlands/pkg/hex"
)

// Player represents a player in the game
type Player struct {
	// From JWT claims
	ID          string `json:"id"`          // Converted from int64 user_id
	Username    string `json:"username"`    // JWT claim
	Email       string `json:"email"`       // JWT claim
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags
	Activated   int64  `json:"activated"`   // JWT claim: activation timestamp or ban status

	// Connection state
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`

	// Session state
	SessionID string `json:"session_id"`

	// Last view center requested, used as the player's position on the map
	Position hex.Cube `json:"position"`
	Gathered int      `json:"gathered"`
}

// PermissionMapAdmin lets a player restore depleted resources on demand
const PermissionMapAdmin int64 = 1 << 0

// HasPermission reports whether every bit of flag is granted
func (p *Player) HasPermission(flag int64) bool {
	return p.Permissions&flag == flag
}

// IsActive checks if the player account is activated and not banned
func (p *Player) IsActive() bool {
	// activated > 0 means activated
	// activated == 0 means not activated
	// activated == -1 means banned
	return p.Activated > 0
}

// IsBanned checks if the player is banned
func (p *Player) IsBanned() bool {
	return p.Activated == -1
}

// IsConnected checks if the player is currently connected
func (p *Player) IsConnected() bool {
	return p.Connected
}
