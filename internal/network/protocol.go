package network

import (
	"encoding/json"

	"github.com/gravitas-games/hexlands/internal/gamemap"
	"github.com/gravitas-games/hexlands/pkg/hex"
)

// Message types - Client → Server
const (
	MsgTypeJoin   = "join"
	MsgTypeLeave  = "leave"
	MsgTypePing   = "ping"
	MsgTypeView   = "view"
	MsgTypePath   = "path"
	MsgTypeGather = "gather"

	// Requires models.PermissionMapAdmin
	MsgTypeReplenish = "replenish"
)

// Message types - Server → Client
const (
	MsgTypeWelcome      = "welcome"
	MsgTypePlayerJoined = "player_joined"
	MsgTypePlayerLeft   = "player_left"
	MsgTypeNodes        = "nodes"
	MsgTypePathResult   = "path"
	MsgTypeNoPath       = "no_path"
	MsgTypeGathered     = "gathered"
	MsgTypeReplenished  = "replenished"
	MsgTypeError        = "error"
	MsgTypePong         = "pong"
)

// Error codes carried in ErrorPayload.Code
const (
	ErrCodeInvalidMessage   = "invalid_message"
	ErrCodeInvalidCoord     = "invalid_coord"
	ErrCodeNodeNotFound     = "node_not_found"
	ErrCodeRadiusTooLarge   = "radius_too_large"
	ErrCodeNotResource      = "not_resource"
	ErrCodeDepleted         = "depleted"
	ErrCodeNotDepleted      = "not_depleted"
	ErrCodeForbidden        = "forbidden"
	ErrCodeUnknownType      = "unknown_message_type"
	ErrCodeNotAuthenticated = "not_authenticated"
	ErrCodeJoinFailed       = "join_failed"
	ErrCodeInternal         = "internal"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// ViewPayload asks for every node within Radius of Center
type ViewPayload struct {
	Center hex.Cube `json:"center"`
	Radius int      `json:"radius"`
}

// PathPayload asks for a route between two materialized nodes
type PathPayload struct {
	From hex.Cube `json:"from"`
	To   hex.Cube `json:"to"`
}

// GatherPayload asks to harvest the resource at Coord
type GatherPayload struct {
	Coord hex.Cube `json:"coord"`
}

// ReplenishPayload asks to restore a depleted resource immediately
type ReplenishPayload struct {
	Coord hex.Cube `json:"coord"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	PlayerID      string        `json:"player_id"`
	Username      string        `json:"username"`
	SessionID     string        `json:"session_id"`
	SessionStatus SessionStatus `json:"session_status"`
}

// PlayerJoinedPayload notifies clients when a player joins
type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// PlayerLeftPayload notifies clients when a player leaves
type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

// Node is the wire form of a map node
type Node struct {
	Coord     hex.Cube         `json:"coord"`
	Category  gamemap.Category `json:"category"`
	Blocked   bool             `json:"blocked"`
	Modifiers []string         `json:"modifiers,omitempty"`
	Resource  string           `json:"resource,omitempty"`
	Depleted  bool             `json:"depleted,omitempty"`
	ReadyAt   int64            `json:"ready_at,omitempty"` // Unix timestamp
}

// NodesPayload answers a view request
type NodesPayload struct {
	Center  hex.Cube `json:"center"`
	Radius  int      `json:"radius"`
	Nodes   []Node   `json:"nodes"`
	MapSize int      `json:"map_size"`
}

// PathResultPayload answers a path request that found a route
type PathResultPayload struct {
	From hex.Cube   `json:"from"`
	To   hex.Cube   `json:"to"`
	Cost int        `json:"cost"`
	Path []hex.Cube `json:"path"`
}

// NoPathPayload answers a path request with no route
type NoPathPayload struct {
	From hex.Cube `json:"from"`
	To   hex.Cube `json:"to"`
}

// GatheredPayload confirms a harvest
type GatheredPayload struct {
	Node Node `json:"node"`
}

// ReplenishedPayload broadcasts resources that have respawned
type ReplenishedPayload struct {
	Nodes []Node `json:"nodes"`
}

// SessionStatus represents the current session state
type SessionStatus struct {
	State       string         `json:"state"`
	PlayerCount int            `json:"player_count"`
	MaxPlayers  int            `json:"max_players"`
	ServerTick  int64          `json:"server_tick"`
	Uptime      int64          `json:"uptime"`
	MapSize     int            `json:"map_size"`
	Census      map[string]int `json:"census,omitempty"`
	Respawning  int            `json:"respawning"`
	NextRespawn int64          `json:"next_respawn,omitempty"` // Unix timestamp
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NodeFromMap converts a map node to its wire form
func NodeFromMap(n *gamemap.Node) Node {
	out := Node{
		Coord:     n.Coord,
		Category:  n.Category,
		Blocked:   n.Blocked,
		Modifiers: n.Modifiers.Names(),
		Resource:  n.Resource,
		Depleted:  n.Depleted,
	}
	if n.Depleted {
		out.ReadyAt = n.ReadyAt.Unix()
	}
	return out
}

// NodesFromMap converts a slice of map nodes
func NodesFromMap(nodes []*gamemap.Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = NodeFromMap(n)
	}
	return out
}
