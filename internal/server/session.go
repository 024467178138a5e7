package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravitas-games/hexlands/internal/config"
	"github.com/gravitas-games/hexlands/internal/gamemap"
	"github.com/gravitas-games/hexlands/internal/harvest"
	"github.com/gravitas-games/hexlands/internal/network"
	"github.com/gravitas-games/hexlands/pkg/hex"
	"github.com/gravitas-games/hexlands/pkg/models"
)

// ErrRadiusTooLarge is returned for view requests beyond the configured cap
var ErrRadiusTooLarge = errors.New("view radius too large")

// ErrSessionFull is returned when the session is at max players
var ErrSessionFull = errors.New("session is full")

// ErrNotDepleted is returned when replenishing a node with no pending respawn
var ErrNotDepleted = errors.New("resource is not depleted")

// Sender delivers server messages to one client
type Sender interface {
	SendMessage(msg *network.ServerMessage)
}

// Session represents a game session
type Session struct {
	ID        string
	CreatedAt time.Time
	Seed      int64

	// Player management
	players     map[string]*models.Player // playerID -> Player
	connections map[string]Sender         // playerID -> Connection
	mu          sync.RWMutex

	// The map core is single-threaded; worldMu serializes every call into it
	worldMu sync.Mutex
	gen     *gamemap.Generator
	paths   *gamemap.Pathfinder
	harvest *harvest.Scheduler
	census  map[gamemap.Category]int

	status SessionStatus

	// Configuration
	config *config.Config
}

// SessionStatus represents the current state of the session
type SessionStatus struct {
	State       string `json:"state"` // "waiting", "running"
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	ServerTick  int64  `json:"server_tick"`
	Uptime      int64  `json:"uptime"` // seconds
}

// NewSession creates a new game session with a freshly seeded map
func NewSession(cfg *config.Config) (*Session, error) {
	id := uuid.NewString()
	seed := cfg.Map.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("Creating session %s (seed %d)", id, seed)

	session := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		Seed:        seed,
		players:     make(map[string]*models.Player),
		connections: make(map[string]Sender),
		harvest:     harvest.NewScheduler(cfg.RespawnDelay()),
		census:      make(map[gamemap.Category]int),
		config:      cfg,
		status: SessionStatus{
			State:      "waiting",
			MaxPlayers: cfg.Session.MaxPlayers,
		},
	}

	gen, err := NewGenerator(cfg.Map, seed, gamemap.WithObserver(session))
	if err != nil {
		return nil, err
	}
	session.gen = gen
	session.paths = gamemap.NewPathfinder(gen)

	log.Printf("Session %s created (max view radius %d)", id, cfg.Map.MaxViewRadius)
	return session, nil
}

// NewGenerator builds a map generator from configuration and a seed
func NewGenerator(mc config.MapConfig, seed int64, opts ...gamemap.Option) (*gamemap.Generator, error) {
	if names, weights := mc.ResourceKinds(); len(names) > 0 {
		table, err := gamemap.NewResourceTable(names, weights)
		if err != nil {
			return nil, fmt.Errorf("map.resources: %w", err)
		}
		opts = append(opts, gamemap.WithResources(table))
	}
	if mc.Decor.Enabled {
		opts = append(opts, gamemap.WithDecor(mc.Decor.Params(seed)))
	}
	gen, err := gamemap.NewGenerator(mc.Weights, rand.New(rand.NewSource(seed)), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create map generator: %w", err)
	}
	return gen, nil
}

// NodeCreated keeps a per-category census of the map; called with worldMu held
func (s *Session) NodeCreated(n *gamemap.Node) {
	s.census[n.Category]++
}

// View materializes and returns the nodes within radius of center
func (s *Session) View(center hex.Cube, radius int) ([]network.Node, int, error) {
	if radius > s.config.Map.MaxViewRadius {
		return nil, 0, fmt.Errorf("%w: %d > %d", ErrRadiusTooLarge, radius, s.config.Map.MaxViewRadius)
	}
	s.worldMu.Lock()
	defer s.worldMu.Unlock()

	nodes, err := s.gen.GetNodesInView(center, radius)
	if err != nil {
		return nil, 0, err
	}
	return network.NodesFromMap(nodes), s.gen.Len(), nil
}

// Path finds a route between two materialized nodes. found is false when no
// route exists.
func (s *Session) Path(from, to hex.Cube) (path []hex.Cube, found bool, err error) {
	if !from.Valid() || !to.Valid() {
		return nil, false, hex.ErrInvalidCube
	}
	s.worldMu.Lock()
	defer s.worldMu.Unlock()

	nodes, found, err := s.paths.FindPath(from, to)
	if err != nil || !found {
		return nil, found, err
	}
	path = make([]hex.Cube, len(nodes))
	for i, n := range nodes {
		path[i] = n.Coord
	}
	return path, true, nil
}

// Gather harvests the resource at coord on behalf of a player
func (s *Session) Gather(playerID string, coord hex.Cube, now time.Time) (network.Node, error) {
	s.worldMu.Lock()
	n, ok := s.gen.Node(coord)
	if !ok {
		s.worldMu.Unlock()
		return network.Node{}, fmt.Errorf("gather %s: %w", coord, gamemap.ErrNodeNotFound)
	}
	if _, err := s.harvest.Gather(n, now); err != nil {
		s.worldMu.Unlock()
		return network.Node{}, err
	}
	out := network.NodeFromMap(n)
	s.worldMu.Unlock()

	s.mu.Lock()
	if p, ok := s.players[playerID]; ok {
		p.Gathered++
	}
	s.mu.Unlock()
	return out, nil
}

// Replenish restores a depleted resource without waiting for its respawn
func (s *Session) Replenish(coord hex.Cube) (network.Node, error) {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()

	n, ok := s.gen.Node(coord)
	if !ok {
		return network.Node{}, fmt.Errorf("replenish %s: %w", coord, gamemap.ErrNodeNotFound)
	}
	if !s.harvest.Cancel(coord) {
		return network.Node{}, fmt.Errorf("replenish %s: %w", coord, ErrNotDepleted)
	}
	log.Printf("Session %s: resource at %s replenished early", s.ID, coord)
	return network.NodeFromMap(n), nil
}

// Tick advances the session clock and restores respawned resources
func (s *Session) Tick(now time.Time) []network.Node {
	s.worldMu.Lock()
	restored := s.harvest.Tick(now)
	out := network.NodesFromMap(restored)
	s.worldMu.Unlock()

	s.mu.Lock()
	s.status.ServerTick++
	s.mu.Unlock()
	return out
}

// Run ticks the session at the configured rate until ctx is cancelled
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.TickInterval())
	defer ticker.Stop()

	s.mu.Lock()
	s.status.State = "running"
	s.mu.Unlock()

	for {
		select {
		case now := <-ticker.C:
			if restored := s.Tick(now); len(restored) > 0 {
				s.BroadcastMessage(&network.ServerMessage{
					Type:    network.MsgTypeReplenished,
					Payload: network.ReplenishedPayload{Nodes: restored},
				})
			}
		case <-ctx.Done():
			log.Printf("Session %s stopped after %d ticks", s.ID, s.GetStatus().ServerTick)
			return
		}
	}
}

// AddPlayer adds a player to the session
func (s *Session) AddPlayer(player *models.Player, conn Sender) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[player.ID]; !exists && len(s.players) >= s.status.MaxPlayers {
		return ErrSessionFull
	}
	s.players[player.ID] = player
	s.connections[player.ID] = conn
	s.status.PlayerCount = len(s.players)

	log.Printf("Player %s (%s) joined session %s", player.Username, player.ID, s.ID)
	return nil
}

// RemovePlayer removes a player from the session. It reports whether the
// player was present.
func (s *Session) RemovePlayer(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, exists := s.players[playerID]
	if !exists {
		return false
	}
	log.Printf("Player %s (%s) left session %s", player.Username, playerID, s.ID)
	delete(s.players, playerID)
	delete(s.connections, playerID)
	s.status.PlayerCount = len(s.players)
	return true
}

// GetPlayer retrieves a player by ID
func (s *Session) GetPlayer(playerID string) (*models.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	player, exists := s.players[playerID]
	return player, exists
}

// MovePlayer records the player's current view center
func (s *Session) MovePlayer(playerID string, pos hex.Cube) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.players[playerID]; ok {
		p.Position = pos
		p.LastSeen = time.Now()
	}
}

// BroadcastMessage sends a message to all connected players
func (s *Session) BroadcastMessage(msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		conn.SendMessage(msg)
	}
}

// BroadcastExcept sends a message to all players except the specified connection
func (s *Session) BroadcastExcept(exclude Sender, msg *network.ServerMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		if conn != exclude {
			conn.SendMessage(msg)
		}
	}
}

// GetStatus returns the current session status
func (s *Session) GetStatus() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := s.status
	status.Uptime = int64(time.Since(s.CreatedAt).Seconds())
	return status
}

// NetworkStatus returns the status in its wire form
func (s *Session) NetworkStatus() network.SessionStatus {
	st := s.GetStatus()
	s.worldMu.Lock()
	size := s.gen.Len()
	census := make(map[string]int, len(s.census))
	for cat, n := range s.census {
		census[cat.String()] = n
	}
	respawning := s.harvest.Pending()
	var nextRespawn int64
	if at, ok := s.harvest.NextReady(); ok {
		nextRespawn = at.Unix()
	}
	s.worldMu.Unlock()
	return network.SessionStatus{
		State:       st.State,
		PlayerCount: st.PlayerCount,
		MaxPlayers:  st.MaxPlayers,
		ServerTick:  st.ServerTick,
		Uptime:      st.Uptime,
		MapSize:     size,
		Census:      census,
		Respawning:  respawning,
		NextRespawn: nextRespawn,
	}
}
