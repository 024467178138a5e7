package server

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gravitas-games/hexlands/internal/gamemap"
	"github.com/gravitas-games/hexlands/internal/harvest"
	"github.com/gravitas-games/hexlands/internal/network"
	"github.com/gravitas-games/hexlands/pkg/hex"
	"github.com/gravitas-games/hexlands/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID string

	ws      *websocket.Conn
	server  *Server
	session *Session

	// Player information (set after authentication)
	player        *models.Player
	authenticated bool
	joined        bool

	// Buffered channel for outbound messages. sendMu also guards joined,
	// which Close reads from whichever goroutine closes first.
	send   chan []byte
	sendMu sync.Mutex
	closed bool
}

// NewConnection creates a new connection bound to the server's session
func NewConnection(ws *websocket.Conn, server *Server) *Connection {
	return &Connection{
		ID:      uuid.NewString(),
		ws:      ws,
		server:  server,
		session: server.session,
		send:    make(chan []byte, 256),
	}
}

// Handle manages the connection lifecycle
func (c *Connection) Handle() {
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()
	c.readPump() // Blocking
}

// readPump pumps messages from the WebSocket connection to the server
func (c *Connection) readPump() {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var clientMsg network.ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Failed to parse client message: %v", err)
			c.SendError(network.ErrCodeInvalidMessage, "Failed to parse message")
			continue
		}

		c.handleMessage(&clientMsg)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.server.ctx.Done():
			return
		}
	}
}

// handleMessage routes messages to appropriate handlers
func (c *Connection) handleMessage(msg *network.ClientMessage) {
	if !c.authenticated || c.player == nil {
		c.SendError(network.ErrCodeNotAuthenticated, "Connection not authenticated")
		return
	}

	switch msg.Type {
	case network.MsgTypeJoin:
		c.handleJoin()
	case network.MsgTypeLeave:
		c.handleLeave()
	case network.MsgTypePing:
		c.handlePing()
	case network.MsgTypeView:
		c.handleView(msg.Payload)
	case network.MsgTypePath:
		c.handlePath(msg.Payload)
	case network.MsgTypeGather:
		c.handleGather(msg.Payload)
	case network.MsgTypeReplenish:
		c.handleReplenish(msg.Payload)
	default:
		log.Printf("Unknown message type from %s: %s", c.player.Username, msg.Type)
		c.SendError(network.ErrCodeUnknownType, "Unknown message type")
	}
}

// handleJoin handles player join requests
func (c *Connection) handleJoin() {
	c.player.Connected = true
	c.player.ConnectedAt = time.Now()
	c.player.SessionID = c.session.ID

	if err := c.session.AddPlayer(c.player, c); err != nil {
		log.Printf("Failed to add player to session: %v", err)
		c.SendError(network.ErrCodeJoinFailed, err.Error())
		return
	}
	if !c.markJoined(true) {
		// Closed while joining; Close has already run its leave.
		c.session.RemovePlayer(c.player.ID)
		return
	}

	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeWelcome,
		Payload: network.WelcomePayload{
			PlayerID:      c.player.ID,
			Username:      c.player.Username,
			SessionID:     c.session.ID,
			SessionStatus: c.session.NetworkStatus(),
		},
	})

	c.session.BroadcastExcept(c, &network.ServerMessage{
		Type: network.MsgTypePlayerJoined,
		Payload: network.PlayerJoinedPayload{
			PlayerID: c.player.ID,
			Username: c.player.Username,
		},
	})
}

// handleLeave handles player leave requests
func (c *Connection) handleLeave() {
	if c.player == nil || !c.session.RemovePlayer(c.player.ID) {
		return
	}
	c.markJoined(false)
	c.session.BroadcastMessage(&network.ServerMessage{
		Type: network.MsgTypePlayerLeft,
		Payload: network.PlayerLeftPayload{
			PlayerID: c.player.ID,
			Username: c.player.Username,
		},
	})
}

// handlePing handles ping requests
func (c *Connection) handlePing() {
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypePong,
		Payload: map[string]interface{}{"timestamp": time.Now().Unix()},
	})
}

func (c *Connection) handleView(payload json.RawMessage) {
	var req network.ViewPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError(network.ErrCodeInvalidMessage, "Invalid view request")
		return
	}
	nodes, size, err := c.session.View(req.Center, req.Radius)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.session.MovePlayer(c.player.ID, req.Center)
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeNodes,
		Payload: network.NodesPayload{
			Center:  req.Center,
			Radius:  req.Radius,
			Nodes:   nodes,
			MapSize: size,
		},
	})
}

func (c *Connection) handlePath(payload json.RawMessage) {
	var req network.PathPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError(network.ErrCodeInvalidMessage, "Invalid path request")
		return
	}
	path, found, err := c.session.Path(req.From, req.To)
	if err != nil {
		c.sendFailure(err)
		return
	}
	if !found {
		c.SendMessage(&network.ServerMessage{
			Type:    network.MsgTypeNoPath,
			Payload: network.NoPathPayload{From: req.From, To: req.To},
		})
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypePathResult,
		Payload: network.PathResultPayload{
			From: req.From,
			To:   req.To,
			Cost: len(path) - 1,
			Path: path,
		},
	})
}

func (c *Connection) handleGather(payload json.RawMessage) {
	var req network.GatherPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError(network.ErrCodeInvalidMessage, "Invalid gather request")
		return
	}
	node, err := c.session.Gather(c.player.ID, req.Coord, time.Now())
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.SendMessage(&network.ServerMessage{
		Type:    network.MsgTypeGathered,
		Payload: network.GatheredPayload{Node: node},
	})
}

// handleReplenish restores a depleted resource for map admins and tells
// every player about it
func (c *Connection) handleReplenish(payload json.RawMessage) {
	if !c.player.HasPermission(models.PermissionMapAdmin) {
		c.SendError(network.ErrCodeForbidden, "Replenish requires map admin permission")
		return
	}
	var req network.ReplenishPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		c.SendError(network.ErrCodeInvalidMessage, "Invalid replenish request")
		return
	}
	node, err := c.session.Replenish(req.Coord)
	if err != nil {
		c.sendFailure(err)
		return
	}
	c.session.BroadcastMessage(&network.ServerMessage{
		Type:    network.MsgTypeReplenished,
		Payload: network.ReplenishedPayload{Nodes: []network.Node{node}},
	})
}

// sendFailure maps a session error onto a protocol error code
func (c *Connection) sendFailure(err error) {
	c.SendError(errorCode(err), err.Error())
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, hex.ErrInvalidCube):
		return network.ErrCodeInvalidCoord
	case errors.Is(err, gamemap.ErrNodeNotFound):
		return network.ErrCodeNodeNotFound
	case errors.Is(err, ErrRadiusTooLarge):
		return network.ErrCodeRadiusTooLarge
	case errors.Is(err, harvest.ErrNotResource):
		return network.ErrCodeNotResource
	case errors.Is(err, harvest.ErrDepleted):
		return network.ErrCodeDepleted
	case errors.Is(err, ErrNotDepleted):
		return network.ErrCodeNotDepleted
	default:
		return network.ErrCodeInternal
	}
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *network.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("Send buffer full for %s, dropping %s", c.ID, msg.Type)
	}
}

// SendError sends an error message to the client
func (c *Connection) SendError(code, message string) {
	c.SendMessage(&network.ServerMessage{
		Type: network.MsgTypeError,
		Payload: network.ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Close leaves the session and closes the connection; safe to call twice
func (c *Connection) Close() {
	c.sendMu.Lock()
	if c.closed {
		c.sendMu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	joined := c.joined
	c.sendMu.Unlock()

	if joined {
		c.handleLeave()
	}
	c.ws.Close()
}

// markJoined records the join state under sendMu, which Close also holds.
// Joining fails once the connection is closed.
func (c *Connection) markJoined(joined bool) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if joined && c.closed {
		return false
	}
	c.joined = joined
	return true
}
