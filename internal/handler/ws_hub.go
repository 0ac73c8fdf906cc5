package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type    string `json:"type"`
	WorldID int64  `json:"world_id"`
	Data    any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action  string `json:"action"` // "subscribe" or "unsubscribe"
	WorldID int64  `json:"world_id"`
}

// WSConn wraps a WebSocket connection with its user and subscriptions.
type WSConn struct {
	conn   *websocket.Conn
	userID int64
	send   chan []byte
}

// Hub manages WebSocket connections and world-channel subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	worlds      map[int64]map[*WSConn]bool // worldID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		worlds:      make(map[int64]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	for worldID, conns := range h.worlds {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.worlds, worldID)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a world channel.
func (h *Hub) Subscribe(c *WSConn, worldID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.worlds[worldID] == nil {
		h.worlds[worldID] = make(map[*WSConn]bool)
	}
	h.worlds[worldID][c] = true
}

// Unsubscribe removes a connection from a world channel.
func (h *Hub) Unsubscribe(c *WSConn, worldID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.worlds[worldID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.worlds, worldID)
		}
	}
}

// BroadcastToWorld sends an event to all connections subscribed to a world.
func (h *Hub) BroadcastToWorld(worldID int64, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Int64("worldId", worldID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.worlds[worldID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Int64("userId", c.userID).Int64("worldId", worldID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// BroadcastToUser sends an event to a specific user across all their connections.
func (h *Hub) BroadcastToUser(userID int64, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Int64("userId", userID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		if c.userID == userID {
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// WorldSubscriberCount returns the number of connections subscribed to a world.
func (h *Hub) WorldSubscriberCount(worldID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.worlds[worldID])
}
