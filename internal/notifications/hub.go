package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"foodloop/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// Hub is a websocket hub that maps chat rooms to connected Clients. A
// client may be joined to any number of rooms it participates in.
type Hub struct {
	mu          sync.RWMutex
	conns       map[uint]map[*Client]struct{} // userID -> clients
	rooms       map[uint]map[*Client]struct{} // chatID -> clients
	clientRooms map[*Client]map[uint]struct{}
	totalConns  int
	shutdown    chan struct{}
	done        chan struct{}
}

// NewHub creates a new Hub instance for managing chat rooms.
func NewHub() *Hub {
	return &Hub{
		conns:       make(map[uint]map[*Client]struct{}),
		rooms:       make(map[uint]map[*Client]struct{}),
		clientRooms: make(map[*Client]map[uint]struct{}),
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "chat hub" }

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}

	if len(m) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnections.Inc()

	return client, nil
}

// UnregisterClient removes a client from the hub and from every room it joined.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			observability.WebSocketConnections.Dec()
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}

	for chatID := range h.clientRooms[client] {
		h.removeFromRoomLocked(chatID, client)
	}
	delete(h.clientRooms, client)
}

// JoinRoom adds the client to a chat room's recipient set.
func (h *Hub) JoinRoom(chatID uint, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[chatID] = room
	}
	if _, exists := room[client]; exists {
		return
	}
	room[client] = struct{}{}

	joined, ok := h.clientRooms[client]
	if !ok {
		joined = make(map[uint]struct{})
		h.clientRooms[client] = joined
	}
	joined[chatID] = struct{}{}
	observability.WebSocketRoomMembers.Inc()
}

// LeaveRoom removes the client from a chat room's recipient set.
func (h *Hub) LeaveRoom(chatID uint, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomLocked(chatID, client)
	if joined, ok := h.clientRooms[client]; ok {
		delete(joined, chatID)
	}
}

func (h *Hub) removeFromRoomLocked(chatID uint, client *Client) {
	room, ok := h.rooms[chatID]
	if !ok {
		return
	}
	if _, exists := room[client]; !exists {
		return
	}
	delete(room, client)
	observability.WebSocketRoomMembers.Dec()
	if len(room) == 0 {
		delete(h.rooms, chatID)
	}
}

// BroadcastToRoom sends a payload to every client joined to the room,
// including the sender's own connections.
func (h *Hub) BroadcastToRoom(chatID uint, payload string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.rooms[chatID]; ok {
		data := []byte(payload)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// RoomSize reports how many clients are joined to a room.
func (h *Hub) RoomSize(chatID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

// StartWiring connects the Notifier to this hub: it subscribes to the
// chat room pattern and forwards payloads to joined connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartRoomSubscriber(ctx, func(channel, payload string) {
		if !strings.HasPrefix(channel, "chat:room:") {
			log.Printf("invalid chat channel: %s", channel)
			return
		}
		var chatID uint
		_, err := fmt.Sscanf(channel, "chat:room:%d", &chatID)
		if err != nil {
			log.Printf("invalid chat channel: %s", channel)
			return
		}
		h.BroadcastToRoom(chatID, payload)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	for userID, userConns := range h.conns {
		for client := range userConns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for user %d: %v", userID, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for user %d: %v", userID, err)
			}
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.rooms = make(map[uint]map[*Client]struct{})
	h.clientRooms = make(map[*Client]map[uint]struct{})
	h.mu.Unlock()

	close(h.done)

	return nil
}
