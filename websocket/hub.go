package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Update types pushed to subscribers.
const (
	UpdateTypeConnected     = "connected"
	UpdateTypeGiveawayState = "giveaway_state"
)

// StateUpdate is a message sent over WebSocket. Data carries the current
// giveaway window state.
type StateUpdate struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Client represents a connected subscriber. All writes go through Send;
// gorilla/websocket allows only one concurrent writer per connection, and the
// connect-time state push can race a hub broadcast.
type Client struct {
	Conn *websocket.Conn

	writeMu sync.Mutex
}

// Send writes a single update to the subscriber.
func (c *Client) Send(update StateUpdate) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(update)
}

// Hub maintains the set of connected clients and broadcasts giveaway window
// changes to all of them. Signup pages subscribe so they can flip between the
// entry form and the closed message without polling.
type Hub struct {
	subscribers map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mu          sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.subscribers[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[client]; ok {
				delete(h.subscribers, client)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// Register adds a client to the subscriber set.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and closes its connection.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast sends an update to every connected subscriber. Write failures are
// ignored here; the read loop notices the dead connection and unregisters it.
func (h *Hub) Broadcast(update StateUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.subscribers {
		client.Send(update)
	}
}

// SubscriberCount returns the number of connected clients.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
