package websocket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"powerpulse/models"
)

// Client is one live-event subscriber
type Client struct {
	ID      string
	UserID  string
	Conn    *websocket.Conn
	writeMu sync.Mutex
}

// SafeWriteJSON serializes writes to the connection
func (c *Client) SafeWriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub broadcasts live events to connected clients. It is an owned value
// constructed in main and injected where needed, not a package singleton.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Register adds a subscriber
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	log.Printf("Live-event client %s registered. Total clients: %d", client.ID, len(h.clients))
}

// Unregister drops a subscriber and closes its connection
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if client.Conn != nil {
		client.Conn.Close()
	}
	log.Printf("Live-event client %s unregistered. Total clients: %d", client.ID, len(h.clients))
}

// Broadcast pushes the event to every connected client. At-most-once and
// best-effort; nobody connected means the event is dropped.
func (h *Hub) Broadcast(event models.LiveEvent) {
	h.mu.RLock()
	stale := []*Client{}
	for client := range h.clients {
		if err := client.SafeWriteJSON(event); err != nil {
			log.Printf("Error broadcasting to client %s: %v", client.ID, err)
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.Unregister(client)
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
