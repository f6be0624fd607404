// internal/websocket/hub.go
package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event types pushed to admin clients.
const (
	EventSessionEnded = "session:ended"
	EventNavigate     = "session:navigate"
)

// Message is the envelope sent to connected admin tabs.
type Message struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Hub fans session events out to every open tab of an admin session.
// Clients register under their session token, so a sign-out or expiry
// in one tab reaches the others immediately.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*Client]bool // token -> connections
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[c.token]
	if !ok {
		conns = make(map[*Client]bool)
		h.clients[c.token] = conns
	}
	conns[c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[c.token]
	if !ok {
		return
	}
	if conns[c] {
		delete(conns, c)
		close(c.send)
	}
	if len(conns) == 0 {
		delete(h.clients, c.token)
	}
}

// ForceLogout tells every tab of the session that it has ended.
func (h *Hub) ForceLogout(token, reason string) {
	h.broadcast(token, Message{
		Event: EventSessionEnded,
		Data:  map[string]interface{}{"reason": reason},
	})
}

// Navigate pushes a client-side redirect, e.g. to the login screen
// after a detected expiry.
func (h *Hub) Navigate(token, path string) {
	h.broadcast(token, Message{
		Event: EventNavigate,
		Data:  map[string]interface{}{"path": path},
	})
}

func (h *Hub) broadcast(token string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal hub message", zap.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*Client, 0, len(h.clients[token]))
	for c := range h.clients[token] {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		select {
		case c.send <- data:
		default:
			// Slow consumer; drop the connection rather than block.
			h.unregister(c)
		}
	}
}
