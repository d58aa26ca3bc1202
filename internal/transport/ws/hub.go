package ws

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"live-quiz-service/internal/domain"
)

// envelope is the wire frame for every message in both directions.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// client is one live websocket connection with a buffered outbound queue.
type client struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan envelope
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error for %s: %v", c.id, err)
			return
		}
	}
}

// Hub implements app.Publisher: it tracks connections, their broadcast
// group membership by game code, and fans events out without ever
// blocking on a slow client.
type Hub struct {
	mu      sync.RWMutex
	clients map[domain.ConnID]*client
	groups  map[string]map[domain.ConnID]struct{}
	member  map[domain.ConnID]string
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[domain.ConnID]*client),
		groups:  make(map[string]map[domain.ConnID]struct{}),
		member:  make(map[domain.ConnID]string),
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// remove drops a connection entirely, detaching it from its group and
// closing its send queue. Idempotent.
func (h *Hub) remove(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(id)
}

func (h *Hub) dropLocked(id domain.ConnID) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	h.leaveLocked(id)
	close(c.send)
}

func (h *Hub) leaveLocked(id domain.ConnID) {
	code, ok := h.member[id]
	if !ok {
		return
	}
	delete(h.member, id)
	if group, ok := h.groups[code]; ok {
		delete(group, id)
		if len(group) == 0 {
			delete(h.groups, code)
		}
	}
}

// Subscribe attaches the connection to the broadcast group for code.
// A connection belongs to at most one group at a time.
func (h *Hub) Subscribe(conn domain.ConnID, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	h.leaveLocked(conn)
	group, ok := h.groups[code]
	if !ok {
		group = make(map[domain.ConnID]struct{})
		h.groups[code] = group
	}
	group[conn] = struct{}{}
	h.member[conn] = code
}

// Unsubscribe detaches the connection from its group, keeping the
// connection itself alive.
func (h *Hub) Unsubscribe(conn domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(conn)
}

// Publish fans an event out to every connection in the code's group.
// Clients whose queue is full are dropped rather than blocking the rest.
func (h *Hub) Publish(code, event string, payload any) {
	msg := envelope{Type: event, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.groups[code] {
		c, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case c.send <- msg:
		default:
			log.Printf("ws client %s too slow, dropping", id)
			h.dropLocked(id)
		}
	}
}

// SendTo delivers an event to a single connection.
func (h *Hub) SendTo(conn domain.ConnID, event string, payload any) {
	msg := envelope{Type: event, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		log.Printf("ws client %s too slow, dropping", conn)
		h.dropLocked(conn)
	}
}
