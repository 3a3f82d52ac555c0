package hub

import (
	"sync"

	"github.com/google/uuid"
)

type Writer interface {
	Write(message []byte) error
	Close() error
}

type Connection struct {
	ID     string
	Writer Writer
}

func NewConnection(w Writer) *Connection {
	return &Connection{ID: uuid.NewString(), Writer: w}
}

// Hub fans state updates out to every subscribed websocket.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

func New() *Hub {
	return &Hub{connections: make(map[string]*Connection)}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn.ID] = conn
}

func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[conn.ID] == conn {
		delete(h.connections, conn.ID)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections))
	for _, c := range h.connections {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	var failed []*Connection
	for _, c := range conns {
		if err := c.Writer.Write(message); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		_ = c.Writer.Close()
		h.Unregister(c)
	}
}
