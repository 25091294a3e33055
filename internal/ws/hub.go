package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub keeps the set of connected ops-dashboard clients. There is a single
// broadcast group; every client sees every trending event.
type Hub struct {
	mu    sync.RWMutex
	conns map[*clientConn]struct{}
}

func NewHub() *Hub { return &Hub{conns: map[*clientConn]struct{}{}} }

func (h *Hub) Join(c *clientConn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Leave(c *clientConn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.rawConn.Close()
}

// Broadcast is called by the Redis subscriber.
func (h *Hub) Broadcast(msg []byte) {
	// Take a quick snapshot of the current connections
	h.mu.RLock()
	conns := make([]*clientConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	// Do the I/O outside the lock
	var failed []*clientConn
	for _, c := range conns {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		h.Leave(c)
	}
}
