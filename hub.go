package main

import "sync"

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub tracks connected clients, enforces connection limits and attaches
// clients to lobbies
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]bool
	analytics *Analytics
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a new Hub. analytics may be nil.
func NewHub(analytics *Analytics) *Hub {
	return &Hub{
		clients:   make(map[*Client]bool),
		analytics: analytics,
		ipConns:   make(map[string]int),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Attach hands a connected client to its lobby
func (h *Hub) Attach(g *Game, c *Client) error {
	c.game = g
	if !g.Post(Join{ConnID: c.id, Conn: c}) {
		return ErrLobbyClosed
	}
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.analytics.SetConcurrentPeers(n)
	return nil
}

// Detach forgets a client and tells its lobby the connection is gone
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	h.analytics.SetConcurrentPeers(n)
	if c.game != nil {
		c.game.Post(Leave{ConnID: c.id})
	}
}

// CloseAll closes every client connection
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.Close()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
