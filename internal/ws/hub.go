// internal/ws/hub.go
//
// Connection hub: upgrades HTTP requests, assigns each socket an opaque
// identity, and implements game.Sender so the coordinator can address
// broadcasts to individual connections. A slow consumer never blocks a
// room mutation — sends are non-blocking onto the client's buffered
// channel and an overflowing connection is dropped.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wordduel/server/internal/game"
)

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	coord    *game.Coordinator
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client runs on a different origin in dev.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// SetCoordinator wires the game coordinator in. Separate from NewHub
// because hub and coordinator reference each other (the hub is the
// coordinator's Sender).
func (h *Hub) SetCoordinator(c *game.Coordinator) { h.coord = c }

// ServeWS upgrades the request and runs the connection's pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("ws upgrade failed")
		return
	}

	c := newClient(uuid.NewString(), h, conn)
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Info().Str("player", c.id).Str("remote", r.RemoteAddr).Msg("connection opened")

	go c.writePump()
	c.readPump()
}

// Send implements game.Sender. Unknown recipients are dropped silently;
// the player may have disconnected between mutation and fan-out.
func (h *Hub) Send(playerID string, ev game.Event) {
	h.mu.RLock()
	c := h.clients[playerID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error().Err(err).Str("type", ev.Type).Msg("marshal event")
		return
	}
	c.enqueue(data)
}

// ClientCount reports live connections (diagnostics).
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// drop unregisters a client; safe to call more than once.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()
}
