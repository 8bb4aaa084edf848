// Package revalidate tells open browser tabs that the data behind a page
// path changed so they refetch it.
package revalidate

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"store-it/internal/logger"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Event is the message pushed to subscribers.
type Event struct {
	Type string    `json:"type"`
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

type client struct {
	subscriber string
	conn       *websocket.Conn
	send       chan Event
	once       sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans revalidation events out to connected WebSocket clients.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub accepts connections whose Origin passes checkOrigin; nil allows
// same-host origins only.
func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

// Revalidate publishes path to the clients whose subscriber is in audience.
// Clients whose buffer is full are disconnected rather than waited on.
func (h *Hub) Revalidate(path string, audience []string) {
	if path == "" || len(audience) == 0 {
		return
	}
	want := make(map[string]struct{}, len(audience))
	for _, s := range audience {
		want[s] = struct{}{}
	}
	ev := Event{Type: "revalidate", Path: path, At: time.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if _, ok := want[c.subscriber]; !ok {
			continue
		}
		select {
		case c.send <- ev:
		default:
			delete(h.clients, c)
			c.close()
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection upgrades the request and serves subscriber until it
// disconnects. Callers authenticate the request first.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, subscriber string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.GetLogger().WarnCtx(logger.EventAPIRequest, "websocket upgrade failed",
			map[string]any{"error": err.Error(), "remote_addr": r.RemoteAddr},
			"", logger.RequestID(r.Context()), logger.Actor(r.Context()))
		return
	}
	c := &client{subscriber: subscriber, conn: conn, send: make(chan Event, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// readLoop discards client messages and notices disconnects.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
