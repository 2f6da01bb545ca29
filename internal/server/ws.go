package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xkilldash9x/beacon-cli/internal/resolver"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The debug feed binds to loopback by default; overlays served from
	// other dev origins still need the handshake to succeed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	sendChannelSize = 64
)

// debugEvent is the wire form of a resolution phase event.
type debugEvent struct {
	Phase     string    `json:"phase"`
	Selector  string    `json:"selector"`
	Matches   int       `json:"matches"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// debugHub fans resolution phase events out to connected overlay clients.
// Slow clients are dropped rather than allowed to stall a resolution.
type debugHub struct {
	log *zap.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

type wsClient struct {
	hub  *debugHub
	conn *websocket.Conn
	send chan debugEvent
}

func newDebugHub(log *zap.Logger) *debugHub {
	return &debugHub{
		log:     log.Named("debug-feed"),
		clients: make(map[*wsClient]struct{}),
	}
}

// run blocks until the context is canceled, then closes every client.
func (h *debugHub) run(ctx context.Context) {
	<-ctx.Done()
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
}

// broadcast is installed as the resolver's trace hook for debug invocations.
func (h *debugHub) broadcast(ev resolver.PhaseEvent) {
	out := debugEvent{
		Phase:     string(ev.Phase),
		Selector:  ev.Selector,
		Matches:   ev.Matches,
		Detail:    ev.Detail,
		Timestamp: time.Now().UTC(),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- out:
		default:
			// Backpressure: drop the laggard, not the event stream.
			close(c.send)
			delete(h.clients, c)
		}
	}
}

func (h *debugHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{hub: h, conn: conn, send: make(chan debugEvent, sendChannelSize)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("Debug overlay connected", zap.String("remoteAddr", r.RemoteAddr))

	go client.writePump()
	client.readPump()
}

// readPump discards inbound frames; its job is servicing pongs and noticing
// closure so the client can be unregistered.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(1024)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("Debug overlay closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *debugHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}
