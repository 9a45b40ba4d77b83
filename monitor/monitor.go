// Package monitor implements an optional live-monitor side channel: a
// residual/step broadcast over a local WebSocket that a dashboard can
// subscribe to, never consulted by the numerics. It is grounded on
// Orange-ke-TemperatureFieldCalculation_Go's server/hub.go pattern (a
// hub channel feeding concurrent WriteJSON calls to each subscriber),
// adapted from that repo's request/response hub to a pure broadcast:
// there is nothing for a dashboard client to request, a coupling driver
// only ever pushes.
package monitor

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Update is one step's worth of residual/progress information, pushed by
// a coupling driver after each outer iteration.
type Update struct {
	Step      int                `json:"step"`
	Time      float64            `json:"time"`
	Residuals map[string]float64 `json:"residuals"`
}

// Sink receives Updates. Every driver in package drivers takes an
// optional Sink; a nil Sink is a no-op, so numerics never depend on one
// being attached.
type Sink interface {
	Push(u Update)
}

// Hub is a Sink that fans Updates out to every currently connected
// WebSocket client. Slow or gone clients are dropped rather than allowed
// to block a push.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan Update
}

// NewHub constructs an empty Hub. origin, if non-empty, is the only
// allowed WebSocket Origin header value; an empty origin allows any
// (suitable for local/dev use only).
func NewHub(origin string) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return origin == "" || r.Header.Get("Origin") == origin
			},
		},
	}
	return h
}

// ServeWS upgrades an HTTP request to a WebSocket and registers the
// resulting connection as a broadcast subscriber until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("monitor: websocket upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan Update, 16)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
}

func (h *Hub) writeLoop(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.conn.Close()
	}()
	for u := range c.send {
		if err := c.conn.WriteJSON(u); err != nil {
			return
		}
	}
}

// Push implements Sink: it fans u out to every connected client without
// blocking on any single slow one.
func (h *Hub) Push(u Update) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- u:
		default:
			logrus.Warn("monitor: dropping update for slow client")
		}
	}
}
