package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Hub tracks connected plugin clients and broadcasts commands to them.
// Clients answer long-running commands with a bare "idle" text message once
// they are done.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[int]*websocket.Conn
	nextID int

	idle chan struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 20,
			WriteBufferSize: 1 << 20,
			// The plugin UI runs inside the design tool's browser frame on
			// an opaque origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: map[int]*websocket.Conn{},
		idle:  make(chan struct{}, 1),
	}
}

// ServeWS upgrades the connection and pumps client messages until it drops.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.conns[id] = conn
	h.mu.Unlock()
	h.log.Info("Client connected", zap.Int("socket", id))

	defer func() {
		h.mu.Lock()
		delete(h.conns, id)
		h.mu.Unlock()
		conn.Close()
		h.log.Info("Client disconnected", zap.Int("socket", id))
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("Socket read ended", zap.Int("socket", id), zap.Error(err))
			}
			return
		}
		if len(msg) < 200 {
			h.log.Debug("Client message", zap.Int("socket", id), zap.ByteString("message", msg))
		} else {
			h.log.Debug("Client message", zap.Int("socket", id), zap.Int("bytes", len(msg)))
		}
		if string(msg) == "idle" {
			select {
			case h.idle <- struct{}{}:
			default:
			}
		}
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Broadcast sends a JSON message to every connected client.
func (h *Hub) Broadcast(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	var errs error
	for id, conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Error("Broadcast failed", zap.Int("socket", id), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// WaitIdle blocks until some client reports idle or the context ends.
func (h *Hub) WaitIdle(ctx context.Context) error {
	select {
	case <-h.idle:
		h.log.Debug("Got the idle signal")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// command is the broadcast envelope understood by plugin clients.
type command struct {
	Action string `json:"action"`
	Force  bool   `json:"force,omitempty"`
	Path   string `json:"path,omitempty"`
	Data   string `json:"data,omitempty"`
}
