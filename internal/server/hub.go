package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/editor"
	"github.com/zeusync/zeuscene/internal/runtime"
)

const sendBufferSize = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// client is one connected renderer or UI.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub fans frames out to websocket clients and applies the commands they send.
// It is a runtime.FrameSink.
type Hub struct {
	editor         *editor.Editor
	logger         log.Log
	writeTimeout   time.Duration
	maxMessageSize int64

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool

	dropped atomic.Uint64
}

func NewHub(e *editor.Editor, cfg Config, logger log.Log) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Hub{
		editor:         e,
		logger:         logger.With(log.String("component", "hub")),
		writeTimeout:   cfg.WriteTimeout,
		maxMessageSize: cfg.MaxMessageSize,
		clients:        make(map[string]*client),
	}
}

func (h *Hub) Name() string { return "websocket" }

// SendFrame queues the frame for every client. A client whose buffer is full
// misses the frame; frames are full snapshots, so the next one catches it up.
func (h *Hub) SendFrame(_ context.Context, f runtime.Frame) error {
	h.broadcast(f.Payload)
	return nil
}

func (h *Hub) broadcast(p []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- p:
		case <-c.done:
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many frames were skipped for slow clients.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.close()
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}

	// The current scene goes out before the client can see any frame.
	first, err := runtime.EncodeFrame(h.editor.Snapshot())
	if err != nil {
		h.logger.Error("Failed to encode snapshot", log.Error(err))
		_ = conn.Close()
		return
	}
	c.send <- first.Payload

	if !h.register(c) {
		_ = conn.Close()
		return
	}
	logger := h.logger.With(log.String("client_id", c.id), log.String("remote_addr", conn.RemoteAddr().String()))
	logger.Info("Client connected")

	go h.writeLoop(c, logger)
	h.readLoop(c, logger)

	h.unregister(c)
	logger.Info("Client disconnected")
}

func (h *Hub) readLoop(c *client, logger log.Log) {
	if h.maxMessageSize > 0 {
		c.conn.SetReadLimit(h.maxMessageSize)
	}
	for {
		_, p, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Read failed", log.Error(err))
			}
			return
		}

		reply := h.handleCommand(p, logger)
		b, err := json.Marshal(reply)
		if err != nil {
			logger.Error("Failed to encode reply", log.Error(err))
			continue
		}
		select {
		case c.send <- b:
		case <-c.done:
			return
		}
	}
}

func (h *Hub) handleCommand(p []byte, logger log.Log) Reply {
	cmd, err := DecodeCommand(p)
	if err != nil {
		logger.Debug("Rejected message", log.Error(err))
		return errorReply(cmd, err)
	}
	reply, err := Apply(h.editor, cmd)
	if err != nil {
		logger.Debug("Command failed", log.String("action", cmd.Action), log.Error(err))
		return errorReply(cmd, err)
	}
	return reply
}

func (h *Hub) writeLoop(c *client, logger log.Log) {
	for {
		select {
		case <-c.done:
			return
		case p := <-c.send:
			if h.writeTimeout > 0 {
				_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
				logger.Warn("Write failed", log.Error(err))
				c.close()
				return
			}
		}
	}
}
