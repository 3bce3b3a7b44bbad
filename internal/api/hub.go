package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/weibeld/github-projects-dashboard/internal/events"
	"github.com/weibeld/github-projects-dashboard/internal/view"
)

const (
	clientBufferSize = 16
	pingInterval     = 30 * time.Second
)

// Message types pushed to websocket clients
const (
	MessageBoard   = "board"
	MessageCleared = "cleared"
)

// Message is one push to a websocket client.
type Message struct {
	Type     string      `json:"type"`
	Sequence int64       `json:"sequence"`
	Source   string      `json:"source,omitempty"`
	Query    string      `json:"query,omitempty"`
	Board    *view.Board `json:"board,omitempty"`
}

// clientMessage is what a client may send: a new filter query.
type clientMessage struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

// BoardSource is the part of the application the hub pushes from.
type BoardSource interface {
	Board(query string) (view.Board, error)
	Subscribe(buffer int) (<-chan events.Event, func())
}

// Conn is the part of a websocket connection the hub uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	conn      Conn
	send      chan []byte
	mu        sync.Mutex // Protects query
	query     string
	closeOnce sync.Once
}

func (c *client) getQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *client) setQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

// Hub pushes the projected board to every connected client whenever the
// cache changes. Each client sees the board through its own filter query.
type Hub struct {
	source  BoardSource
	logger  *slog.Logger
	metrics *Metrics

	mu      sync.RWMutex
	clients map[*client]bool
	seq     int64 // last event sequence seen, guarded by mu
}

// NewHub creates a hub fed by source.
func NewHub(source BoardSource, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		source:  source,
		logger:  logger,
		metrics: NewMetrics(),
		clients: make(map[*client]bool),
	}
}

func (h *Hub) Metrics() *Metrics { return h.metrics }

// Start subscribes to cache events and forwards them to clients until ctx
// is done. The subscription is in place when Start returns.
func (h *Hub) Start(ctx context.Context) {
	ch, cancel := h.source.Subscribe(64)
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				h.closeAll()
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				h.metrics.EventsReceived.Add(1)
				h.broadcast(ev)
			}
		}
	}()
}

// broadcast renders one message per distinct query and queues it on every
// client. A full queue drops the message; the next event carries the whole
// board anyway.
func (h *Hub) broadcast(ev events.Event) {
	h.mu.Lock()
	h.seq = ev.SequenceID
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	rendered := make(map[string][]byte)
	for _, c := range clients {
		q := c.getQuery()
		data, ok := rendered[q]
		if !ok {
			data = h.render(ev.SequenceID, ev.Source, q)
			rendered[q] = data
		}
		if data == nil {
			continue
		}
		if !h.sendToClient(c, data) {
			h.metrics.MessagesDropped.Add(1)
			h.logger.Warn("client send queue full, message dropped", "sequence", ev.SequenceID)
		}
	}
}

func (h *Hub) render(seq int64, source, query string) []byte {
	msg := Message{Type: MessageBoard, Sequence: seq, Source: source, Query: query}
	board, err := h.source.Board(query)
	if err != nil {
		msg = Message{Type: MessageCleared, Sequence: seq, Source: source}
	} else {
		msg.Board = &board
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode board message", "error", err)
		return nil
	}
	return data
}

// Serve registers conn, pushes the current board and blocks reading client
// messages until the connection fails.
func (h *Hub) Serve(conn Conn, query string) {
	c := &client{
		conn:  conn,
		send:  make(chan []byte, clientBufferSize),
		query: query,
	}

	h.mu.Lock()
	h.clients[c] = true
	seq := h.seq
	h.mu.Unlock()
	h.metrics.ConnectedClients.Add(1)
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.clientWriter(c)
	}()

	if data := h.render(seq, "connect", query); data != nil {
		h.sendToClient(c, data)
	}

	h.readLoop(c)
	h.removeClient(c)
	<-done
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

func (h *Hub) readLoop(c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("ignoring malformed client message", "error", err)
			continue
		}
		if msg.Type != "filter" {
			continue
		}
		c.setQuery(msg.Query)

		h.mu.RLock()
		seq := h.seq
		h.mu.RUnlock()
		if data := h.render(seq, "filter", msg.Query); data != nil {
			h.sendToClient(c, data)
		}
	}
}

// clientWriter sends queued messages and pings to a client
func (h *Hub) clientWriter(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.removeClient(c)
				return
			}
			h.metrics.MessagesSent.Add(1)
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.removeClient(c)
				return
			}
		}
	}
}

// sendToClient queues data without blocking.
func (h *Hub) sendToClient(c *client, data []byte) (sent bool) {
	defer func() {
		// send closed by a concurrent removeClient
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	_, present := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	c.closeOnce.Do(func() {
		if present {
			h.metrics.ConnectedClients.Add(-1)
		}
		close(c.send)
		if err := c.conn.Close(); err != nil {
			h.logger.Debug("error closing websocket", "error", err)
		}
	})
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.removeClient(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
