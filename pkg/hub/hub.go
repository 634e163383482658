package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

const (
	broadcastBuffer = 256
	clientBuffer    = 256
)

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	name   string
	logger *slog.Logger

	// Registered clients, owned by Run
	clients map[*Client]bool

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	// Guards count for readers outside Run
	mu    sync.RWMutex
	count int

	runningMu sync.Mutex
	running   bool
}

// New creates a new Hub. A nil logger uses slog.Default().
func New(name string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		name:       name,
		logger:     logger.With("component", "hub", "hub", name),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled. On exit every client's
// send channel is closed so its write pump sends a close frame. Run must be
// called at most once.
func (h *Hub) Run(ctx context.Context) {
	h.setRunning(true)
	defer close(h.done)
	defer h.setRunning(false)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("client connected", "clients", h.sync())

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
			h.logger.Info("client disconnected", "clients", h.sync())

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's buffer is full; it is too slow to keep.
					h.drop(client)
					h.logger.Warn("dropped slow client")
				}
			}
			h.sync()
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

// sync publishes the client count and returns it.
func (h *Hub) sync() int {
	n := len(h.clients)
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
	return n
}

func (h *Hub) setRunning(v bool) {
	h.runningMu.Lock()
	h.running = v
	h.runningMu.Unlock()
}

// Broadcast queues msg for every client. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Broadcast(msg Message) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		h.logger.Warn("broadcast channel full, dropping message")
		return false
	}
}

// BroadcastJSON encodes and broadcasts a JSON message
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("hub: encode: %w", err)
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// Publish wraps data in an Event envelope and broadcasts it.
func (h *Hub) Publish(kind string, data any) error {
	msg, err := NewEvent(kind, data).Encode()
	if err != nil {
		return fmt.Errorf("hub: encode %s event: %w", kind, err)
	}
	h.Broadcast(msg)
	return nil
}

// BroadcastBinary broadcasts binary data (e.g., synthesized speech)
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(NewBinaryMessage(data))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// IsRunning returns whether the hub loop is active
func (h *Hub) IsRunning() bool {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()
	return h.running
}
