package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event types pushed to browsers
const (
	EventNotification = "notification"
	EventMessage      = "message"
)

// Event is one server-to-client push. Seq increases by one for every event
// the hub emits, so a client can ignore anything older than what it has seen.
type Event struct {
	Type      string    `json:"type"`
	Seq       int64     `json:"seq"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type delivery struct {
	userID int64
	event  Event
}

// Hub keeps the live connections of every user and fans events out to them
type Hub struct {
	clients map[int64]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	outbound   chan delivery
	// done is closed when Run returns
	done chan struct{}

	seq    int64
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan delivery, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and deliveries until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case d := <-h.outbound:
			h.seq++
			d.event.Seq = h.seq
			h.deliver(d)
		}
	}
}

// join registers client; it reports false once the hub has stopped
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters client; after shutdown closeAll has already dropped it
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for every connection of userID. It never blocks
// the caller; events are dropped when the queue is full.
func (h *Hub) Publish(userID int64, eventType string, payload any) {
	d := delivery{
		userID: userID,
		event:  Event{Type: eventType, Payload: payload, Timestamp: time.Now()},
	}
	select {
	case h.outbound <- d:
	default:
		h.logger.Warn().Int64("userID", userID).Str("type", eventType).Msg("Realtime queue full, event dropped")
	}
}

// ClientCount returns the number of live connections of userID
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}

	h.logger.Debug().Int64("userID", client.userID).Msg("Realtime client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Debug().Int64("userID", client.userID).Msg("Realtime client unregistered")
}

func (h *Hub) deliver(d delivery) {
	data, err := json.Marshal(d.event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", d.event.Type).Msg("Failed to marshal realtime event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[d.userID] {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conns := range h.clients {
		for client := range conns {
			h.removeLocked(client)
		}
	}
}
