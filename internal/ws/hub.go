package ws

import (
	"context"

	"github.com/mizutanik/tasktree-api/internal/logging"
)

// Event names emitted on the realtime channel.
const (
	EventConnected   = "connected"
	EventTaskCreated = "taskCreated"
	EventTaskUpdated = "taskUpdated"
	EventTaskDeleted = "taskDeleted"
)

// Event is a single realtime message sent to subscribers.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// ConnectionAck is the payload of the EventConnected message. The echoed
// Authorization header is informational, not a security boundary.
type ConnectionAck struct {
	ConnectionID  string `json:"connectionId"`
	Authorization string `json:"authorization"`
}

// Hub fans task mutation events out to every connected client. A single
// goroutine owns the client set, so each subscriber observes events in
// publish order. Delivery is best effort and at most once: clients that
// connect after an event was published never see it, and a client whose
// outbound queue is full is disconnected rather than allowed to stall the
// fan-out.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	clients    map[*Client]struct{}
}

// NewHub creates a Hub. Run must be started before clients connect.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 64),
		clients:    make(map[*Client]struct{}),
	}
}

// Run owns the client set and performs the fan-out. It returns when ctx is
// cancelled, closing every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			logging.Logger.Infof("Client connected: %s", client.ID)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logging.Logger.Infof("Client disconnected: %s", client.ID)
			}

		case event := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Slow consumer: disconnect it instead of
					// blocking everyone else.
					delete(h.clients, client)
					close(client.send)
					logging.Logger.Warnf("Client %s dropped: send queue full", client.ID)
				}
			}

		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

// Publish queues an event for delivery to all currently connected clients,
// including the one whose request caused it. Failures are never surfaced to
// the caller.
func (h *Hub) Publish(event string, payload any) {
	h.broadcast <- Event{Event: event, Payload: payload}
}
