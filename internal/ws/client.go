package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Outbound queue size per client.
	sendQueueSize = 64
)

// Client is a single subscriber connection.
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan Event
}

// HandleConnection registers a new client for the given websocket
// connection, emits the connection ack, and starts the read and write
// pumps. authHeader is echoed back in the ack.
func (h *Hub) HandleConnection(conn *websocket.Conn, authHeader string) {
	client := &Client{
		ID:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan Event, sendQueueSize),
	}

	// Queue the ack before registering so it is the first message the
	// subscriber reads.
	client.send <- Event{
		Event: EventConnected,
		Payload: ConnectionAck{
			ConnectionID:  client.ID,
			Authorization: authHeader,
		},
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound messages and unregisters the client when the
// connection drops. Subscribers are read-only on this channel.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump drains the send queue onto the connection and keeps the peer
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the queue.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
