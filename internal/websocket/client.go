package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/mediagrab/backend/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Per-client outbound buffer.
	sendBufferSize = 16
)

// Client is one WebSocket connection watching one job.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	jobID string
	send  chan *JobMessage
	log   *logger.Logger
}

// NewClient creates a client for a connection watching the given job.
func NewClient(hub *Hub, conn *websocket.Conn, jobID string) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		jobID: jobID,
		send:  make(chan *JobMessage, sendBufferSize),
		log:   logger.Default().WithComponent("websocket"),
	}
}

// ReadPump drains the connection. Watchers never send payloads we act on;
// the read loop exists to process control frames and to notice the peer
// going away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
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

// WritePump pushes job updates and keepalive pings to the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
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
