package broadcast

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one WebSocket subscriber. It pumps events from its send buffer
// to the connection and discards anything the peer sends (the event stream
// is one-way).
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

// NewClient wraps an accepted WebSocket connection and registers it with the hub.
// The caller must invoke Serve (typically in the HTTP handler goroutine).
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.opts.SendBuffer),
	}
	select {
	case hub.register <- c:
	case <-hub.done:
		// Hub already shut down; the connection is useless.
		conn.Close()
	}
	return c
}

// Serve runs the read and write pumps and blocks until the connection drops.
func (c *Client) Serve() {
	go c.writePump()
	c.readPump()
}

// readPump drains inbound frames so control messages (close, pong) are
// processed, and unregisters the client when the connection errors out.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
			// Run has exited; clean up locally instead.
			c.close()
		}
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump delivers buffered events to the peer and pings idle connections.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close shuts the send channel and the underlying connection.
// Safe to call more than once, from the hub loop or the read pump.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}
