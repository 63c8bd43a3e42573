package signal

import (
	"sync"
	"sync/atomic"
	"time"

	"beamcast/internal/core/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from a peer. Large enough for SDP
	// session descriptions.
	maxMessageSize = 64 * 1024

	// Outbound queue depth per connection.
	sendQueueSize = 256
)

// Client wraps one WebSocket connection. All writes go through the
// buffered send queue and a single write pump goroutine, so envelopes
// enqueued for a peer are delivered in order.
type Client struct {
	conn   *websocket.Conn
	send   chan interface{}
	done   chan struct{}
	logger *zap.SugaredLogger

	alive     atomic.Bool
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, logger *zap.SugaredLogger) *Client {
	c := &Client{
		conn:   conn,
		send:   make(chan interface{}, sendQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	c.alive.Store(true)
	return c
}

// Send enqueues an envelope without blocking. A full queue means the
// peer stopped draining; the envelope is dropped and the liveness sweep
// will catch the connection eventually.
func (c *Client) Send(env interface{}) error {
	select {
	case c.send <- env:
		return nil
	default:
		return domain.ErrSendQueueFull
	}
}

func (c *Client) Alive() bool { return c.alive.Load() }
func (c *Client) ResetAlive() { c.alive.Store(false) }
func (c *Client) MarkAlive()  { c.alive.Store(true) }

// Ping sends a native WebSocket ping control frame. Control frames may
// be written concurrently with the write pump.
func (c *Client) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Terminate forcibly closes the underlying connection, which unblocks
// the read loop and triggers the normal disconnect cleanup path.
func (c *Client) Terminate() {
	c.close()
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writePump drains the send queue onto the connection. It is the only
// goroutine writing data frames to this connection.
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Debugw("write failed", "error", err)
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
