package chat

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"blogchat/pkg/logger"
)

// pingPeriod must fire more often than the pong timeout or the read
// deadline will expire on idle connections.
func pingPeriod(pongTimeout time.Duration) time.Duration {
	return pongTimeout * 9 / 10
}

// Client is one connected chat member. Envelopes are enqueued with
// Send and drained by a single writer goroutine, so a slow reader
// never blocks a broadcast.
type Client struct {
	conn     Conn
	room     string
	username string

	send    chan any
	done    chan struct{}
	closed  atomic.Bool
	limiter *rate.Limiter

	zoneMu sync.Mutex
	zone   string
}

// NewClient builds a client around an established connection. rps<=0
// disables rate limiting.
func NewClient(conn Conn, room, username string, sendBuffer int, rps float64, burst int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	c := &Client{
		conn:     conn,
		room:     room,
		username: username,
		send:     make(chan any, sendBuffer),
		done:     make(chan struct{}),
	}
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return c
}

func (c *Client) Room() string     { return c.room }
func (c *Client) Username() string { return c.username }
func (c *Client) Addr() string     { return c.conn.RemoteAddr() }

// Zone returns the IANA timezone the peer last announced, or "" if it
// never did.
func (c *Client) Zone() string {
	c.zoneMu.Lock()
	defer c.zoneMu.Unlock()
	return c.zone
}

func (c *Client) SetZone(z string) {
	c.zoneMu.Lock()
	c.zone = z
	c.zoneMu.Unlock()
}

// AllowMessage reports whether the per-connection rate limit admits
// another inbound message right now.
func (c *Client) AllowMessage() bool {
	if c.limiter == nil {
		return true
	}
	return c.limiter.Allow()
}

// Send enqueues an envelope without blocking. A false return means the
// client's buffer is full or the client is closed; the caller decides
// whether that disqualifies the member.
func (c *Client) Send(v any) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

// WritePump drains the send queue onto the connection and keeps the
// transport alive with pings. It exits when the queue writer fails or
// the client is closed.
func (c *Client) WritePump(pongTimeout time.Duration) {
	ticker := time.NewTicker(pingPeriod(pongTimeout))
	defer ticker.Stop()
	for {
		select {
		case v := <-c.send:
			if err := c.conn.WriteJSON(v); err != nil {
				logger.Debug("chat_write_failed", "room", c.room, "user", c.username, "error", err.Error())
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close tears down the connection. Safe to call from any goroutine,
// any number of times.
func (c *Client) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	close(c.done)
	_ = c.conn.Close()
}

// Done is closed once the client has been shut down.
func (c *Client) Done() <-chan struct{} { return c.done }
