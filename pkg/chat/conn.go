package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn abstracts the transport beneath a chat session. The production
// implementation wraps a websocket; tests use MemConn.
type Conn interface {
	// ReadText blocks until the next text frame arrives or the
	// connection fails.
	ReadText() (string, error)
	// WriteJSON sends one JSON-encoded envelope.
	WriteJSON(v any) error
	// Ping sends a transport-level keepalive.
	Ping() error
	Close() error
	RemoteAddr() string
}

// wsConn adapts a gorilla websocket connection to Conn. It owns the
// read deadline and pong handling so callers never touch the raw
// socket.
type wsConn struct {
	c            *websocket.Conn
	addr         string
	writeTimeout time.Duration
	pongTimeout  time.Duration

	mu sync.Mutex // serializes writes
}

// NewWSConn wraps an upgraded websocket. addr is the peer address as
// seen by the HTTP layer (which knows about proxies; the socket does
// not).
func NewWSConn(c *websocket.Conn, addr string, writeTimeout, pongTimeout time.Duration) Conn {
	w := &wsConn{c: c, addr: addr, writeTimeout: writeTimeout, pongTimeout: pongTimeout}
	_ = c.SetReadDeadline(time.Now().Add(pongTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	return w
}

func (w *wsConn) ReadText() (string, error) {
	for {
		mt, data, err := w.c.ReadMessage()
		if err != nil {
			return "", err
		}
		if mt == websocket.TextMessage {
			return string(data), nil
		}
	}
}

func (w *wsConn) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.c.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
		return err
	}
	return w.c.WriteJSON(v)
}

func (w *wsConn) Ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(w.writeTimeout))
}

func (w *wsConn) Close() error       { return w.c.Close() }
func (w *wsConn) RemoteAddr() string { return w.addr }

// ErrConnClosed is returned by MemConn reads after Close.
var ErrConnClosed = errors.New("chat: connection closed")

// MemConn is an in-memory Conn for exercising sessions without a
// network. Frames pushed with PushText are returned by ReadText;
// envelopes written by the session are buffered on Sent.
type MemConn struct {
	in   chan string
	out  chan any
	addr string

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewMemConn(addr string) *MemConn {
	return &MemConn{
		in:   make(chan string, 16),
		out:  make(chan any, 256),
		addr: addr,
		done: make(chan struct{}),
	}
}

// PushText queues a frame for the session to read.
func (m *MemConn) PushText(s string) { m.in <- s }

// Sent exposes every envelope the session wrote, in order.
func (m *MemConn) Sent() <-chan any { return m.out }

func (m *MemConn) ReadText() (string, error) {
	select {
	case s := <-m.in:
		return s, nil
	case <-m.done:
		return "", ErrConnClosed
	}
}

func (m *MemConn) WriteJSON(v any) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrConnClosed
	}
	select {
	case m.out <- v:
		return nil
	default:
		return errors.New("chat: memconn buffer full")
	}
}

func (m *MemConn) Ping() error { return nil }

func (m *MemConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *MemConn) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MemConn) RemoteAddr() string { return m.addr }
