package ws

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// State is the lifecycle stage of a relay connection.
type State int32

const (
	// StatePending: transport open, identity parsed, not registered yet.
	StatePending State = iota
	// StateAuthPending: registered, token verification in flight.
	StateAuthPending
	// StateActive: registered and token verified.
	StateActive
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAuthPending:
		return "auth_pending"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type Options struct {
	SendBuffer     int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
}

const (
	defaultSendBuffer     = 256
	defaultMaxMessageSize = 4096
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
)

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = defaultMaxMessageSize
	}
	if o.WriteWait <= 0 {
		o.WriteWait = defaultWriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = defaultPongWait
	}
	return o
}

// Conn is one relay client over a websocket. Only the write pump writes data frames;
// Send just enqueues, so a slow peer never blocks the goroutine that fans out to it.
type Conn struct {
	id       string
	userID   string
	shopName string
	conn     *websocket.Conn
	opts     Options

	state atomic.Int32
	send  chan []byte
	done  chan struct{}

	mu        sync.Mutex // guards closed against Send
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

func NewConn(id, userID, shopName string, conn *websocket.Conn, opts Options) *Conn {
	opts = opts.withDefaults()

	return &Conn{
		id:       id,
		userID:   userID,
		shopName: shopName,
		conn:     conn,
		opts:     opts,
		send:     make(chan []byte, opts.SendBuffer),
		done:     make(chan struct{}),
	}
}

func (c *Conn) ID() string       { return c.id }
func (c *Conn) UserID() string   { return c.userID }
func (c *Conn) ShopName() string { return c.shopName }

func (c *Conn) State() State { return State(c.state.Load()) }

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Transition moves the connection from one state to another and reports whether it did.
func (c *Conn) Transition(from, to State) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// MarkClosed moves the connection to StateClosed. Only the first caller gets true.
func (c *Conn) MarkClosed() bool {
	return State(c.state.Swap(int32(StateClosed))) != StateClosed
}

// Send queues data for the write pump without blocking.
func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.State() == StateClosed {
		return ErrConnClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Listen reads frames until the peer goes away or handler fails.
// Pongs push the read deadline forward.
func (c *Conn) Listen(handler func(data []byte) error) error {
	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		if err := handler(data); err != nil {
			return fmt.Errorf("handler failed: %w", err)
		}
	}
}

// WritePump drains the send queue and pings the peer until the connection is closed.
// It returns nil after Close and the write error otherwise.
func (c *Conn) WritePump() error {
	ticker := time.NewTicker(c.opts.PongWait * 9 / 10)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return nil
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return fmt.Errorf("write failed: %w", err)
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
		}
	}
}

// Close sends a close frame with code and reason and releases the transport.
// Safe to call many times; only the first call does anything.
func (c *Conn) Close(code int, reason string) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.done)
		c.mu.Unlock()

		c.state.Store(int32(StateClosed))

		if c.conn == nil {
			return
		}
		c.closeErr = closeTransport(c.conn, code, reason, c.opts.WriteWait)
	})
	return c.closeErr
}

// Reject closes a connection that never became a relay client.
func Reject(conn *websocket.Conn, code int, reason string) error {
	return closeTransport(conn, code, reason, defaultWriteWait)
}

func closeTransport(conn *websocket.Conn, code int, reason string, wait time.Duration) error {
	// close frame is best-effort: the peer may already be gone
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(wait),
	)
	if err := conn.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return nil
}
