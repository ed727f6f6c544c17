// Package transport wraps a UDP socket behind a small datagram interface with
// a bounded receive timeout, so the session layer never touches net directly.
package transport

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// MaxDatagramSize bounds a single telemetry datagram. 128 KiB comfortably
// holds the largest sensor line the simulator produces.
const MaxDatagramSize = 1 << 17

// DefaultTimeout is how long Receive waits for a datagram before returning
// ErrTimeout.
const DefaultTimeout = 1 * time.Second

var (
	// ErrTimeout reports that no datagram arrived within the receive window.
	// Non-fatal; the caller decides whether to retry.
	ErrTimeout = errors.New("transport: receive timed out")
	// ErrClosed reports use of a connection after Close.
	ErrClosed = errors.New("transport: connection closed")
)

// NetError wraps a fatal socket-level failure.
type NetError struct {
	Op  string
	Err error
}

func (e *NetError) Error() string { return fmt.Sprintf("transport: %s: %v", e.Op, e.Err) }
func (e *NetError) Unwrap() error { return e.Err }

// Conn is a bounded-timeout datagram connection.
type Conn interface {
	// Send transmits one datagram. Any socket-level error is fatal and
	// returned as a *NetError.
	Send(p []byte) error
	// Receive blocks for at most the configured timeout and returns one
	// datagram, or ErrTimeout when nothing arrived.
	Receive() ([]byte, error)
	// Close releases the socket. Further calls are no-ops.
	Close() error
}

// UDPConn is the production Conn over a connected UDP socket.
type UDPConn struct {
	conn    *net.UDPConn
	timeout time.Duration
	buf     []byte
	closed  bool
}

// Dial resolves host:port and opens a connected UDP socket with the default
// receive timeout.
func Dial(host string, port int) (*UDPConn, error) {
	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return nil, &NetError{Op: "resolve", Err: err}
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, &NetError{Op: "dial", Err: err}
	}
	return &UDPConn{
		conn:    conn,
		timeout: DefaultTimeout,
		buf:     make([]byte, MaxDatagramSize),
	}, nil
}

// SetTimeout overrides the receive timeout. Mostly for tests; the protocol
// default of one second matches the simulator's pacing.
func (c *UDPConn) SetTimeout(d time.Duration) { c.timeout = d }

func (c *UDPConn) Send(p []byte) error {
	if c.closed {
		return ErrClosed
	}
	if _, err := c.conn.Write(p); err != nil {
		return &NetError{Op: "send", Err: err}
	}
	return nil
}

func (c *UDPConn) Receive() ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, &NetError{Op: "deadline", Err: err}
	}
	n, err := c.conn.Read(c.buf)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return nil, ErrTimeout
		}
		return nil, &NetError{Op: "receive", Err: err}
	}
	out := make([]byte, n)
	copy(out, c.buf[:n])
	return out, nil
}

func (c *UDPConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
