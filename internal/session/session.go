// Package session drives one client connection to the race simulator: the
// identification handshake with its bounded retry budget, the classify loop
// over incoming datagrams, and the validated send path. The protocol is
// strictly synchronous: one Receive, one decision, one Send, repeated by an
// external driver loop.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/banshee-data/trackpilot/internal/monitoring"
	"github.com/banshee-data/trackpilot/internal/scrproto"
	"github.com/banshee-data/trackpilot/internal/transport"
)

// Control markers the server embeds in a datagram.
const (
	markerIdentified = "***identified***"
	markerShutdown   = "***shutdown***"
	markerRestart    = "***restart***"
)

// DefaultRetryBudget is how many handshake timeouts are tolerated before the
// launcher is asked to relaunch the simulator.
const DefaultRetryBudget = 5

// DefaultAngles is the fixed 19-element track sensor angle declaration sent
// during the handshake. Kept as wire text so the exact tokens (-.5, .5) go
// out unchanged.
var DefaultAngles = []string{
	"-45", "-19", "-12", "-7", "-4", "-2.5", "-1.7", "-1", "-.5",
	"0", ".5", "1", "1.7", "2.5", "4", "7", "12", "19", "45",
}

var (
	// ErrSessionClosed reports use of a session after Shutdown. Terminal;
	// a closed session is never reusable.
	ErrSessionClosed = errors.New("session: closed")
	// ErrNotConnected reports Receive/Send before a successful handshake.
	ErrNotConnected = errors.New("session: not connected")
)

// Launcher restarts the simulator process when the handshake budget runs
// out. Best effort; a failed restart is logged and the handshake keeps
// retrying.
type Launcher interface {
	Restart() error
}

// State is the connection lifecycle position.
type State int

const (
	StateDisconnected State = iota
	StateHandshaking
	StateConnected
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHandshaking:
		return "handshaking"
	case StateConnected:
		return "connected"
	case StateShuttingDown:
		return "shutting-down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome distinguishes a telemetry reading from the terminal protocol
// signals. Terminal signals are results, not errors.
type Outcome int

const (
	OutcomeTelemetry Outcome = iota
	OutcomeShutdown
	OutcomeRestart
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTelemetry:
		return "telemetry"
	case OutcomeShutdown:
		return "shutdown"
	case OutcomeRestart:
		return "restart"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Terminal reports whether the reading ends the session.
func (o Outcome) Terminal() bool { return o != OutcomeTelemetry }

// Reading is the result of one Receive call.
type Reading struct {
	Outcome  Outcome
	Snapshot *scrproto.Snapshot
	// FinalPos is the race position reported by the last snapshot before a
	// shutdown signal; zero when never known.
	FinalPos int
}

// Config carries the connection parameters. Zero values pick the protocol
// defaults.
type Config struct {
	Host     string // simulator host, default localhost
	Port     int    // simulator port, default 3001
	SID      string // session identifier, default SCR
	Budget   int    // handshake retry budget, default DefaultRetryBudget
	Angles   []string
	Launcher Launcher
}

func (c *Config) fill() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 3001
	}
	if c.SID == "" {
		c.SID = "SCR"
	}
	if c.Budget == 0 {
		c.Budget = DefaultRetryBudget
	}
	if c.Angles == nil {
		c.Angles = DefaultAngles
	}
}

// Session owns one transport connection and the protocol state machine over
// it. The transport is exclusively owned and closed exactly once. Not safe
// for concurrent protocol use; the diagnostics accessors (State, Latest) are
// the only methods that may be called from another goroutine.
type Session struct {
	conn     transport.Conn
	cfg      Config
	launcher Launcher

	mu     sync.Mutex // guards state and the latest-frame view only
	state  State
	closed bool
	frames int
	snap   *scrproto.Snapshot
	act    *scrproto.Action
}

// New wraps an existing transport connection. Used directly by tests; most
// callers go through Dial.
func New(conn transport.Conn, cfg Config) *Session {
	cfg.fill()
	return &Session{
		conn:     conn,
		cfg:      cfg,
		launcher: cfg.Launcher,
	}
}

// Dial opens a UDP connection to the simulator described by cfg.
func Dial(cfg Config) (*Session, error) {
	cfg.fill()
	conn, err := transport.Dial(cfg.Host, cfg.Port)
	if err != nil {
		return nil, err
	}
	return New(conn, cfg), nil
}

// Connect performs the identification handshake. Each receive timeout spends
// one unit of the retry budget; when the budget runs out the launcher is
// invoked, the budget resets, and the handshake keeps going until the server
// identifies us or ctx is cancelled.
func (s *Session) Connect(ctx context.Context) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if s.State() == StateConnected {
		return nil
	}
	s.setState(StateHandshaking)

	init := []byte(fmt.Sprintf("%s(init %s)", s.cfg.SID, strings.Join(s.cfg.Angles, " ")))
	budget := s.cfg.Budget
	for {
		if err := ctx.Err(); err != nil {
			s.setState(StateDisconnected)
			return err
		}
		if err := s.conn.Send(init); err != nil {
			s.setState(StateDisconnected)
			return fmt.Errorf("handshake send: %w", err)
		}
		payload, err := s.conn.Receive()
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				s.setState(StateDisconnected)
				return ErrSessionClosed
			}
			// Timeouts and transient receive errors both spend budget here;
			// this is the only phase where the budget is consumed.
			budget--
			monitoring.Logf("waiting for server on %d (countdown %d)", s.cfg.Port, budget)
			if budget <= 0 {
				if s.launcher != nil {
					monitoring.Logf("handshake budget exhausted, relaunching simulator")
					if rerr := s.launcher.Restart(); rerr != nil {
						monitoring.Logf("simulator relaunch failed: %v", rerr)
					}
				}
				budget = s.cfg.Budget
			}
			continue
		}
		if strings.Contains(string(payload), markerIdentified) {
			monitoring.Logf("client identified on %d", s.cfg.Port)
			s.setState(StateConnected)
			return nil
		}
		// Stale telemetry from a previous session; keep asking.
	}
}

// Receive blocks until the server produces either a telemetry snapshot or a
// terminal protocol signal. Timeouts are swallowed and retried without any
// budget; duplicate identification acks and empty payloads are ignored. A
// shutdown or restart marker transitions the session to ShuttingDown and is
// returned as a terminal Reading, never as an error.
func (s *Session) Receive(ctx context.Context) (Reading, error) {
	if s.isClosed() {
		return Reading{}, ErrSessionClosed
	}
	if s.State() != StateConnected {
		return Reading{}, ErrNotConnected
	}
	for {
		if err := ctx.Err(); err != nil {
			return Reading{}, err
		}
		payload, err := s.conn.Receive()
		if err != nil {
			if errors.Is(err, transport.ErrClosed) {
				return Reading{}, ErrSessionClosed
			}
			// Receive-side network errors behave like timeouts: retried
			// indefinitely, terminated only by ctx or a server signal.
			continue
		}
		data := string(payload)
		switch {
		case len(bytes.TrimSpace(payload)) == 0:
			continue
		case strings.Contains(data, markerIdentified):
			// Duplicate ack from the handshake; ignore.
			continue
		case strings.Contains(data, markerShutdown):
			final := s.finalPos()
			s.setState(StateShuttingDown)
			monitoring.Logf("server stopped the race on %d (position %d)", s.cfg.Port, final)
			return Reading{Outcome: OutcomeShutdown, FinalPos: final}, nil
		case strings.Contains(data, markerRestart):
			s.setState(StateShuttingDown)
			monitoring.Logf("server restarted the race on %d", s.cfg.Port)
			return Reading{Outcome: OutcomeRestart}, nil
		default:
			snap, derr := scrproto.Decode(payload)
			if derr != nil {
				continue
			}
			s.mu.Lock()
			s.snap = snap
			s.frames++
			s.mu.Unlock()
			return Reading{Outcome: OutcomeTelemetry, Snapshot: snap}, nil
		}
	}
}

// Send clamps, encodes and transmits one action. Clamping is a mandatory
// gate: the caller's values are forced into their legal ranges every time.
// A network error here is fatal; the caller must end the session.
func (s *Session) Send(a *scrproto.Action) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if s.State() != StateConnected {
		return ErrNotConnected
	}
	a.Clamp()
	if err := s.conn.Send(scrproto.Encode(a)); err != nil {
		if errors.Is(err, transport.ErrClosed) {
			return ErrSessionClosed
		}
		return fmt.Errorf("send action: %w", err)
	}
	sent := *a
	sent.Focus = append([]float64(nil), a.Focus...)
	s.mu.Lock()
	s.act = &sent
	s.mu.Unlock()
	return nil
}

// Shutdown closes the transport and invalidates the session. Idempotent;
// calling it on an already closed session is a no-op.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.state = StateDisconnected
	s.mu.Unlock()

	monitoring.Logf("shutting down session on %d", s.cfg.Port)
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("close transport: %w", err)
	}
	return nil
}

// State returns the current lifecycle position. Safe for concurrent use.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Latest returns the most recent snapshot and action for read-only
// diagnostics. Either may be nil. Safe for concurrent use; the protocol
// never mutates a snapshot after storing it.
func (s *Session) Latest() (*scrproto.Snapshot, *scrproto.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, s.act
}

// Frames returns how many telemetry snapshots this session has decoded.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) finalPos() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return 0
	}
	return int(s.snap.RacePos)
}
