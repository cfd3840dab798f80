package network

import (
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goldrelay/goldrelay/pkg/network/stall"
	"github.com/goldrelay/goldrelay/pkg/wire"
	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
	"github.com/goldrelay/goldrelay/pkg/wireaddr"
)

// errDispatchPanic is the disconnect reason recorded when a handler
// panics mid-dispatch; dispatchOne recovers it rather than letting it
// take down the process.
var errDispatchPanic = errors.New("network: panic recovered in frame dispatch")

// State is a PeerSession's place in its lifecycle (spec.md §3).
type State int

const (
	StateNew State = iota
	StateHandshake
	StateConnected
	StateDisconnected
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateHandshake:
		return "handshake"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Direction is which side of the TCP connection we are.
type Direction int

const (
	Inbound Direction = iota
	Outbound
)

// getblocksTuple identifies one getblocks/getheaders request for the
// duplicate-suppression memory (spec.md §3, §4.3 on_getblocks).
type getblocksTuple struct {
	Version  protocol.Version
	Locator  string // hashes joined, cheap to compare
	StopHash binutil.Hash256
}

// maxDupMemory is the fixed ring capacity for replay suppression
// (spec.md §9, "fixed-capacity ring of length 3").
const maxDupMemory = 3

// Session is one PeerSession: the per-connection state machine of
// spec.md §3/§4.2. Its exported methods are safe for concurrent use;
// an internal mutex serializes access to its mutable fields the way
// the reactor model would have serialized callbacks on one thread.
type Session struct {
	ID        uuid.UUID
	node      *Node
	log       *zap.Logger
	conn      net.Conn
	direction Direction

	writeMu sync.Mutex // serializes outbound frames (spec.md §5, "outbound writes ... serialized")

	mu            sync.Mutex
	state         State
	remoteHost    string
	remotePort    uint16
	version       *payload.Version
	versionSent   bool
	verackSent    bool
	verackRecvd   bool
	lastPingNonce *uint32
	pingSentAt    time.Time
	latencyMS     float64
	startedAt     time.Time
	dupMemory     []getblocksTuple
	cachedAddr    *payload.NetAddr

	// stalls tracks the one handshake Version and any one in-flight Ping
	// as commands awaiting a response, closing the socket if either is
	// still pending after StallTimeout (spec.md §5, "Timeouts and
	// cancellation").
	stalls   *stall.Detector
	pingStop chan struct{}

	closeOnce sync.Once
}

func newSession(conn net.Conn, dir Direction, node *Node) *Session {
	host, portStr, _ := net.SplitHostPort(conn.RemoteAddr().String())
	var port uint16
	if p, err := parsePort(portStr); err == nil {
		port = p
	}
	timeoutMS := float64(node.cfg.Application.DialTimeout.Milliseconds())
	sweep := node.cfg.Application.StallTimeout / 4
	if sweep < 50*time.Millisecond {
		sweep = 50 * time.Millisecond
	}
	return &Session{
		ID:         uuid.New(),
		node:       node,
		log:        node.log.With(zap.String("peer", conn.RemoteAddr().String())),
		conn:       conn,
		direction:  dir,
		state:      StateNew,
		remoteHost: host,
		remotePort: port,
		latencyMS:  timeoutMS, // pessimistic initial value, spec.md §3
		startedAt:  time.Now(),
		stalls:     stall.NewDetector(node.cfg.Application.StallTimeout, sweep),
		pingStop:   make(chan struct{}),
	}
}

func parsePort(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RemoteHost returns the peer's address, without port.
func (s *Session) RemoteHost() string { return s.remoteHost }

// RemotePort returns the peer's TCP port on this connection.
func (s *Session) RemotePort() uint16 { return s.remotePort }

// Direction reports whether this session was dialed or accepted.
func (s *Session) Direction() Direction { return s.direction }

// Uptime is derived from the connection-start instant (spec.md §3).
func (s *Session) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startedAt)
}

// LatencyMS returns the most recently measured ping round-trip, or the
// pessimistic initial value if none has completed yet.
func (s *Session) LatencyMS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latencyMS
}

// Version returns the peer's handshake Version record, or nil if none
// has been received yet.
func (s *Session) Version() *payload.Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Addr lazily derives and caches this session's address record,
// populated once the handshake completes (spec.md §3, "Derived: addr
// record").
func (s *Session) Addr() payload.NetAddr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cachedAddr != nil {
		return *s.cachedAddr
	}
	services := protocol.ServiceFlag(0)
	if s.version != nil {
		services = s.version.Services
	}
	a := payload.NewNetAddr(time.Now(), s.remoteHost, s.remotePort, services)
	s.cachedAddr = &a
	return a
}

// begin drives the new -> handshake transition for both accepted and
// dialed connections (spec.md §4.2): register with the Node Context,
// arm the handshake timeout, send our Version, and start the read
// loop.
func (s *Session) begin() {
	s.mu.Lock()
	s.state = StateHandshake
	s.mu.Unlock()

	s.node.addConnection(s)
	s.stalls.Run(s.onStalled)

	if err := s.sendVersion(); err != nil {
		s.disconnect("send-version-failed")
		return
	}
	s.stalls.AddMessage(command.Version)
	go s.readLoop()
}

// onStalled fires when a command the stall detector is tracking never
// got its matching response within StallTimeout.
func (s *Session) onStalled(cmd command.Type) {
	switch cmd {
	case command.Version:
		s.disconnect("handshake-timeout")
	case command.Ping:
		s.disconnect("ping-timeout")
	}
}

// readLoop is the session's single reader goroutine: it serializes
// frame parsing the way spec.md §5 requires ("the parser is
// nevertheless called inside a per-session critical section").
func (s *Session) readLoop() {
	for {
		err := s.dispatchOne()
		if err == nil {
			continue
		}
		if errors.Is(err, wire.ErrBadMagic) {
			s.disconnect("bad-magic")
			return
		}
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			s.disconnect("closed")
			return
		}
		if errors.Is(err, errDispatchPanic) {
			s.disconnect("handler-panic")
			return
		}
		s.disconnect("read-error")
		return
	}
}

// dispatchOne reads and dispatches a single frame, recovering from any
// handler-internal panic. spec.md §4.5 requires that a handler error
// logs a fatal and disconnects the one offending session rather than
// tearing down the whole process.
func (s *Session) dispatchOne() (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in frame dispatch, disconnecting", zap.Any("panic", r))
			err = errDispatchPanic
		}
	}()
	return s.node.parser.ReadAndDispatch(s.conn, s)
}

// completeHandshake implements spec.md §4.2's complete-handshake: it
// is idempotent, only firing the transition and its side effects once.
func (s *Session) completeHandshake() {
	s.mu.Lock()
	if s.state != StateHandshake {
		s.mu.Unlock()
		return
	}
	s.state = StateConnected
	s.latencyMS = float64(time.Since(s.startedAt).Milliseconds())
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.stalls.RemoveMessage(command.Version)

	s.node.addrBook.Add(s.Addr())
	s.node.addrBook.ConnectionComplete(s.Addr().String())
	s.log.Debug("handshake complete", zap.String("identity", wireaddr.Encode(s.Addr())))
	s.node.publish(Notification{
		Kind:  NotifyConnection,
		Event: ConnConnected,
		Host:  s.remoteHost,
		Port:  s.remotePort,
	})

	if s.node.cfg.Application.Announce {
		_ = s.sendAddr([]payload.NetAddr{s.ownAddr()})
	}

	go s.pingLoop()
}

// pingLoop implements send_ping's recurring arm (spec.md §4.4,
// "send_ping(wait)"): one ping per PingInterval for the life of the
// connection, each arming its own StallTimeout liveness check.
func (s *Session) pingLoop() {
	interval := s.node.cfg.Application.PingInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = s.sendPing()
		case <-s.pingStop:
			return
		}
	}
}

func (s *Session) ownAddr() payload.NetAddr {
	host, portStr, _ := net.SplitHostPort(s.node.cfg.Application.ListenAddress)
	if host == "" {
		host = s.node.BestExternalIP()
	}
	port, _ := parsePort(portStr)
	return payload.NewNetAddr(time.Now(), host, port, protocol.NodeNetwork)
}

// disconnect transitions the session to disconnected exactly once,
// closing the socket, deregistering from the Node Context and
// notifying subscribers (spec.md §4.2 "any | socket closed ...").
func (s *Session) disconnect(reason string) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()

		s.stalls.Close()
		close(s.pingStop)
		s.conn.Close()
		s.node.removeConnection(s)
		s.log.Debug("session disconnected", zap.String("reason", reason))
		s.node.publish(Notification{
			Kind:  NotifyConnection,
			Event: ConnDisconnected,
			Host:  s.remoteHost,
			Port:  s.remotePort,
		})
	})
}

// Close disconnects the session for an operator- or policy-initiated
// reason (as opposed to a transport or protocol failure).
func (s *Session) Close() {
	s.disconnect("closed-by-caller")
}
