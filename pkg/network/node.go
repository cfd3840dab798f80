// Package network implements the Peer Session state machine and the
// Node Context that coordinates every session, per spec.md §§3-5 — the
// core of this system.
package network

import (
	"fmt"
	"net"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/goldrelay/goldrelay/config"
	"github.com/goldrelay/goldrelay/pkg/store"
	"github.com/goldrelay/goldrelay/pkg/wire"
	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

// Node is the process-wide state shared by every Peer Session (spec.md
// §3, "NodeContext"). All its exported methods are safe for concurrent
// use; callers never need their own lock around it.
type Node struct {
	pubsub

	cfg    config.Config
	log    *zap.Logger
	store  store.Store
	parser *wire.Parser

	addrBook *AddrBook

	mu          sync.Mutex
	connections map[*Session]struct{}

	invQueue    *invQueue
	ingestQueue *ingestQueue

	relayMu          sync.Mutex
	relayTx          *lru.Cache
	relayPropagation map[binutil.Hash256]int

	extMu       sync.Mutex
	externalIPs map[string]int

	genesisHash binutil.Hash256
}

// NewNode wires up a Node Context ready to accept or dial sessions.
func NewNode(cfg config.Config, log *zap.Logger, st store.Store, genesisHash binutil.Hash256) (*Node, error) {
	relayTx, err := lru.New(cfg.Application.RelayCacheSize)
	if err != nil {
		return nil, fmt.Errorf("network: new relay cache: %w", err)
	}
	return &Node{
		cfg:              cfg,
		log:              log,
		store:            st,
		parser:           wire.NewParser(cfg.Protocol.Magic, cfg.Protocol.AuxPowEnabled),
		addrBook:         NewAddrBook(),
		connections:      make(map[*Session]struct{}),
		invQueue:         newInvQueue(cfg.Application.InvQueueSize),
		ingestQueue:      newIngestQueue(cfg.Application.IngestionQueueSize),
		relayTx:          relayTx,
		relayPropagation: make(map[binutil.Hash256]int),
		externalIPs:      make(map[string]int),
		genesisHash:      genesisHash,
	}, nil
}

// Connections returns a snapshot of every session currently in
// connections (state handshake or connected, per the invariant in
// spec.md §3).
func (n *Node) Connections() []*Session {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Session, 0, len(n.connections))
	for s := range n.connections {
		out = append(out, s)
	}
	return out
}

// SampleAddrs returns up to count known, fresh, non-bad addresses for a
// caller maintaining a minimum outbound peer count to dial.
func (n *Node) SampleAddrs(count int) []payload.NetAddr {
	return n.addrBook.Sample(count, freshWindow)
}

func (n *Node) addConnection(s *Session) {
	n.mu.Lock()
	n.connections[s] = struct{}{}
	n.mu.Unlock()
}

func (n *Node) removeConnection(s *Session) {
	n.mu.Lock()
	delete(n.connections, s)
	n.mu.Unlock()
}

func (n *Node) acceptConnections() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.connections) < n.cfg.Application.MaxPeers
}

// isWhitelisted reports whether host is the host part of one of the
// configured seed peers ("host:port" entries of Protocol.SeedList),
// which serve as the connect whitelist (spec.md §6, the `connect`
// configuration option).
func (n *Node) isWhitelisted(host string) bool {
	for _, w := range n.cfg.Protocol.SeedList {
		seedHost, _, err := net.SplitHostPort(w)
		if err != nil {
			seedHost = w
		}
		if seedHost == host {
			return true
		}
	}
	return false
}

// AcceptInbound wraps an accepted inbound net.Conn in a Session and
// begins its handshake, or closes it immediately per the policy table
// in spec.md §4.2 ("new | accept(inbound) & ¬accept & ¬whitelisted |
// — | close").
func (n *Node) AcceptInbound(conn net.Conn) (*Session, error) {
	host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	if !n.acceptConnections() && !n.isWhitelisted(host) {
		conn.Close()
		return nil, fmt.Errorf("network: inbound from %s rejected: not accepting, not whitelisted", host)
	}
	s := newSession(conn, Inbound, n)
	s.begin()
	return s, nil
}

// DialOutbound connects to addr and begins its handshake as an
// outbound session.
func (n *Node) DialOutbound(addr string) (*Session, error) {
	conn, err := net.DialTimeout("tcp", addr, n.cfg.Application.DialTimeout)
	if err != nil {
		n.addrBook.Failed(addr)
		return nil, fmt.Errorf("network: dial %s: %w", addr, err)
	}
	s := newSession(conn, Outbound, n)
	s.begin()
	return s, nil
}

// TrackRelayTx remembers tx for get_tx lookups that miss the chain
// store, per spec.md §3 ("relay_tx: short-lived mapping ... for relay
// without store persistence").
func (n *Node) TrackRelayTx(hash binutil.Hash256, tx *payload.Tx) {
	n.relayTx.Add(hash, tx)
}

// RelayTx looks up a previously tracked, not-yet-stored transaction.
func (n *Node) RelayTx(hash binutil.Hash256) (*payload.Tx, bool) {
	v, ok := n.relayTx.Get(hash)
	if !ok {
		return nil, false
	}
	return v.(*payload.Tx), true
}

// IncrementPropagation bumps the peer-announcement counter for hash,
// per spec.md §3 ("relay_propagation ... count of peers that announced
// it, for metrics").
func (n *Node) IncrementPropagation(hash binutil.Hash256) {
	n.relayMu.Lock()
	defer n.relayMu.Unlock()
	n.relayPropagation[hash]++
}

// InvQueueLen reports the inventory queue's current depth, for metrics.
func (n *Node) InvQueueLen() int { return n.invQueue.Len() }

// IngestQueueLen reports the ingestion queue's current depth, for metrics.
func (n *Node) IngestQueueLen() int { return n.ingestQueue.Len() }

// Height reports the chain store's tip height, for metrics.
func (n *Node) Height() int64 { return n.store.Height() }

// RecordExternalIP votes host into the external-IP multiset (spec.md
// §9 open question 3: kept intentionally as a multiset, since repeated
// votes for the same address are a meaningful signal, not noise).
func (n *Node) RecordExternalIP(host string) {
	n.extMu.Lock()
	defer n.extMu.Unlock()
	n.externalIPs[host]++
}

// BestExternalIP returns the most-voted external IP, or "" if none has
// been recorded yet, used to populate addr.from in outbound Version
// messages.
func (n *Node) BestExternalIP() string {
	n.extMu.Lock()
	defer n.extMu.Unlock()
	var best string
	var bestCount int
	for ip, count := range n.externalIPs {
		if count > bestCount {
			best, bestCount = ip, count
		}
	}
	return best
}
