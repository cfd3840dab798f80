package network

import (
	"time"

	"go.uber.org/zap"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
	"github.com/goldrelay/goldrelay/pkg/wireaddr"
)

// The methods in this file implement wire.Handler: one typed callback
// per recognized frame (spec.md §4.3, "Inbound handlers (contracts)").
// Session is the only implementation the parser ever dispatches to.

// OnVersion records the peer's handshake record exactly once, counts
// the address the peer says it reached us at (its AddrTo) as an
// external-IP vote, replies with Verack, and completes the handshake
// (spec.md §4.2).
func (s *Session) OnVersion(v *payload.Version) {
	s.mu.Lock()
	if s.version == nil {
		s.version = v
	}
	s.mu.Unlock()

	if host := v.AddrTo.IP4().String(); host != "" {
		s.node.RecordExternalIP(host)
	}

	if err := s.sendVerAck(); err != nil {
		s.disconnect("send-verack-failed")
		return
	}
	s.completeHandshake()
}

// OnVerAck completes the handshake for an outbound session once the
// peer acks our Version (spec.md §4.2's "handshake | receive Verack
// (outbound only) | connected").
func (s *Session) OnVerAck() {
	s.mu.Lock()
	s.verackRecvd = true
	s.mu.Unlock()
	s.completeHandshake()
}

// OnInvTx implements on_inv_tx: every announcement counts toward
// relay_propagation, regardless of whether we already had the hash
// (spec.md §3, §4.3).
func (s *Session) OnInvTx(hash binutil.Hash256) {
	s.node.IncrementPropagation(hash)
	s.node.invQueue.TryEnqueue(invItem{Kind: InvTx, Hash: hash, Origin: s})
}

// OnInvBlock implements on_inv_block (spec.md §4.3).
func (s *Session) OnInvBlock(hash binutil.Hash256) {
	s.node.invQueue.TryEnqueue(invItem{Kind: InvBlock, Hash: hash, Origin: s})
}

// OnGetTx implements on_get_tx: chain store first, then the relay
// cache; misses are silently ignored (spec.md §4.3).
func (s *Session) OnGetTx(hash binutil.Hash256) {
	if tx, err := s.node.store.Tx(hash); err == nil {
		_ = s.sendTx(tx)
		return
	}
	if tx, ok := s.node.RelayTx(hash); ok {
		_ = s.sendTx(tx)
	}
}

// OnGetBlock implements on_get_block (spec.md §4.3).
func (s *Session) OnGetBlock(hash binutil.Hash256) {
	b, err := s.node.store.Block(hash)
	if err != nil {
		return
	}
	_ = s.sendBlock(b)
}

// OnAddr implements on_addr (spec.md §4.3).
func (s *Session) OnAddr(a payload.NetAddr) {
	s.node.addrBook.Add(a)
	s.node.publish(Notification{Kind: NotifyAddr, Addr: a})
}

// OnTx implements on_tx: enqueue for ingestion, never validate
// in-session (spec.md §4.3).
func (s *Session) OnTx(tx *payload.Tx) {
	s.node.ingestQueue.Put(ingestTx, tx)
}

// OnBlock implements on_block (spec.md §4.3).
func (s *Session) OnBlock(b *payload.Block) {
	s.node.ingestQueue.Put(ingestBlock, b)
}

// OnHeaders implements on_headers: each header becomes its own
// ingestion item (spec.md §4.3).
func (s *Session) OnHeaders(h *payload.Headers) {
	for _, hdr := range h.Items {
		s.node.ingestQueue.Put(ingestHeader, hdr)
	}
}

// OnGetBlocks implements on_getblocks, the heaviest inbound handler
// (spec.md §4.3): duplicate suppression, locator lookup, and either a
// headers or inv reply.
func (s *Session) OnGetBlocks(m *payload.GetBlocks) {
	s.handleGetBlocks(m.Version, m.Locator, m.StopHash, false)
}

// OnGetHeaders delegates to the same logic as OnGetBlocks with
// headers_only = true (spec.md §4.3).
func (s *Session) OnGetHeaders(m *payload.GetHeaders) {
	s.handleGetBlocks(m.Version, m.Locator, m.StopHash, true)
}

func (s *Session) handleGetBlocks(protoVer protocol.Version, locator []binutil.Hash256, stop binutil.Hash256, headersOnly bool) {
	tuple := getblocksTuple{Version: protoVer, Locator: hashSliceKey(locator), StopHash: stop}
	if s.seenGetBlocks(tuple) {
		return
	}

	if len(locator) == 0 {
		return
	}
	tipHeight := s.node.store.Height()
	startHeight, err := s.node.store.HeightOf(locator[0])
	if err != nil || startHeight > tipHeight {
		// Locator fallback is explicitly unimplemented (spec.md §9
		// open question 1) — unknown or ahead-of-us tips just get no
		// reply.
		return
	}

	if headersOnly {
		s.replyHeaders(startHeight+1, int64(payload.MaxHeadersPerMessage), tipHeight)
		return
	}
	s.replyInv(startHeight+1, 500, tipHeight)
}

func (s *Session) replyHeaders(from, count, tipHeight int64) {
	hdrs := &payload.Headers{AuxPowEnabled: s.node.cfg.Protocol.AuxPowEnabled}
	for h := from; h < from+count && h <= tipHeight; h++ {
		hdr, err := s.node.store.HeaderByHeight(h)
		if err != nil {
			break
		}
		hdrs.Items = append(hdrs.Items, hdr)
	}
	if len(hdrs.Items) == 0 {
		return
	}
	_ = s.sendHeaders(hdrs)
}

func (s *Session) replyInv(from, count, tipHeight int64) {
	var hashes []binutil.Hash256
	for h := from; h < from+count && h <= tipHeight; h++ {
		hash, err := s.node.store.HashByHeight(h)
		if err != nil {
			break
		}
		hashes = append(hashes, hash)
	}
	if len(hashes) == 0 {
		return
	}
	_ = s.sendInv(InvBlock, hashes)
}

// OnGetAddr implements on_getaddr (spec.md §4.3): our own address (if
// configured to announce) plus a fresh sample, capped at 251 total.
func (s *Session) OnGetAddr() {
	sample := s.node.addrBook.Sample(maxSampled, freshWindow)
	var out []payload.NetAddr
	if s.node.cfg.Application.Announce {
		out = append(out, s.ownAddr())
	}
	out = append(out, sample...)
	if len(out) > maxSampled+1 {
		out = out[:maxSampled+1]
	}
	if s.log.Core().Enabled(zap.DebugLevel) {
		ids := make([]string, len(out))
		for i, a := range out {
			ids[i] = wireaddr.Encode(a)
		}
		s.log.Debug("getaddr reply", zap.Strings("identities", ids))
	}
	_ = s.sendAddr(out)
}

// OnPing implements on_ping: nonce-bearing pings get a pong; nonce-less
// pings (pre-BIP0031 peers) get nothing (spec.md §4.3).
func (s *Session) OnPing(p *payload.Ping) {
	if !p.HasNonce {
		return
	}
	_ = s.sendPong(p.Nonce)
}

// OnPong implements on_pong: only a matching nonce updates latency
// (spec.md §4.3, §3 invariant "unmatched pongs are ignored").
func (s *Session) OnPong(p *payload.Pong) {
	s.mu.Lock()
	matches := s.lastPingNonce != nil && *s.lastPingNonce == p.Nonce
	if matches {
		s.latencyMS = float64(time.Since(s.pingSentAt).Milliseconds())
		s.lastPingNonce = nil
	}
	s.mu.Unlock()
	if matches {
		s.stalls.RemoveMessage(command.Ping)
	}
}

// OnAlert implements on_alert: log and discard, never parsed (spec.md
// §4.3).
func (s *Session) OnAlert(raw []byte) {
	s.log.Debug("alert received, discarding", zap.Int("bytes", len(raw)))
}

// OnError implements wire.Handler's non-fatal error report (spec.md
// §4.1/§7): log and continue, the session is never torn down for this.
func (s *Session) OnError(kind string, raw []byte) {
	s.log.Warn("frame error", zap.String("kind", kind), zap.Int("bytes", len(raw)))
}

// seenGetBlocks implements the duplicate-suppression memory: a
// fixed-capacity ring of at most 3 tuples, oldest evicted first
// (spec.md §3, §9).
func (s *Session) seenGetBlocks(t getblocksTuple) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.dupMemory {
		if existing == t {
			return true
		}
	}
	s.dupMemory = append(s.dupMemory, t)
	if len(s.dupMemory) > maxDupMemory {
		s.dupMemory = s.dupMemory[len(s.dupMemory)-maxDupMemory:]
	}
	return false
}

func hashSliceKey(hashes []binutil.Hash256) string {
	buf := make([]byte, 0, len(hashes)*32)
	for _, h := range hashes {
		buf = append(buf, h[:]...)
	}
	return string(buf)
}
