package network

import (
	"bytes"
	"math/rand"
	"time"

	"github.com/goldrelay/goldrelay/pkg/wire"
	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

// send writes one framed, typed payload to the peer. Writes from a
// single session are serialized (spec.md §5, "Outbound writes from a
// single session are serialized").
func (s *Session) send(p payload.Message) error {
	buf := new(bytes.Buffer)
	if err := p.Encode(buf); err != nil {
		return err
	}
	msg := wire.NewMessage(s.node.cfg.Protocol.Magic, p.Command(), buf.Bytes())

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return msg.Encode(s.conn)
}

// sendVersion implements send_version (spec.md §4.4).
func (s *Session) sendVersion() error {
	s.mu.Lock()
	if s.versionSent {
		s.mu.Unlock()
		return nil
	}
	s.versionSent = true
	s.mu.Unlock()

	to := payload.NewNetAddr(time.Time{}, s.remoteHost, s.remotePort, protocol.NodeNetwork)
	fromHost := s.node.BestExternalIP()
	listenPort, _ := parsePort(addrPort(s.node.cfg.Application.ListenAddress))
	from := payload.NewNetAddr(time.Time{}, fromHost, listenPort, protocol.NodeNetwork)

	v := payload.NewVersion(rand.Uint64(), int32(s.node.store.Height()), to, from)
	return s.send(v)
}

func addrPort(listenAddr string) string {
	for i := len(listenAddr) - 1; i >= 0; i-- {
		if listenAddr[i] == ':' {
			return listenAddr[i+1:]
		}
	}
	return listenAddr
}

// sendVerAck replies to a received Version (spec.md §4.2).
func (s *Session) sendVerAck() error {
	s.mu.Lock()
	if s.verackSent {
		s.mu.Unlock()
		return nil
	}
	s.verackSent = true
	s.mu.Unlock()
	return s.send(&payload.VerAck{})
}

// sendInv implements send_inv: batched in slices of up to 251 hashes
// (spec.md §4.4, testable property 9).
func (s *Session) sendInv(kind InvKind, hashes []binutil.Hash256) error {
	invType := payload.InvTypeTx
	if kind == InvBlock {
		invType = payload.InvTypeBlock
	}
	for _, batch := range payload.BatchInv(invType, hashes) {
		if err := s.send(batch); err != nil {
			return err
		}
	}
	return nil
}

// sendGetDataTx implements send_getdata_tx (spec.md §4.4).
func (s *Session) sendGetDataTx(hash binutil.Hash256) error {
	return s.send(payload.NewGetData(payload.InvTypeTx, hash))
}

// sendGetDataBlock implements send_getdata_block (spec.md §4.4).
func (s *Session) sendGetDataBlock(hash binutil.Hash256) error {
	return s.send(payload.NewGetData(payload.InvTypeBlock, hash))
}

// sendGetBlocks implements send_getblocks: an empty chain requests the
// genesis block instead and re-arms after 3 seconds (spec.md §4.4,
// testable property 10).
func (s *Session) sendGetBlocks(locator []binutil.Hash256) error {
	return s.sendLocatorRequest(locator, false)
}

// sendGetHeaders implements send_getheaders, same shape as
// sendGetBlocks (spec.md §4.4).
func (s *Session) sendGetHeaders(locator []binutil.Hash256) error {
	return s.sendLocatorRequest(locator, true)
}

func (s *Session) sendLocatorRequest(locator []binutil.Hash256, headersOnly bool) error {
	if s.node.store.Height() == -1 {
		if err := s.getGenesisBlock(); err != nil {
			return err
		}
		time.AfterFunc(3*time.Second, func() {
			_ = s.sendLocatorRequest(locator, headersOnly)
		})
		return nil
	}
	if locator == nil {
		locator = s.node.store.Locator()
	}
	if headersOnly {
		gh := &payload.GetHeaders{}
		gh.Version = protocol.NodeVersion
		gh.Locator = locator
		return s.send(gh)
	}
	gb := &payload.GetBlocks{}
	gb.Version = protocol.NodeVersion
	gb.Locator = locator
	return s.send(gb)
}

// sendPing implements send_ping (spec.md §4.4): peers above
// BIP0031_VERSION get a nonce and a liveness timeout; older peers get
// a nonce-less ping, no timeout is armed, and latency is set to the
// StallTimeout ceiling since it cannot be measured.
func (s *Session) sendPing() error {
	v := s.Version()
	if v == nil || v.ProtocolVersion <= protocol.BIP0031Version {
		s.mu.Lock()
		s.latencyMS = float64(s.node.cfg.Application.StallTimeout.Milliseconds())
		s.mu.Unlock()
		return s.send(&payload.Ping{HasNonce: false})
	}

	nonce := rand.Uint32()
	s.mu.Lock()
	s.lastPingNonce = &nonce
	s.pingSentAt = time.Now()
	s.mu.Unlock()

	if err := s.send(&payload.Ping{HasNonce: true, Nonce: nonce}); err != nil {
		return err
	}
	s.stalls.AddMessage(command.Ping)
	return nil
}

func (s *Session) sendPong(nonce uint32) error {
	return s.send(&payload.Pong{Nonce: nonce})
}

// sendTx/sendBlock/sendHeaders/sendAddr answer get_tx/get_block/
// getheaders/getaddr (spec.md §4.3).
func (s *Session) sendTx(tx *payload.Tx) error          { return s.send(tx) }
func (s *Session) sendBlock(b *payload.Block) error     { return s.send(b) }
func (s *Session) sendHeaders(h *payload.Headers) error { return s.send(h) }

func (s *Session) sendAddr(addrs []payload.NetAddr) error {
	return s.send(&payload.Addr{Addrs: addrs})
}

// getGenesisBlock implements get_genesis_block (spec.md §4.4).
func (s *Session) getGenesisBlock() error {
	return s.sendGetDataBlock(s.node.genesisHash)
}
