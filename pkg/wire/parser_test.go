package wire_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/wire"
	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

// stubHandler records which callback fired, satisfying wire.Handler.
type stubHandler struct {
	pings    int
	errKind  string
	versions []*payload.Version
}

func (s *stubHandler) OnVersion(v *payload.Version)         { s.versions = append(s.versions, v) }
func (s *stubHandler) OnVerAck()                            {}
func (s *stubHandler) OnInvTx(binutil.Hash256)              {}
func (s *stubHandler) OnInvBlock(binutil.Hash256)           {}
func (s *stubHandler) OnGetTx(binutil.Hash256)              {}
func (s *stubHandler) OnGetBlock(binutil.Hash256)           {}
func (s *stubHandler) OnTx(*payload.Tx)                     {}
func (s *stubHandler) OnBlock(*payload.Block)               {}
func (s *stubHandler) OnHeaders(*payload.Headers)           {}
func (s *stubHandler) OnAddr(payload.NetAddr)                {}
func (s *stubHandler) OnGetBlocks(*payload.GetBlocks)       {}
func (s *stubHandler) OnGetHeaders(*payload.GetHeaders)     {}
func (s *stubHandler) OnGetAddr()                           {}
func (s *stubHandler) OnPing(*payload.Ping)                 { s.pings++ }
func (s *stubHandler) OnPong(*payload.Pong)                 {}
func (s *stubHandler) OnAlert([]byte)                       {}
func (s *stubHandler) OnError(kind string, raw []byte)      { s.errKind = kind }

func frame(t *testing.T, magic protocol.Magic, cmd command.Type, body []byte) []byte {
	t.Helper()
	raw, err := wire.NewMessage(magic, cmd, body).Bytes()
	require.NoError(t, err)
	return raw
}

func TestReadAndDispatchPing(t *testing.T) {
	p := wire.NewParser(protocol.RegTest, false)
	h := &stubHandler{}

	var body bytes.Buffer
	bw := &binutil.Writer{W: &body}
	bw.Write(uint32(42))
	require.NoError(t, bw.Err)

	raw := frame(t, protocol.RegTest, command.Ping, body.Bytes())
	require.NoError(t, p.ReadAndDispatch(bytes.NewReader(raw), h))
	assert.Equal(t, 1, h.pings)
}

func TestReadAndDispatchBadMagic(t *testing.T) {
	p := wire.NewParser(protocol.MainNet, false)
	h := &stubHandler{}

	raw := frame(t, protocol.RegTest, command.Ping, nil)
	err := p.ReadAndDispatch(bytes.NewReader(raw), h)
	assert.ErrorIs(t, err, wire.ErrBadMagic)
}

func TestReadAndDispatchDecodeErrorReportsNotPropagates(t *testing.T) {
	p := wire.NewParser(protocol.RegTest, false)
	h := &stubHandler{}

	// A Version payload truncated mid-field fails to decode, but that's
	// a per-frame error, not a transport error: ReadAndDispatch must
	// still return nil so the session keeps running (spec.md §4.1/§7).
	raw := frame(t, protocol.RegTest, command.Version, []byte{0x01, 0x02})
	require.NoError(t, p.ReadAndDispatch(bytes.NewReader(raw), h))
	assert.Equal(t, "decode-error", h.errKind)
	assert.Empty(t, h.versions)
}

func TestReadAndDispatchUnknownCommand(t *testing.T) {
	p := wire.NewParser(protocol.RegTest, false)
	h := &stubHandler{}

	raw := frame(t, protocol.RegTest, command.Type("bogus"), nil)
	require.NoError(t, p.ReadAndDispatch(bytes.NewReader(raw), h))
	assert.Equal(t, "unknown-command", h.errKind)
}
