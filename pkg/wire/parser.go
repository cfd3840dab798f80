package wire

import (
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

// Handler receives one typed callback per recognized frame, per
// spec.md §4.1. It is implemented by pkg/network.Session; the parser
// itself holds no session state ("stateless with respect to the node").
type Handler interface {
	OnVersion(v *payload.Version)
	OnVerAck()
	OnInvTx(hash binutil.Hash256)
	OnInvBlock(hash binutil.Hash256)
	OnGetTx(hash binutil.Hash256)
	OnGetBlock(hash binutil.Hash256)
	OnTx(tx *payload.Tx)
	OnBlock(b *payload.Block)
	OnHeaders(h *payload.Headers)
	OnAddr(a payload.NetAddr)
	OnGetBlocks(m *payload.GetBlocks)
	OnGetHeaders(m *payload.GetHeaders)
	OnGetAddr()
	OnPing(m *payload.Ping)
	OnPong(m *payload.Pong)
	OnAlert(raw []byte)
	// OnError reports a non-fatal framing or parse error. kind is a short
	// machine-readable tag ("bad-checksum", "unknown-command",
	// "decode-error"); raw is the offending frame's undecoded payload.
	OnError(kind string, raw []byte)
}

// Parser decodes a byte stream of framed messages and dispatches typed
// callbacks to a Handler. One Parser is bound to one session's transport;
// it carries no shared/node-wide state.
type Parser struct {
	Net           protocol.Magic
	AuxPowEnabled bool
}

// NewParser returns a Parser bound to the given network magic.
func NewParser(net protocol.Magic, auxPowEnabled bool) *Parser {
	return &Parser{Net: net, AuxPowEnabled: auxPowEnabled}
}

// ReadAndDispatch reads exactly one frame from r and invokes the
// matching Handler callback. It returns ErrBadMagic (fatal — the caller
// must close the connection), an error for a declared payload length
// above MaxPayloadSize, or an io error from the transport itself. A bad
// checksum, an unknown command or an undecodable payload is reported
// through Handler.OnError and ReadAndDispatch returns nil so the session
// keeps running, per spec.md §4.1/§7.
func (p *Parser) ReadAndDispatch(r io.Reader, h Handler) error {
	var env Message
	if err := env.Decode(r); err != nil {
		if err == errBadChecksum {
			h.OnError("bad-checksum", nil)
			return nil
		}
		// Truncated/unreadable or oversized frame: propagate so the
		// session tears the connection down.
		return err
	}
	if env.Magic != p.Net {
		return ErrBadMagic
	}
	return p.dispatch(&env, h)
}

func (p *Parser) dispatch(env *Message, h Handler) error {
	switch env.Command {
	case command.Version:
		var v payload.Version
		if err := v.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		h.OnVersion(&v)
	case command.VerAck:
		h.OnVerAck()
	case command.Addr:
		var a payload.Addr
		if err := a.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		for _, rec := range a.Addrs {
			h.OnAddr(rec)
		}
	case command.GetAddr:
		h.OnGetAddr()
	case command.Inv:
		var inv payload.Inv
		if err := inv.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		for _, item := range inv.Items {
			switch item.Type {
			case payload.InvTypeTx:
				h.OnInvTx(item.Hash)
			case payload.InvTypeBlock:
				h.OnInvBlock(item.Hash)
			}
		}
	case command.GetData:
		var gd payload.GetData
		if err := gd.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		for _, item := range gd.Items {
			switch item.Type {
			case payload.InvTypeTx:
				h.OnGetTx(item.Hash)
			case payload.InvTypeBlock:
				h.OnGetBlock(item.Hash)
			}
		}
	case command.GetBlocks:
		var gb payload.GetBlocks
		if err := gb.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		h.OnGetBlocks(&gb)
	case command.GetHeaders:
		var gh payload.GetHeaders
		if err := gh.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		h.OnGetHeaders(&gh)
	case command.Headers:
		hdrs := &payload.Headers{AuxPowEnabled: p.AuxPowEnabled}
		if err := hdrs.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		h.OnHeaders(hdrs)
	case command.Block:
		b := &payload.Block{AuxPowEnabled: p.AuxPowEnabled}
		if err := b.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		h.OnBlock(b)
	case command.TX:
		var tx payload.Tx
		if err := tx.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		h.OnTx(&tx)
	case command.Ping:
		var ping payload.Ping
		if err := ping.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		h.OnPing(&ping)
	case command.Pong:
		var pong payload.Pong
		if err := pong.Decode(bytesReader(env.Payload)); err != nil {
			h.OnError("decode-error", env.Payload)
			return nil
		}
		h.OnPong(&pong)
	case command.Alert:
		h.OnAlert(env.Payload)
	default:
		h.OnError("unknown-command", env.Payload)
	}
	return nil
}

// bytesReader avoids importing bytes at every call site above.
func bytesReader(b []byte) io.Reader {
	return &byteSliceReader{b: b}
}

type byteSliceReader struct {
	b   []byte
	pos int
}

func (r *byteSliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}
