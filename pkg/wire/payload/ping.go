package payload

import (
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// Ping carries an optional nonce. Peers at or below
// protocol.BIP0031Version send/receive a nonce-less ping (HasNonce false)
// and never reply with a pong, per spec.md §4.3 on_ping.
type Ping struct {
	HasNonce bool
	Nonce    uint32
}

// Command implements Message.
func (*Ping) Command() command.Type { return command.Ping }

// Encode implements Message.
func (p *Ping) Encode(w io.Writer) error {
	if !p.HasNonce {
		return nil
	}
	bw := &binutil.Writer{W: w}
	bw.Write(p.Nonce)
	return bw.Err
}

// Decode implements Message. An empty payload decodes to HasNonce=false.
func (p *Ping) Decode(r io.Reader) error {
	br := &binutil.Reader{R: r}
	var n uint32
	br.Read(&n)
	if br.Err == io.EOF {
		p.HasNonce = false
		return nil
	}
	if br.Err != nil {
		return br.Err
	}
	p.HasNonce = true
	p.Nonce = n
	return nil
}

// Pong echoes the nonce from a Ping.
type Pong struct {
	Nonce uint32
}

// Command implements Message.
func (*Pong) Command() command.Type { return command.Pong }

// Encode implements Message.
func (p *Pong) Encode(w io.Writer) error {
	bw := &binutil.Writer{W: w}
	bw.Write(p.Nonce)
	return bw.Err
}

// Decode implements Message.
func (p *Pong) Decode(r io.Reader) error {
	br := &binutil.Reader{R: r}
	br.Read(&p.Nonce)
	return br.Err
}
