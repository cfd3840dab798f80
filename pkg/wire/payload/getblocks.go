package payload

import (
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

// maxLocatorHashes bounds a single locator: the exponential-gap scheme
// in the GLOSSARY never needs more than a few dozen hashes even for a
// chain with billions of blocks, so this is already generous headroom.
const maxLocatorHashes = 2000

// locatorBody is the shared wire shape of GetBlocks and GetHeaders: a
// protocol version, a block locator (tip-to-genesis hashes with
// exponential gaps, per the GLOSSARY) and a stop hash.
type locatorBody struct {
	Version  protocol.Version
	Locator  []binutil.Hash256
	StopHash binutil.Hash256
}

func (b *locatorBody) encode(w io.Writer) error {
	bw := &binutil.Writer{W: w}
	bw.Write(b.Version)
	bw.VarUint(uint64(len(b.Locator)))
	for i := range b.Locator {
		bw.Write(b.Locator[i])
	}
	bw.Write(b.StopHash)
	return bw.Err
}

func (b *locatorBody) decode(r io.Reader) error {
	br := &binutil.Reader{R: r}
	br.Read(&b.Version)
	n := br.BoundedVarUint(maxLocatorHashes)
	if br.Err != nil {
		return br.Err
	}
	b.Locator = make([]binutil.Hash256, n)
	for i := range b.Locator {
		br.Read(&b.Locator[i])
	}
	br.Read(&b.StopHash)
	return br.Err
}

// GetBlocks requests an inv batch of up to 500 block hashes following the
// locator's first common ancestor (spec.md §4.3 on_getblocks).
type GetBlocks struct{ locatorBody }

// Command implements Message.
func (*GetBlocks) Command() command.Type { return command.GetBlocks }

// Encode implements Message.
func (g *GetBlocks) Encode(w io.Writer) error { return g.locatorBody.encode(w) }

// Decode implements Message.
func (g *GetBlocks) Decode(r io.Reader) error { return g.locatorBody.decode(r) }

// GetHeaders has the identical wire shape as GetBlocks but asks for up to
// 2000 serialized headers instead of an inv batch (spec.md §4.3
// on_getheaders delegates to on_getblocks with headers_only=true).
type GetHeaders struct{ locatorBody }

// Command implements Message.
func (*GetHeaders) Command() command.Type { return command.GetHeaders }

// Encode implements Message.
func (g *GetHeaders) Encode(w io.Writer) error { return g.locatorBody.encode(w) }

// Decode implements Message.
func (g *GetHeaders) Decode(r io.Reader) error { return g.locatorBody.decode(r) }
