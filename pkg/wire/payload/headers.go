package payload

import (
	"errors"
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// MaxHeadersPerMessage is the headers-mode batch size from spec.md §4.3
// on_getblocks step 3 ("N = 2000 for headers mode").
const MaxHeadersPerMessage = 2000

var errTooManyHeaders = errors.New("payload: too many headers in one message")

// Headers carries a run of block headers, each followed by a trailing
// "transaction count" varint that is always zero on the wire (spec.md
// §4.3 step 4); AuxPowEnabled gates whether each header also carries an
// AuxPow trailer.
type Headers struct {
	Items         []*BlockHeader
	AuxPowEnabled bool
}

// Command implements Message.
func (*Headers) Command() command.Type { return command.Headers }

// Encode implements Message.
func (h *Headers) Encode(w io.Writer) error {
	if len(h.Items) > MaxHeadersPerMessage {
		return errTooManyHeaders
	}
	bw := &binutil.Writer{W: w}
	bw.VarUint(uint64(len(h.Items)))
	for _, hdr := range h.Items {
		if bw.Err != nil {
			break
		}
		if err := hdr.EncodeWithAuxPow(w, h.AuxPowEnabled); err != nil {
			return err
		}
		bw.VarUint(0)
	}
	return bw.Err
}

// Decode implements Message.
func (h *Headers) Decode(r io.Reader) error {
	br := &binutil.Reader{R: r}
	n := br.VarUint()
	if n > MaxHeadersPerMessage {
		return errTooManyHeaders
	}
	h.Items = make([]*BlockHeader, n)
	for i := range h.Items {
		hdr := &BlockHeader{}
		if err := hdr.DecodeWithAuxPow(r, h.AuxPowEnabled); err != nil {
			return err
		}
		txCount := br.VarUint()
		if txCount != 0 {
			return errors.New("payload: header transaction count must be zero")
		}
		h.Items[i] = hdr
	}
	return br.Err
}
