package payload

import (
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// MaxAddrPerMessage caps the number of addresses a single Addr message
// may carry, matching spec.md §4.3 on_getaddr's "at most 251" bound (own
// address plus the 250-address sample).
const MaxAddrPerMessage = 251

// Addr carries a batch of address-book records, sent unsolicited on
// connect (when announce is enabled) or in reply to GetAddr.
type Addr struct {
	Addrs []NetAddr
}

// Command implements Message.
func (*Addr) Command() command.Type { return command.Addr }

// Encode implements Message.
func (a *Addr) Encode(w io.Writer) error {
	bw := &binutil.Writer{W: w}
	encodeAddrList(bw, a.Addrs)
	return bw.Err
}

// Decode implements Message.
func (a *Addr) Decode(r io.Reader) error {
	br := &binutil.Reader{R: r}
	a.Addrs = decodeAddrList(br)
	return br.Err
}
