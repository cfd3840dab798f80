package payload

import (
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// Tx carries a transaction as an opaque, still-serialized blob. Like
// Block, its structure is owned by the chain store, not the session.
type Tx struct {
	Raw []byte
}

// Command implements Message.
func (*Tx) Command() command.Type { return command.TX }

// Hash returns the transaction's identity hash.
func (t *Tx) Hash() binutil.Hash256 { return binutil.HashDoubleSHA256(t.Raw) }

// Encode implements Message.
func (t *Tx) Encode(w io.Writer) error {
	_, err := w.Write(t.Raw)
	return err
}

// Decode implements Message.
func (t *Tx) Decode(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	t.Raw = b
	return nil
}
