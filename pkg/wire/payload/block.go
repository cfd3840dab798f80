package payload

import (
	"bytes"
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// Block is a full block: header plus the raw, still-serialized
// transaction body. Session code never decodes the transaction list —
// that belongs to the chain store (spec.md §1, "deliberately out of
// scope": block/tx validation).
type Block struct {
	Header BlockHeader
	// TxData is the VarUint tx-count plus the raw serialized
	// transactions, copied through unparsed.
	TxData []byte

	AuxPowEnabled bool
}

// Command implements Message.
func (*Block) Command() command.Type { return command.Block }

// Hash returns the block's identity hash (the header hash).
func (b *Block) Hash() binutil.Hash256 { return b.Header.Hash() }

// Encode implements Message.
func (b *Block) Encode(w io.Writer) error {
	if err := b.Header.EncodeWithAuxPow(w, b.AuxPowEnabled); err != nil {
		return err
	}
	_, err := w.Write(b.TxData)
	return err
}

// Decode implements Message.
func (b *Block) Decode(r io.Reader) error {
	if err := b.Header.DecodeWithAuxPow(r, b.AuxPowEnabled); err != nil {
		return err
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.TxData = rest
	return nil
}

// Bytes serializes the block for passing to the chain store's append
// path or the ingestion queue.
func (b *Block) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := b.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
