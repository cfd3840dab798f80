package payload

import (
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// VerAck has an empty body; its presence on the wire is the signal.
type VerAck struct{}

// Command implements Message.
func (VerAck) Command() command.Type { return command.VerAck }

// Encode implements Message.
func (VerAck) Encode(io.Writer) error { return nil }

// Decode implements Message.
func (*VerAck) Decode(io.Reader) error { return nil }

// GetAddr has an empty body, requesting the peer's address book.
type GetAddr struct{}

// Command implements Message.
func (GetAddr) Command() command.Type { return command.GetAddr }

// Encode implements Message.
func (GetAddr) Encode(io.Writer) error { return nil }

// Decode implements Message.
func (*GetAddr) Decode(io.Reader) error { return nil }
