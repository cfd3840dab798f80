// Package payload defines the typed body of every wire message named in
// spec.md §6, each implementing the Message interface so pkg/wire's
// framer can encode/decode them uniformly.
package payload

import (
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// Message is a typed, self-framing payload. Encode/Decode operate on the
// payload body only; the four-field envelope (magic, command, length,
// checksum) is pkg/wire.Message's job.
type Message interface {
	Command() command.Type
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}
