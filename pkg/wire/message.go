// Package wire implements the Frame Parser and Message Codec of
// spec.md §4.1/§6: the four-field envelope (magic, command, length,
// checksum) that every payload.Message travels in, and the Parser that
// turns a byte stream into typed handler callbacks.
package wire

import (
	"bytes"
	"errors"
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

// MaxPayloadSize bounds a single message body; anything larger is a
// framing error (adversarial input protection per spec.md §4.1).
const MaxPayloadSize = 32 * 1024 * 1024

// ErrBadMagic is returned by Parser when a frame's network magic doesn't
// match ours; per spec.md §4.1 this is the one framing error that must
// disconnect rather than merely being reported and skipped.
var ErrBadMagic = errors.New("wire: network magic mismatch")

var errBadChecksum = errors.New("wire: checksum mismatch")
var errPayloadTooLarge = errors.New("wire: payload exceeds maximum size")

// Message is the raw framed envelope: magic, a 12-byte command, the
// payload length and its checksum, plus the undecoded payload bytes.
type Message struct {
	Magic    protocol.Magic
	Command  command.Type
	Length   uint32
	Checksum [4]byte
	Payload  []byte
}

// NewMessage frames payload under the given network and command.
func NewMessage(net protocol.Magic, cmd command.Type, payload []byte) *Message {
	return &Message{
		Magic:    net,
		Command:  cmd,
		Length:   uint32(len(payload)),
		Checksum: binutil.Checksum(payload),
		Payload:  payload,
	}
}

// Encode writes the envelope (magic, command, length, checksum, payload)
// to w.
func (m *Message) Encode(w io.Writer) error {
	bw := &binutil.Writer{W: w}
	bw.Write(m.Magic)
	cmd := m.Command.Bytes()
	bw.Write(cmd)
	bw.Write(m.Length)
	bw.Write(m.Checksum)
	bw.Write(m.Payload)
	return bw.Err
}

// Decode reads one envelope from r. It does not itself enforce the magic
// check (that's Parser's job, since it alone knows which network this
// session belongs to) but it does reject a checksum mismatch.
func (m *Message) Decode(r io.Reader) error {
	br := &binutil.Reader{R: r}
	br.Read(&m.Magic)
	var cmd [command.Size]byte
	br.Read(&cmd)
	m.Command = command.FromBytes(cmd)
	br.Read(&m.Length)
	br.Read(&m.Checksum)
	if br.Err != nil {
		return br.Err
	}
	if m.Length > MaxPayloadSize {
		return errPayloadTooLarge
	}
	m.Payload = make([]byte, m.Length)
	br.Read(m.Payload)
	if br.Err != nil {
		return br.Err
	}
	if binutil.Checksum(m.Payload) != m.Checksum {
		return errBadChecksum
	}
	return nil
}

// Bytes returns the fully framed byte slice.
func (m *Message) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := m.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
