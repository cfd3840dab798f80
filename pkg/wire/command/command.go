// Package command enumerates the fixed 12-byte command names carried in a
// message header, per spec.md §6.
package command

// Type is a wire command name, null-padded to 12 bytes on the frame.
type Type string

// The full set of commands implemented in both directions.
const (
	Version    Type = "version"
	VerAck     Type = "verack"
	Addr       Type = "addr"
	GetAddr    Type = "getaddr"
	Inv        Type = "inv"
	GetData    Type = "getdata"
	GetBlocks  Type = "getblocks"
	GetHeaders Type = "getheaders"
	Headers    Type = "headers"
	Block      Type = "block"
	TX         Type = "tx"
	Ping       Type = "ping"
	Pong       Type = "pong"
	Alert      Type = "alert"
)

// Size is the fixed width of a command field on the wire.
const Size = 12

// Bytes null-pads the command to the 12-byte wire width.
func (t Type) Bytes() [Size]byte {
	var b [Size]byte
	copy(b[:], t)
	return b
}

// FromBytes trims trailing NUL padding off a wire command field.
func FromBytes(b [Size]byte) Type {
	n := 0
	for n < Size && b[n] != 0 {
		n++
	}
	return Type(b[:n])
}
