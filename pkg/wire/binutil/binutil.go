// Package binutil provides the little-endian binary reader/writer pair
// that every wire payload in pkg/wire/payload is built on, and the
// double-SHA256 checksum used to frame messages (spec.md §4.1, §6).
package binutil

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
)

// maxAllocLen bounds any single VarUint-derived allocation. No count
// taken from an untrusted CompactSize can plausibly need more than a
// full message payload's worth of space, so anything larger is rejected
// before allocating rather than trusted (spec.md §4.5, handler errors
// must not crash the process).
const maxAllocLen = 32 * 1024 * 1024

// ErrCountTooLarge is returned when a decoded VarUint count exceeds the
// caller's allocation bound.
var ErrCountTooLarge = errors.New("binutil: varint count exceeds maximum")

// Reader wraps an io.Reader, sticking the first error so callers can
// chain a sequence of Read calls without checking each one.
type Reader struct {
	R   io.Reader
	Err error
}

// Read decodes v (little-endian) from the underlying reader.
func (r *Reader) Read(v interface{}) {
	if r.Err != nil {
		return
	}
	r.Err = binary.Read(r.R, binary.LittleEndian, v)
}

// ReadBigEndian decodes v (big-endian); used only for IP/port fields.
func (r *Reader) ReadBigEndian(v interface{}) {
	if r.Err != nil {
		return
	}
	r.Err = binary.Read(r.R, binary.BigEndian, v)
}

// VarUint reads a Bitcoin-style CompactSize integer.
func (r *Reader) VarUint() uint64 {
	if r.Err != nil {
		return 0
	}
	var b uint8
	r.Read(&b)
	switch b {
	case 0xfd:
		var v uint16
		r.Read(&v)
		return uint64(v)
	case 0xfe:
		var v uint32
		r.Read(&v)
		return uint64(v)
	case 0xff:
		var v uint64
		r.Read(&v)
		return v
	default:
		return uint64(b)
	}
}

// BoundedVarUint reads a VarUint and rejects counts above max, for
// callers about to size an allocation off the result. Every decoder
// that allocates a slice from a wire-supplied count must route it
// through this instead of a bare VarUint.
func (r *Reader) BoundedVarUint(max uint64) uint64 {
	n := r.VarUint()
	if r.Err != nil {
		return 0
	}
	if n > max {
		r.Err = ErrCountTooLarge
		return 0
	}
	return n
}

// VarBytes reads a VarUint-prefixed byte slice.
func (r *Reader) VarBytes() []byte {
	n := r.BoundedVarUint(maxAllocLen)
	if r.Err != nil || n == 0 {
		return nil
	}
	b := make([]byte, n)
	r.Read(b)
	return b
}

// VarString reads a VarUint-prefixed string.
func (r *Reader) VarString() string {
	return string(r.VarBytes())
}

// Writer is the encoding counterpart of Reader.
type Writer struct {
	W   io.Writer
	Err error
}

// Write encodes v (little-endian) to the underlying writer.
func (w *Writer) Write(v interface{}) {
	if w.Err != nil {
		return
	}
	w.Err = binary.Write(w.W, binary.LittleEndian, v)
}

// WriteBigEndian encodes v (big-endian); used only for IP/port fields.
func (w *Writer) WriteBigEndian(v interface{}) {
	if w.Err != nil {
		return
	}
	w.Err = binary.Write(w.W, binary.BigEndian, v)
}

// VarUint writes val as a CompactSize integer.
func (w *Writer) VarUint(val uint64) {
	if w.Err != nil {
		return
	}
	switch {
	case val < 0xfd:
		w.Write(uint8(val))
	case val <= 0xffff:
		w.Write(uint8(0xfd))
		w.Write(uint16(val))
	case val <= 0xffffffff:
		w.Write(uint8(0xfe))
		w.Write(uint32(val))
	default:
		w.Write(uint8(0xff))
		w.Write(val)
	}
}

// VarBytes writes b as a VarUint-prefixed byte slice.
func (w *Writer) VarBytes(b []byte) {
	w.VarUint(uint64(len(b)))
	w.Write(b)
}

// VarString writes s as a VarUint-prefixed string.
func (w *Writer) VarString(s string) {
	w.VarBytes([]byte(s))
}

// DoubleSHA256 returns sha256(sha256(b)), the hash function used for both
// block/tx identifiers and the message checksum.
func DoubleSHA256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}

// Checksum returns the first four bytes of DoubleSHA256(payload), as
// carried in a message header.
func Checksum(payload []byte) [4]byte {
	sum := DoubleSHA256(payload)
	var c [4]byte
	copy(c[:], sum[:4])
	return c
}

// ReverseBytes returns a copy of b with byte order reversed, used to
// convert between internal (little-endian) and display (big-endian)
// hash representations.
func ReverseBytes(b []byte) []byte {
	n := len(b)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = b[n-1-i]
	}
	return out
}
