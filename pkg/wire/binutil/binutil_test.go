package binutil_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
)

func TestVarUintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 0xfc, 0xfd, 0xfe, 0xffff, 0x10000, 0xfffffffe, 0xffffffff, 0x100000000, 1 << 40}
	for _, v := range cases {
		buf := new(bytes.Buffer)
		w := &binutil.Writer{W: buf}
		w.VarUint(v)
		require.NoError(t, w.Err)

		r := &binutil.Reader{R: buf}
		assert.Equal(t, v, r.VarUint(), "round trip of %d", v)
		assert.NoError(t, r.Err)
	}
}

func TestVarBytesRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	w := &binutil.Writer{W: buf}
	w.VarBytes([]byte("hello goldrelay"))
	require.NoError(t, w.Err)

	r := &binutil.Reader{R: buf}
	assert.Equal(t, []byte("hello goldrelay"), r.VarBytes())
	assert.NoError(t, r.Err)
}

func TestVarStringRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	w := &binutil.Writer{W: buf}
	w.VarString("/goldrelay:0.1.0/")
	require.NoError(t, w.Err)

	r := &binutil.Reader{R: buf}
	assert.Equal(t, "/goldrelay:0.1.0/", r.VarString())
}

func TestVarBytesEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	w := &binutil.Writer{W: buf}
	w.VarBytes(nil)

	r := &binutil.Reader{R: buf}
	assert.Nil(t, r.VarBytes())
	assert.NoError(t, r.Err)
}

// TestBoundedVarUintRejectsOversizedCount grounds the fix for an
// unbounded-allocation decode: a peer that encodes a huge count must be
// rejected before anything is allocated from it, not crash the process.
func TestBoundedVarUintRejectsOversizedCount(t *testing.T) {
	buf := new(bytes.Buffer)
	w := &binutil.Writer{W: buf}
	w.VarUint(1 << 32)

	r := &binutil.Reader{R: buf}
	n := r.BoundedVarUint(1000)
	assert.Equal(t, uint64(0), n)
	assert.ErrorIs(t, r.Err, binutil.ErrCountTooLarge)
}

func TestBoundedVarUintAcceptsWithinBound(t *testing.T) {
	buf := new(bytes.Buffer)
	w := &binutil.Writer{W: buf}
	w.VarUint(251)

	r := &binutil.Reader{R: buf}
	assert.Equal(t, uint64(251), r.BoundedVarUint(251))
	assert.NoError(t, r.Err)
}

// TestVarBytesRejectsOversizedCount exercises the same bound through
// VarBytes's own maxAllocLen ceiling rather than an explicit caller-given
// max.
func TestVarBytesRejectsOversizedCount(t *testing.T) {
	buf := new(bytes.Buffer)
	w := &binutil.Writer{W: buf}
	w.VarUint(1 << 40)

	r := &binutil.Reader{R: buf}
	b := r.VarBytes()
	assert.Nil(t, b)
	assert.ErrorIs(t, r.Err, binutil.ErrCountTooLarge)
}

func TestReaderStickyError(t *testing.T) {
	r := &binutil.Reader{R: bytes.NewReader(nil)}
	var v uint32
	r.Read(&v)
	require.Error(t, r.Err)

	// A second Read must not overwrite or clear the first error.
	firstErr := r.Err
	r.Read(&v)
	assert.Equal(t, firstErr, r.Err)
}

func TestChecksum(t *testing.T) {
	payload := []byte("some payload bytes")
	sum := binutil.Checksum(payload)
	full := binutil.DoubleSHA256(payload)
	assert.Equal(t, full[:4], sum[:])

	// Checksum must be deterministic and sensitive to every byte.
	other := binutil.Checksum([]byte("some payload Bytes"))
	assert.NotEqual(t, sum, other)
}
