package binutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
)

func TestHash256StringRoundTrip(t *testing.T) {
	h := binutil.HashDoubleSHA256([]byte("goldrelay"))
	assert.Len(t, h.String(), 64)

	back, err := binutil.Hash256FromString(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, back)
}

func TestHash256IsZero(t *testing.T) {
	var h binutil.Hash256
	assert.True(t, h.IsZero())

	h[0] = 0x01
	assert.False(t, h.IsZero())
}

func TestHash256FromStringRejectsWrongLength(t *testing.T) {
	_, err := binutil.Hash256FromString("abcd")
	assert.Error(t, err)
}

func TestHash256FromStringRejectsNonHex(t *testing.T) {
	_, err := binutil.Hash256FromString(
		"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")
	assert.Error(t, err)
}
