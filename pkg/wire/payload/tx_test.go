package payload_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

func TestTxRoundTrip(t *testing.T) {
	tx := &payload.Tx{Raw: []byte{0x01, 0x00, 0x00, 0x00, 0xde, 0xad}}

	var buf bytes.Buffer
	require.NoError(t, tx.Encode(&buf))

	back := &payload.Tx{}
	require.NoError(t, back.Decode(&buf))
	assert.Equal(t, tx.Raw, back.Raw)
}

func TestTxHashIsDoubleSHA256OfRaw(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}
	tx := &payload.Tx{Raw: raw}
	assert.Equal(t, binutil.HashDoubleSHA256(raw), tx.Hash())
}
