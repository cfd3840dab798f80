package payload_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

func TestBlockRoundTripNoAux(t *testing.T) {
	b := &payload.Block{Header: *sampleHeader(), TxData: []byte{0x01, 0xde, 0xad}}

	raw, err := b.Bytes()
	require.NoError(t, err)

	back := &payload.Block{}
	require.NoError(t, back.Decode(bytes.NewReader(raw)))
	assert.Equal(t, b.Header.Hash(), back.Header.Hash())
	assert.Equal(t, b.TxData, back.TxData)
}

func TestBlockRoundTripWithAuxPow(t *testing.T) {
	b := &payload.Block{
		Header: *sampleHeader(),
		AuxPowEnabled: true,
		TxData: []byte{0x00},
	}
	b.Header.AuxPow = &payload.AuxPow{ParentHeader: *sampleHeader()}

	var buf bytes.Buffer
	require.NoError(t, b.Encode(&buf))

	back := &payload.Block{AuxPowEnabled: true}
	require.NoError(t, back.Decode(&buf))
	require.NotNil(t, back.Header.AuxPow)
	assert.Equal(t, b.TxData, back.TxData)
}

func TestBlockHashIsHeaderHash(t *testing.T) {
	b := &payload.Block{Header: *sampleHeader()}
	assert.Equal(t, b.Header.Hash(), b.Hash())
}
