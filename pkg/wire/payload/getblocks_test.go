package payload_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

func TestGetBlocksRoundTrip(t *testing.T) {
	g := &payload.GetBlocks{}
	g.Version = protocol.Version(70015)
	g.Locator = []binutil.Hash256{{0x01}, {0x02}, {0x03}}
	g.StopHash = binutil.Hash256{0xff}

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf))

	back := &payload.GetBlocks{}
	require.NoError(t, back.Decode(&buf))
	assert.Equal(t, g.Version, back.Version)
	assert.Equal(t, g.Locator, back.Locator)
	assert.Equal(t, g.StopHash, back.StopHash)
}

func TestGetHeadersRoundTrip(t *testing.T) {
	g := &payload.GetHeaders{}
	g.Version = protocol.Version(70015)
	g.Locator = []binutil.Hash256{{0x09}}
	g.StopHash = binutil.Hash256{0xaa}

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf))

	back := &payload.GetHeaders{}
	require.NoError(t, back.Decode(&buf))
	assert.Equal(t, g.Locator, back.Locator)
}

// TestGetBlocksDecodeRejectsOversizedLocator grounds the fix for
// locatorBody.decode's prior unbounded allocation: a peer claiming a
// locator deeper than any real chain needs must be rejected.
func TestGetBlocksDecodeRejectsOversizedLocator(t *testing.T) {
	var buf bytes.Buffer
	bw := &binutil.Writer{W: &buf}
	bw.Write(protocol.Version(70015))
	bw.VarUint(2001)
	require.NoError(t, bw.Err)

	back := &payload.GetBlocks{}
	assert.Error(t, back.Decode(&buf))
}
