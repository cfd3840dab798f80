package payload_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

func TestInvRoundTrip(t *testing.T) {
	hash := binutil.Hash256{0x01, 0x02}
	inv := payload.NewGetData(payload.InvTypeTx, hash)

	var buf bytes.Buffer
	require.NoError(t, inv.Encode(&buf))

	var back payload.GetData
	require.NoError(t, back.Decode(&buf))
	require.Len(t, back.Items, 1)
	assert.Equal(t, payload.InvTypeTx, back.Items[0].Type)
	assert.Equal(t, hash, back.Items[0].Hash)
}

func TestBatchInvSplitsAtMax(t *testing.T) {
	hashes := make([]binutil.Hash256, payload.MaxInvPerMessage+10)
	for i := range hashes {
		hashes[i][0] = byte(i)
	}
	batches := payload.BatchInv(payload.InvTypeBlock, hashes)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0].Items, payload.MaxInvPerMessage)
	assert.Len(t, batches[1].Items, 10)
}

// TestInvDecodeRejectsOversizedCount grounds the fix for invList.decode's
// prior unbounded allocation.
func TestInvDecodeRejectsOversizedCount(t *testing.T) {
	var buf bytes.Buffer
	bw := &binutil.Writer{W: &buf}
	bw.VarUint(payload.MaxInvPerMessage + 1)
	require.NoError(t, bw.Err)

	var back payload.Inv
	assert.Error(t, back.Decode(&buf))
}
