package payload_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

func TestHeadersRoundTrip(t *testing.T) {
	h := &payload.Headers{Items: []*payload.BlockHeader{
		sampleHeader(),
		sampleHeader(),
	}}

	var buf bytes.Buffer
	require.NoError(t, h.Encode(&buf))

	back := &payload.Headers{}
	require.NoError(t, back.Decode(&buf))
	require.Len(t, back.Items, 2)
	assert.Equal(t, h.Items[0].Hash(), back.Items[0].Hash())
}

func TestHeadersEncodeRejectsOversizedBatch(t *testing.T) {
	items := make([]*payload.BlockHeader, payload.MaxHeadersPerMessage+1)
	for i := range items {
		items[i] = sampleHeader()
	}
	h := &payload.Headers{Items: items}

	var buf bytes.Buffer
	assert.Error(t, h.Encode(&buf))
}

func TestHeadersDecodeRejectsOversizedCount(t *testing.T) {
	var buf bytes.Buffer
	bw := &binutil.Writer{W: &buf}
	bw.VarUint(payload.MaxHeadersPerMessage + 1)
	require.NoError(t, bw.Err)

	back := &payload.Headers{}
	assert.Error(t, back.Decode(&buf))
}
