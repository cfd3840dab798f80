package network

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
)

// TestInvQueueDropsWhenFull grounds spec.md §3's "new entries are
// dropped (not blocked) when full" invariant and testable property 6.
func TestInvQueueDropsWhenFull(t *testing.T) {
	q := newInvQueue(2)
	assert.True(t, q.TryEnqueue(invItem{Hash: binutil.Hash256{0x01}}))
	assert.True(t, q.TryEnqueue(invItem{Hash: binutil.Hash256{0x02}}))
	assert.False(t, q.TryEnqueue(invItem{Hash: binutil.Hash256{0x03}}))
	assert.Equal(t, 2, q.Len())

	drained := q.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, q.Len())
}

func TestIngestQueueDropsWhenFull(t *testing.T) {
	q := newIngestQueue(1)
	assert.True(t, q.Put(ingestTx, "a"))
	assert.False(t, q.Put(ingestTx, "b"))
	assert.Equal(t, 1, q.Len())

	drained := q.Drain()
	assert.Equal(t, []ingestItem{{Kind: ingestTx, Payload: "a"}}, drained)
	assert.Equal(t, 0, q.Len())
}
