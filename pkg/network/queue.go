package network

import (
	"sync"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
)

// InvKind distinguishes the two object kinds carried through the
// inventory and ingestion queues.
type InvKind int

const (
	InvTx InvKind = iota
	InvBlock
)

// invItem is one entry of the Node Context's inv_queue: an
// announcement awaiting a getdata decision (spec.md §3).
type invItem struct {
	Kind   InvKind
	Hash   binutil.Hash256
	Origin *Session
}

// invQueue is the bounded, advisory-checked work queue backing
// on_inv_tx/on_inv_block: "check-then-enqueue... new entries are
// dropped (not blocked) when full" (spec.md §3 invariants, §5 shared
// resource policy).
type invQueue struct {
	mu    sync.Mutex
	items []invItem
	max   int
}

func newInvQueue(max int) *invQueue {
	return &invQueue{max: max}
}

// TryEnqueue appends item unless the queue is already at capacity, in
// which case it silently drops it and returns false.
func (q *invQueue) TryEnqueue(item invItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.max {
		return false
	}
	q.items = append(q.items, item)
	return true
}

// Len reports the current queue depth.
func (q *invQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain removes and returns everything currently queued, for an
// external dispatcher to turn into getdata requests.
func (q *invQueue) Drain() []invItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// ingestKind distinguishes the payloads flowing through the ingestion
// queue.
type ingestKind int

const (
	ingestTx ingestKind = iota
	ingestBlock
	ingestHeader
)

type ingestItem struct {
	Kind    ingestKind
	Payload interface{}
}

// ingestQueue is the bounded pipeline feeding the chain store, adapted
// from the teacher's pkg/network/bqueue.Queue: Put never blocks the
// session, dropping silently once full, mirroring invQueue's
// policy (spec.md §3, "queue: ingestion queue ... for block/tx
// processing by the chain store").
type ingestQueue struct {
	mu    sync.Mutex
	items []ingestItem
	max   int
}

func newIngestQueue(max int) *ingestQueue {
	return &ingestQueue{max: max}
}

func (q *ingestQueue) Put(kind ingestKind, payload interface{}) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.max {
		return false
	}
	q.items = append(q.items, ingestItem{Kind: kind, Payload: payload})
	return true
}

func (q *ingestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain removes and returns everything queued, for the external
// ingestion worker to apply to the chain store.
func (q *ingestQueue) Drain() []ingestItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
