// Package store defines the Chain Store interface consumed by the peer
// session engine (spec.md §2 item 5, §6 "Chain Store interface
// (consumed)") and ships two implementations so the rest of the module
// is testable end to end: an in-memory store for unit tests and a
// bbolt-backed store for a real node. Block/transaction validation is
// explicitly out of scope (spec.md §1) — both implementations just
// accept whatever they're given an append path for.
package store

import (
	"errors"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

// ErrNotFound is returned by Block/Tx lookups that miss.
var ErrNotFound = errors.New("store: not found")

// Store is the authoritative block/tx repository a Node Context holds a
// handle to. Height, Locator, Block and Tx are read paths the session
// calls synchronously and must be O(1)/cache-backed (spec.md §5); AppendBlock
// and AppendTx are the only write path, invoked by the external ingestion
// worker that drains the Node Context's queue — never by the session
// itself.
type Store interface {
	// Height returns the current tip height, or -1 if the chain is empty.
	Height() int64

	// Locator returns an ordered list of block hashes from the tip
	// backwards with exponentially growing gaps (the GLOSSARY's
	// "Locator"), used to answer our own getblocks/getheaders requests.
	Locator() []binutil.Hash256

	// Block looks up a full block by hash.
	Block(hash binutil.Hash256) (*payload.Block, error)

	// Tx looks up a transaction by hash.
	Tx(hash binutil.Hash256) (*payload.Tx, error)

	// HeaderByHeight returns just the header at a given height, used to
	// answer getheaders/getblocks without materializing full blocks.
	HeaderByHeight(height int64) (*payload.BlockHeader, error)

	// HashByHeight returns the hash of the block at a given height, or
	// ErrNotFound if height is out of range.
	HashByHeight(height int64) (binutil.Hash256, error)

	// HeightOf returns the height of a block known to be on the main
	// chain, or ErrNotFound.
	HeightOf(hash binutil.Hash256) (int64, error)

	// AppendBlock persists a validated block. Called only by the
	// external ingestion worker, never inline in a session callback.
	AppendBlock(b *payload.Block) error

	// AppendTx persists a validated, already-mempool-accepted
	// transaction.
	AppendTx(tx *payload.Tx) error
}
