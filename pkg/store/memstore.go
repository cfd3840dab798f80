package store

import (
	"sync"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

// MaxLocatorEntries bounds how many hashes Locator returns.
const MaxLocatorEntries = 32

// Mem is an in-memory Store used by session/queue tests and by
// single-process demos. It is safe for concurrent use.
type Mem struct {
	mu         sync.RWMutex
	byHash     map[binutil.Hash256]*payload.Block
	byHeight   []binutil.Hash256
	txs        map[binutil.Hash256]*payload.Tx
	genesis    binutil.Hash256
	hasGenesis bool
}

// NewMem returns an empty in-memory store.
func NewMem() *Mem {
	return &Mem{
		byHash: make(map[binutil.Hash256]*payload.Block),
		txs:    make(map[binutil.Hash256]*payload.Tx),
	}
}

// Height implements Store.
func (m *Mem) Height() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.byHeight)) - 1
}

// Locator implements Store, producing exponentially-spaced steps back
// from the tip, terminating at genesis.
func (m *Mem) Locator() []binutil.Hash256 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.byHeight)
	if n == 0 {
		return nil
	}
	var out []binutil.Hash256
	step := 1
	idx := n - 1
	for count := 0; idx >= 0 && count < MaxLocatorEntries; count++ {
		out = append(out, m.byHeight[idx])
		if idx == 0 {
			break
		}
		if count >= 10 {
			step *= 2
		}
		idx -= step
		if idx < 0 {
			idx = 0
		}
	}
	return out
}

// Block implements Store.
func (m *Mem) Block(hash binutil.Hash256) (*payload.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.byHash[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// Tx implements Store.
func (m *Mem) Tx(hash binutil.Hash256) (*payload.Tx, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.txs[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

// HeaderByHeight implements Store.
func (m *Mem) HeaderByHeight(height int64) (*payload.BlockHeader, error) {
	hash, err := m.HashByHeight(height)
	if err != nil {
		return nil, err
	}
	b, err := m.Block(hash)
	if err != nil {
		return nil, err
	}
	return &b.Header, nil
}

// HashByHeight implements Store.
func (m *Mem) HashByHeight(height int64) (binutil.Hash256, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if height < 0 || height >= int64(len(m.byHeight)) {
		return binutil.Hash256{}, ErrNotFound
	}
	return m.byHeight[height], nil
}

// HeightOf implements Store.
func (m *Mem) HeightOf(hash binutil.Hash256) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, h := range m.byHeight {
		if h == hash {
			return int64(i), nil
		}
	}
	return -1, ErrNotFound
}

// AppendBlock implements Store. A new block is stored at the next
// height; its PrevHash is not checked against the current tip, since
// ordering/validity are the external validator's responsibility.
// Appending a block whose hash is already stored is a no-op.
func (m *Mem) AppendBlock(b *payload.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash := b.Hash()
	if _, ok := m.byHash[hash]; ok {
		return nil // already have it, idempotent
	}
	m.byHash[hash] = b
	m.byHeight = append(m.byHeight, hash)
	if !m.hasGenesis {
		m.genesis = hash
		m.hasGenesis = true
	}
	return nil
}

// AppendTx implements Store.
func (m *Mem) AppendTx(tx *payload.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[tx.Hash()] = tx
	return nil
}

// Genesis returns the first appended block's hash, or the zero hash if
// the store is empty.
func (m *Mem) Genesis() binutil.Hash256 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.genesis
}
