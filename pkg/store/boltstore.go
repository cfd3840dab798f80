package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

var (
	bucketBlocksByHash = []byte("blocks_by_hash")
	bucketHashByHeight = []byte("hash_by_height")
	bucketHeightByHash = []byte("height_by_hash")
	bucketTxs          = []byte("txs")
	keyTip             = []byte("tip_height")
)

// BoltDBStore is the bbolt-backed Store used by a running node. It keeps
// four top-level buckets: full blocks keyed by hash, a height->hash
// index, the reverse hash->height index, and loose transactions.
type BoltDBStore struct {
	db *bolt.DB
}

// OpenBoltDBStore opens (creating if absent) a bbolt database at path and
// ensures its buckets exist.
func OpenBoltDBStore(path string) (*BoltDBStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketBlocksByHash, bucketHashByHeight, bucketHeightByHash, bucketTxs} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init buckets: %w", err)
	}
	return &BoltDBStore{db: db}, nil
}

// Close releases the underlying bbolt file handle.
func (s *BoltDBStore) Close() error {
	return s.db.Close()
}

// Height implements Store.
func (s *BoltDBStore) Height() int64 {
	var height int64 = -1
	_ = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHashByHeight).Get(keyTip)
		if v == nil {
			return nil
		}
		height = int64(binary.BigEndian.Uint64(v))
		return nil
	})
	return height
}

// Locator implements Store: exponentially spaced steps back from the
// tip, always including height 0.
func (s *BoltDBStore) Locator() []binutil.Hash256 {
	tip := s.Height()
	if tip < 0 {
		return nil
	}
	var out []binutil.Hash256
	step := int64(1)
	idx := tip
	for count := 0; idx >= 0 && count < MaxLocatorEntries; count++ {
		hash, err := s.HashByHeight(idx)
		if err != nil {
			break
		}
		out = append(out, hash)
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
func (s *BoltDBStore) Block(hash binutil.Hash256) (*payload.Block, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlocksByHash).Get(hash[:])
		if v == nil {
			return ErrNotFound
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	b := &payload.Block{}
	if err := b.Decode(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("store: decode block: %w", err)
	}
	return b, nil
}

// Tx implements Store.
func (s *BoltDBStore) Tx(hash binutil.Hash256) (*payload.Tx, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketTxs).Get(hash[:])
		if v == nil {
			return ErrNotFound
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payload.Tx{Raw: raw}, nil
}

// HeaderByHeight implements Store.
func (s *BoltDBStore) HeaderByHeight(height int64) (*payload.BlockHeader, error) {
	hash, err := s.HashByHeight(height)
	if err != nil {
		return nil, err
	}
	b, err := s.Block(hash)
	if err != nil {
		return nil, err
	}
	return &b.Header, nil
}

// HashByHeight implements Store.
func (s *BoltDBStore) HashByHeight(height int64) (binutil.Hash256, error) {
	var hash binutil.Hash256
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHashByHeight).Get(heightKey(height))
		if v == nil {
			return ErrNotFound
		}
		copy(hash[:], v)
		return nil
	})
	if err != nil {
		return binutil.Hash256{}, err
	}
	return hash, nil
}

// HeightOf implements Store.
func (s *BoltDBStore) HeightOf(hash binutil.Hash256) (int64, error) {
	var height int64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketHeightByHash).Get(hash[:])
		if v == nil {
			return ErrNotFound
		}
		height = int64(binary.BigEndian.Uint64(v))
		return nil
	})
	if err != nil {
		return -1, err
	}
	return height, nil
}

// AppendBlock implements Store, extending the tip by one.
func (s *BoltDBStore) AppendBlock(b *payload.Block) error {
	hash := b.Hash()
	buf := new(bytes.Buffer)
	if err := b.Encode(buf); err != nil {
		return fmt.Errorf("store: encode block: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if existing := tx.Bucket(bucketHeightByHash).Get(hash[:]); existing != nil {
			return nil // already have this block, idempotent
		}
		heightBucket := tx.Bucket(bucketHashByHeight)
		next := int64(0)
		if v := heightBucket.Get(keyTip); v != nil {
			next = int64(binary.BigEndian.Uint64(v)) + 1
		}
		if err := tx.Bucket(bucketBlocksByHash).Put(hash[:], buf.Bytes()); err != nil {
			return err
		}
		if err := heightBucket.Put(heightKey(next), hash[:]); err != nil {
			return err
		}
		if err := tx.Bucket(bucketHeightByHash).Put(hash[:], encodeHeight(next)); err != nil {
			return err
		}
		return heightBucket.Put(keyTip, encodeHeight(next))
	})
}

// AppendTx implements Store.
func (s *BoltDBStore) AppendTx(t *payload.Tx) error {
	hash := t.Hash()
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTxs).Put(hash[:], t.Raw)
	})
}

func heightKey(height int64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(height))
	return k[:]
}

func encodeHeight(height int64) []byte {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(height))
	return v[:]
}
