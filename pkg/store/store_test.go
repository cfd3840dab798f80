package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldrelay/goldrelay/pkg/store"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
)

func openBoltStore(t *testing.T) *store.BoltDBStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.bolt")
	db, err := store.OpenBoltDBStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	return db
}

func testBlock(nonce uint32) *payload.Block {
	return &payload.Block{
		Header: payload.BlockHeader{
			Version: 1,
			Time:    1600000000,
			Bits:    0x1d00ffff,
			Nonce:   nonce,
		},
		TxData: []byte{0x00},
	}
}

func runStoreSuite(t *testing.T, s store.Store) {
	require.Equal(t, int64(-1), s.Height())
	require.Nil(t, s.Locator())

	genesis := testBlock(1)
	require.NoError(t, s.AppendBlock(genesis))
	require.Equal(t, int64(0), s.Height())

	second := testBlock(2)
	require.NoError(t, s.AppendBlock(second))
	require.Equal(t, int64(1), s.Height())

	// Appending the same block twice is a no-op, not a fork.
	require.NoError(t, s.AppendBlock(second))
	require.Equal(t, int64(1), s.Height())

	gotHash, err := s.HashByHeight(0)
	require.NoError(t, err)
	require.Equal(t, genesis.Hash(), gotHash)

	height, err := s.HeightOf(second.Hash())
	require.NoError(t, err)
	require.Equal(t, int64(1), height)

	hdr, err := s.HeaderByHeight(1)
	require.NoError(t, err)
	require.Equal(t, second.Header.Nonce, hdr.Nonce)

	_, err = s.HashByHeight(99)
	require.ErrorIs(t, err, store.ErrNotFound)

	loc := s.Locator()
	require.NotEmpty(t, loc)
	require.Equal(t, second.Hash(), loc[0])
	require.Equal(t, genesis.Hash(), loc[len(loc)-1])

	tx := &payload.Tx{Raw: []byte{0x01, 0x02, 0x03}}
	require.NoError(t, s.AppendTx(tx))
	gotTx, err := s.Tx(tx.Hash())
	require.NoError(t, err)
	require.Equal(t, tx.Raw, gotTx.Raw)

	_, err = s.Tx(genesis.Hash())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemStore(t *testing.T) {
	runStoreSuite(t, store.NewMem())
}

func TestBoltDBStore(t *testing.T) {
	runStoreSuite(t, openBoltStore(t))
}
