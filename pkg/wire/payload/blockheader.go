package payload

import (
	"bytes"
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
)

// HeaderSize is the canonical Bitcoin-family header layout named in
// spec.md §6: version, prev-hash, merkle-root, time, bits, nonce.
const HeaderSize = 80

// maxAuxPowBranchLen bounds an AuxPow merkle branch. A branch this deep
// already covers a parent block with more transactions than any
// merge-mined Goldcoin-family chain has ever produced.
const maxAuxPowBranchLen = 32

// BlockHeader is the 80-byte canonical header. AuxPow, when non-nil,
// carries the merge-mining trailer described in SPEC_FULL.md's
// supplemented-features section; it is never present unless the active
// network enables merge mining.
type BlockHeader struct {
	Version    uint32
	PrevHash   binutil.Hash256
	MerkleRoot binutil.Hash256
	Time       uint32
	Bits       uint32
	Nonce      uint32
	AuxPow     *AuxPow
}

// AuxPow is the auxiliary proof-of-work trailer merge-mined Goldcoin-family
// chains append to a header before its trailing transaction-count varint.
type AuxPow struct {
	ParentCoinbase     []byte
	ParentBlockHash    binutil.Hash256
	CoinbaseBranch     []binutil.Hash256
	CoinbaseBranchMask uint32
	ChainBranch        []binutil.Hash256
	ChainBranchMask    uint32
	ParentHeader       BlockHeader
}

// Hash returns the double-SHA256 of the 80-byte header body (never the
// AuxPow trailer, which isn't part of the block identity).
func (h *BlockHeader) Hash() binutil.Hash256 {
	buf := new(bytes.Buffer)
	bw := &binutil.Writer{W: buf}
	h.encodeBody(bw)
	return binutil.HashDoubleSHA256(buf.Bytes())
}

func (h *BlockHeader) encodeBody(bw *binutil.Writer) {
	bw.Write(h.Version)
	bw.Write(h.PrevHash)
	bw.Write(h.MerkleRoot)
	bw.Write(h.Time)
	bw.Write(h.Bits)
	bw.Write(h.Nonce)
}

func (h *BlockHeader) decodeBody(br *binutil.Reader) {
	br.Read(&h.Version)
	br.Read(&h.PrevHash)
	br.Read(&h.MerkleRoot)
	br.Read(&h.Time)
	br.Read(&h.Bits)
	br.Read(&h.Nonce)
}

// EncodeWithAuxPow writes the header, followed by the AuxPow trailer when
// present. withAux gates whether an AuxPow trailer may be emitted at all
// for networks that never merge-mine.
func (h *BlockHeader) EncodeWithAuxPow(w io.Writer, withAux bool) error {
	bw := &binutil.Writer{W: w}
	h.encodeBody(bw)
	if withAux && h.AuxPow != nil {
		bw.VarBytes(h.AuxPow.ParentCoinbase)
		bw.Write(h.AuxPow.ParentBlockHash)
		bw.VarUint(uint64(len(h.AuxPow.CoinbaseBranch)))
		for _, b := range h.AuxPow.CoinbaseBranch {
			bw.Write(b)
		}
		bw.Write(h.AuxPow.CoinbaseBranchMask)
		bw.VarUint(uint64(len(h.AuxPow.ChainBranch)))
		for _, b := range h.AuxPow.ChainBranch {
			bw.Write(b)
		}
		bw.Write(h.AuxPow.ChainBranchMask)
		h.AuxPow.ParentHeader.encodeBody(bw)
	}
	return bw.Err
}

// DecodeWithAuxPow is the counterpart of EncodeWithAuxPow.
func (h *BlockHeader) DecodeWithAuxPow(r io.Reader, withAux bool) error {
	br := &binutil.Reader{R: r}
	h.decodeBody(br)
	if withAux {
		var aux AuxPow
		aux.ParentCoinbase = br.VarBytes()
		br.Read(&aux.ParentBlockHash)
		n := br.BoundedVarUint(maxAuxPowBranchLen)
		if br.Err != nil {
			return br.Err
		}
		aux.CoinbaseBranch = make([]binutil.Hash256, n)
		for i := range aux.CoinbaseBranch {
			br.Read(&aux.CoinbaseBranch[i])
		}
		br.Read(&aux.CoinbaseBranchMask)
		n = br.BoundedVarUint(maxAuxPowBranchLen)
		if br.Err != nil {
			return br.Err
		}
		aux.ChainBranch = make([]binutil.Hash256, n)
		for i := range aux.ChainBranch {
			br.Read(&aux.ChainBranch[i])
		}
		br.Read(&aux.ChainBranchMask)
		aux.ParentHeader.decodeBody(br)
		h.AuxPow = &aux
	}
	return br.Err
}
