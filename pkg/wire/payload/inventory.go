package payload

import (
	"io"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// InvType distinguishes the two object kinds a node announces and
// requests, per spec.md §3 ("kind ∈ {tx,block}").
type InvType uint32

// Inventory kinds.
const (
	InvTypeError InvType = 0
	InvTypeTx    InvType = 1
	InvTypeBlock InvType = 2
)

// InvVect pairs an object kind with its hash.
type InvVect struct {
	Type InvType
	Hash binutil.Hash256
}

func (v *InvVect) encode(bw *binutil.Writer) {
	bw.Write(v.Type)
	bw.Write(v.Hash)
}

func (v *InvVect) decode(br *binutil.Reader) {
	br.Read(&v.Type)
	br.Read(&v.Hash)
}

// invList is the shared body of Inv and GetData: a VarUint count followed
// by that many InvVect entries. MaxInvPerMessage matches spec.md §4.4's
// 251-hash batching (testable property 9).
const MaxInvPerMessage = 251

type invList struct {
	Items []InvVect
}

func (l *invList) encode(w io.Writer) error {
	bw := &binutil.Writer{W: w}
	bw.VarUint(uint64(len(l.Items)))
	for i := range l.Items {
		l.Items[i].encode(bw)
	}
	return bw.Err
}

func (l *invList) decode(r io.Reader) error {
	br := &binutil.Reader{R: r}
	n := br.BoundedVarUint(MaxInvPerMessage)
	if br.Err != nil {
		return br.Err
	}
	l.Items = make([]InvVect, n)
	for i := range l.Items {
		l.Items[i].decode(br)
	}
	return br.Err
}

// Inv announces objects the sender has available.
type Inv struct{ invList }

// Command implements Message.
func (*Inv) Command() command.Type { return command.Inv }

// Encode implements Message.
func (i *Inv) Encode(w io.Writer) error { return i.invList.encode(w) }

// Decode implements Message.
func (i *Inv) Decode(r io.Reader) error { return i.invList.decode(r) }

// GetData requests full payloads for previously announced objects.
type GetData struct{ invList }

// Command implements Message.
func (*GetData) Command() command.Type { return command.GetData }

// Encode implements Message.
func (g *GetData) Encode(w io.Writer) error { return g.invList.encode(w) }

// Decode implements Message.
func (g *GetData) Decode(r io.Reader) error { return g.invList.decode(r) }

// NewGetData builds a single getdata request for one object, used by
// send_getdata_tx/send_getdata_block (spec.md §4.4).
func NewGetData(typ InvType, hash binutil.Hash256) *GetData {
	return &GetData{invList{Items: []InvVect{{Type: typ, Hash: hash}}}}
}

// BatchInv splits hashes into GetData-sized batches (≤ MaxInvPerMessage),
// used by send_inv and the getblocks inv-mode reply (spec.md §4.4, §4.3).
func BatchInv(typ InvType, hashes []binutil.Hash256) []*Inv {
	var out []*Inv
	for len(hashes) > 0 {
		n := len(hashes)
		if n > MaxInvPerMessage {
			n = MaxInvPerMessage
		}
		items := make([]InvVect, n)
		for i := 0; i < n; i++ {
			items[i] = InvVect{Type: typ, Hash: hashes[i]}
		}
		out = append(out, &Inv{invList{Items: items}})
		hashes = hashes[n:]
	}
	return out
}
