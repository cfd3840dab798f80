package payload

import (
	"errors"
	"io"
	"time"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/command"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

// Version is the handshake message every session sends first and records
// exactly once from its peer (spec.md §3, "Handshake fields").
type Version struct {
	ProtocolVersion protocol.Version
	Services        protocol.ServiceFlag
	Timestamp       int64
	AddrTo          NetAddr
	AddrFrom        NetAddr
	Nonce           uint64
	UserAgent       string
	StartHeight     int32
	Relay           bool
}

// NewVersion builds the Version payload an outbound send_version helper
// advertises (spec.md §4.4).
func NewVersion(nonce uint64, startHeight int32, to, from NetAddr) *Version {
	return &Version{
		ProtocolVersion: protocol.NodeVersion,
		Services:        protocol.NodeNetwork,
		Timestamp:       time.Now().Unix(),
		AddrTo:          to,
		AddrFrom:        from,
		Nonce:           nonce,
		UserAgent:       protocol.UserAgent,
		StartHeight:     startHeight,
		Relay:           true,
	}
}

// Command implements Message.
func (v *Version) Command() command.Type { return command.Version }

// Encode implements Message.
func (v *Version) Encode(w io.Writer) error {
	bw := &binutil.Writer{W: w}
	bw.Write(v.ProtocolVersion)
	bw.Write(v.Services)
	bw.Write(v.Timestamp)
	v.AddrTo.encodeNoTime(bw)
	v.AddrFrom.encodeNoTime(bw)
	bw.Write(v.Nonce)
	bw.VarString(v.UserAgent)
	bw.Write(v.StartHeight)
	bw.Write(v.Relay)
	return bw.Err
}

// Decode implements Message.
func (v *Version) Decode(r io.Reader) error {
	br := &binutil.Reader{R: r}
	br.Read(&v.ProtocolVersion)
	br.Read(&v.Services)
	br.Read(&v.Timestamp)
	v.AddrTo.decodeNoTime(br)
	v.AddrFrom.decodeNoTime(br)
	br.Read(&v.Nonce)
	v.UserAgent = br.VarString()
	br.Read(&v.StartHeight)
	br.Read(&v.Relay)
	if br.Err != nil {
		return br.Err
	}
	if v.ProtocolVersion < protocol.MinAcceptedVersion {
		return errors.New("payload: protocol version too old")
	}
	return nil
}
