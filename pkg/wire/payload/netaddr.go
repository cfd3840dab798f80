package payload

import (
	"net"
	"strconv"
	"time"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

// NetAddr is the IP-layer address record exchanged in Version and Addr
// messages (spec.md §3, "Derived: addr record").
type NetAddr struct {
	Time     uint32
	Services protocol.ServiceFlag
	IP       [16]byte
	Port     uint16
}

// NewNetAddr builds a NetAddr from a dotted-quad/host and port, recording
// the given time (zero means "no timestamp", as used inside Version).
func NewNetAddr(t time.Time, host string, port uint16, services protocol.ServiceFlag) NetAddr {
	na := NetAddr{Services: services, Port: port}
	if !t.IsZero() {
		na.Time = uint32(t.Unix())
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ip = net.IPv4zero
	}
	copy(na.IP[:], ip.To16())
	return na
}

// IP4 returns the stored address as a net.IP.
func (n NetAddr) IP4() net.IP {
	return net.IP(n.IP[:])
}

// String renders "host:port".
func (n NetAddr) String() string {
	return net.JoinHostPort(n.IP4().String(), strconv.Itoa(int(n.Port)))
}

// LastSeen returns the Time field as a time.Time.
func (n NetAddr) LastSeen() time.Time {
	return time.Unix(int64(n.Time), 0)
}

func (n *NetAddr) encodeNoTime(bw *binutil.Writer) {
	bw.Write(n.Services)
	bw.WriteBigEndian(n.IP)
	bw.WriteBigEndian(n.Port)
}

func (n *NetAddr) decodeNoTime(br *binutil.Reader) {
	br.Read(&n.Services)
	br.ReadBigEndian(&n.IP)
	br.ReadBigEndian(&n.Port)
}

func (n *NetAddr) encode(bw *binutil.Writer) {
	bw.Write(n.Time)
	n.encodeNoTime(bw)
}

func (n *NetAddr) decode(br *binutil.Reader) {
	br.Read(&n.Time)
	n.decodeNoTime(br)
}

// encodeAddrList/decodeAddrList let Addr reuse NetAddr's wire layout
// without exporting encode/decode on NetAddr itself.
func encodeAddrList(bw *binutil.Writer, addrs []NetAddr) {
	bw.VarUint(uint64(len(addrs)))
	for i := range addrs {
		addrs[i].encode(bw)
	}
}

func decodeAddrList(br *binutil.Reader) []NetAddr {
	n := br.BoundedVarUint(MaxAddrPerMessage)
	if br.Err != nil {
		return nil
	}
	out := make([]NetAddr, n)
	for i := range out {
		out[i].decode(br)
	}
	return out
}
