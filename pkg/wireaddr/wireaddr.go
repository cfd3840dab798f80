// Package wireaddr renders a peer's advertised NetAddr as a short,
// human-legible identity string for logs and getaddr diagnostics,
// using the same Base58Check scheme Bitcoin-family chains use for
// account addresses (spec.md §6, the `announce`/getaddr surface).
//
// This is display tooling only: the wire protocol itself never
// transmits these strings, it transmits payload.NetAddr records.
package wireaddr

import (
	"encoding/binary"
	"errors"
	"net"

	"github.com/mr-tron/base58"

	"github.com/goldrelay/goldrelay/pkg/wire/binutil"
	"github.com/goldrelay/goldrelay/pkg/wire/payload"
	"github.com/goldrelay/goldrelay/pkg/wire/protocol"
)

// identityVersion distinguishes an encoded NetAddr identity from any
// other Base58Check-encoded string this system might produce; it has
// no meaning beyond that.
const identityVersion = 0x17

var errBadIdentity = errors.New("wireaddr: malformed identity string")

// Encode renders addr's IP, port and service flags as a Base58Check
// string, stable across repeated calls for the same address.
func Encode(addr payload.NetAddr) string {
	body := make([]byte, 0, net.IPv6len+2+8)
	body = append(body, addr.IP[:]...)
	body = binary.BigEndian.AppendUint16(body, addr.Port)
	body = binary.BigEndian.AppendUint64(body, uint64(addr.Services))

	withVersion := append([]byte{identityVersion}, body...)
	checksum := binutil.HashDoubleSHA256(withVersion)
	full := append(withVersion, checksum[:4]...)
	return base58.Encode(full)
}

// Decode reverses Encode, verifying the checksum and version byte.
func Decode(s string) (net.IP, uint16, protocol.ServiceFlag, error) {
	full, err := base58.Decode(s)
	if err != nil {
		return nil, 0, 0, errBadIdentity
	}
	if len(full) != 1+net.IPv6len+2+8+4 {
		return nil, 0, 0, errBadIdentity
	}
	if full[0] != identityVersion {
		return nil, 0, 0, errBadIdentity
	}

	body, checksum := full[:len(full)-4], full[len(full)-4:]
	want := binutil.HashDoubleSHA256(body)
	for i := range checksum {
		if checksum[i] != want[i] {
			return nil, 0, 0, errBadIdentity
		}
	}

	ip := net.IP(body[1 : 1+net.IPv6len])
	port := binary.BigEndian.Uint16(body[1+net.IPv6len : 1+net.IPv6len+2])
	services := protocol.ServiceFlag(binary.BigEndian.Uint64(body[1+net.IPv6len+2:]))
	return ip, port, services, nil
}
