package binutil

import (
	"encoding/hex"
	"errors"
)

// Hash256 is a 32-byte double-SHA256 digest, stored internally in the
// little-endian order used on the wire. Its String() form is the
// conventional big-endian (reversed) hex display used by block explorers.
type Hash256 [32]byte

// HashDoubleSHA256 computes the Hash256 of b.
func HashDoubleSHA256(b []byte) Hash256 {
	return Hash256(DoubleSHA256(b))
}

// String returns the reversed (display) hex encoding.
func (h Hash256) String() string {
	return hex.EncodeToString(ReverseBytes(h[:]))
}

// IsZero reports whether h is the all-zero hash (used as a "none" stop
// hash / empty locator sentinel).
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}

// Hash256FromString decodes a reversed-hex display string into a Hash256.
func Hash256FromString(s string) (Hash256, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash256{}, err
	}
	if len(b) != 32 {
		return Hash256{}, errors.New("binutil: invalid hash length")
	}
	var h Hash256
	copy(h[:], ReverseBytes(b))
	return h, nil
}
