package token

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the fixed byte length of an account identifier.
const AddressLength = 20

// Address is a fixed-width account identifier.
type Address [AddressLength]byte

// ZeroAddress is the reserved "no account" identifier. It is used as the
// transfer source when minting and the transfer target when burning, and is
// rejected as a recipient, spender, or owner.
var ZeroAddress = Address{}

// ParseAddress decodes a hex-encoded address, with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != AddressLength*2 {
		return a, fmt.Errorf("token: invalid address length: %q", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("token: invalid address %q: %w", s, err)
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on invalid input.
// Intended for tests and package-level fixtures.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether the address is the reserved null identifier.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// String returns the 0x-prefixed hex encoding of the address.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}
