package aleo

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	// AddressPrefix is the human readable part of an encoded account address.
	AddressPrefix = "aleo"

	// AddressSize is the number of raw bytes in an account address.
	AddressSize = 32
)

var ErrInvalidAddress = errors.New("invalid address")

// Address is an account address held as its raw little-endian bytes.
//
// Two addresses are equal iff their bytes are equal, so Address is safe to use as a map key.
// The text form is always derived from the bytes and never stored.
type Address [AddressSize]byte

// NewAddressFromBytes copies exactly AddressSize bytes into an Address.
func NewAddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressSize {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AddressSize, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// ParseAddress decodes the canonical bech32m text form of an address.
func ParseAddress(s string) (Address, error) {
	var a Address

	hrp, data, version, err := bech32.DecodeGeneric(s)
	if err != nil {
		return a, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	if version != bech32.VersionM {
		return a, fmt.Errorf("%w: %q is not bech32m encoded", ErrInvalidAddress, s)
	}
	if hrp != AddressPrefix {
		return a, fmt.Errorf("%w: %q has prefix %q", ErrInvalidAddress, s, hrp)
	}
	// DecodeGeneric lowercases the input before checking it, so compare against the
	// canonical rendering to reject upper-case variants.
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return a, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	a, err = NewAddressFromBytes(raw)
	if err != nil {
		return a, err
	}
	if a.String() != s {
		return Address{}, fmt.Errorf("%w: %q is not in canonical form", ErrInvalidAddress, s)
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a[:])
	return b
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		// 8 to 5 bit conversion with padding cannot fail for a fixed size input
		return ""
	}
	encoded, err := bech32.EncodeM(AddressPrefix, conv)
	if err != nil {
		return ""
	}
	return encoded
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// Compare orders addresses by their canonical text form.
func (a Address) Compare(b Address) int {
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
