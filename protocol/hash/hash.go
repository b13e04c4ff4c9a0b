// Package hash provides Git object identities.
//
// An identity is the SHA-1 of an object's framed form, "<kind> <len>\0"
// followed by the payload. See:
// https://git-scm.com/book/en/v2/Git-Internals-Git-Objects
package hash

import (
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
)

// Size is the number of raw bytes in a SHA-1 identity.
const Size = 20

// HexSize is the number of characters in the lowercase hex rendering.
const HexSize = 40

// ErrInvalidHash is returned when a string or byte slice cannot be an identity.
var ErrInvalidHash = errors.New("invalid object hash")

// Hash is a raw object identity. The zero value (nil) is Zero.
type Hash []byte

// Zero is the absent identity. It renders as the empty string.
var Zero Hash

// FromHex parses a 40-character hex identity.
// The empty string parses to Zero.
func FromHex(hs string) (Hash, error) {
	if len(hs) == 0 {
		return Zero, nil
	}
	if len(hs) != HexSize {
		return Zero, fmt.Errorf("%w: %d hex characters, want %d", ErrInvalidHash, len(hs), HexSize)
	}

	b, err := hex.DecodeString(hs)
	if err != nil {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return Hash(b), nil
}

// MustFromHex is FromHex for known-good input. It panics on error.
func MustFromHex(hs string) Hash {
	h, err := FromHex(hs)
	if err != nil {
		panic(err)
	}
	return h
}

// FromBytes wraps 20 raw identity bytes. The input is copied.
func FromBytes(b []byte) (Hash, error) {
	if len(b) != Size {
		return Zero, fmt.Errorf("%w: %d raw bytes, want %d", ErrInvalidHash, len(b), Size)
	}
	return Hash(slices.Clone(b)), nil
}

// String renders the identity as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h)
}

// Is reports whether two identities are equal.
func (h Hash) Is(other Hash) bool {
	return slices.Equal(h, other)
}

// IsZero reports whether the identity is absent.
func (h Hash) IsZero() bool {
	return len(h) == 0
}
