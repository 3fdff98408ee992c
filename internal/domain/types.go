package domain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Hash is a fixed-width digest of holder identity text. The zero value is
// the "not identity-locked" sentinel for standard tickets.
type Hash [32]byte

// ZeroHash is the unset-hash sentinel.
var ZeroHash Hash

// ParseHash parses a 0x-prefixed 64-character hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != 64 {
		return h, fmt.Errorf("invalid hash length: %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash encoding: %w", err)
	}
	copy(h[:], b)
	return h, nil
}

// IsZero reports whether the hash is the unset sentinel.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Address identifies an actor: a key-holding caller or a deterministically
// derived guest identity. Stored normalized (lowercase, 0x-prefixed,
// 20 bytes of hex).
type Address string

// ZeroAddress is the empty owner sentinel.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress normalizes and validates an address string.
func ParseAddress(s string) (Address, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "0x") {
		return "", fmt.Errorf("address must be 0x-prefixed")
	}
	raw := s[2:]
	if len(raw) != 40 {
		return "", fmt.Errorf("invalid address length: %d", len(raw))
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return "", fmt.Errorf("invalid address encoding: %w", err)
	}
	return Address(s), nil
}

// AddressFromBytes builds an address from a 20-byte slice.
func AddressFromBytes(b []byte) Address {
	return Address("0x" + hex.EncodeToString(b))
}

// IsZero reports whether the address is empty or the zero sentinel.
func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}
