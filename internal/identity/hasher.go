// Package identity implements the deterministic hashing used for
// wallet-less attendees and the challenge-proof signature scheme.
package identity

import (
	"github.com/Dequr01/fair-ticket/internal/domain"
	"golang.org/x/crypto/sha3"
)

// HashIdentity digests the holder name and student/holder identifier.
// Both digests are always produced together; the hash runs over the raw
// UTF-8 bytes with no normalization beyond caller-side trimming.
func HashIdentity(name, studentID string) (domain.Hash, domain.Hash) {
	return digest([]byte(name)), digest([]byte(studentID))
}

// GuestAddress derives the deterministic pseudo-address for a wallet-less
// attendee: the last 20 bytes of Keccak-256(nameHash || studentIDHash).
// Pure: identical inputs always yield the identical address, so the
// ledger treats a guest address like any other owner.
func GuestAddress(nameHash, studentIDHash domain.Hash) domain.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(nameHash[:])
	h.Write(studentIDHash[:])
	sum := h.Sum(nil)
	return domain.AddressFromBytes(sum[len(sum)-20:])
}

func digest(b []byte) domain.Hash {
	var out domain.Hash
	h := sha3.NewLegacyKeccak256()
	h.Write(b)
	copy(out[:], h.Sum(nil))
	return out
}
