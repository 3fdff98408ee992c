package identity

import (
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"golang.org/x/crypto/sha3"
)

// Proof wire format: 32-byte Ed25519 public key followed by the 64-byte
// signature over the challenge digest.
const (
	proofPubKeyLen = ed25519.PublicKeySize
	proofSigLen    = ed25519.SignatureSize
	ProofLen       = proofPubKeyLen + proofSigLen
)

// ChallengeDigest computes the digest a holder signs: Keccak-256 over the
// ordered tuple (ticketID, nonce, deadline, verifier identity, chain ID).
// Binding the verifier and chain identity prevents cross-deployment and
// cross-chain replay; the deadline bounds reuse in time. Nonce uniqueness
// is the challenge issuer's responsibility.
func ChallengeDigest(ticketID, nonce uint64, deadline int64, verifier domain.Address, chainID uint64) domain.Hash {
	var buf [8]byte
	h := sha3.NewLegacyKeccak256()
	binary.BigEndian.PutUint64(buf[:], ticketID)
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], nonce)
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(deadline))
	h.Write(buf[:])
	h.Write([]byte(verifier))
	binary.BigEndian.PutUint64(buf[:], chainID)
	h.Write(buf[:])

	var out domain.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// SignChallenge produces a proof over the digest with the holder's key.
func SignChallenge(priv ed25519.PrivateKey, digest domain.Hash) []byte {
	pub := priv.Public().(ed25519.PublicKey)
	sig := ed25519.Sign(priv, digest[:])
	proof := make([]byte, 0, ProofLen)
	proof = append(proof, pub...)
	proof = append(proof, sig...)
	return proof
}

// RecoverSigner validates the proof against the digest and returns the
// signer's address. The address is derived from the public key the same
// way guest addresses are derived: last 20 bytes of Keccak-256(pubkey).
func RecoverSigner(proof []byte, digest domain.Hash) (domain.Address, error) {
	if len(proof) != ProofLen {
		return "", fmt.Errorf("invalid proof length: %d", len(proof))
	}
	pub := ed25519.PublicKey(proof[:proofPubKeyLen])
	sig := proof[proofPubKeyLen:]
	if !ed25519.Verify(pub, digest[:], sig) {
		return "", fmt.Errorf("signature does not verify")
	}
	return AddressFromPublicKey(pub), nil
}

// AddressFromPublicKey derives the ledger address for a signing key.
func AddressFromPublicKey(pub ed25519.PublicKey) domain.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(pub)
	sum := h.Sum(nil)
	return domain.AddressFromBytes(sum[len(sum)-20:])
}
