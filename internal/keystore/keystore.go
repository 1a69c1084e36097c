// Package keystore manages Ed25519 key material and implements the
// keyed-digest signature scheme that binds a signer's intent (role, notes,
// timestamp) to a record's payload checksum.
package keystore

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrUnknownActor is returned when no key is registered for an actor id.
var ErrUnknownActor = errors.New("keystore: unknown actor")

// ErrInvalidSeed is returned when a seed cannot produce an Ed25519 key.
var ErrInvalidSeed = errors.New("keystore: seed must be non-empty")

// DeriveSeed hashes an arbitrary-length seed phrase down to the 32 bytes
// crypto/ed25519 requires via NewKeyFromSeed. This is how the deterministic
// test-vector seeds in the protocol ("gitgovernance-protocol-example-*-01")
// are turned into keypairs.
func DeriveSeed(phrase string) ([]byte, error) {
	if phrase == "" {
		return nil, ErrInvalidSeed
	}
	sum := sha256.Sum256([]byte(phrase))
	return sum[:], nil
}

// GenerateFromPhrase derives a deterministic Ed25519 keypair from a seed
// phrase (DeriveSeed followed by ed25519.NewKeyFromSeed).
func GenerateFromPhrase(phrase string) (ed25519.PrivateKey, error) {
	seed, err := DeriveSeed(phrase)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// Generate creates a fresh random Ed25519 keypair.
func Generate() (ed25519.PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("keystore: generate key: %w", err)
	}
	return priv, nil
}

// PublicKeyBase64 encodes a raw 32-byte Ed25519 public key as standard
// base64 (44 chars, "="-padded).
func PublicKeyBase64(pub ed25519.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub)
}

// ParsePublicKeyBase64 decodes a base64-encoded 32-byte Ed25519 public key.
func ParsePublicKeyBase64(s string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("keystore: decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("keystore: public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// DigestInput builds the exact byte sequence the signature digest is
// computed over:
//
//	payloadChecksum || ":" || keyId || ":" || role || ":" || notes || ":" || timestamp
func DigestInput(payloadChecksum, keyID, role, notes string, timestamp int64) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s:%d", payloadChecksum, keyID, role, notes, timestamp))
}

// SignedBytes returns SHA-256(DigestInput(...)) — the 32 bytes that are
// actually Ed25519-signed.
func SignedBytes(payloadChecksum, keyID, role, notes string, timestamp int64) [32]byte {
	return sha256.Sum256(DigestInput(payloadChecksum, keyID, role, notes, timestamp))
}

// Sign produces the base64 Ed25519 signature for a header signature entry.
func Sign(priv ed25519.PrivateKey, payloadChecksum, keyID, role, notes string, timestamp int64) string {
	msg := SignedBytes(payloadChecksum, keyID, role, notes, timestamp)
	sig := ed25519.Sign(priv, msg[:])
	return base64.StdEncoding.EncodeToString(sig)
}

// Verify recomputes the digest from the supplied fields and checks the
// Ed25519 signature against pub. It returns false (never an error) for a
// malformed base64 signature — malformed input is simply not a valid
// signature.
func Verify(pub ed25519.PublicKey, payloadChecksum, keyID, role, notes string, timestamp int64, signatureB64 string) bool {
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	msg := SignedBytes(payloadChecksum, keyID, role, notes, timestamp)
	return ed25519.Verify(pub, msg[:], sig)
}
