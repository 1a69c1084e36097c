// Package canon implements deterministic JSON canonicalization and payload
// checksums for the record envelope. Canonicalization is RFC 8785 (JSON
// Canonicalization Scheme): object keys sorted, arrays left in order,
// scalars untouched, no insignificant whitespace.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/jsoncanonicalizer"
)

// Canonicalize returns the deterministic JSON byte sequence for v: object
// keys recursively sorted, arrays preserved in order, no whitespace.
// v may be a Go value (marshaled first) or raw JSON bytes.
func Canonicalize(v any) ([]byte, error) {
	raw, ok := v.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("canon: marshal payload: %w", err)
		}
	}

	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canon: transform: %w", err)
	}
	return out, nil
}

// Checksum returns the lowercase hex SHA-256 digest of the canonical form
// of payload: payloadChecksum = hex(SHA-256(canonical(payload))).
func Checksum(payload any) (string, error) {
	c, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(c)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyChecksum reports whether expected matches the recomputed checksum
// of payload.
func VerifyChecksum(payload any, expected string) (bool, error) {
	got, err := Checksum(payload)
	if err != nil {
		return false, err
	}
	return got == expected, nil
}
