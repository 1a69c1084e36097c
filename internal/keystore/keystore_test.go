package keystore

import (
	"crypto/ed25519"
	"testing"
)

// Deterministic test vectors from the protocol spec: seeds
// "gitgovernance-protocol-example-{actor|agent|deploy}-01" must produce
// these exact Ed25519 public keys (SHA-256(seed) as the Ed25519 seed).
func TestGenerateFromPhrase_Vectors(t *testing.T) {
	cases := []struct {
		phrase string
		pubB64 string
	}{
		{"gitgovernance-protocol-example-actor-01", "0yyrCETtVql51Id+nRKGmpbfsxNxOz+eCYLpWDoutV0="},
		{"gitgovernance-protocol-example-agent-01", "IadceheUiu6BZ0pvCGUaDcRn4L5UWFyW8ubzcFXl3s4="},
		{"gitgovernance-protocol-example-deploy-01", "DDiqTgZimOoChfHVt0neFEFDmi9BvBM23pfwOnh2RNE="},
	}

	for _, tc := range cases {
		priv, err := GenerateFromPhrase(tc.phrase)
		if err != nil {
			t.Fatalf("GenerateFromPhrase(%q): %v", tc.phrase, err)
		}
		pub := ed25519.PublicKey(priv[32:]) // ed25519.PrivateKey is seed||pubkey
		got := PublicKeyBase64(pub)
		if got != tc.pubB64 {
			t.Fatalf("PublicKeyBase64(%q) = %s, want %s", tc.phrase, got, tc.pubB64)
		}
		if len(got) != 44 {
			t.Fatalf("public key base64 length = %d, want 44", len(got))
		}
	}
}

func TestGenerateFromPhrase_Deterministic(t *testing.T) {
	p1, err := GenerateFromPhrase("gitgovernance-protocol-example-actor-01")
	if err != nil {
		t.Fatalf("GenerateFromPhrase: %v", err)
	}
	p2, err := GenerateFromPhrase("gitgovernance-protocol-example-actor-01")
	if err != nil {
		t.Fatalf("GenerateFromPhrase: %v", err)
	}
	if string(p1) != string(p2) {
		t.Fatalf("GenerateFromPhrase not deterministic across calls")
	}
}

func TestParsePublicKeyBase64_RoundTrip(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	pub := ed25519.PublicKey(priv[32:])
	encoded := PublicKeyBase64(pub)
	decoded, err := ParsePublicKeyBase64(encoded)
	if err != nil {
		t.Fatalf("ParsePublicKeyBase64: %v", err)
	}
	if string(decoded) != string(pub) {
		t.Fatalf("round trip mismatch")
	}
}

func TestParsePublicKeyBase64_WrongSize(t *testing.T) {
	if _, err := ParsePublicKeyBase64("dG9vc2hvcnQ="); err == nil {
		t.Fatalf("expected error for undersized public key")
	}
}

func TestSignAndVerify(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	pub := ed25519.PublicKey(priv[32:])

	payloadChecksum := "063d4ba3505e4d2d3852f6063cbd0b98a8728b2afb4a26a323c5c5c51213739"
	keyID := "human:alice"
	role := "author"
	notes := "initial draft"
	var ts int64 = 1700000000

	sig := Sign(priv, payloadChecksum, keyID, role, notes, ts)
	if len(sig) == 0 {
		t.Fatalf("Sign returned empty signature")
	}
	if !Verify(pub, payloadChecksum, keyID, role, notes, ts, sig) {
		t.Fatalf("Verify() = false for a valid signature")
	}
}

func TestVerify_RejectsTamperedFields(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	pub := ed25519.PublicKey(priv[32:])

	sig := Sign(priv, "checksum-a", "human:alice", "author", "note", 1700000000)

	cases := []struct {
		name                          string
		checksum, keyID, role, notes  string
		ts                            int64
	}{
		{"wrong checksum", "checksum-b", "human:alice", "author", "note", 1700000000},
		{"wrong keyID", "checksum-a", "human:bob", "author", "note", 1700000000},
		{"wrong role", "checksum-a", "human:alice", "reviewer", "note", 1700000000},
		{"wrong notes", "checksum-a", "human:alice", "author", "different", 1700000000},
		{"wrong timestamp", "checksum-a", "human:alice", "author", "note", 1700000001},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Verify(pub, tc.checksum, tc.keyID, tc.role, tc.notes, tc.ts, sig) {
				t.Fatalf("Verify() = true for tampered field %s, want false", tc.name)
			}
		})
	}
}

func TestVerify_MalformedSignature(t *testing.T) {
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	pub := ed25519.PublicKey(priv[32:])
	if Verify(pub, "c", "k", "r", "n", 1, "not-base64!!") {
		t.Fatalf("Verify() = true for malformed signature")
	}
}
