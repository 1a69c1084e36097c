package identity

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/keystore"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

func testFactory(t *testing.T) *factory.Factory {
	t.Helper()
	schemas, err := record.NewSchemaCache()
	if err != nil {
		t.Fatalf("NewSchemaCache: %v", err)
	}
	return factory.New(schemas, func() int64 { return 1700000000 })
}

func bootstrapSigner(t *testing.T) factory.Signer {
	t.Helper()
	priv, err := keystore.GenerateFromPhrase("identity-test-bootstrap")
	if err != nil {
		t.Fatalf("GenerateFromPhrase: %v", err)
	}
	return factory.Signer{ActorID: "human:bootstrap", Role: "author", Notes: "bootstrap", Key: priv}
}

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	root := t.TempDir()
	s := store.NewFileStore(filepath.Join(root, "state"))
	keys := keystore.NewMemStore()
	return New(s, keys, testFactory(t), root)
}

func TestCreateActor(t *testing.T) {
	a := newTestAdapter(t)
	signer := bootstrapSigner(t)

	env, err := a.CreateActor("human:alice", "Alice", []string{"author"}, signer)
	if err != nil {
		t.Fatalf("CreateActor: %v", err)
	}
	if !a.Keys.Has("human:alice") {
		t.Fatal("expected a key to be registered for the new actor")
	}
	if !a.Store.Exists(record.TypeActor, "human:alice") {
		t.Fatal("expected the actor record to be persisted")
	}
	if env.Header.Type != record.TypeActor {
		t.Fatalf("envelope type = %v, want TypeActor", env.Header.Type)
	}
}

func TestRotateKey(t *testing.T) {
	a := newTestAdapter(t)
	signer := bootstrapSigner(t)
	if _, err := a.CreateActor("human:alice", "Alice", []string{"author"}, signer); err != nil {
		t.Fatalf("CreateActor: %v", err)
	}

	if _, err := a.RotateKey("human:alice", "human:alice-2", signer); err != nil {
		t.Fatalf("RotateKey: %v", err)
	}

	oldEnv, err := a.Store.Get(record.TypeActor, "human:alice")
	if err != nil {
		t.Fatalf("Get old actor: %v", err)
	}
	oldPayload, err := record.DecodePayload(record.TypeActor, oldEnv.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	ap := oldPayload.(record.ActorPayload)
	if ap.Status != record.ActorRevoked {
		t.Fatalf("old actor status = %v, want revoked", ap.Status)
	}
	if ap.SupersededBy != "human:alice-2" {
		t.Fatalf("supersededBy = %q, want human:alice-2", ap.SupersededBy)
	}
	if !a.Keys.Has("human:alice-2") {
		t.Fatal("expected a key registered for the successor actor")
	}
}

func TestCurrentActor_NoKeys(t *testing.T) {
	a := newTestAdapter(t)
	if _, _, err := a.CurrentActor(); !errors.Is(err, ggerr.ErrNoActor) {
		t.Fatalf("CurrentActor with no keys = %v, want ErrNoActor", err)
	}
}

func TestCurrentActor_SingleKey(t *testing.T) {
	a := newTestAdapter(t)
	signer := bootstrapSigner(t)
	if _, err := a.CreateActor("human:alice", "Alice", []string{"author"}, signer); err != nil {
		t.Fatalf("CreateActor: %v", err)
	}

	id, priv, err := a.CurrentActor()
	if err != nil {
		t.Fatalf("CurrentActor: %v", err)
	}
	if id != "human:alice" {
		t.Fatalf("CurrentActor id = %q, want human:alice", id)
	}
	if priv == nil {
		t.Fatal("expected a non-nil private key")
	}
}

func TestCurrentActor_AmbiguousWithoutSession(t *testing.T) {
	a := newTestAdapter(t)
	signer := bootstrapSigner(t)
	if _, err := a.CreateActor("human:alice", "Alice", []string{"author"}, signer); err != nil {
		t.Fatalf("CreateActor alice: %v", err)
	}
	if _, err := a.CreateActor("human:bob", "Bob", []string{"reviewer"}, signer); err != nil {
		t.Fatalf("CreateActor bob: %v", err)
	}

	var ambiguous *ggerr.AmbiguousActorError
	if _, _, err := a.CurrentActor(); !errors.As(err, &ambiguous) {
		t.Fatalf("CurrentActor with two keys = %v, want *ggerr.AmbiguousActorError", err)
	}
}

func TestPinSession_ResolvesAmbiguity(t *testing.T) {
	a := newTestAdapter(t)
	signer := bootstrapSigner(t)
	if _, err := a.CreateActor("human:alice", "Alice", []string{"author"}, signer); err != nil {
		t.Fatalf("CreateActor alice: %v", err)
	}
	if _, err := a.CreateActor("human:bob", "Bob", []string{"reviewer"}, signer); err != nil {
		t.Fatalf("CreateActor bob: %v", err)
	}

	if err := a.PinSession("human:bob"); err != nil {
		t.Fatalf("PinSession: %v", err)
	}
	id, _, err := a.CurrentActor()
	if err != nil {
		t.Fatalf("CurrentActor after pin: %v", err)
	}
	if id != "human:bob" {
		t.Fatalf("CurrentActor id = %q, want human:bob", id)
	}

	if err := a.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	var ambiguous *ggerr.AmbiguousActorError
	if _, _, err := a.CurrentActor(); !errors.As(err, &ambiguous) {
		t.Fatalf("CurrentActor after clearing session = %v, want ambiguous again", err)
	}
}
