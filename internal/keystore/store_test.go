package keystore

import (
	"path/filepath"
	"testing"
)

func TestMemStore_PutGetHasDelete(t *testing.T) {
	s := NewMemStore()
	priv, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if s.Has("human:alice") {
		t.Fatalf("Has() = true before Put")
	}
	if err := s.Put("human:alice", priv); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !s.Has("human:alice") {
		t.Fatalf("Has() = false after Put")
	}

	got, err := s.Get("human:alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(priv) {
		t.Fatalf("Get returned different key material")
	}

	if err := s.Delete("human:alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Has("human:alice") {
		t.Fatalf("Has() = true after Delete")
	}
	// Deleting again is a no-op.
	if err := s.Delete("human:alice"); err != nil {
		t.Fatalf("Delete (again): %v", err)
	}
}

func TestMemStore_GetUnknown(t *testing.T) {
	s := NewMemStore()
	if _, err := s.Get("human:nobody"); err == nil {
		t.Fatalf("expected ErrUnknownActor")
	}
}

func TestFileStore_PutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)

	priv, err := GenerateFromPhrase("gitgovernance-protocol-example-actor-01")
	if err != nil {
		t.Fatalf("GenerateFromPhrase: %v", err)
	}

	actorID := "human:alice"
	if err := fs.Put(actorID, priv); err != nil {
		t.Fatalf("Put: %v", err)
	}

	wantPath := filepath.Join(dir, "human_alice.key")
	if !fs.Has(actorID) {
		t.Fatalf("Has() = false after Put")
	}

	got, err := fs.Get(actorID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(priv) {
		t.Fatalf("round-tripped key material differs")
	}
	_ = wantPath
}

func TestFileStore_ColonEscaping(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	priv, _ := Generate()

	if err := fs.Put("agent:ci:deploy", priv); err != nil {
		t.Fatalf("Put: %v", err)
	}
	path := filepath.Join(dir, "agent_ci_deploy.key")
	if _, err := fs.Get("agent:ci:deploy"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	ids, err := fs.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 1 || ids[0] != "agent:ci:deploy" {
		t.Fatalf("List() = %v, want [agent:ci:deploy]", ids)
	}
	_ = path
}

func TestFileStore_GetUnknown(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	if _, err := fs.Get("human:nobody"); err == nil {
		t.Fatalf("expected error for unknown actor")
	}
}

func TestFileStore_DeleteIdempotent(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir)
	if err := fs.Delete("human:nobody"); err != nil {
		t.Fatalf("Delete of nonexistent key should be a no-op: %v", err)
	}
}

func TestFileStore_ListEmpty(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "does-not-exist-yet"))
	ids, err := fs.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("List() = %v, want empty", ids)
	}
}
