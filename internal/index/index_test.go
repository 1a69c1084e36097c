package index

import (
	"path/filepath"
	"testing"

	"github.com/gitgovernance/gitgovernance/internal/factory"
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

func testSigner(t *testing.T) factory.Signer {
	t.Helper()
	priv, err := keystore.GenerateFromPhrase("index-test-signer")
	if err != nil {
		t.Fatalf("GenerateFromPhrase: %v", err)
	}
	return factory.Signer{ActorID: "human:alice", Role: "author", Notes: "test", Key: priv}
}

func seedStore(t *testing.T, s *store.FileStore, f *factory.Factory, signer factory.Signer) {
	t.Helper()
	taskEnv, err := f.Create(record.TypeTask, record.TaskPayload{
		ID: "1700000000-task-ship-it", Title: "Ship it",
		Status: record.TaskActive, Priority: record.PriorityMedium,
		CycleIDs: []string{"1700000000-cycle-launch"},
	}, signer)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := s.Put(record.TypeTask, taskEnv); err != nil {
		t.Fatalf("put task: %v", err)
	}

	cycleEnv, err := f.Create(record.TypeCycle, record.CyclePayload{
		ID: "1700000000-cycle-launch", Title: "Launch", Status: record.CyclePlanning,
		TaskIDs: []string{"1700000000-task-ship-it"},
	}, signer)
	if err != nil {
		t.Fatalf("create cycle: %v", err)
	}
	if err := s.Put(record.TypeCycle, cycleEnv); err != nil {
		t.Fatalf("put cycle: %v", err)
	}
}

func TestRebuild(t *testing.T) {
	root := t.TempDir()
	s := store.NewFileStore(filepath.Join(root, "state"))
	f := testFactory(t)
	signer := testSigner(t)
	seedStore(t, s, f, signer)

	a := New(s, root, func() int64 { return 1700002000 })
	snap, err := a.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if len(snap.Tasks) != 1 || len(snap.Cycles) != 1 {
		t.Fatalf("snapshot = %+v, want one task and one cycle", snap)
	}
	if snap.TaskCounts[record.TaskActive] != 1 {
		t.Fatalf("taskCounts[active] = %d, want 1", snap.TaskCounts[record.TaskActive])
	}
	if snap.GeneratedAt != 1700002000 {
		t.Fatalf("generatedAt = %d, want 1700002000", snap.GeneratedAt)
	}
}

func TestRebuild_ThenLoad(t *testing.T) {
	root := t.TempDir()
	s := store.NewFileStore(filepath.Join(root, "state"))
	f := testFactory(t)
	signer := testSigner(t)
	seedStore(t, s, f, signer)

	a := New(s, root, func() int64 { return 1700002000 })
	if _, err := a.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	loaded, err := a.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Tasks) != 1 || len(loaded.Cycles) != 1 {
		t.Fatalf("loaded snapshot = %+v, want one task and one cycle", loaded)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	root := t.TempDir()
	s := store.NewFileStore(filepath.Join(root, "state"))
	a := New(s, root, func() int64 { return 1700002000 })

	if _, err := a.Load(); err == nil {
		t.Fatal("expected Load to fail before any Rebuild has written index.json")
	}
}

func TestInvalidate_RebuildsEagerly(t *testing.T) {
	root := t.TempDir()
	s := store.NewFileStore(filepath.Join(root, "state"))
	f := testFactory(t)
	signer := testSigner(t)
	seedStore(t, s, f, signer)

	a := New(s, root, func() int64 { return 1700002000 })
	if err := a.Invalidate(); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	loaded, err := a.Load()
	if err != nil {
		t.Fatalf("Load after Invalidate: %v", err)
	}
	if len(loaded.Tasks) != 1 {
		t.Fatalf("loaded.Tasks = %v, want 1 entry after Invalidate", loaded.Tasks)
	}
}
