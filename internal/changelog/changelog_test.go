package changelog

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
	priv, err := keystore.GenerateFromPhrase("changelog-test-signer")
	if err != nil {
		t.Fatalf("GenerateFromPhrase: %v", err)
	}
	return factory.Signer{ActorID: "human:alice", Role: "author", Notes: "test", Key: priv}
}

func TestAutoCreate(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "state"))
	a := New(s, testFactory(t))
	signer := testSigner(t)

	env, err := a.AutoCreate("Ship it", []string{"1700000000-task-ship-it"}, 1700001000, signer)
	if err != nil {
		t.Fatalf("AutoCreate: %v", err)
	}
	payload, err := record.DecodePayload(record.TypeChangelog, env.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	cp := payload.(record.ChangelogPayload)
	if len(cp.RelatedTasks) != 1 || cp.RelatedTasks[0] != "1700000000-task-ship-it" {
		t.Fatalf("relatedTasks = %v, want exactly the one completed task", cp.RelatedTasks)
	}
	if cp.CompletedAt != 1700001000 {
		t.Fatalf("completedAt = %d, want 1700001000", cp.CompletedAt)
	}
}

func TestAutoCreate_RequiresAtLeastOneRelatedTask(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "state"))
	a := New(s, testFactory(t))
	signer := testSigner(t)

	if _, err := a.AutoCreate("Ship it", nil, 1700001000, signer); err == nil {
		t.Fatal("expected a changelog with no related tasks to be rejected")
	}
}
