package feedback

import (
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

func testSigner(t *testing.T) factory.Signer {
	t.Helper()
	priv, err := keystore.GenerateFromPhrase("feedback-test-signer")
	if err != nil {
		t.Fatalf("GenerateFromPhrase: %v", err)
	}
	return factory.Signer{ActorID: "human:alice", Role: "reviewer", Notes: "test", Key: priv}
}

func TestCreate_OpensFeedback(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "state"))
	a := New(s, testFactory(t))
	signer := testSigner(t)

	env, err := a.Create("task", "1700000000-task-ship-it", "blocking", "this needs more tests", signer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	payload, err := record.DecodePayload(record.TypeFeedback, env.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	fp := payload.(record.FeedbackPayload)
	if fp.Status != record.FeedbackOpen {
		t.Fatalf("new feedback status = %v, want open", fp.Status)
	}
}

func TestResolve_ChainsAndClosesTheOriginal(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "state"))
	a := New(s, testFactory(t))
	signer := testSigner(t)

	opened, err := a.Create("task", "1700000000-task-ship-it", "blocking", "needs tests", signer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	openedPayload, err := record.DecodePayload(record.TypeFeedback, opened.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	openID := openedPayload.(record.FeedbackPayload).ID

	resolved, err := a.Resolve(openID, "tests added", signer)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	resolvedPayload, err := record.DecodePayload(record.TypeFeedback, resolved.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	rp := resolvedPayload.(record.FeedbackPayload)
	if rp.Status != record.FeedbackResolved {
		t.Fatalf("resolution status = %v, want resolved", rp.Status)
	}
	if rp.ResolvesFeedbackID != openID {
		t.Fatalf("resolvesFeedbackId = %q, want %q", rp.ResolvesFeedbackID, openID)
	}

	// The original record on disk is untouched — resolving never mutates
	// the open item in place.
	original, err := s.Get(record.TypeFeedback, openID)
	if err != nil {
		t.Fatalf("Get original: %v", err)
	}
	originalPayload, err := record.DecodePayload(record.TypeFeedback, original.Payload)
	if err != nil {
		t.Fatalf("DecodePayload original: %v", err)
	}
	if originalPayload.(record.FeedbackPayload).Status != record.FeedbackOpen {
		t.Fatal("the original feedback record must remain open; only the chained record closes it")
	}
}

func TestResolve_AlreadyResolvedIsRejected(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "state"))
	a := New(s, testFactory(t))
	signer := testSigner(t)

	opened, err := a.Create("task", "1700000000-task-ship-it", "blocking", "needs tests", signer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	openedPayload, err := record.DecodePayload(record.TypeFeedback, opened.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	openID := openedPayload.(record.FeedbackPayload).ID

	if _, err := a.Resolve(openID, "first resolution", signer); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if _, err := a.Resolve(openID, "second resolution", signer); err == nil {
		t.Fatal("expected resolving an already-resolved feedback item to fail")
	} else {
		var werr *ggerr.WorkflowError
		if !errorsAs(err, &werr) {
			t.Fatalf("expected *ggerr.WorkflowError, got %T: %v", err, err)
		}
	}
}

func errorsAs(err error, target **ggerr.WorkflowError) bool {
	we, ok := err.(*ggerr.WorkflowError)
	if ok {
		*target = we
	}
	return ok
}
