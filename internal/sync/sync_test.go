package sync

import (
	"crypto/ed25519"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/gitrepo"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

func runGitT(t *testing.T, cwd string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = cwd
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, string(out))
	}
}

func initGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runGitT(t, dir, "init")
	runGitT(t, dir, "config", "user.email", "test@example.com")
	runGitT(t, dir, "config", "user.name", "Test")
	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("# test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGitT(t, dir, "add", "README.md")
	runGitT(t, dir, "commit", "-m", "initial")
	return dir
}

func newLifecycle(t *testing.T, repoRoot string) *Lifecycle {
	t.Helper()
	repo, err := gitrepo.Open(repoRoot)
	if err != nil {
		t.Fatalf("gitrepo.Open: %v", err)
	}
	worktreePath := filepath.Join(t.TempDir(), "gitgov-state")
	return &Lifecycle{
		RepoRoot:     repoRoot,
		WorktreePath: worktreePath,
		Repo:         repo,
		Store:        store.NewFileStore(worktreePath),
		Timeout:      gitrepo.DefaultTimeout,
	}
}

func testSigner(t *testing.T) factory.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return factory.Signer{ActorID: "human:tester", Role: "author", Notes: "bootstrap", Key: priv}
}

func testFactory(t *testing.T) *factory.Factory {
	t.Helper()
	schemas, err := record.NewSchemaCache()
	if err != nil {
		t.Fatalf("NewSchemaCache: %v", err)
	}
	return factory.New(schemas, func() int64 { return 1700000000 })
}

func TestInit_SucceedsWithoutRemote(t *testing.T) {
	repoRoot := initGitRepo(t)
	l := newLifecycle(t, repoRoot)
	f := testFactory(t)
	signer := testSigner(t)

	res, err := l.Init(f, "human:tester", "Tester", signer)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !res.Created {
		t.Fatalf("Init.Created = false, want true on first call")
	}
	if res.BootstrapActor != "human:tester" {
		t.Fatalf("BootstrapActor = %q", res.BootstrapActor)
	}
	if !ConfigExists(l.WorktreePath) {
		t.Fatalf("config.json missing after Init")
	}
	if !l.Store.Exists(record.TypeActor, "human:tester") {
		t.Fatalf("bootstrap actor record missing after Init")
	}
}

func TestInit_IdempotentOnSecondCall(t *testing.T) {
	repoRoot := initGitRepo(t)
	l := newLifecycle(t, repoRoot)
	f := testFactory(t)
	signer := testSigner(t)

	first, err := l.Init(f, "human:tester", "Tester", signer)
	if err != nil {
		t.Fatalf("first Init: %v", err)
	}
	second, err := l.Init(f, "human:tester", "Tester", signer)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if second.Created {
		t.Fatalf("second Init.Created = true, want false (idempotent)")
	}
	if first.RootCycleID != second.RootCycleID {
		t.Fatalf("RootCycleID changed across Init calls: %q != %q", first.RootCycleID, second.RootCycleID)
	}
}

func TestInit_SucceedsWithNoCommitsOnMain(t *testing.T) {
	dir := t.TempDir()
	runGitT(t, dir, "init")
	runGitT(t, dir, "config", "user.email", "test@example.com")
	runGitT(t, dir, "config", "user.name", "Test")

	l := newLifecycle(t, dir)
	f := testFactory(t)
	signer := testSigner(t)

	if _, err := l.Init(f, "human:tester", "Tester", signer); err != nil {
		t.Fatalf("Init on repo with no commits: %v", err)
	}
}

func TestPush_NoRemoteReturnsErrNoRemote(t *testing.T) {
	repoRoot := initGitRepo(t)
	l := newLifecycle(t, repoRoot)
	f := testFactory(t)
	signer := testSigner(t)
	if _, err := l.Init(f, "human:tester", "Tester", signer); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if _, err := l.Push(RemoteName); err != ggerr.ErrNoRemote {
		t.Fatalf("Push without remote = %v, want ggerr.ErrNoRemote", err)
	}
}

func TestPull_NoRemoteReturnsErrNoRemote(t *testing.T) {
	repoRoot := initGitRepo(t)
	l := newLifecycle(t, repoRoot)
	if _, err := l.Pull(RemoteName); err != ggerr.ErrNoRemote {
		t.Fatalf("Pull without remote = %v, want ggerr.ErrNoRemote", err)
	}
}

func TestPushThenPull_RoundTripsThroughBareRemote(t *testing.T) {
	repoRoot := initGitRepo(t)
	bareDir := t.TempDir()
	runGitT(t, bareDir, "init", "--bare")
	runGitT(t, repoRoot, "remote", "add", "origin", bareDir)

	l := newLifecycle(t, repoRoot)
	f := testFactory(t)
	signer := testSigner(t)
	if _, err := l.Init(f, "human:tester", "Tester", signer); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if _, err := l.Push(RemoteName); err != nil {
		t.Fatalf("Push: %v", err)
	}

	// A second clone of the same bare remote should be able to bootstrap
	// its worktree from what Push just published.
	repoRoot2 := t.TempDir()
	runGitT(t, repoRoot2, "clone", bareDir, ".")
	runGitT(t, repoRoot2, "config", "user.email", "test@example.com")
	runGitT(t, repoRoot2, "config", "user.name", "Test")

	l2 := newLifecycle(t, repoRoot2)
	res, err := l2.Pull(RemoteName)
	if err != nil {
		t.Fatalf("Pull on fresh clone: %v", err)
	}
	if !res.Bootstrapped {
		t.Fatalf("Pull.Bootstrapped = false, want true for an empty worktree")
	}
	if !ConfigExists(l2.WorktreePath) {
		t.Fatalf("config.json missing after bootstrapping Pull")
	}
}

func TestPull_NoRemoteStateBranchIsWarningNotError(t *testing.T) {
	repoRoot := initGitRepo(t)
	bareDir := t.TempDir()
	runGitT(t, bareDir, "init", "--bare")
	runGitT(t, repoRoot, "remote", "add", "origin", bareDir)

	l := newLifecycle(t, repoRoot)
	res, err := l.Pull(RemoteName)
	if err != nil {
		t.Fatalf("Pull with nothing published yet: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning when no gitgov-state has been published")
	}
}
