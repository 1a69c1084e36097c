package sync

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/gitgovernance/gitgovernance/internal/factory"
	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/gitrepo"
	"github.com/gitgovernance/gitgovernance/internal/keystore"
	"github.com/gitgovernance/gitgovernance/internal/record"
	"github.com/gitgovernance/gitgovernance/internal/store"
)

// RemoteName is the git remote sync operates against; the protocol names
// only one remote ("origin") as first-class.
const RemoteName = "origin"

const lockFileName = ".gitgov.lock"

// ProjectionInvalidator is notified whenever the worktree's record set may
// have changed, so the index (C13) can rebuild itself rather than stay
// silently wrong. A nil Invalidator is a valid no-op.
type ProjectionInvalidator interface {
	Invalidate() error
}

// Lifecycle drives the init/push/pull/resolve operations against one
// project's gitgov-state worktree.
type Lifecycle struct {
	RepoRoot     string
	WorktreePath string
	Repo         *gitrepo.Repo
	Store        *store.FileStore
	Invalidator  ProjectionInvalidator
	Timeout      time.Duration
}

// Open resolves the worktree address for repoRoot and wires up the
// lifecycle. It does not require the worktree to exist yet — Init creates
// it.
func Open(repoRoot string) (*Lifecycle, error) {
	repo, err := gitrepo.Open(repoRoot)
	if err != nil {
		return nil, err
	}
	worktreePath, err := WorktreeAddress(repoRoot)
	if err != nil {
		return nil, err
	}
	return &Lifecycle{
		RepoRoot:     repoRoot,
		WorktreePath: worktreePath,
		Repo:         repo,
		Store:        store.NewFileStore(worktreePath),
		Timeout:      gitrepo.DefaultTimeout,
	}, nil
}

// lock acquires the per-worktree advisory file lock for the duration of a
// Git mutation or batched store write (spec §5 concurrency: "the worktree
// is the only shared mutable resource"). The lock file sits beside the
// worktree directory, not inside it, so git can still create the worktree
// there.
func (l *Lifecycle) lock() (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(l.WorktreePath), 0o700); err != nil {
		return nil, ggerr.Wrap(err)
	}
	fl := flock.New(l.WorktreePath + lockFileName)
	if err := fl.Lock(); err != nil {
		return nil, ggerr.Wrap(fmt.Errorf("acquire worktree lock: %w", err))
	}
	return fl, nil
}

func (l *Lifecycle) invalidate() error {
	if l.Invalidator == nil {
		return nil
	}
	return l.Invalidator.Invalidate()
}

// InitResult reports what Init did.
type InitResult struct {
	Created        bool // false when init was a no-op on an already-initialized worktree
	BootstrapActor string
	RootCycleID    string
	WorktreePath   string
}

// Init creates the gitgov-state worktree, config.json, the category
// directories, a self-signed bootstrap actor and a root cycle. Calling
// Init twice is a no-op: config.json and the actor/cycle set are left
// unchanged (spec §8 round-trip property).
func (l *Lifecycle) Init(f *factory.Factory, bootstrapActorID, displayName string, signer factory.Signer) (*InitResult, error) {
	fl, err := l.lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	if ConfigExists(l.WorktreePath) {
		cfg, err := LoadConfig(l.WorktreePath)
		if err != nil {
			return nil, err
		}
		return &InitResult{
			Created:        false,
			BootstrapActor: cfg.BootstrapID,
			RootCycleID:    cfg.RootCycleID,
			WorktreePath:   l.WorktreePath,
		}, nil
	}

	if err := gitrepo.InitOrphanWorktree(l.RepoRoot, l.WorktreePath, l.Timeout); err != nil {
		return nil, err
	}

	pub, ok := signer.Key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("sync: signer key is not ed25519")
	}
	actorPayload := record.ActorPayload{
		ID:          bootstrapActorID,
		Type:        "human",
		DisplayName: displayName,
		PublicKey:   keystore.PublicKeyBase64(pub),
		Roles:       []string{"author", "reviewer", "approver"},
		Status:      record.ActorActive,
	}

	actorEnv, err := f.Create(record.TypeActor, actorPayload, signer)
	if err != nil {
		return nil, err
	}

	rootCycleID, err := f.GenerateID(record.TypeCycle, "root")
	if err != nil {
		return nil, err
	}
	cyclePayload := record.CyclePayload{
		ID:     rootCycleID,
		Title:  "Root",
		Status: record.CyclePlanning,
	}
	cycleEnv, err := f.Create(record.TypeCycle, cyclePayload, signer)
	if err != nil {
		return nil, err
	}

	if err := l.Store.Put(record.TypeActor, actorEnv); err != nil {
		return nil, err
	}
	if err := l.Store.Put(record.TypeCycle, cycleEnv); err != nil {
		return nil, err
	}

	cfg := ProjectConfig{
		Version:     "1.0",
		ProtocolVer: record.ProtocolVersion,
		RootCycleID: rootCycleID,
		BootstrapID: bootstrapActorID,
	}
	if err := SaveConfig(l.WorktreePath, cfg); err != nil {
		return nil, err
	}

	if err := gitrepo.CommitAll(l.WorktreePath, "gitgovernance: init", displayName, "bootstrap@gitgovernance.local", l.Timeout); err != nil {
		return nil, err
	}

	if err := l.invalidate(); err != nil {
		return nil, err
	}

	return &InitResult{
		Created:        true,
		BootstrapActor: bootstrapActorID,
		RootCycleID:    rootCycleID,
		WorktreePath:   l.WorktreePath,
	}, nil
}
