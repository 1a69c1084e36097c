package sync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gitgovernance/gitgovernance/internal/ggerr"
	"github.com/gitgovernance/gitgovernance/internal/gitrepo"
)

func isGitWorktree(path string) bool {
	return gitrepo.IsWorktree(path)
}

// preservedOnPull lists the worktree-local files an implicit pull must
// never let a remote rebase clobber — the signer's own key material and
// whatever the CLI stashes about the current session. Local always wins
// (spec §4.7): these are backed up before the rebase and restored after.
var preservedOnPull = []string{"keys", ".session.json"}

// PushResult reports whether Push had to implicit-pull before it could
// fast-forward the remote.
type PushResult struct {
	Pulled bool
}

// Push fetches gitgov-state from origin, rebasing local work on top of it
// whenever origin has a gitgov-state branch (an "implicit pull"; Pulled is
// then true even if the remote had no new commits), then pushes. A repo with
// no remote configured is an error — there is nothing to push to.
func (l *Lifecycle) Push(remoteName string) (*PushResult, error) {
	if !l.Repo.HasRemote(remoteName) {
		return nil, ggerr.ErrNoRemote
	}

	fl, err := l.lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	// A fetch error here almost always means the remote has no
	// gitgov-state branch yet (first push from this project) — there is
	// nothing to rebase onto, so Push proceeds straight to publishing.
	_ = l.Repo.FetchBranch(remoteName, gitrepo.StateBranch)

	result := &PushResult{}
	remoteRef := fmt.Sprintf("refs/remotes/%s/%s", remoteName, gitrepo.StateBranch)
	if l.Repo.RemoteBranchExists(remoteName, gitrepo.StateBranch) {
		preserved, err := l.snapshotPreserved()
		if err != nil {
			return nil, err
		}
		if err := gitrepo.Rebase(l.WorktreePath, remoteRef, l.Timeout); err != nil {
			_ = l.restorePreserved(preserved)
			return nil, err
		}
		if err := l.restorePreserved(preserved); err != nil {
			return nil, err
		}
		result.Pulled = true
		if err := l.invalidate(); err != nil {
			return nil, err
		}
	}

	if err := l.Repo.PushBranch(remoteName, gitrepo.StateBranch); err != nil {
		return nil, err
	}
	return result, nil
}

// PullResult reports what Pull did.
type PullResult struct {
	Bootstrapped bool // true when the local worktree had no history to rebase and was seeded from origin
	Warnings     []string
}

// Pull fetches gitgov-state from origin and brings the local worktree up
// to date: a first pull on an empty worktree resets onto origin's tip; a
// later pull rebases local commits onto it. Pulling with no remote state
// branch yet published is a no-op with a warning, not an error (there is
// nothing upstream to converge with).
func (l *Lifecycle) Pull(remoteName string) (*PullResult, error) {
	if !l.Repo.HasRemote(remoteName) {
		return nil, ggerr.ErrNoRemote
	}
	worktreeMissing := !isGitWorktree(l.WorktreePath)

	fl, err := l.lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	bootstrapping := worktreeMissing || !ConfigExists(l.WorktreePath)

	fetchErr := l.Repo.FetchBranch(remoteName, gitrepo.StateBranch)
	remoteExists := l.Repo.RemoteBranchExists(remoteName, gitrepo.StateBranch)
	if fetchErr != nil && remoteExists && !bootstrapping {
		return nil, fetchErr
	}

	remoteRef := fmt.Sprintf("refs/remotes/%s/%s", remoteName, gitrepo.StateBranch)
	result := &PullResult{}

	if fetchErr != nil || !remoteExists {
		result.Warnings = append(result.Warnings, fmt.Sprintf("sync: no published %s yet on %s", gitrepo.StateBranch, remoteName))
		return result, nil
	}

	if bootstrapping {
		if worktreeMissing {
			if err := gitrepo.AddTrackingWorktree(l.RepoRoot, l.WorktreePath, remoteRef, l.Timeout); err != nil {
				return nil, err
			}
		} else if err := gitrepo.ResetHard(l.WorktreePath, remoteRef, l.Timeout); err != nil {
			return nil, err
		}
		result.Bootstrapped = true
	} else {
		preserved, err := l.snapshotPreserved()
		if err != nil {
			return nil, err
		}
		if err := gitrepo.Rebase(l.WorktreePath, remoteRef, l.Timeout); err != nil {
			_ = l.restorePreserved(preserved)
			return nil, err
		}
		if err := l.restorePreserved(preserved); err != nil {
			return nil, err
		}
	}

	if err := l.invalidate(); err != nil {
		return nil, err
	}
	return result, nil
}

// Resolve finishes a conflicted rebase after the caller has hand-edited
// the conflict markers left in the worktree: it stages the resolution,
// continues the rebase and pushes the result. The caller is responsible
// for appending whatever audit record (e.g. a feedback resolution) the
// adapter layer requires — Resolve only unblocks the git state.
func (l *Lifecycle) Resolve(remoteName string) error {
	fl, err := l.lock()
	if err != nil {
		return err
	}
	defer func() { _ = fl.Unlock() }()

	if err := gitrepo.ContinueRebase(l.WorktreePath, l.Timeout); err != nil {
		return err
	}
	if err := l.invalidate(); err != nil {
		return err
	}
	if l.Repo.HasRemote(remoteName) {
		if err := l.Repo.PushBranch(remoteName, gitrepo.StateBranch); err != nil {
			return err
		}
	}
	return nil
}

// snapshotPreserved copies the worktree-local directories that must
// survive a rebase (keys, session state) into a temp directory.
func (l *Lifecycle) snapshotPreserved() (string, error) {
	tmp, err := os.MkdirTemp("", "gitgov-preserve-*")
	if err != nil {
		return "", ggerr.Wrap(err)
	}
	for _, name := range preservedOnPull {
		src := filepath.Join(l.WorktreePath, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyDir(src, filepath.Join(tmp, name)); err != nil {
			return "", err
		}
	}
	return tmp, nil
}

// restorePreserved copies the snapshot taken by snapshotPreserved back
// into the worktree, overwriting anything the rebase left behind — local
// keys and session state always win over whatever came from the remote.
func (l *Lifecycle) restorePreserved(snapshotDir string) error {
	defer func() { _ = os.RemoveAll(snapshotDir) }()
	for _, name := range preservedOnPull {
		src := filepath.Join(snapshotDir, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		dst := filepath.Join(l.WorktreePath, name)
		if err := os.RemoveAll(dst); err != nil {
			return ggerr.Wrap(err)
		}
		if err := copyDir(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o700)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode())
	})
}
