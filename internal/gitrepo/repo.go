// Package gitrepo wraps the git operations the sync layer needs against
// the gitgov-state branch: fetch/push, tree listing and remote/commit
// presence checks via go-git; orphan-worktree creation, commit, reset,
// rebase, continue/abort and conflict-file listing via the system git
// binary, since go-git has no orphan-checkout or rebase porcelain (grounded on the teacher's internal/rpi/worktree.go,
// which shells out to git for every operation git's CLI does better than
// a library re-implementation).
package gitrepo

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/gitgovernance/gitgovernance/internal/ggerr"
)

// DefaultTimeout bounds every git subprocess invocation (rebase.go) the
// same way the teacher bounds its worktree commands.
const DefaultTimeout = 30 * time.Second

// StateBranch is the orphan branch gitgovernance state lives on.
const StateBranch = "gitgov-state"

// Repo wraps a go-git repository opened at a working directory (normally
// the caller's project root, i.e. the main checkout, not the gitgov-state
// worktree).
type Repo struct {
	path string
	repo *git.Repository
}

// Open opens the git repository rooted at path.
func Open(path string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			return nil, ErrNotGitRepo
		}
		return nil, ggerr.Wrap(err)
	}
	return &Repo{path: path, repo: r}, nil
}

// Path returns the directory Open was called with.
func (r *Repo) Path() string { return r.path }

// HasRemote reports whether remoteName is configured.
func (r *Repo) HasRemote(remoteName string) bool {
	_, err := r.repo.Remote(remoteName)
	return err == nil
}

// HasCommitsOnBranch reports whether branch has at least one commit,
// distinguishing "branch missing" from "branch exists but history is
// absent" only in that both report false — callers needing to tell them
// apart call BranchExists first.
func (r *Repo) HasCommitsOnBranch(branch string) bool {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return false
	}
	_, err = r.repo.CommitObject(ref.Hash())
	return err == nil
}

// BranchExists reports whether a local branch reference exists.
func (r *Repo) BranchExists(branch string) bool {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	return err == nil
}

// RemoteBranchExists reports whether remoteName's tracking ref for branch
// has been fetched at least once.
func (r *Repo) RemoteBranchExists(remoteName, branch string) bool {
	_, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
	return err == nil
}

// ListTree returns every file path recorded in branch's tip commit tree.
// No other package calls it; lint discovers records by walking the
// worktree directory instead.
func (r *Repo) ListTree(branch string) ([]string, error) {
	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return nil, ggerr.Wrap(err)
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, ggerr.Wrap(err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, ggerr.Wrap(err)
	}

	var files []string
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err != nil {
			break
		}
		if !entry.Mode.IsFile() {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

// FetchBranch fetches remoteName's copy of branch into
// refs/remotes/<remoteName>/<branch>. A no-op "already up to date" result
// from go-git is not an error.
func (r *Repo) FetchBranch(remoteName, branch string) error {
	refspec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remoteName, branch))
	err := r.repo.Fetch(&git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refspec},
	})
	return normalizeNoOp(err)
}

// PushBranch pushes branch to remoteName. Non-fast-forward pushes fail
// here by design — sync must implicit-pull (fetch + rebase) first.
func (r *Repo) PushBranch(remoteName, branch string) error {
	refspec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err := r.repo.Push(&git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refspec},
	})
	return normalizeNoOp(err)
}

func normalizeNoOp(err error) error {
	if err == nil || err == git.NoErrAlreadyUpToDate {
		return nil
	}
	return ggerr.Wrap(err)
}
