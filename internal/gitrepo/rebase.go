package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gitgovernance/gitgovernance/internal/ggerr"
)

// runGit runs git in dir with timeout, exactly the teacher's
// exec.CommandContext + DeadlineExceeded-to-typed-error idiom.
func runGit(dir string, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %s", strings.Join(args, " "), timeout)
		}
		return string(out), err
	}
	return string(out), nil
}

// InitOrphanWorktree creates a new worktree at worktreePath checked out on
// an orphan branch named gitgov-state, with no parent commits and no files
// from the main checkout (spec §4.7). go-git has no orphan-checkout
// primitive, so this shells out the same way rebase below does.
func InitOrphanWorktree(repoRoot, worktreePath string, timeout time.Duration) error {
	if IsWorktree(worktreePath) {
		return nil // already initialized; sync.Init is idempotent.
	}

	if _, err := runGit(repoRoot, timeout, "worktree", "add", "--orphan", "-b", StateBranch, worktreePath); err == nil {
		return nil
	}

	// Older git lacks `worktree add --orphan`; fall back to a detached
	// worktree followed by an explicit orphan checkout inside it.
	if _, err := runGit(repoRoot, timeout, "worktree", "add", "--detach", worktreePath, "HEAD"); err != nil {
		return ggerr.Wrap(fmt.Errorf("git worktree add: %w", err))
	}
	if _, err := runGit(worktreePath, timeout, "checkout", "--orphan", StateBranch); err != nil {
		return ggerr.Wrap(fmt.Errorf("git checkout --orphan: %w", err))
	}
	// Remove whatever the detached HEAD's tree brought along; the state
	// branch starts empty and is populated by sync's bootstrap writer.
	if _, err := runGit(worktreePath, timeout, "rm", "-rf", "."); err != nil {
		// Nothing staged yet on a brand-new orphan checkout is fine.
		_ = err
	}
	return nil
}

// IsWorktree reports whether path already has a .git pointer file or
// directory — i.e. whether it is already a git worktree, as opposed to a
// plain (possibly empty) directory that just happens to exist.
func IsWorktree(path string) bool {
	_, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil
}

// CommitAll stages every change in worktreePath and commits with message,
// authored as author <email>.
func CommitAll(worktreePath, message, author, email string, timeout time.Duration) error {
	if _, err := runGit(worktreePath, timeout, "add", "-A"); err != nil {
		return ggerr.Wrap(fmt.Errorf("git add: %w", err))
	}
	// `git diff --cached --quiet` exits 0 when there is nothing staged;
	// that's a successful no-op commit, not an error.
	if _, err := runGit(worktreePath, timeout, "diff", "--cached", "--quiet"); err == nil {
		return nil
	}
	args := []string{
		"-c", "user.name=" + author,
		"-c", "user.email=" + email,
		"commit", "-m", message,
	}
	if _, err := runGit(worktreePath, timeout, args...); err != nil {
		return ggerr.Wrap(fmt.Errorf("git commit: %w", err))
	}
	return nil
}

// AddTrackingWorktree creates a worktree at worktreePath checked out on a
// new local gitgov-state branch tracking startPoint (typically
// refs/remotes/<remote>/gitgov-state) — the bootstrap path a fresh clone
// takes in sync.Pull when no local worktree exists yet, as opposed to
// InitOrphanWorktree's from-nothing path.
func AddTrackingWorktree(repoRoot, worktreePath, startPoint string, timeout time.Duration) error {
	if _, err := os.Stat(worktreePath); err == nil {
		return nil
	}
	if _, err := runGit(repoRoot, timeout, "worktree", "add", "-b", StateBranch, worktreePath, startPoint); err != nil {
		return ggerr.Wrap(fmt.Errorf("git worktree add: %w", err))
	}
	return nil
}

// ResetHard hard-resets worktreePath's current branch to ref, discarding
// local history — used once, by sync.Pull, to bootstrap an empty worktree
// from origin's tip rather than rebasing onto it.
func ResetHard(worktreePath, ref string, timeout time.Duration) error {
	if _, err := runGit(worktreePath, timeout, "reset", "--hard", ref); err != nil {
		return ggerr.Wrap(fmt.Errorf("git reset --hard %s: %w", ref, err))
	}
	return nil
}

// Rebase rebases the worktree's current branch onto ontoRef (typically
// <remote>/gitgov-state after a fetch). A clean rebase returns nil; a
// conflicted rebase returns a *ggerr.ConflictError naming the conflicting
// files, leaving the rebase in progress for Resolve/Continue/Abort.
func Rebase(worktreePath, ontoRef string, timeout time.Duration) error {
	_, err := runGit(worktreePath, timeout, "rebase", ontoRef)
	if err == nil {
		return nil
	}
	files, listErr := ConflictFiles(worktreePath, timeout)
	if listErr == nil && len(files) > 0 {
		return &ggerr.ConflictError{Files: files}
	}
	return ggerr.Wrap(fmt.Errorf("git rebase %s: %w", ontoRef, err))
}

// ConflictFiles lists paths with unresolved merge/rebase conflicts.
func ConflictFiles(worktreePath string, timeout time.Duration) ([]string, error) {
	out, err := runGit(worktreePath, timeout, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, ggerr.Wrap(err)
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// IsRebaseInProgress reports whether worktreePath has rebase state that
// ContinueRebase/AbortRebase could act on.
func IsRebaseInProgress(worktreePath string) bool {
	gitDir, err := resolveGitDir(worktreePath)
	if err != nil {
		return false
	}
	for _, name := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, name)); err == nil {
			return true
		}
	}
	return false
}

// ContinueRebase stages the caller's conflict-marker edits and continues a
// paused rebase.
func ContinueRebase(worktreePath string, timeout time.Duration) error {
	if !IsRebaseInProgress(worktreePath) {
		return ErrNoRebaseInProgress
	}
	if _, err := runGit(worktreePath, timeout, "add", "-A"); err != nil {
		return ggerr.Wrap(fmt.Errorf("git add: %w", err))
	}
	if _, err := runGit(worktreePath, timeout, "rebase", "--continue"); err != nil {
		files, listErr := ConflictFiles(worktreePath, timeout)
		if listErr == nil && len(files) > 0 {
			return &ggerr.ConflictError{Files: files}
		}
		return ggerr.Wrap(fmt.Errorf("git rebase --continue: %w", err))
	}
	return nil
}

// AbortRebase cancels an in-progress rebase, restoring the pre-rebase tip.
func AbortRebase(worktreePath string, timeout time.Duration) error {
	if !IsRebaseInProgress(worktreePath) {
		return ErrNoRebaseInProgress
	}
	if _, err := runGit(worktreePath, timeout, "rebase", "--abort"); err != nil {
		return ggerr.Wrap(fmt.Errorf("git rebase --abort: %w", err))
	}
	return nil
}

// resolveGitDir returns the .git directory for worktreePath, following the
// `gitdir:` pointer file linked worktrees use instead of a real .git dir.
func resolveGitDir(worktreePath string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(worktreePath, ".git"))
	if err != nil {
		// Not a linked worktree; assume worktreePath/.git is a real directory.
		return filepath.Join(worktreePath, ".git"), nil
	}
	line := strings.TrimSpace(string(raw))
	const prefix = "gitdir: "
	if !strings.HasPrefix(line, prefix) {
		return "", fmt.Errorf("gitrepo: malformed .git file in %s", worktreePath)
	}
	dir := strings.TrimPrefix(line, prefix)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(worktreePath, dir)
	}
	return dir, nil
}
