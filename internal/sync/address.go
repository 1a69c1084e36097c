// Package sync implements the worktree lifecycle: init, push, pull and
// conflict resolve against the gitgov-state orphan branch (spec §4.7).
package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// WorktreeDirName is the directory under the user's home that holds every
// project's gitgov-state worktree, keyed by a hash of the repo's real path,
// so each checkout path gets its own worktree (two clones of the same repo
// at different paths do not share one).
const WorktreeDirName = ".gitgov/worktrees"

// WorktreeAddress computes the worktree path for a repository rooted at
// repoRoot: ~/.gitgov/worktrees/<12-hex-SHA256(realpath(repoRoot))>/
func WorktreeAddress(repoRoot string) (string, error) {
	real, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		real, err = filepath.Abs(repoRoot)
		if err != nil {
			return "", fmt.Errorf("sync: resolve repo path: %w", err)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("sync: resolve home directory: %w", err)
	}

	sum := sha256.Sum256([]byte(real))
	hash := hex.EncodeToString(sum[:])[:12]
	return filepath.Join(home, WorktreeDirName, hash), nil
}
