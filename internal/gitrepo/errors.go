package gitrepo

import "errors"

// Sentinel errors for the gitrepo package. Matched with errors.Is so
// callers (sync, CLI) can react without string-matching git output.
var (
	// ErrNotGitRepo is returned when the target directory is not inside a
	// git repository.
	ErrNotGitRepo = errors.New("gitrepo: not a git repository")

	// ErrBranchExists reports that gitgov-state is already present. No
	// function in this package returns it.
	ErrBranchExists = errors.New("gitrepo: state branch already exists")

	// ErrRebaseInProgress reports that a rebase is already underway. No
	// function in this package returns it.
	ErrRebaseInProgress = errors.New("gitrepo: rebase already in progress")

	// ErrNoRebaseInProgress is returned by ContinueRebase/AbortRebase when
	// there is nothing to continue or abort.
	ErrNoRebaseInProgress = errors.New("gitrepo: no rebase in progress")
)
