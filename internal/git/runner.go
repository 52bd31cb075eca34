package git

import "context"

// Runner defines the git operations used by the work-on driver and the
// commit tagger. All operations run in the repository the runner was
// created for.
type Runner interface {
	// CurrentBranch returns the checked out branch.
	// Returns ErrDetachedHead when HEAD is detached.
	CurrentBranch(ctx context.Context) (string, error)

	// Add stages paths. An empty list stages everything.
	Add(ctx context.Context, paths []string) error

	// Commit creates a commit with message, used verbatim.
	Commit(ctx context.Context, message string) error

	// StagedFiles lists staged paths relative to the repository root,
	// compared with HEAD.
	StagedFiles(ctx context.Context) ([]string, error)

	// Root returns the repository top-level directory.
	Root() string
}
