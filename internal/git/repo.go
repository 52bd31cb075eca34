package git

import (
	"context"
	"fmt"
	"path/filepath"

	wkerrors "github.com/mrz1836/workon/internal/errors"
)

// RepoInfo contains information about a git repository.
type RepoInfo struct {
	// Root is the absolute top-level directory of the working tree.
	Root string

	// CommonDir is the shared .git directory; hooks live under it.
	CommonDir string
}

// DetectRepo returns information about the git repository containing path.
func DetectRepo(ctx context.Context, path string) (*RepoInfo, error) {
	toplevel, err := RunCommand(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", wkerrors.ErrNotGitRepo, err)
	}

	commonDir, err := RunCommand(ctx, path, "rev-parse", "--git-common-dir")
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(path, commonDir)
	}

	return &RepoInfo{
		Root:      filepath.Clean(filepath.FromSlash(toplevel)),
		CommonDir: filepath.Clean(commonDir),
	}, nil
}
