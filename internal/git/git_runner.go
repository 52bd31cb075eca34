package git

import (
	"context"
	"fmt"
	"strings"

	wkerrors "github.com/mrz1836/workon/internal/errors"
)

// CLIRunner implements Runner using the git CLI.
type CLIRunner struct {
	root string
}

// NewRunner creates a CLIRunner for the repository containing dir.
// Returns ErrNotGitRepo if dir is not inside a git repository.
func NewRunner(ctx context.Context, dir string) (*CLIRunner, error) {
	if dir == "" {
		return nil, fmt.Errorf("work directory cannot be empty: %w", wkerrors.ErrEmptyValue)
	}

	info, err := DetectRepo(ctx, dir)
	if err != nil {
		return nil, err
	}

	return &CLIRunner{root: info.Root}, nil
}

// Root returns the repository top-level directory.
func (r *CLIRunner) Root() string {
	return r.root
}

// CurrentBranch returns the name of the currently checked out branch.
func (r *CLIRunner) CurrentBranch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	output, err := RunCommand(ctx, r.root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		// Unborn branch: rev-parse fails, symbolic-ref still knows the name.
		name, symErr := RunCommand(ctx, r.root, "symbolic-ref", "--short", "HEAD")
		if symErr != nil {
			return "", fmt.Errorf("failed to get current branch: %w", err)
		}
		return name, nil
	}

	if output == "HEAD" {
		return "", wkerrors.ErrDetachedHead
	}

	return output, nil
}

// Add stages files for commit.
func (r *CLIRunner) Add(ctx context.Context, paths []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	args := []string{"add"}
	if len(paths) == 0 {
		args = append(args, "-A")
	} else {
		args = append(args, "--")
		args = append(args, paths...)
	}

	if _, err := RunCommand(ctx, r.root, args...); err != nil {
		return fmt.Errorf("failed to add files: %w", err)
	}
	return nil
}

// Commit creates a commit with the given message. Whitespace in the message
// is preserved.
func (r *CLIRunner) Commit(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("commit message cannot be empty: %w", wkerrors.ErrEmptyValue)
	}

	if _, err := RunCommand(ctx, r.root, "commit", "-m", message, "--cleanup=verbatim"); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// StagedFiles lists staged paths compared with HEAD. Before the first
// commit every staged path is listed.
func (r *CLIRunner) StagedFiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args := []string{"diff", "--cached", "--name-only", "-z"}
	if r.hasHead(ctx) {
		args = append(args, "HEAD")
	}

	output, err := run(ctx, r.root, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}

	return splitNUL(output), nil
}

func (r *CLIRunner) hasHead(ctx context.Context) bool {
	_, err := RunCommand(ctx, r.root, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

func splitNUL(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "\x00") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

var _ Runner = (*CLIRunner)(nil)
