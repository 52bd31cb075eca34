// Package git provides the git operations workon needs: branch checks, the
// placeholder commit of a new work directory, staged-file listing for the
// commit tagger and hook installation.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	wkerrors "github.com/mrz1836/workon/internal/errors"
)

// RunCommand executes a git command in dir and returns its trimmed stdout.
// Errors wrap ErrGitOperation and include stderr.
func RunCommand(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := run(ctx, dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// run is RunCommand without trimming, for -z output.
func run(ctx context.Context, dir string, args ...string) (string, error) {
	zerolog.Ctx(ctx).Debug().
		Str("component", "git").
		Strs("args", args).
		Str("dir", dir).
		Msg("running git")

	cmd := exec.CommandContext(ctx, "git", args...) //#nosec G204 -- args are constructed internally
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(stderr.String()), wkerrors.ErrGitOperation)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], wkerrors.ErrGitOperation)
	}

	return stdout.String(), nil
}
