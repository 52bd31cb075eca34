package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/workon/internal/scaffold"
)

// PrepareCommitMsgHook is the hook file name.
const PrepareCommitMsgHook = "prepare-commit-msg"

// hookMarker identifies hooks written by workon.
const hookMarker = "# Installed by workon"

// ResolveHooksDir finds the hooks directory for a repository. It honors
// core.hooksPath and linked worktrees.
func ResolveHooksDir(ctx context.Context, repoPath string) (string, error) {
	dir, err := RunCommand(ctx, repoPath, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(repoPath, dir)
	}
	return filepath.Clean(dir), nil
}

// InstallHookResult describes what InstallHook did.
type InstallHookResult struct {
	Path     string `json:"path"`
	Replaced bool   `json:"replaced"`
}

// InstallHook writes the prepare-commit-msg hook running executable.
// A hook not written by workon is only replaced when force is set.
func InstallHook(ctx context.Context, repoPath, executable string, force bool) (*InstallHookResult, error) {
	hooksDir, err := ResolveHooksDir(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	content, err := scaffold.Render(scaffold.PrepareCommitMsgHook, scaffold.HookData{Executable: filepath.ToSlash(executable)})
	if err != nil {
		return nil, err
	}

	path := filepath.Join(hooksDir, PrepareCommitMsgHook)
	result := &InstallHookResult{Path: path}

	existing, err := os.ReadFile(path) //nolint:gosec // path is inside the repository's hooks dir
	switch {
	case err == nil:
		if !strings.Contains(string(existing), hookMarker) && !force {
			return nil, fmt.Errorf("%s exists and was not installed by workon: %w", path, os.ErrExist)
		}
		result.Replaced = true
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read existing hook: %w", err)
	}

	if err := os.MkdirAll(hooksDir, 0o750); err != nil {
		return nil, fmt.Errorf("create hooks dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil { //nolint:gosec // hooks must be executable
		return nil, fmt.Errorf("write hook: %w", err)
	}

	return result, nil
}
