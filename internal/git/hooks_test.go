package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/workon/internal/testutil"
)

func TestResolveHooksDir(t *testing.T) {
	repo := testutil.InitGitRepo(t, "master")

	dir, err := ResolveHooksDir(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo, ".git", "hooks"), dir)
}

func TestInstallHook(t *testing.T) {
	ctx := context.Background()
	repo := testutil.InitGitRepo(t, "master")
	hookPath := filepath.Join(repo, ".git", "hooks", PrepareCommitMsgHook)

	res, err := InstallHook(ctx, repo, "/opt/bin/workon", false)
	require.NoError(t, err)
	assert.Equal(t, hookPath, res.Path)
	assert.False(t, res.Replaced)

	content, err := os.ReadFile(hookPath) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(content), hookMarker)
	assert.Contains(t, string(content), `"/opt/bin/workon" project git prepare-commit-msg "$1"`)

	info, err := os.Stat(hookPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100, "hook must be executable")

	res, err = InstallHook(ctx, repo, "/opt/bin/workon", false)
	require.NoError(t, err, "reinstalling our own hook is allowed")
	assert.True(t, res.Replaced)
}

func TestInstallHook_ForeignHook(t *testing.T) {
	ctx := context.Background()
	repo := testutil.InitGitRepo(t, "master")
	hookPath := filepath.Join(repo, ".git", "hooks", PrepareCommitMsgHook)
	require.NoError(t, os.MkdirAll(filepath.Dir(hookPath), 0o750))
	require.NoError(t, os.WriteFile(hookPath, []byte("#!/bin/sh\necho mine\n"), 0o600))

	_, err := InstallHook(ctx, repo, "workon", false)
	require.ErrorIs(t, err, os.ErrExist)

	res, err := InstallHook(ctx, repo, "workon", true)
	require.NoError(t, err)
	assert.True(t, res.Replaced)
}

func TestDetectRepo(t *testing.T) {
	repo := testutil.InitGitRepo(t, "master")

	info, err := DetectRepo(context.Background(), repo)
	require.NoError(t, err)
	assert.Equal(t, repo, info.Root)
	assert.Equal(t, filepath.Join(repo, ".git"), info.CommonDir)
}
