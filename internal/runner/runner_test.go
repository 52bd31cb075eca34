//go:build unix

package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/workon/internal/errors"
)

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "git", Command{Name: "git"}.String())
	assert.Equal(t, "conda env list", Command{Name: "conda", Args: []string{"env", "list"}}.String())
}

func TestDefaultCommandRunner_Capture(t *testing.T) {
	var live bytes.Buffer
	r := New(&live)

	res, err := r.Run(context.Background(), Command{Name: "echo", Args: []string{"hello", "world"}})
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.TrimmedStdout())
	assert.Zero(t, res.ExitCode)
	assert.Empty(t, live.String(), "captured commands do not stream")
}

func TestDefaultCommandRunner_Stream(t *testing.T) {
	var live bytes.Buffer
	r := New(&live)

	res, err := r.Run(context.Background(), Command{Name: "echo", Args: []string{"setup"}, Stream: true})
	require.NoError(t, err)
	assert.Equal(t, "setup\n", res.Stdout)
	assert.Equal(t, "echo setup\nsetup\n", live.String())
}

func TestDefaultCommandRunner_DirAndEnv(t *testing.T) {
	dir := t.TempDir()
	r := New(nil)

	res, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `pwd; echo "$WORKON_TEST_VAR"`},
		Dir:  dir,
		Env:  []string{"WORKON_TEST_VAR=alpha"},
	})
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, resolved)
	assert.Contains(t, res.Stdout, "alpha")
}

func TestDefaultCommandRunner_NonZeroExit(t *testing.T) {
	r := New(nil)

	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo broken >&2; exit 3"}})
	require.ErrorIs(t, err, errors.ErrCommandFailed)
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, err.Error(), "exit 3")
	assert.Contains(t, err.Error(), "broken")
}

func TestDefaultCommandRunner_MissingBinary(t *testing.T) {
	r := New(nil)

	res, err := r.Run(context.Background(), Command{Name: filepath.Join(t.TempDir(), "does-not-exist")})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.NotErrorIs(t, err, errors.ErrCommandFailed)
}

func TestDefaultCommandRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Run(ctx, Command{Name: "sleep", Args: []string{"5"}})
	require.Error(t, err)
}

func TestDefaultCommandRunner_RunsGeneratedScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "hello")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"hi $1\"\n"), 0o755)) //nolint:gosec // test script

	res, err := New(nil).Run(context.Background(), Command{Name: script, Args: []string{"there"}})
	require.NoError(t, err)
	assert.Equal(t, "hi there", res.TrimmedStdout())
}
