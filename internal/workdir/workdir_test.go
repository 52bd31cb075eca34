package workdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/workon/internal/conda"
	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/testutil"
)

type fakeFinder struct {
	envs  map[string]string
	calls int
	err   error
}

func (f *fakeFinder) FindEnv(_ context.Context, name string) (*conda.Env, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	prefix, ok := f.envs[name]
	if !ok {
		return nil, false, nil
	}
	return &conda.Env{Name: name, Prefix: prefix}, true, nil
}

func newProject(t *testing.T) *Project {
	t.Helper()
	return NewProject(t.TempDir(), "estcp", "")
}

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("alpha"))
	require.ErrorIs(t, ValidateName("alpha/beta"), errors.ErrNestedWorkDir)
	require.ErrorIs(t, ValidateName(".."), errors.ErrNestedWorkDir)
	require.ErrorIs(t, ValidateName(" "), errors.ErrEmptyValue)
}

func TestProject_CreateAndList(t *testing.T) {
	p := newProject(t)

	wd, err := p.Create("alpha")
	require.NoError(t, err)
	assert.Equal(t, "estcp-alpha", wd.DevenvName)
	assert.FileExists(t, wd.RunEnvPath())
	assert.FileExists(t, wd.DevenvPath())
	assert.FileExists(t, filepath.Join(wd.Dir, ".gitignore"))
	assert.DirExists(t, wd.ScriptsDir())

	devenv, err := os.ReadFile(wd.DevenvPath())
	require.NoError(t, err)
	assert.Contains(t, string(devenv), "name: estcp-alpha")

	_, err = p.Create("project")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(p.Root, "data"), 0o750))

	dirs, err := p.List()
	require.NoError(t, err)
	require.Len(t, dirs, 2, "folders without a devenv file are not work dirs")
	assert.Equal(t, "alpha", dirs[0].Name)
	assert.Equal(t, "project", dirs[1].Name)

	_, err = p.Create("alpha")
	require.ErrorIs(t, err, errors.ErrWorkDirExists)
}

func TestProject_Get(t *testing.T) {
	p := newProject(t)
	_, err := p.Create("alpha")
	require.NoError(t, err)

	wd, err := p.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.Root, "alpha"), wd.Dir)

	_, err = p.Get("beta")
	require.ErrorIs(t, err, errors.ErrWorkDirNotFound)

	_, err = p.Get("alpha/nested")
	require.ErrorIs(t, err, errors.ErrNestedWorkDir)
}

func TestProject_Current(t *testing.T) {
	p := newProject(t)
	_, err := p.Create("alpha")
	require.NoError(t, err)

	wd, err := p.Current(filepath.Join(p.Root, "alpha", "scripts"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", wd.Name)

	_, err = p.Current(p.Root)
	require.ErrorIs(t, err, errors.ErrNotInWorkDir)

	_, err = p.Current(filepath.Dir(p.Root))
	require.ErrorIs(t, err, errors.ErrNotInWorkDir)
}

func TestWorkDir_Minimal(t *testing.T) {
	p := newProject(t)
	wd, err := p.Create("alpha")
	require.NoError(t, err)

	run, dev, err := wd.Minimal()
	require.NoError(t, err)
	assert.True(t, run)
	assert.True(t, dev)

	testutil.WriteFile(t, wd.Dir, constants.RunEnvFileName,
		"channels: [conda-forge]\ndependencies: [python, numpy]\n")

	run, dev, err = wd.Minimal()
	require.NoError(t, err)
	assert.False(t, run)
	assert.True(t, dev)
}

func TestWorkDir_EnvPath(t *testing.T) {
	p := newProject(t)
	wd, err := p.Create("alpha")
	require.NoError(t, err)
	prefix := t.TempDir()

	t.Run("no environment", func(t *testing.T) {
		_, err := wd.EnvPath(context.Background(), &fakeFinder{})
		require.ErrorIs(t, err, errors.ErrNoEnvironment)
		assert.NoFileExists(t, wd.EnvFilePath())
	})

	t.Run("looked up and remembered", func(t *testing.T) {
		finder := &fakeFinder{envs: map[string]string{"estcp-alpha": prefix}}

		got, err := wd.EnvPath(context.Background(), finder)
		require.NoError(t, err)
		assert.Equal(t, prefix, got)

		got, err = wd.EnvPath(context.Background(), finder)
		require.NoError(t, err)
		assert.Equal(t, prefix, got)
		assert.Equal(t, 1, finder.calls, "second call reads the environment file")
	})

	t.Run("stale file is refreshed", func(t *testing.T) {
		testutil.WriteFile(t, wd.Dir, constants.EnvFileName, filepath.Join(prefix, "gone")+"\n")
		finder := &fakeFinder{envs: map[string]string{"estcp-alpha": prefix}}

		got, err := wd.EnvPath(context.Background(), finder)
		require.NoError(t, err)
		assert.Equal(t, prefix, got)
		assert.Equal(t, 1, finder.calls)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, wd.RemoveEnvFile())
		assert.NoFileExists(t, wd.EnvFilePath())
		require.NoError(t, wd.RemoveEnvFile())
	})
}

func TestWorkDir_SetupScripts(t *testing.T) {
	p := newProject(t)
	wd, err := p.Create("alpha")
	require.NoError(t, err)

	for _, name := range []string{"setup_b.py", "setup_a.sh", "setup_a.bat", "build.py", "setup.cmdlines"} {
		testutil.WriteFile(t, wd.ScriptsDir(), name, "")
	}

	stems, err := wd.SetupScripts()
	require.NoError(t, err)
	assert.Equal(t, []string{"setup", "setup_a", "setup_b"}, stems)
}

func TestWorkDir_ClearWrappers(t *testing.T) {
	p := newProject(t)
	wd, err := p.Create("alpha")
	require.NoError(t, err)

	require.NoError(t, wd.ClearWrappers())
	testutil.WriteFile(t, wd.WrappersDir(), "run-in", "")
	testutil.WriteFile(t, wd.WrappersDir(), "python-alpha", "")

	require.NoError(t, wd.ClearWrappers())
	entries, err := os.ReadDir(wd.WrappersDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWorkDir_RelPath(t *testing.T) {
	p := newProject(t)
	wd, err := p.Create("alpha")
	require.NoError(t, err)

	rel, err := wd.RelPath(wd.Dir)
	require.NoError(t, err)
	assert.Empty(t, rel)

	rel, err = wd.RelPath(p.Root)
	require.NoError(t, err)
	assert.Equal(t, "alpha", rel)

	rel, err = wd.RelPath(filepath.Join(p.Root, "beta", "scripts"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "..", "alpha"), rel)
}
