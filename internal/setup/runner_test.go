package setup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/scripts"
	"github.com/mrz1836/workon/internal/testutil"
	"github.com/mrz1836/workon/internal/workdir"
)

type fakeConda struct {
	root     string
	deps     map[string][]string
	composed []string
}

func (c *fakeConda) Devenv(_ context.Context, dir string) error {
	c.composed = append(c.composed, filepath.Base(dir))
	return nil
}

func (c *fakeConda) Getenv(_ context.Context, envName, variable string) (string, bool, error) {
	if variable != constants.EnvRunWorkDirs {
		return "", false, nil
	}
	deps, ok := c.deps[strings.TrimPrefix(envName, "estcp-")]
	if !ok {
		return "", false, nil
	}
	paths := make([]string, len(deps))
	for i, d := range deps {
		paths[i] = filepath.Join(c.root, d)
	}
	return strings.Join(paths, string(os.PathListSeparator)), true, nil
}

type fakeScripts struct{ processed []string }

func (s *fakeScripts) Process(_ context.Context, name string) (*scripts.Report, error) {
	s.processed = append(s.processed, name)
	return &scripts.Report{WorkDir: name}, nil
}

type fixture struct {
	project *workdir.Project
	conda   *fakeConda
	scripts *fakeScripts
	exec    *testutil.FakeRunner
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	p := workdir.NewProject(t.TempDir(), "estcp", "")
	for _, n := range names {
		_, err := p.Create(n)
		require.NoError(t, err)
	}
	return &fixture{
		project: p,
		conda:   &fakeConda{root: p.Root, deps: map[string][]string{}},
		scripts: &fakeScripts{},
		exec:    testutil.NewFakeRunner(),
	}
}

func (f *fixture) runner(confirm ConfirmFunc) *Runner {
	return New(f.project, f.conda, f.scripts, f.exec, confirm)
}

func (f *fixture) addSetupScripts(t *testing.T, wd string, names ...string) {
	t.Helper()
	dir := filepath.Join(f.project.Root, wd)
	testutil.WriteFile(t, dir, filepath.Join(constants.WrappersDir, constants.RunInExecutable), "#!/bin/sh\n")
	for _, n := range names {
		testutil.WriteFile(t, filepath.Join(dir, constants.ScriptsDir), n, "")
	}
}

func TestParseRunWorkDirs(t *testing.T) {
	sep := string(os.PathListSeparator)
	value := "/p/alpha" + sep + sep + "/p/project/" + sep + " /p/beta "
	assert.Equal(t, []string{"alpha", "project", "beta"}, ParseRunWorkDirs(value))
}

func TestRunner_OrderAndTargetLast(t *testing.T) {
	f := newFixture(t, "alpha", "beta", "project")
	f.conda.deps["alpha"] = []string{"alpha", "project", "beta"}
	f.conda.deps["project"] = []string{"project"}
	f.conda.deps["beta"] = []string{"beta", "project"}
	f.addSetupScripts(t, "beta", "setup_b.py", "setup_a.sh")

	report, err := f.runner(nil).Run(context.Background(), "alpha", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "project", "beta"}, f.conda.composed)
	assert.Equal(t, []string{"project", "beta", "alpha"}, f.scripts.processed)
	assert.Equal(t, []ScriptRun{{"beta", "setup_a"}, {"beta", "setup_b"}}, report.Scripts)

	calls := f.exec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, filepath.Join(f.project.Root, "beta"), calls[0].Dir)
	assert.Equal(t, []string{"setup_a"}, calls[0].Args)
	assert.Equal(t, filepath.Join(f.project.Root, "beta", constants.WrappersDir, constants.RunInExecutable), calls[0].Name)
}

func TestRunner_NestedDependencyFirst(t *testing.T) {
	f := newFixture(t, "alpha", "beta", "gamma")
	f.conda.deps["alpha"] = []string{"alpha", "beta"}
	f.conda.deps["beta"] = []string{"beta", "gamma"}
	f.conda.deps["gamma"] = []string{"gamma"}

	_, err := f.runner(nil).Run(context.Background(), "alpha", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma", "beta", "alpha"}, f.scripts.processed)
}

func TestRunner_MissingDependencyVar(t *testing.T) {
	f := newFixture(t, "alpha")

	_, err := f.runner(nil).Run(context.Background(), "alpha", false)
	require.ErrorIs(t, err, errors.ErrDependencyVarMissing)
	assert.Empty(t, f.scripts.processed)
}

func TestRunner_DependencyWithoutVarIsLeaf(t *testing.T) {
	f := newFixture(t, "alpha", "beta")
	f.conda.deps["alpha"] = []string{"beta", "alpha"}

	report, err := f.runner(nil).Run(context.Background(), "alpha", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, f.conda.composed)
	assert.Equal(t, []string{"beta", "alpha"}, f.scripts.processed)
	assert.Equal(t, []string{"beta", "alpha"}, report.Processed)
}

func TestRunner_TargetProcessedWhenUnlisted(t *testing.T) {
	f := newFixture(t, "alpha", "beta")
	f.conda.deps["alpha"] = []string{"beta"}
	f.conda.deps["beta"] = []string{"beta"}

	_, err := f.runner(nil).Run(context.Background(), "alpha", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta", "alpha"}, f.scripts.processed)
}

func TestRunner_Cycle(t *testing.T) {
	f := newFixture(t, "alpha", "beta", "gamma")
	f.conda.deps["alpha"] = []string{"alpha", "beta"}
	f.conda.deps["beta"] = []string{"beta", "gamma"}
	f.conda.deps["gamma"] = []string{"gamma", "beta"}

	_, err := f.runner(nil).Run(context.Background(), "alpha", false)
	require.ErrorIs(t, err, errors.ErrDependencyCycle)
	assert.Contains(t, err.Error(), "alpha -> beta -> gamma -> beta")
}

func TestRunner_UnknownWorkDir(t *testing.T) {
	f := newFixture(t, "alpha")

	_, err := f.runner(nil).Run(context.Background(), "nope", false)
	require.ErrorIs(t, err, errors.ErrWorkDirNotFound)
	assert.Empty(t, f.conda.composed)
}

func TestRunner_PromptGates(t *testing.T) {
	f := newFixture(t, "alpha", "beta")
	f.conda.deps["alpha"] = []string{"alpha", "beta"}
	f.conda.deps["beta"] = []string{"beta"}
	f.addSetupScripts(t, "beta", "setup_x.py", "setup_y.py")

	var questions []string
	confirm := func(_ context.Context, q string) (bool, error) {
		questions = append(questions, q)
		return q == "Execute setup_y for beta?", nil
	}

	report, err := f.runner(confirm).Run(context.Background(), "alpha", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"Create beta env?", "Execute setup_x for beta?", "Execute setup_y for beta?"}, questions)
	assert.Equal(t, []string{"alpha"}, f.conda.composed, "declined env is not composed")
	assert.Equal(t, []string{"beta", "alpha"}, f.scripts.processed, "wrappers are refreshed anyway")
	assert.Equal(t, []ScriptRun{{"beta", "setup_y"}}, report.Scripts)
}

func TestRunner_PromptCanceled(t *testing.T) {
	f := newFixture(t, "alpha", "beta")
	f.conda.deps["alpha"] = []string{"alpha", "beta"}

	confirm := func(context.Context, string) (bool, error) { return false, errors.ErrMenuCanceled }

	_, err := f.runner(confirm).Run(context.Background(), "alpha", true)
	require.ErrorIs(t, err, errors.ErrMenuCanceled)
}

func TestRunner_SetupScriptFailure(t *testing.T) {
	f := newFixture(t, "alpha")
	f.conda.deps["alpha"] = []string{"alpha"}
	f.addSetupScripts(t, "alpha", "setup.cmdlines")
	f.exec.OnError(filepath.Join(f.project.Root, "alpha"), errors.ErrCommandFailed)

	_, err := f.runner(nil).Run(context.Background(), "alpha", false)
	require.ErrorIs(t, err, errors.ErrCommandFailed)
	assert.Contains(t, err.Error(), "setup script setup of alpha")
}
