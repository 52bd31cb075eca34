package workon

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/flock"
	"github.com/mrz1836/workon/internal/scripts"
	"github.com/mrz1836/workon/internal/setup"
	"github.com/mrz1836/workon/internal/testutil"
	"github.com/mrz1836/workon/internal/workdir"
	"github.com/mrz1836/workon/internal/wrapper"
)

type fakeGit struct {
	branch  string
	added   []string
	commits []string
}

func (g *fakeGit) CurrentBranch(context.Context) (string, error) {
	if g.branch == "" {
		return "", errors.ErrDetachedHead
	}
	return g.branch, nil
}

func (g *fakeGit) Add(_ context.Context, paths []string) error {
	g.added = append(g.added, paths...)
	return nil
}

func (g *fakeGit) Commit(_ context.Context, message string) error {
	g.commits = append(g.commits, message)
	return nil
}

// recorder stands in for conda, the wrapper generator, the scripts
// processor and the setup runner.
type recorder struct {
	steps []string
}

func (r *recorder) Devenv(_ context.Context, dir string) error {
	r.steps = append(r.steps, "devenv "+filepath.Base(dir))
	return nil
}

func (r *recorder) Create(_ context.Context, exe, wd string, _ bool) (*wrapper.Pair, error) {
	r.steps = append(r.steps, "wrap "+exe+" "+wd)
	return &wrapper.Pair{}, nil
}

func (r *recorder) Process(_ context.Context, wd string) (*scripts.Report, error) {
	r.steps = append(r.steps, "scripts "+wd)
	return &scripts.Report{}, nil
}

type recordingSetup struct{ r *recorder }

func (s recordingSetup) Run(_ context.Context, wd string, prompt bool) (*setup.Report, error) {
	s.r.steps = append(s.r.steps, "setup "+wd)
	if prompt {
		s.r.steps = append(s.r.steps, "prompted")
	}
	return &setup.Report{}, nil
}

type fixture struct {
	project *workdir.Project
	git     *fakeGit
	rec     *recorder
	env     string
	cwd     string
	confirm ConfirmFunc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p := workdir.NewProject(t.TempDir(), "estcp", "")
	_, err := p.Create("project")
	require.NoError(t, err)
	return &fixture{
		project: p,
		git:     &fakeGit{branch: "master"},
		rec:     &recorder{},
		env:     "estcp-project",
		cwd:     p.Root,
	}
}

func (f *fixture) driver() *Driver {
	return NewDriver(Deps{
		Project: f.project,
		Git:     f.git,
		Conda:   f.rec,
		Wrapper: f.rec,
		Scripts: f.rec,
		Setup:   recordingSetup{f.rec},
		Confirm: f.confirm,
		Env: Environment{
			CurrentEnv: func() string { return f.env },
			Getwd:      func() (string, error) { return f.cwd, nil },
		},
	})
}

func TestValidTransitions(t *testing.T) {
	assert.True(t, IsValidTransition(constants.WorkDirStateAbsent, constants.WorkDirStateCreated))
	assert.False(t, IsValidTransition(constants.WorkDirStateCreated, constants.WorkDirStateReady))
	assert.True(t, IsTerminal(constants.WorkDirStateReady))
	assert.False(t, IsTerminal(constants.WorkDirStateWrapped))

	m := newMachine(constants.WorkDirStateCreated)
	require.ErrorIs(t, m.advance(constants.WorkDirStateWrapped), errors.ErrInvalidTransition)
}

func TestWorkOn_CreatesAndStopsAtActivation(t *testing.T) {
	f := newFixture(t)

	res, err := f.driver().WorkOn(context.Background(), "alpha")

	pe, ok := errors.AsPrecondition(err)
	require.True(t, ok, "got %v", err)
	assert.ErrorIs(t, err, errors.ErrWrongEnvironment)
	assert.Equal(t, "conda activate estcp-alpha", pe.Command)
	assert.Equal(t, "Activate environment:", pe.Reason)

	assert.True(t, res.Created)
	assert.Equal(t, constants.WorkDirStateSetupDone, res.State)
	assert.Equal(t, []constants.WorkDirState{
		constants.WorkDirStateAbsent,
		constants.WorkDirStateCreated,
		constants.WorkDirStateEnvMaterialized,
		constants.WorkDirStateWrapped,
		constants.WorkDirStateSetupDone,
	}, res.History)
	assert.Contains(t, res.Notices, NoticeMinimalEnv)

	assert.Equal(t, []string{" [alpha]  initial placeholder commit"}, f.git.commits)
	assert.Equal(t, []string{filepath.Join(f.project.Root, "alpha")}, f.git.added)
	assert.Equal(t, []string{
		"devenv alpha",
		"wrap _stub alpha",
		"scripts alpha",
		"setup alpha",
	}, f.rec.steps, "setup runs non-interactively")
}

func TestWorkOn_CreateNeedsProjectEnv(t *testing.T) {
	f := newFixture(t)
	f.env = "base"

	res, err := f.driver().WorkOn(context.Background(), "alpha")

	pe, ok := errors.AsPrecondition(err)
	require.True(t, ok)
	assert.Equal(t, "conda activate estcp-project", pe.Command)
	assert.Equal(t, constants.WorkDirStateAbsent, res.State)
	assert.False(t, f.project.Exists("alpha"))
	assert.Empty(t, f.rec.steps)
}

func TestWorkOn_CreateOffDefaultBranch(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		f := newFixture(t)
		f.git.branch = "feature"
		f.confirm = func(context.Context, string) (bool, error) { return false, nil }

		_, err := f.driver().WorkOn(context.Background(), "alpha")
		pe, ok := errors.AsPrecondition(err)
		require.True(t, ok)
		assert.ErrorIs(t, err, errors.ErrWrongBranch)
		assert.Equal(t, "git checkout master", pe.Command)
		assert.False(t, f.project.Exists("alpha"))
	})

	t.Run("not interactive", func(t *testing.T) {
		f := newFixture(t)
		f.git.branch = "feature"
		f.confirm = func(context.Context, string) (bool, error) { return false, errors.ErrInteractiveRequired }

		_, err := f.driver().WorkOn(context.Background(), "alpha")
		require.ErrorIs(t, err, errors.ErrWrongBranch)
	})

	t.Run("confirmed", func(t *testing.T) {
		f := newFixture(t)
		f.git.branch = "feature"
		var asked string
		f.confirm = func(_ context.Context, q string) (bool, error) {
			asked = q
			return true, nil
		}

		res, err := f.driver().WorkOn(context.Background(), "alpha")
		require.ErrorIs(t, err, errors.ErrWrongEnvironment)
		assert.True(t, res.Created)
		assert.Contains(t, asked, "'feature'")
	})
}

func TestWorkOn_ChangeDirectory(t *testing.T) {
	f := newFixture(t)
	_, err := f.project.Create("alpha")
	require.NoError(t, err)
	f.env = "estcp-alpha"
	f.cwd = filepath.Join(f.project.Root, "project", "scripts")

	res, err := f.driver().WorkOn(context.Background(), "alpha")

	pe, ok := errors.AsPrecondition(err)
	require.True(t, ok)
	assert.ErrorIs(t, err, errors.ErrWrongDirectory)
	want := filepath.Join("..", "..", "alpha")
	assert.Equal(t, "cd "+want, pe.Command)
	assert.Equal(t, "Change directory to "+want+".", pe.Reason)
	assert.False(t, res.Created)
	assert.Equal(t, constants.WorkDirStateActivated, res.State)
	assert.Empty(t, f.git.commits)
}

func TestWorkOn_Ready(t *testing.T) {
	f := newFixture(t)
	wd, err := f.project.Create("alpha")
	require.NoError(t, err)
	testutil.WriteFile(t, wd.Dir, constants.RunEnvFileName, "dependencies: [python, pandas]\n")
	testutil.WriteFile(t, wd.Dir, constants.DevenvFileName, "name: estcp-alpha\nincludes: []\n")
	f.env = "estcp-alpha"
	f.cwd = wd.Dir

	res, err := f.driver().WorkOn(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, constants.WorkDirStateReady, res.State)
	assert.Equal(t, []string{NoticeBranch}, res.Notices)

	f.git.branch = "alpha-work"
	res, err = f.driver().WorkOn(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Empty(t, res.Notices)
}

func TestWorkOn_ProjectWorkDirHasNoBranchNotice(t *testing.T) {
	f := newFixture(t)
	f.cwd = filepath.Join(f.project.Root, "project")

	res, err := f.driver().WorkOn(context.Background(), "project")
	require.NoError(t, err)
	assert.Equal(t, constants.WorkDirStateReady, res.State)
	assert.NotContains(t, res.Notices, NoticeBranch)
}

func TestWorkOn_Locked(t *testing.T) {
	f := newFixture(t)
	lock, err := flock.Acquire(filepath.Join(f.project.Root, "project", constants.LockFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lock.Release() })

	_, err = f.driver().WorkOn(context.Background(), "project")
	require.ErrorIs(t, err, errors.ErrWorkDirLocked)
	assert.Empty(t, f.rec.steps)
}

func TestWorkOn_NestedName(t *testing.T) {
	f := newFixture(t)

	_, err := f.driver().WorkOn(context.Background(), "alpha/beta")
	require.ErrorIs(t, err, errors.ErrNestedWorkDir)
}
