package workon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/flock"
	"github.com/mrz1836/workon/internal/scripts"
	"github.com/mrz1836/workon/internal/setup"
	"github.com/mrz1836/workon/internal/workdir"
	"github.com/mrz1836/workon/internal/wrapper"
)

// Notices shown while driving a work directory.
const (
	NoticeMinimalEnv = "Minimal dev or run env detected."
	NoticeBranch     = "Notice: You may want to create a branch for your work."
)

// Git is the part of git the driver needs. git.Runner satisfies it.
type Git interface {
	CurrentBranch(ctx context.Context) (string, error)
	Add(ctx context.Context, paths []string) error
	Commit(ctx context.Context, message string) error
}

// Conda composes environments.
type Conda interface {
	Devenv(ctx context.Context, dir string) error
}

// Wrapper creates environment wrappers.
type Wrapper interface {
	Create(ctx context.Context, exe, workDirName string, test bool) (*wrapper.Pair, error)
}

// ScriptsProcessor regenerates script wrappers.
type ScriptsProcessor interface {
	Process(ctx context.Context, workDirName string) (*scripts.Report, error)
}

// SetupRunner runs setup tasks.
type SetupRunner interface {
	Run(ctx context.Context, workDirName string, prompt bool) (*setup.Report, error)
}

// ConfirmFunc asks a yes/no question.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

// Environment reports the caller's shell state. It is read on every run.
type Environment struct {
	// CurrentEnv returns the active conda environment name.
	CurrentEnv func() string
	// Getwd returns the shell's working directory.
	Getwd func() (string, error)
}

// Deps bundles the collaborators of a Driver.
type Deps struct {
	Project *workdir.Project
	Git     Git
	Conda   Conda
	Wrapper Wrapper
	Scripts ScriptsProcessor
	Setup   SetupRunner
	Confirm ConfirmFunc
	Env     Environment
	// DefaultBranch is where new work directories are created.
	DefaultBranch string
}

// Result reports how far a run got.
type Result struct {
	WorkDir *workdir.WorkDir       `json:"work_dir,omitempty"`
	State   constants.WorkDirState `json:"state"`
	// History lists every state reached, in order.
	History []constants.WorkDirState `json:"history"`
	Created bool                     `json:"created"`
	Notices []string                 `json:"notices,omitempty"`
}

// Driver runs the work-on lifecycle.
type Driver struct {
	deps Deps
}

// NewDriver creates a Driver.
func NewDriver(deps Deps) *Driver {
	if deps.DefaultBranch == "" {
		deps.DefaultBranch = constants.DefaultBranch
	}
	return &Driver{deps: deps}
}

// WorkOn advances work directory name as far as possible. It is meant to be
// run repeatedly: when a step needs the user, a *errors.PreconditionError
// carries the command to run, and the Result the state reached so far.
func (d *Driver) WorkOn(ctx context.Context, name string) (*Result, error) {
	if err := workdir.ValidateName(name); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "workon").Str("work_dir", name).Logger()
	project := d.deps.Project
	curEnv := d.deps.Env.CurrentEnv()

	branch, err := d.deps.Git.CurrentBranch(ctx)
	if errors.Is(err, errors.ErrDetachedHead) {
		branch = "HEAD"
	} else if err != nil {
		return nil, err
	}

	m := newMachine(constants.WorkDirStateCreated)
	result := &Result{}
	defer func() {
		result.State = m.state
		result.History = m.history
	}()

	// 1. existence
	if !project.Exists(name) {
		m = newMachine(constants.WorkDirStateAbsent)
		wd, err := d.create(ctx, name, branch, curEnv)
		if err != nil {
			return result, err
		}
		result.Created = true
		logger.Info().Str("branch", branch).Msg("created work dir")
		if err := m.advance(constants.WorkDirStateCreated); err != nil {
			return result, err
		}
		result.WorkDir = wd
	}

	wd, err := project.Get(name)
	if err != nil {
		return result, err
	}
	result.WorkDir = wd

	lock, err := flock.Acquire(wd.LockPath())
	if err != nil {
		return result, err
	}
	defer func() { _ = lock.Release() }()

	// 2. freshness
	minRun, minDev, err := wd.Minimal()
	if err != nil {
		return result, err
	}
	if minRun || minDev {
		result.Notices = append(result.Notices, NoticeMinimalEnv)
	}

	// 3. environment
	if err := d.deps.Conda.Devenv(ctx, wd.Dir); err != nil {
		return result, err
	}
	if err := m.advance(constants.WorkDirStateEnvMaterialized); err != nil {
		return result, err
	}

	// 4. wrappers
	if err := wd.ClearWrappers(); err != nil {
		return result, err
	}
	if _, err := d.deps.Wrapper.Create(ctx, constants.StubExecutable, wd.Name, true); err != nil {
		return result, err
	}
	if _, err := d.deps.Scripts.Process(ctx, wd.Name); err != nil {
		return result, err
	}
	if err := m.advance(constants.WorkDirStateWrapped); err != nil {
		return result, err
	}

	// 5. dependencies
	if _, err := d.deps.Setup.Run(ctx, wd.Name, false); err != nil {
		return result, err
	}
	if err := m.advance(constants.WorkDirStateSetupDone); err != nil {
		return result, err
	}

	// 6. activation
	if curEnv != wd.DevenvName {
		return result, errors.NewPreconditionError(errors.ErrWrongEnvironment,
			"Activate environment:", "conda activate "+wd.DevenvName)
	}
	if err := m.advance(constants.WorkDirStateActivated); err != nil {
		return result, err
	}

	// 7. directory
	cwd, err := d.deps.Env.Getwd()
	if err != nil {
		return result, errors.Wrap(err, "get working directory")
	}
	rel, err := wd.RelPath(cwd)
	if err != nil {
		return result, err
	}
	if rel != "" {
		return result, errors.NewPreconditionError(errors.ErrWrongDirectory,
			fmt.Sprintf("Change directory to %s.", rel), "cd "+rel)
	}
	if err := m.advance(constants.WorkDirStateInDirectory); err != nil {
		return result, err
	}

	// 8. branch advisory
	if branch == d.deps.DefaultBranch && wd.Name != project.ProjectWorkDir {
		result.Notices = append(result.Notices, NoticeBranch)
	}
	if err := m.advance(constants.WorkDirStateReady); err != nil {
		return result, err
	}

	logger.Info().Msg("work dir ready")
	return result, nil
}

// create scaffolds a new work directory and commits it. It must run from the
// project environment so the commit hook is available, and on the default
// branch unless the user confirms otherwise.
func (d *Driver) create(ctx context.Context, name, branch, curEnv string) (*workdir.WorkDir, error) {
	project := d.deps.Project

	if projectEnv := project.ProjectEnvName(); curEnv != projectEnv {
		return nil, errors.NewPreconditionError(errors.ErrWrongEnvironment,
			"Change to project environment before creating a new workdir.", "conda activate "+projectEnv)
	}

	if branch != d.deps.DefaultBranch {
		ok := false
		if d.deps.Confirm != nil {
			question := fmt.Sprintf("Current git branch is not '%s'. Initialize the work dir in the '%s' branch?",
				d.deps.DefaultBranch, branch)
			var err error
			ok, err = d.deps.Confirm(ctx, question)
			if err != nil && !errors.Is(err, errors.ErrInteractiveRequired) && !errors.Is(err, errors.ErrMenuCanceled) {
				return nil, err
			}
		}
		if !ok {
			return nil, errors.NewPreconditionError(errors.ErrWrongBranch,
				fmt.Sprintf("Switch to %s.", d.deps.DefaultBranch), "git checkout "+d.deps.DefaultBranch)
		}
	}

	wd, err := project.Create(name)
	if err != nil {
		return nil, err
	}
	if err := d.deps.Git.Add(ctx, []string{wd.Dir}); err != nil {
		return nil, err
	}
	if err := d.deps.Git.Commit(ctx, InitCommitMessage(name)); err != nil {
		return nil, err
	}
	return wd, nil
}

// InitCommitMessage is the placeholder commit made for a new work directory.
// It already carries the tag the commit hook would add.
func InitCommitMessage(name string) string {
	return fmt.Sprintf(" [%s]  initial placeholder commit", name)
}
