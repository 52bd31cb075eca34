package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrz1836/workon/internal/conda"
	"github.com/mrz1836/workon/internal/config"
	"github.com/mrz1836/workon/internal/dvc"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/flock"
	"github.com/mrz1836/workon/internal/git"
	"github.com/mrz1836/workon/internal/runner"
	"github.com/mrz1836/workon/internal/scripts"
	"github.com/mrz1836/workon/internal/setup"
	"github.com/mrz1836/workon/internal/tui"
	"github.com/mrz1836/workon/internal/workdir"
	"github.com/mrz1836/workon/internal/workon"
	"github.com/mrz1836/workon/internal/wrapper"
)

// ConfirmFunc asks a yes/no question.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

// System is the process environment commands run against. Zero fields fall
// back to the real process state.
type System struct {
	// Runner executes subprocesses other than git.
	Runner runner.CommandRunner
	// Getwd returns the shell's working directory.
	Getwd func() (string, error)
	// CurrentEnv returns the active conda environment name.
	CurrentEnv func() string
	// Confirm answers interactive questions.
	Confirm ConfirmFunc
	// Executable returns the path of the running binary.
	Executable func() (string, error)
}

func (s *System) withDefaults(out io.Writer) *System {
	sys := *s
	if sys.Runner == nil {
		sys.Runner = runner.New(out)
	}
	if sys.Getwd == nil {
		sys.Getwd = os.Getwd
	}
	if sys.CurrentEnv == nil {
		sys.CurrentEnv = conda.CurrentEnv
	}
	if sys.Confirm == nil {
		sys.Confirm = tui.NewPrompter(false).Confirm
	}
	if sys.Executable == nil {
		sys.Executable = os.Executable
	}
	return &sys
}

// ExecutionContext holds the resolved project and its services for one
// command invocation.
type ExecutionContext struct {
	// Root is the project root with symlinks resolved.
	Root string
	// Config is the merged configuration.
	Config *config.Config
	// Project is the work directory catalog under Root.
	Project *workdir.Project
	// Conda runs conda.
	Conda *conda.Client

	sys *System
}

// ResolveExecutionContext finds the project root, from rootFlag or the git
// checkout enclosing the working directory, and loads its configuration.
func ResolveExecutionContext(ctx context.Context, rootFlag string, sys *System) (*ExecutionContext, error) {
	root, err := resolveRoot(ctx, rootFlag, sys.Getwd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &ExecutionContext{
		Root:    root,
		Config:  cfg,
		Project: workdir.NewProject(root, cfg.Project.ResolveName(root), cfg.Project.WorkDir),
		Conda: conda.New(sys.Runner,
			conda.WithExecutable(cfg.Conda.Executable),
			conda.WithBaseEnv(cfg.Conda.BaseEnv),
			conda.WithTimeout(cfg.Conda.Timeout),
		),
		sys: sys,
	}, nil
}

func resolveRoot(ctx context.Context, rootFlag string, getwd func() (string, error)) (string, error) {
	root := rootFlag
	if root == "" {
		cwd, err := getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		info, err := git.DetectRepo(ctx, cwd)
		if err != nil {
			return "", err
		}
		root = info.Root
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, "project root %s", root)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrapf(errors.ErrNotADirectory, "project root %s", root)
	}
	return resolved, nil
}

// Cwd returns the working directory with symlinks resolved, so it compares
// equal to paths under Root.
func (ec *ExecutionContext) Cwd() (string, error) {
	cwd, err := ec.sys.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(cwd); err == nil {
		return resolved, nil
	}
	return cwd, nil
}

// WorkDir resolves a --work-dir value. An empty name means the work
// directory containing the current directory.
func (ec *ExecutionContext) WorkDir(name string) (*workdir.WorkDir, error) {
	if name != "" {
		return ec.Project.Get(name)
	}
	cwd, err := ec.Cwd()
	if err != nil {
		return nil, err
	}
	return ec.Project.Current(cwd)
}

// Lock takes the advisory lock of wd until the returned func is called.
func (ec *ExecutionContext) Lock(wd *workdir.WorkDir) (func(), error) {
	lock, err := flock.Acquire(wd.LockPath())
	if err != nil {
		return nil, err
	}
	return func() { _ = lock.Release() }, nil
}

// Wrapper returns the wrapper generator.
func (ec *ExecutionContext) Wrapper() *wrapper.Generator {
	return wrapper.New(ec.Project, ec.sys.Runner, ec.Conda, ec.Config.Wrappers.Tool)
}

// Scripts returns the script-wrapper processor.
func (ec *ExecutionContext) Scripts() *scripts.Processor {
	return scripts.New(ec.Project, ec.Wrapper())
}

// Setup returns the setup-task runner.
func (ec *ExecutionContext) Setup() *setup.Runner {
	return setup.New(ec.Project, ec.Conda, ec.Scripts(), ec.sys.Runner, setup.ConfirmFunc(ec.sys.Confirm))
}

// DVC returns a dvc client running in the project root.
func (ec *ExecutionContext) DVC() *dvc.Client {
	return dvc.New(ec.sys.Runner, ec.Config.DVC.Executable, ec.Root)
}

// Git opens the git repository holding the project.
func (ec *ExecutionContext) Git(ctx context.Context) (*git.CLIRunner, error) {
	return git.NewRunner(ctx, ec.Root)
}

// Driver returns the work-on lifecycle driver.
func (ec *ExecutionContext) Driver(ctx context.Context) (*workon.Driver, error) {
	g, err := ec.Git(ctx)
	if err != nil {
		return nil, err
	}
	return workon.NewDriver(workon.Deps{
		Project: ec.Project,
		Git:     g,
		Conda:   ec.Conda,
		Wrapper: ec.Wrapper(),
		Scripts: ec.Scripts(),
		Setup:   ec.Setup(),
		Confirm: workon.ConfirmFunc(ec.sys.Confirm),
		Env: workon.Environment{
			CurrentEnv: ec.sys.CurrentEnv,
			Getwd:      ec.Cwd,
		},
		DefaultBranch: ec.Config.Git.DefaultBranch,
	}), nil
}
