package cli

import (
	"context"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/workdir"
)

// ReadyMessage is printed when work-on has nothing left to do.
const ReadyMessage = "Ready to work!"

// lockedWorkDir resolves --work-dir and takes its lock.
func lockedWorkDir(t *taskEnv) (*workdir.WorkDir, func(), error) {
	wd, err := t.ec.WorkDir(t.opts.WorkDir)
	if err != nil {
		return nil, nil, err
	}
	unlock, err := t.ec.Lock(wd)
	if err != nil {
		return nil, nil, err
	}
	return wd, unlock, nil
}

func runMakeDevenv(ctx context.Context, t *taskEnv) error {
	wd, unlock, err := lockedWorkDir(t)
	if err != nil {
		return err
	}
	defer unlock()

	if err := t.ec.Conda.Devenv(ctx, wd.Dir); err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(wd)
	}
	return nil
}

func runRunSetupTasks(ctx context.Context, t *taskEnv) error {
	wd, unlock, err := lockedWorkDir(t)
	if err != nil {
		return err
	}
	defer unlock()

	report, err := t.ec.Setup().Run(ctx, wd.Name, t.opts.Prompt)
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(report)
	}
	return nil
}

func runWorkOn(ctx context.Context, t *taskEnv) error {
	driver, err := t.ec.Driver(ctx)
	if err != nil {
		return err
	}

	result, err := driver.WorkOn(ctx, t.args[0])
	if result != nil && !t.json {
		for _, notice := range result.Notices {
			t.out.Warning(notice)
		}
	}
	if err != nil {
		return err
	}

	if t.json {
		return t.out.JSON(result)
	}
	t.out.Success(ReadyMessage)
	return nil
}

func runCreateExecWrapper(ctx context.Context, t *taskEnv) error {
	exe := constants.StubExecutable
	if len(t.args) > 0 {
		exe = t.args[0]
	}

	wd, unlock, err := lockedWorkDir(t)
	if err != nil {
		return err
	}
	defer unlock()

	pair, err := t.ec.Wrapper().Create(ctx, exe, wd.Name, t.opts.Test)
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(wrapped{Exe: exe, Pair: pair})
	}
	printPair(t, exe, pair)
	return nil
}

func runCreateScriptsWrappers(ctx context.Context, t *taskEnv) error {
	wd, unlock, err := lockedWorkDir(t)
	if err != nil {
		return err
	}
	defer unlock()

	report, err := t.ec.Scripts().Process(ctx, wd.Name)
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(report)
	}
	for _, w := range report.Wrapped {
		printPair(t, w.Script, w.Pair)
	}
	for _, skipped := range report.Skipped {
		t.out.Warning(skipped + " not processed.")
	}
	return nil
}

// removal reports what remove-work-env decided.
type removal struct {
	WorkDir string `json:"work_dir"`
	Env     string `json:"env"`
	Found   bool   `json:"found"`
	Command string `json:"command,omitempty"`
}

// runRemoveWorkEnv forgets the work dir's environment and prints the conda
// command that deletes it. The active environment is never removed.
func runRemoveWorkEnv(ctx context.Context, t *taskEnv) error {
	wd, unlock, err := lockedWorkDir(t)
	if err != nil {
		return err
	}
	defer unlock()

	_, found, err := t.ec.Conda.FindEnv(ctx, wd.DevenvName)
	if err != nil {
		return err
	}
	res := removal{WorkDir: wd.Name, Env: wd.DevenvName, Found: found}
	if !found {
		if t.json {
			return t.out.JSON(res)
		}
		t.out.Info("No env associated with work dir.")
		return nil
	}

	projectEnv := t.ec.Project.ProjectEnvName()
	if wd.DevenvName == t.ec.sys.CurrentEnv() {
		if wd.DevenvName == projectEnv {
			return errors.NewPreconditionError(errors.ErrRemoveActiveEnv, "Don't remove base/project env.", "")
		}
		return errors.NewPreconditionError(errors.ErrRemoveActiveEnv,
			"Can't remove current env. Go to another env:", "conda activate "+projectEnv)
	}

	if err := wd.RemoveEnvFile(); err != nil {
		return err
	}
	res.Command = "conda env remove -n " + wd.DevenvName
	if t.json {
		return t.out.JSON(res)
	}
	t.out.Command(res.Command)
	return nil
}

func runCurrentWorkDir(_ context.Context, t *taskEnv) error {
	wd, err := t.ec.WorkDir("")
	if err != nil {
		return err
	}
	if t.json {
		return t.out.JSON(wd)
	}
	t.out.Info(wd.Name)
	return nil
}
