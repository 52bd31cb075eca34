// Package setup composes a work directory's dependency environments, refreshes
// their script wrappers and runs their setup scripts.
package setup

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/runner"
	"github.com/mrz1836/workon/internal/scripts"
	"github.com/mrz1836/workon/internal/workdir"
)

// Conda is the part of the conda client the runner needs.
type Conda interface {
	Devenv(ctx context.Context, dir string) error
	Getenv(ctx context.Context, envName, variable string) (string, bool, error)
}

// ScriptsProcessor regenerates a work directory's script wrappers.
type ScriptsProcessor interface {
	Process(ctx context.Context, workDirName string) (*scripts.Report, error)
}

// ConfirmFunc asks a yes/no question.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

// ScriptRun records one executed setup script.
type ScriptRun struct {
	WorkDir string `json:"work_dir"`
	Script  string `json:"script"`
}

// Report lists what a run did, in order.
type Report struct {
	Target    string      `json:"target"`
	Composed  []string    `json:"composed"`
	Processed []string    `json:"processed"`
	Scripts   []ScriptRun `json:"scripts"`
}

// Runner runs setup tasks.
type Runner struct {
	project *workdir.Project
	conda   Conda
	scripts ScriptsProcessor
	exec    runner.CommandRunner
	confirm ConfirmFunc
}

// New creates a Runner. confirm is only consulted when Run is asked to prompt.
func New(project *workdir.Project, c Conda, s ScriptsProcessor, exec runner.CommandRunner, confirm ConfirmFunc) *Runner {
	return &Runner{project: project, conda: c, scripts: s, exec: exec, confirm: confirm}
}

type walk struct {
	target *workdir.WorkDir
	prompt bool
	report *Report
	done   map[string]bool
	stack  []string
}

// Run sets up workDirName. The target's environment is always recomposed
// and its RUN_WORK_DIRS read; each dependency is then composed (asking first
// when prompt is set), its own dependencies walked, its wrappers regenerated
// and its setup scripts run. The target itself is processed last, whether or
// not its RUN_WORK_DIRS lists it.
//
// A target without RUN_WORK_DIRS is an error. A dependency without it simply
// has no dependencies of its own.
func (r *Runner) Run(ctx context.Context, workDirName string, prompt bool) (*Report, error) {
	target, err := r.project.Get(workDirName)
	if err != nil {
		return nil, err
	}

	w := &walk{
		target: target,
		prompt: prompt,
		report: &Report{Target: target.Name},
		done:   make(map[string]bool),
		stack:  []string{target.Name},
	}

	if err := r.compose(ctx, w, target); err != nil {
		return w.report, err
	}
	if err := r.visit(ctx, w, target); err != nil {
		return w.report, err
	}
	if err := r.process(ctx, w, target); err != nil {
		return w.report, err
	}
	return w.report, nil
}

// visit processes the dependencies of wd that are not done yet.
func (r *Runner) visit(ctx context.Context, w *walk, wd *workdir.WorkDir) error {
	deps, err := r.Dependencies(ctx, wd)
	if err != nil {
		if wd != w.target && errors.Is(err, errors.ErrDependencyVarMissing) {
			zerolog.Ctx(ctx).Debug().Str("component", "setup").Str("work_dir", wd.Name).
				Msg("no RUN_WORK_DIRS, treating as leaf")
			return nil
		}
		return err
	}

	for _, name := range deps {
		if name == wd.Name || w.done[name] {
			continue
		}
		if slices.Contains(w.stack, name) {
			chain := append(slices.Clone(w.stack), name)
			return errors.Wrapf(errors.ErrDependencyCycle, "%s", strings.Join(chain, " -> "))
		}

		dep, err := r.project.Get(name)
		if err != nil {
			return errors.Wrapf(err, "dependency of %s", wd.Name)
		}

		ok, err := r.ask(ctx, w, "Create "+dep.Name+" env?")
		if err != nil {
			return err
		}
		if ok {
			if err := r.compose(ctx, w, dep); err != nil {
				return err
			}
			w.stack = append(w.stack, dep.Name)
			err := r.visit(ctx, w, dep)
			w.stack = w.stack[:len(w.stack)-1]
			if err != nil {
				return err
			}
		}

		if err := r.process(ctx, w, dep); err != nil {
			return err
		}
	}
	return nil
}

// Dependencies returns the work directory names listed in RUN_WORK_DIRS
// inside the composed environment of wd, in order.
func (r *Runner) Dependencies(ctx context.Context, wd *workdir.WorkDir) ([]string, error) {
	value, ok, err := r.conda.Getenv(ctx, wd.DevenvName, constants.EnvRunWorkDirs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(errors.ErrDependencyVarMissing, "in %s", wd.DevenvName)
	}
	return ParseRunWorkDirs(value), nil
}

// ParseRunWorkDirs splits a RUN_WORK_DIRS value into work directory names.
func ParseRunWorkDirs(value string) []string {
	var names []string
	for _, entry := range filepath.SplitList(value) {
		entry = strings.TrimRight(strings.TrimSpace(entry), `/\`)
		if entry == "" {
			continue
		}
		names = append(names, filepath.Base(filepath.FromSlash(entry)))
	}
	return names
}

func (r *Runner) compose(ctx context.Context, w *walk, wd *workdir.WorkDir) error {
	if err := r.conda.Devenv(ctx, wd.Dir); err != nil {
		return err
	}
	w.report.Composed = append(w.report.Composed, wd.Name)
	return nil
}

// process regenerates the wrappers of wd and runs its setup scripts.
func (r *Runner) process(ctx context.Context, w *walk, wd *workdir.WorkDir) error {
	w.done[wd.Name] = true

	if _, err := r.scripts.Process(ctx, wd.Name); err != nil {
		return err
	}
	w.report.Processed = append(w.report.Processed, wd.Name)

	stems, err := wd.SetupScripts()
	if err != nil {
		return err
	}
	if len(stems) == 0 {
		return nil
	}

	runIn, ok := wd.RunIn()
	if !ok {
		return errors.Wrapf(errors.ErrWrapperNotCreated, "%s in %s", constants.RunInExecutable, wd.WrappersDir())
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "setup").Str("work_dir", wd.Name).Logger()
	for _, stem := range stems {
		ok, err := r.ask(ctx, w, "Execute "+stem+" for "+wd.Name+"?")
		if err != nil {
			return err
		}
		if !ok {
			logger.Info().Str("script", stem).Msg("skipped setup script")
			continue
		}

		logger.Info().Str("script", stem).Msg("running setup script")
		if _, err := r.exec.Run(ctx, runner.Command{
			Name:   runIn,
			Args:   []string{stem},
			Dir:    wd.Dir,
			Stream: true,
		}); err != nil {
			return errors.Wrapf(err, "setup script %s of %s", stem, wd.Name)
		}
		w.report.Scripts = append(w.report.Scripts, ScriptRun{WorkDir: wd.Name, Script: stem})
	}
	return nil
}

func (r *Runner) ask(ctx context.Context, w *walk, question string) (bool, error) {
	if !w.prompt || r.confirm == nil {
		return true, nil
	}
	return r.confirm(ctx, question)
}
