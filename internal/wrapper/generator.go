// Package wrapper generates launchers in a work directory's wbin folder that
// run an executable inside the work directory's conda environment.
package wrapper

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/runner"
	"github.com/mrz1836/workon/internal/workdir"
)

// Pair is the result of wrapping one executable.
type Pair struct {
	// Bare is wbin/<exe><ext>.
	Bare string `json:"bare"`
	// EnvQualified is wbin/<exe>-<work dir><ext>. Empty for the stub.
	EnvQualified string `json:"env_qualified,omitempty"`
	// RunIn is the env-qualified run-in copy. Empty for the stub.
	RunIn string `json:"run_in,omitempty"`
}

// Generator creates wrappers with the external wrapper tool.
type Generator struct {
	project *workdir.Project
	runner  runner.CommandRunner
	envs    workdir.EnvFinder
	tool    string
}

// New creates a Generator. An empty tool means create-wrappers.
func New(project *workdir.Project, r runner.CommandRunner, envs workdir.EnvFinder, tool string) *Generator {
	if tool == "" {
		tool = constants.ToolCreateWrappers
	}
	return &Generator{project: project, runner: r, envs: envs, tool: tool}
}

// Create wraps exe for work directory workDirName.
//
// exe is either a bare name, resolved inside the environment through run-in,
// or a path. The bare wrapper from any previous run is removed before the
// lookup so it cannot resolve to itself. With test false the lookup is
// skipped and exe is wrapped as given. The special name _stub only
// bootstraps run-in.
func (g *Generator) Create(ctx context.Context, exe, workDirName string, test bool) (*Pair, error) {
	wd, err := g.project.Get(workDirName)
	if err != nil {
		return nil, err
	}
	prefix, err := wd.EnvPath(ctx, g.envs)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().
		Str("component", "wrapper").
		Str("work_dir", wd.Name).
		Str("exe", exe).
		Logger()

	name := stem(exe)
	if name == constants.StubExecutable {
		bare, err := g.build(ctx, wd, prefix, exe)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("wrapper", bare).Msg("bootstrapped run-in")
		return &Pair{Bare: bare}, nil
	}

	// The first build guarantees run-in exists for the lookup.
	stale, err := g.build(ctx, wd, prefix, exe)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(stale); err != nil {
		return nil, errors.Wrapf(err, "remove %s", stale)
	}

	target := exe
	if test {
		if target, err = g.resolve(ctx, wd, exe); err != nil {
			return nil, err
		}
	}

	bare, err := g.build(ctx, wd, prefix, target)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(bare)
	pair := &Pair{
		Bare:         bare,
		EnvQualified: filepath.Join(wd.WrappersDir(), fmt.Sprintf("%s-%s%s", name, wd.Name, ext)),
	}
	if err := CopyFile(bare, pair.EnvQualified); err != nil {
		return nil, err
	}

	runIn, ok := wd.RunIn()
	if !ok {
		return nil, errors.Wrapf(errors.ErrWrapperNotCreated, "%s in %s", constants.RunInExecutable, wd.WrappersDir())
	}
	pair.RunIn = filepath.Join(wd.WrappersDir(),
		fmt.Sprintf("%s-%s%s", constants.RunInExecutable, wd.Name, filepath.Ext(runIn)))
	if err := CopyFile(runIn, pair.RunIn); err != nil {
		return nil, err
	}

	logger.Info().
		Str("wrapper", pair.Bare).
		Str("env_wrapper", pair.EnvQualified).
		Msg("created wrappers")
	return pair, nil
}

// resolve locates exe: bare names inside the environment, paths on disk.
func (g *Generator) resolve(ctx context.Context, wd *workdir.WorkDir, exe string) (string, error) {
	if hasDir(exe) {
		abs, err := filepath.Abs(exe)
		if err != nil {
			return "", errors.Wrapf(err, "resolve %s", exe)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", errors.Wrapf(errors.ErrPathNotFound, "%s", abs)
		}
		return abs, nil
	}

	runIn, ok := wd.RunIn()
	if !ok {
		return "", errors.Wrapf(errors.ErrWrapperNotCreated, "%s in %s", constants.RunInExecutable, wd.WrappersDir())
	}

	script := fmt.Sprintf("from shutil import which; print(which('%s'))", exe)
	res, err := g.runner.Run(ctx, runner.Command{
		Name: runIn,
		Args: []string{constants.ToolPython, "-c", script},
	})
	if err != nil {
		return "", errors.Wrapf(err, "look up %s in %s", exe, wd.DevenvName)
	}

	path := strings.ReplaceAll(res.TrimmedStdout(), "\n", "")
	if path == "" || path == constants.NoneOutput {
		return "", errors.Wrapf(errors.ErrExecutableNotFound, "%s in %s", exe, wd.DevenvName)
	}
	return path, nil
}

// build runs the wrapper tool for exe and returns the bare wrapper it wrote.
func (g *Generator) build(ctx context.Context, wd *workdir.WorkDir, prefix, exe string) (string, error) {
	name := stem(exe)
	args := []string{"-t", "conda"}
	if hasDir(exe) {
		args = append(args, "-b", filepath.Dir(exe))
	}
	args = append(args, "-f", name, "-d", wd.WrappersDir(), "--conda-env-dir", prefix)

	if _, err := g.runner.Run(ctx, runner.Command{Name: g.tool, Args: args}); err != nil {
		return "", errors.Wrapf(err, "create wrapper for %s", name)
	}

	bare, ok := wd.Wrapper(name)
	if !ok {
		return "", errors.Wrapf(errors.ErrWrapperNotCreated, "%s in %s", name, wd.WrappersDir())
	}
	return bare, nil
}

func stem(exe string) string {
	base := filepath.Base(exe)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func hasDir(exe string) bool {
	return strings.ContainsAny(exe, `/\`)
}

// CopyFile copies src to dst keeping its mode and modification time.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "stat %s", src)
	}

	in, err := os.Open(src) //nolint:gosec // generated wrapper
	if err != nil {
		return errors.Wrapf(err, "open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) //nolint:gosec // generated wrapper
	if err != nil {
		return errors.Wrapf(err, "create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "copy %s", src)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "close %s", dst)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "chmod %s", dst)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
