// Package runner executes the external tools workon orchestrates: conda,
// conda devenv, dvc, git, create-wrappers and generated launchers.
//
// Commands are never run through a shell. Arguments are passed verbatim, so
// work directory names and paths need no quoting.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/logging"
)

// Command describes one subprocess invocation.
type Command struct {
	// Name is the executable, looked up in PATH unless it contains a separator.
	Name string
	// Args are passed verbatim.
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the current environment.
	Env []string
	// Stream echoes the command line and copies its output to the runner's
	// writer while it runs. Output is captured either way.
	Stream bool
}

// String returns the command line as a single space-joined string.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the captured outcome of a command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// TrimmedStdout returns stdout without surrounding whitespace.
func (r *Result) TrimmedStdout() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Stdout)
}

// CommandRunner executes commands. Implementations return a non-nil Result
// whenever the process started, even if it exited non-zero.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// DefaultCommandRunner implements CommandRunner using os/exec.
type DefaultCommandRunner struct {
	out io.Writer
}

// New returns a runner that streams to out. A nil out discards streamed output.
func New(out io.Writer) *DefaultCommandRunner {
	if out == nil {
		out = io.Discard
	}
	return &DefaultCommandRunner{out: out}
}

// Run executes cmd. A non-zero exit is returned as errors.ErrCommandFailed
// wrapped with the command line and its stderr.
func (r *DefaultCommandRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "runner").Logger()
	logger.Debug().
		Str("command", cmd.Name).
		Strs("args", logging.SafeArgs(cmd.Args)).
		Str("dir", cmd.Dir).
		Msg("running command")

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var outBuf, errBuf bytes.Buffer
	if cmd.Stream {
		_, _ = fmt.Fprintf(r.out, "%s\n", cmd.String())
		c.Stdout = io.MultiWriter(&outBuf, r.out)
		c.Stderr = io.MultiWriter(&errBuf, r.out)
	} else {
		c.Stdout = &outBuf
		c.Stderr = &errBuf
	}

	err := c.Run()
	result := &Result{Stdout: outBuf.String(), Stderr: errBuf.String()}
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}

	var exitErr *exec.ExitError
	if !stderrors.As(err, &exitErr) {
		// Never started: missing binary or bad working directory.
		return nil, errors.Wrapf(err, "run %s", cmd.Name)
	}

	result.ExitCode = exitErr.ExitCode()
	logger.Debug().Int("exit_code", result.ExitCode).Msg("command failed")

	detail := strings.TrimSpace(result.Stderr)
	if detail == "" {
		return result, fmt.Errorf("%s: exit %d: %w", logging.FilterSensitiveValue(cmd.String()), result.ExitCode, errors.ErrCommandFailed)
	}
	return result, fmt.Errorf("%s: exit %d: %w: %s", logging.FilterSensitiveValue(cmd.String()), result.ExitCode, errors.ErrCommandFailed, detail)
}

var _ CommandRunner = (*DefaultCommandRunner)(nil)
