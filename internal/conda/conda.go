// Package conda wraps the conda CLI: composing work directory environments
// with conda devenv, listing environments and reading variables rendered
// into an environment.
package conda

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/runner"
)

// Env is one entry of `conda env list`.
type Env struct {
	// Name is empty for environments outside the configured envs dirs.
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	Active bool   `json:"active"`
}

// Client runs conda commands.
type Client struct {
	runner     runner.CommandRunner
	executable string
	baseEnv    string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithExecutable sets the conda binary.
func WithExecutable(exe string) Option {
	return func(c *Client) { c.executable = exe }
}

// WithBaseEnv sets the environment conda devenv runs from.
func WithBaseEnv(env string) Option {
	return func(c *Client) { c.baseEnv = env }
}

// WithTimeout bounds each environment composition. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client.
func New(r runner.CommandRunner, opts ...Option) *Client {
	c := &Client{
		runner:     r,
		executable: constants.ToolConda,
		baseEnv:    constants.DefaultCondaBaseEnv,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Devenv composes the environment defined by dir/environment.devenv.yml.
// Output is streamed.
func (c *Client) Devenv(ctx context.Context, dir string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	zerolog.Ctx(ctx).Info().
		Str("component", "conda").
		Str("dir", dir).
		Msg("composing environment")

	_, err := c.runner.Run(ctx, runner.Command{
		Name:   c.executable,
		Args:   []string{"run", "--cwd", dir, "-n", c.baseEnv, "conda", "devenv"},
		Stream: true,
	})
	if err != nil {
		return errors.Wrapf(err, "conda devenv in %s", dir)
	}
	return nil
}

// EnvList returns the known environments. conda sometimes exits non-zero
// while still printing the list, so output wins over the exit status.
func (c *Client) EnvList(ctx context.Context) ([]Env, error) {
	res, err := c.runner.Run(ctx, runner.Command{
		Name: c.executable,
		Args: []string{"env", "list"},
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if res == nil || (err != nil && strings.TrimSpace(res.Stdout) == "") {
		if err == nil {
			err = errors.ErrCommandFailed
		}
		return nil, errors.Wrap(err, "conda env list")
	}
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("component", "conda").Msg("conda env list exited non-zero; using its output")
	}
	return ParseEnvList(res.Stdout), nil
}

// FindEnv returns the environment named name.
func (c *Client) FindEnv(ctx context.Context, name string) (*Env, bool, error) {
	envs, err := c.EnvList(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range envs {
		if envs[i].Name == name {
			return &envs[i], true, nil
		}
	}
	return nil, false, nil
}

// Getenv reads variable from inside environment envName, as rendered by
// conda devenv. A missing variable prints Python's None and reports false.
func (c *Client) Getenv(ctx context.Context, envName, variable string) (string, bool, error) {
	script := fmt.Sprintf("import os; print(os.getenv('%s'))", variable)
	res, err := c.runner.Run(ctx, runner.Command{
		Name: c.executable,
		Args: []string{"run", "-n", envName, constants.ToolPython, "-c", script},
	})
	if err != nil {
		return "", false, errors.Wrapf(err, "read %s from %s", variable, envName)
	}

	value := res.TrimmedStdout()
	if value == "" || value == constants.NoneOutput {
		return "", false, nil
	}
	return value, true, nil
}

// ParseEnvList parses `conda env list` output.
func ParseEnvList(output string) []Env {
	var envs []Env
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var env Env
		if looksLikePath(line) {
			env.Prefix = line
		} else {
			fields := strings.Fields(line)
			env.Name = fields[0]
			rest := strings.TrimSpace(strings.TrimPrefix(line, env.Name))
			if strings.HasPrefix(rest, "*") {
				env.Active = true
				rest = strings.TrimSpace(strings.TrimPrefix(rest, "*"))
			}
			env.Prefix = rest
		}
		envs = append(envs, env)
	}
	return envs
}

func looksLikePath(s string) bool {
	return filepath.IsAbs(s) || strings.HasPrefix(s, "/") || (len(s) > 2 && s[1] == ':' && (s[2] == '\\' || s[2] == '/'))
}

// CurrentEnv returns the active environment name: the last element of
// CONDA_PREFIX. conda info cannot be trusted for this inside `conda run`.
func CurrentEnv() string {
	return EnvNameFromPrefix(os.Getenv(constants.EnvCondaPrefix))
}

// EnvNameFromPrefix returns the environment name for an env prefix.
func EnvNameFromPrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, `/\`)
	if prefix == "" {
		return ""
	}
	prefix = strings.ReplaceAll(prefix, `\`, "/")
	return prefix[strings.LastIndex(prefix, "/")+1:]
}
