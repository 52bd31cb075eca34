// Package dvc wraps the dvc commands used to point a project at a shared
// folder remote.
package dvc

import (
	"context"
	stderrors "errors"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/runner"
)

// Client runs dvc in the project root.
type Client struct {
	runner     runner.CommandRunner
	executable string
	root       string
}

// New creates a Client. An empty executable means "dvc".
func New(r runner.CommandRunner, executable, root string) *Client {
	if executable == "" {
		executable = constants.ToolDVC
	}
	return &Client{runner: r, executable: executable, root: root}
}

func (c *Client) command(stream bool, args ...string) runner.Command {
	return runner.Command{Name: c.executable, Args: args, Dir: c.root, Stream: stream}
}

// RemoteURL returns the url of the local remote name, or "" when the remote
// is not configured.
func (c *Client) RemoteURL(ctx context.Context, name string) (string, error) {
	res, err := c.runner.Run(ctx, c.command(false, "config", "--local", "remote."+name+".url"))
	if err != nil {
		if stderrors.Is(err, errors.ErrCommandFailed) {
			// dvc config exits non-zero for unset options.
			return "", nil
		}
		return "", errors.Wrap(err, "dvc config")
	}
	return res.TrimmedStdout(), nil
}

// AddRemote points the local remote name at url, replacing any previous value.
func (c *Client) AddRemote(ctx context.Context, name, url string) error {
	if _, err := c.runner.Run(ctx, c.command(true, "remote", "add", "--local", name, url, "-f")); err != nil {
		return errors.Wrap(err, "dvc remote add")
	}
	return nil
}

// Pull fetches target from the configured remote into the workspace.
func (c *Client) Pull(ctx context.Context, target string) error {
	if _, err := c.runner.Run(ctx, c.command(true, "pull", target)); err != nil {
		return errors.Wrapf(err, "dvc pull %s", target)
	}
	return nil
}
