package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/mrz1836/workon/internal/runner"
)

// Handler scripts the outcome of a faked command.
type Handler func(cmd runner.Command) (*runner.Result, error)

type fakeRoute struct {
	match   func(runner.Command) bool
	handler Handler
}

// FakeRunner is a runner.CommandRunner that records calls and answers from
// handlers registered by command-line prefix. The most recently registered
// matching handler wins; unmatched commands succeed with empty output.
type FakeRunner struct {
	mu     sync.Mutex
	routes []fakeRoute
	calls  []runner.Command
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers h for commands whose String() starts with prefix.
func (f *FakeRunner) On(prefix string, h Handler) {
	f.OnMatch(func(cmd runner.Command) bool {
		return strings.HasPrefix(cmd.String(), prefix)
	}, h)
}

// OnMatch registers h for commands accepted by match.
func (f *FakeRunner) OnMatch(match func(runner.Command) bool, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, fakeRoute{match: match, handler: h})
}

// OnOutput registers a fixed stdout for commands starting with prefix.
func (f *FakeRunner) OnOutput(prefix, stdout string) {
	f.On(prefix, func(runner.Command) (*runner.Result, error) {
		return &runner.Result{Stdout: stdout}, nil
	})
}

// OnError registers a failure for commands starting with prefix.
func (f *FakeRunner) OnError(prefix string, err error) {
	f.On(prefix, func(runner.Command) (*runner.Result, error) {
		return &runner.Result{ExitCode: 1}, err
	})
}

// Run implements runner.CommandRunner.
func (f *FakeRunner) Run(ctx context.Context, cmd runner.Command) (*runner.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	var h Handler
	for i := len(f.routes) - 1; i >= 0; i-- {
		if f.routes[i].match(cmd) {
			h = f.routes[i].handler
			break
		}
	}
	f.mu.Unlock()

	if h == nil {
		return &runner.Result{}, nil
	}
	return h(cmd)
}

// Calls returns a copy of every command run so far.
func (f *FakeRunner) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]runner.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the command line of every command run so far.
func (f *FakeRunner) Lines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// LinesWithPrefix returns the command lines starting with prefix.
func (f *FakeRunner) LinesWithPrefix(prefix string) []string {
	var out []string
	for _, l := range f.Lines() {
		if strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}

var _ runner.CommandRunner = (*FakeRunner)(nil)
