package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/runner"
)

// WrapperTool emulates create-wrappers and the run-in executable lookup on
// top of a FakeRunner. Generated wrappers are small sh files.
type WrapperTool struct {
	mu    sync.Mutex
	found map[string]string
	built []string
}

// InstallWrapperTool routes tool invocations and run-in lookups on f.
func InstallWrapperTool(f *FakeRunner, tool string) *WrapperTool {
	w := &WrapperTool{found: make(map[string]string)}

	f.OnMatch(func(cmd runner.Command) bool { return cmd.Name == tool }, w.create)
	f.OnMatch(isWhichLookup, w.which)

	return w
}

// Provide makes name resolvable inside every environment.
func (w *WrapperTool) Provide(name, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.found[name] = path
}

// Built returns the -f names passed to the tool, in order.
func (w *WrapperTool) Built() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.built...)
}

func (w *WrapperTool) create(cmd runner.Command) (*runner.Result, error) {
	name := flagValue(cmd.Args, "-f")
	dir := flagValue(cmd.Args, "-d")
	envDir := flagValue(cmd.Args, "--conda-env-dir")
	if name == "" || dir == "" || envDir == "" {
		return &runner.Result{ExitCode: 2}, fmt.Errorf("bad wrapper tool args %v", cmd.Args)
	}

	w.mu.Lock()
	w.built = append(w.built, name)
	w.mu.Unlock()

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	files := map[string]string{
		name:                      fmt.Sprintf("#!/bin/sh\n# %s in %s\n", name, envDir),
		constants.RunInExecutable: fmt.Sprintf("#!/bin/sh\n# run-in %s\n", envDir),
	}
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o755); err != nil { //nolint:gosec // executable fixture
			return nil, err
		}
	}
	return &runner.Result{}, nil
}

func (w *WrapperTool) which(cmd runner.Command) (*runner.Result, error) {
	script := cmd.Args[2]
	start := strings.Index(script, "which('") + len("which('")
	end := strings.Index(script[start:], "')")
	name := script[start : start+end]

	w.mu.Lock()
	path, ok := w.found[name]
	w.mu.Unlock()
	if !ok {
		path = constants.NoneOutput
	}
	return &runner.Result{Stdout: path + "\n"}, nil
}

func isWhichLookup(cmd runner.Command) bool {
	return strings.HasPrefix(filepath.Base(cmd.Name), constants.RunInExecutable) &&
		len(cmd.Args) == 3 && cmd.Args[1] == "-c" && strings.Contains(cmd.Args[2], "which('")
}

func flagValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
