package workdir

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/workon/internal/conda"
	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/scaffold"
)

// WorkDir is one work directory of a project.
type WorkDir struct {
	Name string `json:"name"`
	// Dir is the absolute path.
	Dir string `json:"dir"`
	// DevenvName is the conda environment composed for the directory.
	DevenvName string `json:"devenv_name"`
}

// EnvFinder looks up a conda environment by name. *conda.Client satisfies it.
type EnvFinder interface {
	FindEnv(ctx context.Context, name string) (*conda.Env, bool, error)
}

// RunEnvPath returns the path of environment.run.yml.
func (w *WorkDir) RunEnvPath() string { return filepath.Join(w.Dir, constants.RunEnvFileName) }

// DevenvPath returns the path of environment.devenv.yml.
func (w *WorkDir) DevenvPath() string { return filepath.Join(w.Dir, constants.DevenvFileName) }

// ScriptsDir returns the scripts folder.
func (w *WorkDir) ScriptsDir() string { return filepath.Join(w.Dir, constants.ScriptsDir) }

// ScriptsBinDir returns the folder launchers are generated into.
func (w *WorkDir) ScriptsBinDir() string {
	return filepath.Join(w.Dir, constants.ScriptsDir, constants.ScriptsBinDir)
}

// WrappersDir returns the wbin folder.
func (w *WorkDir) WrappersDir() string { return filepath.Join(w.Dir, constants.WrappersDir) }

// Wrapper returns the wbin entry for name, trying the extensions the
// wrapper tool produces.
func (w *WorkDir) Wrapper(name string) (string, bool) {
	for _, ext := range []string{"", ".bat", ".cmd"} {
		path := filepath.Join(w.WrappersDir(), name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// RunIn returns the run-in launcher of the work directory.
func (w *WorkDir) RunIn() (string, bool) {
	return w.Wrapper(constants.RunInExecutable)
}

// EnvFilePath returns the path of the environment-identity file.
func (w *WorkDir) EnvFilePath() string { return filepath.Join(w.Dir, constants.EnvFileName) }

// LockPath returns the advisory lock file.
func (w *WorkDir) LockPath() string { return filepath.Join(w.Dir, constants.LockFileName) }

// MinRunEnv returns the minimal run environment document a new work
// directory starts with.
func (w *WorkDir) MinRunEnv() (any, error) {
	return renderDoc(scaffold.RunEnv, scaffold.NewWorkDirData(w.Name, w.DevenvName))
}

// MinDevenv returns the minimal devenv document a new work directory starts with.
func (w *WorkDir) MinDevenv() (any, error) {
	return renderDoc(scaffold.DevEnv, scaffold.NewWorkDirData(w.Name, w.DevenvName))
}

// Minimal reports whether the on-disk run and devenv documents are still
// the minimal ones. Comments and formatting are ignored.
func (w *WorkDir) Minimal() (run, devenv bool, err error) {
	run, err = sameDoc(w.RunEnvPath(), w.MinRunEnv)
	if err != nil {
		return false, false, err
	}
	devenv, err = sameDoc(w.DevenvPath(), w.MinDevenv)
	if err != nil {
		return false, false, err
	}
	return run, devenv, nil
}

func sameDoc(path string, minimal func() (any, error)) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the work dir
	if err != nil {
		return false, errors.Wrapf(err, "read %s", path)
	}
	var onDisk any
	if err := yaml.Unmarshal(data, &onDisk); err != nil {
		return false, errors.Wrapf(err, "parse %s", path)
	}

	want, err := minimal()
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(onDisk, want), nil
}

func renderDoc(id scaffold.TemplateID, data scaffold.WorkDirData) (any, error) {
	content, err := scaffold.Render(id, data)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, errors.Wrapf(err, "parse template %s", id)
	}
	return doc, nil
}

// EnvPath returns the prefix of the environment associated with the work
// directory. The environment-identity file is used when it points at an
// existing directory; otherwise the environment is looked up by name and the
// file is rewritten.
func (w *WorkDir) EnvPath(ctx context.Context, finder EnvFinder) (string, error) {
	if prefix, ok := w.readEnvFile(); ok {
		if info, err := os.Stat(prefix); err == nil && info.IsDir() {
			return prefix, nil
		}
		zerolog.Ctx(ctx).Debug().
			Str("component", "workdir").
			Str("work_dir", w.Name).
			Str("prefix", prefix).
			Msg("stale environment file")
	}

	env, found, err := finder.FindEnv(ctx, w.DevenvName)
	if err != nil {
		return "", err
	}
	if !found || env.Prefix == "" {
		return "", errors.Wrapf(errors.ErrNoEnvironment, "%s has no environment %s", w.Name, w.DevenvName)
	}

	if err := os.WriteFile(w.EnvFilePath(), []byte(env.Prefix+"\n"), 0o644); err != nil { //nolint:gosec // not secret
		return "", errors.Wrapf(err, "write %s", w.EnvFilePath())
	}
	return env.Prefix, nil
}

func (w *WorkDir) readEnvFile() (string, bool) {
	data, err := os.ReadFile(w.EnvFilePath())
	if err != nil {
		return "", false
	}
	prefix := strings.TrimSpace(string(data))
	return prefix, prefix != ""
}

// RemoveEnvFile deletes the environment-identity file. A missing file is not
// an error.
func (w *WorkDir) RemoveEnvFile() error {
	if err := os.Remove(w.EnvFilePath()); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", w.EnvFilePath())
	}
	return nil
}

// SetupScripts returns the distinct stems of scripts/setup*, sorted.
func (w *WorkDir) SetupScripts() ([]string, error) {
	entries, err := os.ReadDir(w.ScriptsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read %s", w.ScriptsDir())
	}

	seen := make(map[string]struct{})
	var stems []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, constants.SetupScriptPrefix) {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if _, dup := seen[stem]; dup {
			continue
		}
		seen[stem] = struct{}{}
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	return stems, nil
}

// ClearWrappers deletes everything in wbin, creating it if needed.
func (w *WorkDir) ClearWrappers() error {
	dir := w.WrappersDir()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "read %s", dir)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return errors.Wrapf(err, "remove wrapper %s", entry.Name())
		}
	}
	return os.MkdirAll(dir, 0o750)
}

// RelPath returns the path to the work directory relative to cwd, or "" when
// cwd already is the work directory.
func (w *WorkDir) RelPath(cwd string) (string, error) {
	rel, err := filepath.Rel(cwd, w.Dir)
	if err != nil {
		return "", errors.Wrapf(err, "relative path to %s", w.Dir)
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}
