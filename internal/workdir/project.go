// Package workdir models a project's work directories: flat children of the
// project root, each with its own conda environment, scripts and wrappers.
package workdir

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/scaffold"
)

// Project is the project root and the name its environments are prefixed with.
type Project struct {
	Root string
	Name string
	// ProjectWorkDir names the work directory holding project tooling.
	ProjectWorkDir string
}

// NewProject creates a Project. An empty projectWorkDir means "project".
func NewProject(root, name, projectWorkDir string) *Project {
	if projectWorkDir == "" {
		projectWorkDir = constants.DefaultProjectWorkDir
	}
	return &Project{Root: root, Name: name, ProjectWorkDir: projectWorkDir}
}

// EnvName returns the conda environment name of work directory name.
func (p *Project) EnvName(name string) string {
	return p.Name + "-" + name
}

// ProjectEnvName returns the environment name of the project work directory.
func (p *Project) ProjectEnvName() string {
	return p.EnvName(p.ProjectWorkDir)
}

// ValidateName rejects names that are not a single path segment.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.Wrap(errors.ErrEmptyValue, "work dir name")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || clean == ".." || strings.ContainsAny(clean, `/\`) || filepath.IsAbs(clean) {
		return errors.Wrapf(errors.ErrNestedWorkDir, "%q", name)
	}
	return nil
}

// List returns the work directories under the root, sorted by name.
func (p *Project) List() ([]*WorkDir, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "read project root %s", p.Root)
	}

	var dirs []*WorkDir
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if isWorkDir(filepath.Join(p.Root, entry.Name())) {
			dirs = append(dirs, p.workDir(entry.Name()))
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs, nil
}

// Exists reports whether name is a work directory.
func (p *Project) Exists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	return isWorkDir(filepath.Join(p.Root, name))
}

// Get returns the work directory called name.
func (p *Project) Get(name string) (*WorkDir, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if !p.Exists(name) {
		return nil, errors.Wrapf(errors.ErrWorkDirNotFound, "%q", name)
	}
	return p.workDir(name), nil
}

// Create scaffolds a new work directory: minimal run and devenv definitions,
// a .gitignore for generated files and an empty scripts folder.
func (p *Project) Create(name string) (*WorkDir, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if p.Exists(name) {
		return nil, errors.Wrapf(errors.ErrWorkDirExists, "%q", name)
	}

	wd := p.workDir(name)
	if err := os.MkdirAll(wd.ScriptsDir(), 0o750); err != nil {
		return nil, errors.Wrapf(err, "create %s", wd.Dir)
	}

	data := scaffold.NewWorkDirData(name, wd.DevenvName)
	files := []struct {
		path string
		id   scaffold.TemplateID
	}{
		{wd.RunEnvPath(), scaffold.RunEnv},
		{wd.DevenvPath(), scaffold.DevEnv},
		{filepath.Join(wd.Dir, ".gitignore"), scaffold.GitIgnore},
	}
	for _, f := range files {
		content, err := scaffold.Render(f.id, data)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(f.path, []byte(content), 0o644); err != nil { //nolint:gosec // tracked project files
			return nil, errors.Wrapf(err, "write %s", f.path)
		}
	}

	return wd, nil
}

// Current returns the work directory containing cwd. Only the first path
// segment below the root counts, so nested folders of a work directory
// resolve to it.
func (p *Project) Current(cwd string) (*WorkDir, error) {
	rel, err := filepath.Rel(p.Root, cwd)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, errors.ErrNotInWorkDir
	}

	first := strings.SplitN(rel, string(filepath.Separator), 2)[0]
	if !p.Exists(first) {
		return nil, errors.ErrNotInWorkDir
	}
	return p.workDir(first), nil
}

func (p *Project) workDir(name string) *WorkDir {
	return &WorkDir{
		Name:       name,
		Dir:        filepath.Join(p.Root, name),
		DevenvName: p.EnvName(name),
	}
}

func isWorkDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, constants.DevenvFileName))
	return err == nil && !info.IsDir()
}
