// Package config provides configuration management for workon with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (applied by the caller)
//  2. Environment variables (WORKON_* prefix)
//  3. Project config (<root>/.workon/config.yaml)
//  4. Global config (~/.workon/config.yaml, or $WORKON_HOME/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import other internal packages.
package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Config is the root configuration structure for workon.
type Config struct {
	// Project describes the project the work directories belong to.
	Project ProjectConfig `yaml:"project" mapstructure:"project"`

	// Git contains settings for git operations.
	Git GitConfig `yaml:"git" mapstructure:"git"`

	// Conda contains settings for conda and conda devenv invocations.
	Conda CondaConfig `yaml:"conda" mapstructure:"conda"`

	// Wrappers contains settings for executable wrapper generation.
	Wrappers WrappersConfig `yaml:"wrappers" mapstructure:"wrappers"`

	// DVC contains settings for the local DVC remote.
	DVC DVCConfig `yaml:"dvc" mapstructure:"dvc"`
}

// ProjectConfig describes the project.
type ProjectConfig struct {
	// Name prefixes every environment name: <name>-<work dir>.
	// Default: empty, meaning the lowercased base name of the project root.
	Name string `yaml:"name" mapstructure:"name"`

	// WorkDir is the work directory holding project tooling.
	// Default: "project"
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`
}

// ResolveName returns the configured project name, falling back to the
// lowercased base name of root.
func (c *ProjectConfig) ResolveName(root string) string {
	if c.Name != "" {
		return c.Name
	}
	return strings.ToLower(filepath.Base(root))
}

// GitConfig contains settings for git operations.
type GitConfig struct {
	// DefaultBranch is the branch new work directories are created from.
	// Default: "master"
	DefaultBranch string `yaml:"default_branch" mapstructure:"default_branch"`
}

// CondaConfig contains settings for conda invocations.
type CondaConfig struct {
	// Executable is the conda binary.
	// Default: "conda"
	Executable string `yaml:"executable" mapstructure:"executable"`

	// BaseEnv is the environment conda devenv is run from.
	// Default: "base"
	BaseEnv string `yaml:"base_env" mapstructure:"base_env"`

	// Timeout bounds a single environment composition.
	// Default: 30 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// WrappersConfig contains settings for wrapper generation.
type WrappersConfig struct {
	// Tool is the wrapper generator binary.
	// Default: "create-wrappers"
	Tool string `yaml:"tool" mapstructure:"tool"`

	// ProjectExecutables are wrapped into the project work directory by
	// create-project-wrappers.
	ProjectExecutables []string `yaml:"project_executables" mapstructure:"project_executables"`
}

// DVCConfig contains settings for the local DVC remote.
type DVCConfig struct {
	// Executable is the dvc binary.
	// Default: "dvc"
	Executable string `yaml:"executable" mapstructure:"executable"`

	// RemoteName is the name of the local remote.
	// Default: "sharefolder"
	RemoteName string `yaml:"remote_name" mapstructure:"remote_name"`

	// RemoteDir is the shared folder used when no remote is configured yet.
	RemoteDir string `yaml:"remote_dir" mapstructure:"remote_dir"`

	// SampleFile is pulled to verify the remote, relative to the project root.
	// Default: "data/sample.dvc"
	SampleFile string `yaml:"sample_file" mapstructure:"sample_file"`
}
