package config

import (
	"path/filepath"
	"strings"

	"github.com/mrz1836/workon/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - project.work_dir must be a single path segment
//   - git.default_branch must not be empty
//   - conda.executable and conda.base_env must not be empty
//   - conda.timeout must be positive
//   - wrappers.tool must not be empty
//   - dvc.remote_name must not be empty
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateProjectConfig(&cfg.Project); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Git.DefaultBranch) == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "git.default_branch must not be empty")
	}

	if err := validateCondaConfig(&cfg.Conda); err != nil {
		return err
	}

	if cfg.Wrappers.Tool == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "wrappers.tool must not be empty")
	}

	if cfg.DVC.RemoteName == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "dvc.remote_name must not be empty")
	}

	return nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if cfg.WorkDir == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "project.work_dir must not be empty")
	}
	if cfg.WorkDir == "." || cfg.WorkDir == ".." ||
		filepath.Base(cfg.WorkDir) != cfg.WorkDir || strings.ContainsAny(cfg.WorkDir, `/\`) {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"project.work_dir must be a single directory name, got %q", cfg.WorkDir)
	}
	return nil
}

func validateCondaConfig(cfg *CondaConfig) error {
	if cfg.Executable == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "conda.executable must not be empty")
	}
	if cfg.BaseEnv == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "conda.base_env must not be empty")
	}
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"conda.timeout must be positive, got %s", cfg.Timeout)
	}
	return nil
}
