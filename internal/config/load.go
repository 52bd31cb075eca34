package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
)

// newViperInstance creates a Viper instance with defaults and the WORKON_
// environment prefix. WORKON_CONDA_BASE_ENV maps to conda.base_env.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("project.name", d.Project.Name)
	v.SetDefault("project.work_dir", d.Project.WorkDir)

	v.SetDefault("git.default_branch", d.Git.DefaultBranch)

	v.SetDefault("conda.executable", d.Conda.Executable)
	v.SetDefault("conda.base_env", d.Conda.BaseEnv)
	v.SetDefault("conda.timeout", d.Conda.Timeout.String())

	v.SetDefault("wrappers.tool", d.Wrappers.Tool)
	v.SetDefault("wrappers.project_executables", d.Wrappers.ProjectExecutables)

	v.SetDefault("dvc.executable", d.DVC.Executable)
	v.SetDefault("dvc.remote_name", d.DVC.RemoteName)
	v.SetDefault("dvc.remote_dir", d.DVC.RemoteDir)
	v.SetDefault("dvc.sample_file", d.DVC.SampleFile)
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// viperDecoderOption configures mapstructure to decode durations from strings
// and comma separated lists from a single env var.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration for the project rooted at root from all sources.
// Missing config files are not an error.
func Load(ctx context.Context, root string) (*Config, error) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		// No home directory: run on project config and defaults alone.
		globalPath = ""
	}

	cfg, err := LoadFromPaths(ctx, ProjectConfigPath(root), globalPath)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("project.name", cfg.Project.ResolveName(root)).
		Str("project.work_dir", cfg.Project.WorkDir).
		Str("git.default_branch", cfg.Git.DefaultBranch).
		Dur("conda.timeout", cfg.Conda.Timeout).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths.
// projectConfigPath has higher priority than globalConfigPath; either may be
// empty or point to a missing file to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" && fileExists(globalConfigPath) {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" && fileExists(projectConfigPath) {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
