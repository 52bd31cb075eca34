package config

import (
	"time"

	"github.com/mrz1836/workon/internal/constants"
)

// defaultCondaTimeout bounds one conda devenv run. Solving a fresh
// environment can take many minutes on a cold package cache.
const defaultCondaTimeout = 30 * time.Minute

// defaultProjectExecutables returns the executables wrapped into the
// project work directory.
func defaultProjectExecutables() []string {
	return []string{"dvc", "invoke", "inv", "git", "bash", "pre-commit"}
}

// DefaultConfig returns a new Config with default values.
// It mirrors the defaults registered on the viper instance in setDefaults.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			WorkDir: constants.DefaultProjectWorkDir,
		},
		Git: GitConfig{
			DefaultBranch: constants.DefaultBranch,
		},
		Conda: CondaConfig{
			Executable: constants.ToolConda,
			BaseEnv:    constants.DefaultCondaBaseEnv,
			Timeout:    defaultCondaTimeout,
		},
		Wrappers: WrappersConfig{
			Tool:               constants.ToolCreateWrappers,
			ProjectExecutables: defaultProjectExecutables(),
		},
		DVC: DVCConfig{
			Executable: constants.ToolDVC,
			RemoteName: constants.DefaultDVCRemoteName,
			SampleFile: constants.DefaultDVCSampleFile,
		},
	}
}
