// Package constants provides centralized constant values used throughout workon.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

// Work directory layout. Every work directory is a flat child of the project root.
const (
	// RunEnvFileName is the conda run-environment definition of a work directory.
	RunEnvFileName = "environment.run.yml"

	// DevenvFileName is the conda-devenv definition of a work directory.
	// Its presence is what marks a directory as a work directory.
	DevenvFileName = "environment.devenv.yml"

	// EnvFileName is the environment-identity file. It holds the absolute
	// prefix of the conda environment associated with the work directory.
	EnvFileName = ".envfn"

	// LockFileName is the advisory lock taken while a work directory is mutated.
	LockFileName = ".workon.lock"

	// ScriptsDir holds user scripts that get wrapped.
	ScriptsDir = "scripts"

	// ScriptsBinDir holds launchers generated from ScriptsDir, relative to ScriptsDir.
	ScriptsBinDir = "bin"

	// WrappersDir holds generated executable wrappers.
	WrappersDir = "wbin"

	// SetupScriptPrefix marks scripts executed by the setup-task runner.
	SetupScriptPrefix = "setup"
)

// Wrapper naming.
const (
	// StubExecutable is the placeholder executable used to bootstrap run-in.
	StubExecutable = "_stub"

	// RunInExecutable is the launcher that runs a command inside an environment.
	RunInExecutable = "run-in"
)

// Environment variables consumed by workon.
const (
	// EnvCondaPrefix is set by conda to the active environment prefix.
	EnvCondaPrefix = "CONDA_PREFIX"

	// EnvRunWorkDirs lists dependency work directories, rendered by conda devenv.
	EnvRunWorkDirs = "RUN_WORK_DIRS"

	// EnvWorkonHome overrides the workon home directory (default ~/.workon).
	EnvWorkonHome = "WORKON_HOME"

	// EnvPrefix is the viper environment prefix for configuration overrides.
	EnvPrefix = "WORKON"
)

// Defaults for project conventions.
const (
	// DefaultProjectWorkDir is the work directory that holds project tooling.
	DefaultProjectWorkDir = "project"

	// DefaultBranch is the branch new work directories are expected to start from.
	DefaultBranch = "master"

	// DefaultCondaBaseEnv is the environment conda devenv is launched from.
	DefaultCondaBaseEnv = "base"

	// DefaultDVCRemoteName is the local DVC remote configured by set-dvc-repo.
	DefaultDVCRemoteName = "sharefolder"

	// DefaultDVCSampleFile is pulled after the remote is configured, relative to root.
	DefaultDVCSampleFile = "data/sample.dvc"

	// NoneOutput is what a python print of a missing value produces.
	NoneOutput = "None"
)
