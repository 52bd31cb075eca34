package constants

import "time"

// ToolDetectionTimeout is the maximum duration for detecting all tools.
// conda is slow to start, so this is more generous than a typical --version probe.
const ToolDetectionTimeout = 10 * time.Second

// External tools workon shells out to.
const (
	// ToolConda is the conda package manager.
	ToolConda = "conda"

	// ToolCondaDevenv is the conda-devenv environment composer.
	ToolCondaDevenv = "conda-devenv"

	// ToolDVC is the data version control CLI.
	ToolDVC = "dvc"

	// ToolGit is the Git version control system.
	ToolGit = "git"

	// ToolCreateWrappers is the conda-wrappers generator.
	ToolCreateWrappers = "create-wrappers"

	// ToolPython is the interpreter used for lookups inside environments.
	ToolPython = "python"
)

// Minimum version requirements for required tools.
const (
	// MinVersionConda is the minimum conda supporting `conda run --cwd`.
	MinVersionConda = "4.9.0"

	// MinVersionGit is the minimum required Git version.
	MinVersionGit = "2.20.0"

	// MinVersionDVC is the minimum DVC with `remote add --local`.
	MinVersionDVC = "1.0.0"
)

// VersionFlagStandard is the version flag used by every detected tool.
const VersionFlagStandard = "--version"
