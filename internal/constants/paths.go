package constants

// Directory and file names under the workon home directory.
const (
	// WorkonHome is the hidden directory name where workon stores global data.
	WorkonHome = ".workon"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.workon/logs/workon.log
	CLILogFileName = "workon.log"

	// GlobalConfigName is the name of the configuration file, both in the
	// workon home directory and in <root>/.workon.
	GlobalConfigName = "config.yaml"
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated file.
	LogMaxAgeDays = 30

	// LogCompress gzips rotated files.
	LogCompress = true
)
