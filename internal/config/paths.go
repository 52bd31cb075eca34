package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
)

// GlobalConfigDir returns the path to the global workon directory.
// $WORKON_HOME wins when set; otherwise it is ~/.workon.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(constants.EnvWorkonHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.WorkonHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the project configuration file under root.
func ProjectConfigPath(root string) string {
	return filepath.Join(root, constants.WorkonHome, constants.GlobalConfigName)
}

// LogDir returns the directory holding the CLI log file.
func LogDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}
