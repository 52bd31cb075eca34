package scaffold

import (
	"strings"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
)

// NewWorkDirData fills WorkDirData with the standard layout names.
func NewWorkDirData(name, envName string) WorkDirData {
	return WorkDirData{
		Name:          name,
		EnvName:       envName,
		WrappersDir:   constants.WrappersDir,
		ScriptsBinDir: constants.ScriptsDir + "/" + constants.ScriptsBinDir,
		EnvFile:       constants.EnvFileName,
		LockFile:      constants.LockFileName,
	}
}

// Launchers renders the POSIX and Windows launchers for a command list.
// Blank lines are dropped first; the POSIX script uses LF line endings and
// the Windows script CRLF.
func Launchers(commands []string) (posix, windows string, err error) {
	data, err := launcherData(commands)
	if err != nil {
		return "", "", err
	}

	posix, err = Render(PosixLauncher, data)
	if err != nil {
		return "", "", err
	}

	windows, err = Render(WindowsLauncher, data)
	if err != nil {
		return "", "", err
	}

	return posix, ToCRLF(windows), nil
}

func launcherData(commands []string) (LauncherData, error) {
	var kept []string
	for _, c := range commands {
		c = strings.TrimRight(c, "\r")
		if strings.TrimSpace(c) == "" {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return LauncherData{}, errors.Wrap(errors.ErrEmptyValue, "launcher needs at least one command")
	}
	return LauncherData{First: kept[0], Rest: kept[1:]}, nil
}

// ToCRLF converts LF line endings to CRLF, leaving existing CRLF alone.
func ToCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
