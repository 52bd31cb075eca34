package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinel errors to user-facing messages.
// A slice, not a map, because wrapped errors need errors.Is traversal in order.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	{
		err: ErrWorkDirNotFound,
		info: ErrorInfo{
			Message: "Work dir not found.",
			Action:  "List work directories with 'workon project info work-dir-list'.",
		},
	},
	{
		err: ErrNestedWorkDir,
		info: ErrorInfo{
			Message: "Keep work directories flat.",
			Action:  "Use a single directory name without path separators.",
		},
	},
	{
		err: ErrNotInWorkDir,
		info: ErrorInfo{
			Message: "The current directory is not inside a work directory.",
			Action:  "Pass --work-dir or cd into a work directory.",
		},
	},
	{
		err: ErrWorkDirLocked,
		info: ErrorInfo{
			Message: "Another workon command is modifying this work directory.",
			Action:  "Wait for it to finish and retry.",
		},
	},
	{
		err: ErrNoEnvironment,
		info: ErrorInfo{
			Message: "No conda environment is associated with the work dir.",
			Action:  "Run 'workon work-dir setup make-devenv' first.",
		},
	},
	{
		err: ErrExecutableNotFound,
		info: ErrorInfo{
			Message: "The executable was not found in the work dir environment.",
			Action:  "Add the package providing it to environment.run.yml and recompose the environment.",
		},
	},
	{
		err: ErrPathNotFound,
		info: ErrorInfo{
			Message: "The given path does not exist.",
		},
	},
	{
		err: ErrNotADirectory,
		info: ErrorInfo{
			Message: "Not a directory or directory not found.",
			Action:  "Check the DVC remote directory is reachable.",
		},
	},
	{
		err: ErrDependencyVarMissing,
		info: ErrorInfo{
			Message: "No RUN_WORK_DIRS found!",
			Action:  "Declare RUN_WORK_DIRS in the environment section of environment.devenv.yml.",
		},
	},
	{
		err: ErrDependencyCycle,
		info: ErrorInfo{
			Message: "Work directories include each other.",
			Action:  "Remove one of the includes from environment.devenv.yml.",
		},
	},
	{
		err: ErrCommandFailed,
		info: ErrorInfo{
			Message: "An external command failed. Check the output above.",
		},
	},
	{
		err: ErrGitOperation,
		info: ErrorInfo{
			Message: "Git operation failed. Check your repository state.",
			Action:  "Ensure you have a clean git state and proper permissions.",
		},
	},
	{
		err: ErrNotGitRepo,
		info: ErrorInfo{
			Message: "Not in a git repository.",
			Action:  "Run workon from inside the project checkout or pass --root.",
		},
	},
	{
		err: ErrMissingRequiredTools,
		info: ErrorInfo{
			Message: "Required tools are missing or outdated.",
			Action:  "Run 'workon project info tools' for install hints.",
		},
	},
	{
		err: ErrConflictingFlags,
		info: ErrorInfo{
			Message: "--verbose and --quiet cannot be used together.",
			Action:  "Pick one, and check WORKON_VERBOSE and WORKON_QUIET in your environment.",
		},
	},
	{
		err: ErrMenuCanceled,
		info: ErrorInfo{
			Message: "Operation canceled.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// Actionable returns a user-friendly error message along with a suggested
// action. The action is empty when there is nothing obvious to do.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
