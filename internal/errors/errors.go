// Package errors provides centralized error handling for workon.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for error categorization.
var (
	// ErrWorkDirNotFound indicates the named work directory does not exist under the project root.
	ErrWorkDirNotFound = errors.New("work dir not found")

	// ErrWorkDirExists indicates an attempt to scaffold a work directory that already exists.
	ErrWorkDirExists = errors.New("work dir already exists")

	// ErrNestedWorkDir indicates a work directory name with more than one path segment.
	ErrNestedWorkDir = errors.New("keep work directories flat")

	// ErrNotInWorkDir indicates the current directory is not inside a work directory.
	ErrNotInWorkDir = errors.New("not in a work directory")

	// ErrWorkDirLocked indicates another workon process holds the work directory lock.
	ErrWorkDirLocked = errors.New("work dir is locked by another process")

	// ErrNoEnvironment indicates no conda environment is associated with a work directory.
	ErrNoEnvironment = errors.New("no associated environment")

	// ErrExecutableNotFound indicates an executable could not be resolved inside an environment.
	ErrExecutableNotFound = errors.New("exe not found")

	// ErrPathNotFound indicates a filesystem path given by the user does not exist.
	ErrPathNotFound = errors.New("path does not exist")

	// ErrNotADirectory indicates a path exists but is not a directory.
	ErrNotADirectory = errors.New("not a directory or directory not found")

	// ErrWrapperNotCreated indicates the wrapper tool ran but produced no wrapper.
	ErrWrapperNotCreated = errors.New("wrapper not created")

	// ErrScriptsDirMissing indicates a work directory has no scripts folder.
	ErrScriptsDirMissing = errors.New("scripts directory missing")

	// ErrDependencyVarMissing indicates RUN_WORK_DIRS was not rendered into the environment.
	ErrDependencyVarMissing = errors.New("no RUN_WORK_DIRS found")

	// ErrDependencyCycle indicates work directories depend on each other.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrWrongEnvironment indicates the active conda environment is not the required one.
	ErrWrongEnvironment = errors.New("wrong conda environment")

	// ErrWrongBranch indicates the current git branch is not the required one.
	ErrWrongBranch = errors.New("wrong git branch")

	// ErrWrongDirectory indicates the shell is not inside the required directory.
	ErrWrongDirectory = errors.New("wrong directory")

	// ErrInvalidTransition indicates a work directory lifecycle step out of order.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrRemoveActiveEnv indicates an attempt to remove the active environment.
	ErrRemoveActiveEnv = errors.New("cannot remove the active environment")

	// ErrCommandFailed indicates that a subprocess exited unsuccessfully.
	ErrCommandFailed = errors.New("command failed")

	// ErrGitOperation indicates that a git command failed during execution.
	ErrGitOperation = errors.New("git operation failed")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrDetachedHead indicates the repository has no current branch.
	ErrDetachedHead = errors.New("repository is in detached HEAD state")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates a configuration value failed validation.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrConflictingFlags indicates two mutually exclusive flags were both set.
	ErrConflictingFlags = errors.New("conflicting flags")

	// ErrMissingRequiredTools indicates that required tools are missing or outdated.
	ErrMissingRequiredTools = errors.New("required tools are missing or outdated")

	// ErrTemplateNotFound indicates an embedded template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrMenuCanceled indicates that the user canceled a prompt.
	ErrMenuCanceled = errors.New("menu canceled by user")

	// ErrInteractiveRequired indicates that a prompt is required but stdin is not a terminal.
	ErrInteractiveRequired = errors.New("interactive prompt required")
)

// PreconditionError reports a state the user must correct by hand. It is never
// auto-corrected: Command is the exact shell command that fixes it.
type PreconditionError struct {
	// Err is the sentinel describing the violated precondition.
	Err error
	// Reason is the sentence shown to the user.
	Reason string
	// Command is the corrective command, shown prefixed with "> ".
	Command string
}

// NewPreconditionError creates a PreconditionError.
func NewPreconditionError(err error, reason, command string) *PreconditionError {
	return &PreconditionError{Err: err, Reason: reason, Command: command}
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return e.Reason
}

// Unwrap returns the underlying sentinel.
func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// AsPrecondition extracts a PreconditionError from err's chain.
func AsPrecondition(err error) (*PreconditionError, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context to errors at package boundaries.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers importing this package under the name errors keep stdlib behavior.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
