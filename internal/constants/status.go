package constants

// WorkDirState is a step reached by the work-on lifecycle driver.
// Values use snake_case for JSON serialization compatibility.
//
//	Absent → Created
//	Created → EnvMaterialized
//	EnvMaterialized → Wrapped
//	Wrapped → SetupDone
//	SetupDone → Activated
//	Activated → InDirectory
//	InDirectory → Ready
//
// An existing work directory enters the machine at Created.
type WorkDirState string

const (
	// WorkDirStateAbsent means the directory is not a known work directory.
	WorkDirStateAbsent WorkDirState = "absent"

	// WorkDirStateCreated means the directory exists with its definition files.
	WorkDirStateCreated WorkDirState = "created"

	// WorkDirStateEnvMaterialized means conda devenv composed the environment.
	WorkDirStateEnvMaterialized WorkDirState = "env_materialized"

	// WorkDirStateWrapped means wbin and scripts/bin were regenerated.
	WorkDirStateWrapped WorkDirState = "wrapped"

	// WorkDirStateSetupDone means dependency setup tasks ran.
	WorkDirStateSetupDone WorkDirState = "setup_done"

	// WorkDirStateActivated means the work directory's environment is active.
	WorkDirStateActivated WorkDirState = "activated"

	// WorkDirStateInDirectory means the shell is inside the work directory.
	WorkDirStateInDirectory WorkDirState = "in_directory"

	// WorkDirStateReady is terminal: nothing is left to do.
	WorkDirStateReady WorkDirState = "ready"
)

// String returns the string representation of the WorkDirState.
func (s WorkDirState) String() string {
	return string(s)
}
