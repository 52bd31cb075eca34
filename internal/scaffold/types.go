package scaffold

// TemplateID identifies an embedded template: its path under templates/
// without the .tmpl suffix.
type TemplateID string

// Embedded templates.
const (
	// RunEnv is a work directory's minimal environment.run.yml.
	RunEnv TemplateID = "workdir/environment.run.yml"
	// DevEnv is a work directory's minimal environment.devenv.yml.
	DevEnv TemplateID = "workdir/environment.devenv.yml"
	// GitIgnore keeps generated files of a work directory out of git.
	GitIgnore TemplateID = "workdir/gitignore"

	// PosixLauncher is the sh launcher generated from a command list.
	PosixLauncher TemplateID = "launcher/posix"
	// WindowsLauncher is the batch launcher generated from a command list.
	WindowsLauncher TemplateID = "launcher/windows"

	// PrepareCommitMsgHook is the git hook running the commit tagger.
	PrepareCommitMsgHook TemplateID = "git/prepare-commit-msg"
)

// WorkDirData feeds the workdir/* templates.
type WorkDirData struct {
	// Name is the work directory name.
	Name string
	// EnvName is the conda environment name, <project>-<name>.
	EnvName string

	WrappersDir   string
	ScriptsBinDir string
	EnvFile       string
	LockFile      string
}

// LauncherData feeds the launcher/* templates. First receives the caller's
// arguments; Rest run after it, in order, only if it succeeded.
type LauncherData struct {
	First string
	Rest  []string
}

// HookData feeds the git hook template.
type HookData struct {
	// Executable is the absolute path of the workon binary.
	Executable string
}
