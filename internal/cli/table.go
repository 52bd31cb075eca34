package cli

import (
	"github.com/spf13/cobra"
)

// taskGroups are the intermediate commands, parents first.
func taskGroups() []group {
	return []group{
		{Name: "project", Short: "Project-wide tasks"},
		{Name: "project.setup", Short: "Set up project tooling", Default: "project.setup.setup"},
		{Name: "project.info", Short: "Show project information"},
		{Name: "project.git", Short: "Git integration"},
		{Name: "work-dir", Short: "Work directory tasks"},
		{Name: "work-dir.setup", Short: "Compose environments and run setup tasks"},
		{Name: "work-dir.action", Short: "Act on a work directory"},
		{Name: "work-dir.info", Short: "Show work directory information"},
	}
}

// taskTable lists every task of the CLI.
func taskTable() []task {
	return []task{
		{
			Name:  "project.setup.setup",
			Short: "All project setup tasks",
			Long:  "Creates the project wrappers, then points DVC at the shared remote.",
			Flags: dvcDirFlag,
			Run:   runProjectSetup,
		},
		{
			Name:  "project.setup.create-project-wrappers",
			Short: "Create wrappers around project tool executables",
			Run:   runCreateProjectWrappers,
		},
		{
			Name:  "project.setup.set-dvc-repo",
			Short: "Set the shared folder as the (non source code) DVC remote",
			Flags: dvcDirFlag,
			Run:   runSetDVCRepo,
		},
		{
			Name:  "project.info.project-root",
			Short: "Print the project root",
			Run:   runProjectRoot,
		},
		{
			Name:  "project.info.work-dir-list",
			Short: "List work directories",
			Run:   runWorkDirList,
		},
		{
			Name:      "project.info.tools",
			Short:     "Check the external tools workon calls",
			NoProject: true,
			Run:       runTools,
		},
		{
			Name:   "project.git.prepare-commit-msg",
			Args:   "<commit-msg-file>",
			Short:  "(internal) prepend work directory tags to a commit message",
			NArgs:  1,
			Hidden: true,
			Run:    runPrepareCommitMsg,
		},
		{
			Name:  "project.git.install-hook",
			Short: "Install the prepare-commit-msg hook",
			Flags: func(cmd *cobra.Command, opts *taskOptions) {
				cmd.Flags().BoolVar(&opts.Force, "force", false, "replace a hook not installed by workon")
			},
			Run: runInstallHook,
		},
		{
			Name:  "work-dir.setup.make-devenv",
			Short: "Create the conda development environment",
			Flags: workDirFlag,
			Run:   runMakeDevenv,
		},
		{
			Name:  "work-dir.setup.run-setup-tasks",
			Short: "Execute setup tasks for the work directory and its dependencies",
			Flags: func(cmd *cobra.Command, opts *taskOptions) {
				workDirFlag(cmd, opts)
				cmd.Flags().BoolVar(&opts.Prompt, "prompt", false, "prompt before each environment and setup script")
			},
			Run: runRunSetupTasks,
		},
		workOnTask("work-dir.action.work-on", false),
		workOnTask("work-on", true),
		{
			Name:    "work-dir.action.create-exec-wrapper",
			Args:    "[exe]",
			Short:   "Create a wrapper around an executable in the work dir env",
			MaxArgs: 1,
			Flags: func(cmd *cobra.Command, opts *taskOptions) {
				workDirFlag(cmd, opts)
				cmd.Flags().BoolVar(&opts.Test, "test", true, "check the executable can be seen before wrapping it")
			},
			Run: runCreateExecWrapper,
		},
		{
			Name:  "work-dir.action.create-scripts-wrappers",
			Short: "Wrap every script in the work dir's scripts folder",
			Flags: workDirFlag,
			Run:   runCreateScriptsWrappers,
		},
		{
			Name:  "work-dir.action.remove-work-env",
			Short: "Remove the conda environment associated with the work dir",
			Flags: workDirFlag,
			Run:   runRemoveWorkEnv,
		},
		{
			Name:  "work-dir.info.current-work-dir",
			Short: "Print the work directory containing the current directory",
			Run:   runCurrentWorkDir,
		},
	}
}

func workOnTask(name string, alias bool) task {
	t := task{
		Name:  name,
		Args:  "<work-dir>",
		Short: "Instruct what to do to work on a work directory",
		Long: `Creates the work directory when needed, composes its environment, regenerates
its wrappers and runs setup tasks. When something needs you, the command to run
is printed and work-on exits 1. Keep invoking until it reports ready.`,
		NArgs: 1,
		Run:   runWorkOn,
	}
	if alias {
		t.Short = "Shortcut for work-dir action work-on"
	}
	return t
}

func dvcDirFlag(cmd *cobra.Command, opts *taskOptions) {
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "shared folder used when no DVC remote is configured (default: dvc.remote_dir)")
}
