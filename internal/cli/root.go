// Package cli provides the command-line interface for workon.
//
// Commands come from a declarative task table (table.go): every dotted task
// name such as work-dir.action.work-on becomes the nested command
// "workon work-dir action work-on". The project root and configuration are
// resolved per invocation, so --work-dir defaults track the shell's current
// directory.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// newRootCmd creates the root command. sys may carry test doubles; a nil
// LogWriter means the real stderr and log file.
func newRootCmd(flags *GlobalFlags, info BuildInfo, sys *System, logWriter io.Writer) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "workon",
		Short: "Work directory automation for conda + DVC projects",
		Long: `workon manages the work directories of a scientific project: each one has
its own conda environment composed with conda devenv, wrappers that run tools
inside that environment, and setup scripts. Commit messages get tagged with
the work directories they touch.

Start with: workon work-on <name>`,
		Version: formatVersion(info),
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd, flags); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			if err := validateGlobalFlags(flags); err != nil {
				return err
			}

			var logger zerolog.Logger
			if logWriter != nil {
				logger = InitLoggerWithWriter(flags.Verbose, flags.Quiet, logWriter)
			} else {
				logger = InitLogger(flags.Verbose, flags.Quiet)
			}
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)
	buildTaskTree(cmd, flags, sys, taskGroups(), taskTable())

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command and reports any error to the user. The
// caller maps the returned error to an exit code with ExitCodeForError.
func Execute(ctx context.Context, info BuildInfo) error {
	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info, &System{}, nil)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		reportError(os.Stdout, os.Stderr, flags.Output, err)
	}
	CloseLogFile()
	return err
}

// reportError prints err. Precondition guards go to stdout like any other
// instruction; everything else goes to stderr. JSON output always goes to
// stdout.
func reportError(stdout, stderr io.Writer, format string, err error) {
	if tui.ValidateFormat(format) != nil {
		format = tui.FormatText
	}

	w := stderr
	if _, ok := errors.AsPrecondition(err); ok || format == tui.FormatJSON {
		w = stdout
	}
	tui.NewOutput(w, format).Error(err)

	if format == tui.FormatText && ExitCodeForError(err) == ExitInvalidInput {
		_, _ = fmt.Fprintln(stderr, "Run 'workon --help' for usage.")
	}
}
