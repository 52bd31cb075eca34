package cli

import (
	stderrors "errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/workon/internal/constants"
	"github.com/mrz1836/workon/internal/errors"
	"github.com/mrz1836/workon/internal/tui"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a failure or a precondition the user has to fix.
	ExitError = 1
	// ExitInvalidInput indicates invalid user input.
	ExitInvalidInput = 2
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// Root overrides the project root. Default: the enclosing git checkout.
	Root string
}

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", tui.FormatText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVar(&flags.Root, "root", "", "project root (default: the enclosing git checkout)")
	cmd.SetFlagErrorFunc(flagError)
}

// flagError marks cobra's flag parsing failures as invalid input. Subcommands
// inherit it from the root.
func flagError(_ *cobra.Command, err error) error {
	return errors.NewExitCode2Error(err)
}

// usageArgs marks positional argument validation failures as invalid input.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return errors.NewExitCode2Error(err)
		}
		return nil
	}
}

// validateGlobalFlags rejects combinations cobra cannot check once flags
// also come from the environment.
func validateGlobalFlags(flags *GlobalFlags) error {
	if flags.Verbose && flags.Quiet {
		return errors.NewExitCode2Error(errors.Wrap(errors.ErrConflictingFlags, "--verbose and --quiet"))
	}
	return tui.ValidateFormat(flags.Output)
}

// BindGlobalFlags binds global flags to Viper so WORKON_OUTPUT, WORKON_ROOT
// and friends work as defaults, then copies resolved values back.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command, flags *GlobalFlags) error {
	rootFlags := cmd.Root().PersistentFlags()
	for _, name := range []string{"output", "verbose", "quiet", "root"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()

	flags.Output = v.GetString("output")
	flags.Verbose = v.GetBool("verbose")
	flags.Quiet = v.GetBool("quiet")
	flags.Root = v.GetString("root")
	return nil
}

// ExitCodeForError returns the exit code for err: 0 for nil, 2 for invalid
// input and 1 for everything else, precondition guards included. Only errors
// marked with ExitCode2Error count as invalid input, so text a failed
// subprocess printed never changes the code.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if stderrors.Is(err, errors.ErrCommandFailed) {
		return ExitError
	}
	if errors.IsExitCode2Error(err) {
		return ExitInvalidInput
	}
	if stderrors.Is(err, errors.ErrInvalidOutputFormat) {
		return ExitInvalidInput
	}

	return ExitError
}
