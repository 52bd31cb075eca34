package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/workon/internal/tui"
)

// taskOptions holds the per-task flags. Each task registers the ones it uses.
type taskOptions struct {
	WorkDir string
	Prompt  bool
	Test    bool
	Force   bool
	Dir     string
}

// taskEnv is what a task body receives.
type taskEnv struct {
	ec   *ExecutionContext
	sys  *System
	out  tui.Output
	opts *taskOptions
	args []string
	// root is the --root flag.
	root string
	// json is set for --output json; tasks then emit one JSON document.
	json bool
}

// task is one row of the command table. Name is the dotted task name; its
// last segment becomes the cobra command and the others its groups.
type task struct {
	Name  string
	Args  string
	Short string
	Long  string
	// NArgs is the number of required positional arguments, MaxArgs the
	// upper bound when some are optional.
	NArgs   int
	MaxArgs int
	Hidden  bool
	// Flags registers task flags on the command.
	Flags func(cmd *cobra.Command, opts *taskOptions)
	// NoProject skips resolving the execution context.
	NoProject bool
	Run       func(ctx context.Context, t *taskEnv) error
}

// group describes an intermediate command of the table.
type group struct {
	Name  string
	Short string
	// Default is a task name run when the group is invoked bare.
	Default string
}

func workDirFlag(cmd *cobra.Command, opts *taskOptions) {
	cmd.Flags().StringVarP(&opts.WorkDir, "work-dir", "w", "",
		"work directory (default: the one containing the current directory)")
}

// buildTaskTree adds groups and tasks under root. Groups must be listed
// before their children.
func buildTaskTree(root *cobra.Command, flags *GlobalFlags, sys *System, groups []group, tasks []task) {
	nodes := map[string]*cobra.Command{"": root}
	byName := make(map[string]*cobra.Command, len(tasks))

	for _, g := range groups {
		parent, leaf := splitTaskName(g.Name)
		cmd := &cobra.Command{
			Use:   leaf,
			Short: g.Short,
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cmd.Help()
			},
		}
		nodes[parent].AddCommand(cmd)
		nodes[g.Name] = cmd
	}

	for _, t := range tasks {
		parent, _ := splitTaskName(t.Name)
		cmd := newTaskCommand(t, flags, sys)
		nodes[parent].AddCommand(cmd)
		byName[t.Name] = cmd
	}

	for _, g := range groups {
		if g.Default == "" {
			continue
		}
		groupCmd, target := nodes[g.Name], byName[g.Default]
		groupCmd.Flags().AddFlagSet(target.Flags())
		groupCmd.RunE = func(cmd *cobra.Command, args []string) error {
			return target.RunE(cmd, args)
		}
	}
}

func newTaskCommand(t task, flags *GlobalFlags, sys *System) *cobra.Command {
	_, leaf := splitTaskName(t.Name)
	opts := &taskOptions{}

	use := leaf
	if t.Args != "" {
		use += " " + t.Args
	}
	cmd := &cobra.Command{
		Use:    use,
		Short:  t.Short,
		Long:   t.Long,
		Hidden: t.Hidden,
		Args:   usageArgs(cobra.RangeArgs(t.NArgs, max(t.NArgs, t.MaxArgs))),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTask(cmd, t, opts, flags, sys, args)
		},
	}
	if t.Flags != nil {
		t.Flags(cmd, opts)
	}
	return cmd
}

func runTask(cmd *cobra.Command, t task, opts *taskOptions, flags *GlobalFlags, sys *System, args []string) error {
	ctx := cmd.Context()
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	jsonOut := flags.Output == tui.FormatJSON

	// Subprocess output must not interleave with a JSON document.
	echo := cmd.OutOrStdout()
	if jsonOut {
		echo = cmd.ErrOrStderr()
	}
	sys = sys.withDefaults(echo)

	env := &taskEnv{sys: sys, out: out, opts: opts, args: args, root: flags.Root, json: jsonOut}
	if !t.NoProject {
		ec, err := ResolveExecutionContext(ctx, flags.Root, sys)
		if err != nil {
			return err
		}
		env.ec = ec
	}
	return t.Run(ctx, env)
}

// splitTaskName splits "a.b.c" into "a.b" and "c".
func splitTaskName(name string) (parent, leaf string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}
