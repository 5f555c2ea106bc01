package command

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sxs-collaboration/spectre-cli/pkg/diagnostics"
)

// Command is the executable unit behind a registered name. Run receives the
// arguments that follow the command name and returns the process exit code.
// A non-nil error is rendered by the dispatcher; the invocation then exits
// with the returned code, or ExitFailure when the code is ExitOK.
type Command interface {
	Run(ctx context.Context, env *Env, args []string) (int, error)
}

// Env is the execution context shared with a resolved command
type Env struct {
	Prog        string
	Name        string
	WorkDir     string
	Logger      Logger
	Diagnostics diagnostics.State
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
}

// Path resolves p against the working directory of the invocation
func (e *Env) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.WorkDir, p)
}

// Func adapts an ordinary function to the Command interface
type Func func(ctx context.Context, env *Env, args []string) (int, error)

func (f Func) Run(ctx context.Context, env *Env, args []string) (int, error) {
	return f(ctx, env, args)
}

// Cobra adapts a cobra command to the Command interface. build is called once
// per run so flag values never leak between invocations. Flag and argument
// errors of the built command end the invocation with ExitUsage.
func Cobra(build func(env *Env) *cobra.Command) Command {
	return cobraCommand(build)
}

type cobraCommand func(env *Env) *cobra.Command

func (build cobraCommand) Run(ctx context.Context, env *Env, args []string) (int, error) {
	cmd := build(env)
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetIn(env.Stdin)
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ErrUsage{Err: err}
	})
	if cmd.Args == nil {
		cmd.Args = cobra.ArbitraryArgs
	}
	cmd.Args = usageArgs(cmd.Args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if IsUsageError(err) {
			fmt.Fprintf(env.Stderr, "Usage: %s %s\n\n", env.Prog, cmd.UseLine())
			fmt.Fprintf(env.Stderr, "Error: %v\n", err)
			fmt.Fprintf(env.Stderr, "Try '%s %s --help' for help.\n", env.Prog, env.Name)
			return ExitUsage, nil
		}
		return ExitFailure, err
	}
	return ExitOK, nil
}

// usageArgs marks argument validation failures as usage errors
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &ErrUsage{Err: err}
		}
		return nil
	}
}
