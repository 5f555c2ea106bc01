// Package command maps the first positional argument of a spectre invocation
// to one of a fixed set of registered commands and runs it.
//
// Registration separates naming from loading. A Descriptor carries the name
// and help line of a command, which are always available for help output and
// shell completion, and a Loader that constructs the implementation. Loaders
// run only inside Registry.Resolve, and only for the requested name, so a
// command's expensive setup is never paid by another command or by --help.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sxs-collaboration/spectre-cli/pkg/diagnostics"
)

// packagePath is hidden from failure reports shown to the user
var packagePath = reflect.TypeOf(Dispatcher{}).PkgPath()

// Dispatcher parses the global flags of an invocation, configures
// diagnostics and hands control to the requested command
type Dispatcher struct {
	registry *Registry
	config   *Config
	metrics  *Metrics
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	workDir  string
}

// Option defines a function type for configuring a Dispatcher
type Option func(*Dispatcher)

// WithOutput sets the writers used for regular output and diagnostics
func WithOutput(stdout, stderr io.Writer) Option {
	return func(d *Dispatcher) {
		if stdout != nil {
			d.stdout = stdout
		}
		if stderr != nil {
			d.stderr = stderr
		}
	}
}

// WithInput sets the reader handed to commands as stdin
func WithInput(stdin io.Reader) Option {
	return func(d *Dispatcher) {
		if stdin != nil {
			d.stdin = stdin
		}
	}
}

// WithWorkDir sets the working directory handed to commands. It defaults to
// the process working directory at dispatch time.
func WithWorkDir(dir string) Option {
	return func(d *Dispatcher) {
		d.workDir = dir
	}
}

// NewDispatcher creates a dispatcher over registry. A nil config selects
// DefaultConfig.
func NewDispatcher(registry *Registry, config *Config, opts ...Option) (*Dispatcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	d := &Dispatcher{
		registry: registry,
		config:   config.Clone(),
		metrics:  NewMetrics(config.EnableMetrics),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Registry returns the command table of the dispatcher
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Metrics returns the load and run timings recorded by the dispatcher
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Dispatch runs one invocation with the arguments that follow the program
// name and returns the process exit code.
func (d *Dispatcher) Dispatch(ctx context.Context, argv []string) (code int) {
	inv := &invocation{d: d}
	defer inv.close()
	defer func() {
		if v := recover(); v != nil {
			inv.reporter().Report(diagnostics.Recovered(v))
			code = ExitFailure
		}
	}()

	root := inv.rootCommand()
	root.SetArgs(append([]string{}, argv...))
	return inv.exitCode(root.ExecuteContext(ctx))
}

// diagnostics returns the diagnostics state for flag, hiding the frames of
// the dispatcher and of the configured packages
func (d *Dispatcher) diagnostics(flag diagnostics.Flag) diagnostics.State {
	return diagnostics.Configure(flag).WithSuppressed(append([]string{packagePath}, d.config.Suppressed...)...)
}

// invocation holds the state of a single Dispatch call. The diagnostics state
// is written once, before the command is resolved.
type invocation struct {
	d          *Dispatcher
	selection  *diagnostics.Selection
	state      diagnostics.State
	configured bool
	logger     *zap.Logger
	restore    func()
	name       string
	code       int
}

func (inv *invocation) rootCommand() *cobra.Command {
	d := inv.d
	root := &cobra.Command{
		Use:               d.config.ProgName,
		Short:             d.config.description(),
		Version:           d.config.Version,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		ValidArgsFunction: d.completeCommandNames,
		PersistentPreRunE: inv.configure,
		RunE:              inv.run,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(d.stdin)
	root.SetOut(d.stdout)
	root.SetErr(d.stderr)
	root.SetVersionTemplate("{{.Version}}\n")

	// Global flags end at the first positional argument, which names the
	// command. Everything after it belongs to the command.
	flags := root.Flags()
	flags.SetInterspersed(false)
	inv.selection = diagnostics.RegisterFlags(flags)
	flags.BoolP("help", "h", false, "Show this message and exit.")
	flags.Bool("version", false, "Show the version and exit.")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ErrUsage{Err: err}
	})
	root.SetHelpFunc(func(c *cobra.Command, _ []string) {
		d.writeHelp(c.OutOrStdout(), c.Flags())
	})
	root.SetUsageFunc(func(c *cobra.Command) error {
		d.writeUsage(c.ErrOrStderr())
		return nil
	})
	return root
}

// configure establishes the diagnostics state of the invocation
func (inv *invocation) configure(*cobra.Command, []string) error {
	flag, err := inv.selection.Flag()
	if err != nil {
		return &ErrUsage{Err: err}
	}
	inv.state = inv.d.diagnostics(flag)
	inv.configured = true
	inv.logger = inv.state.NewLogger(inv.d.stderr)
	inv.restore = diagnostics.Install(inv.logger)
	inv.logger.Debug("Diagnostics configured", zap.Stringer("level", inv.state.Level))
	return nil
}

func (inv *invocation) run(cmd *cobra.Command, args []string) error {
	d := inv.d
	if len(args) == 0 {
		d.writeUsage(cmd.ErrOrStderr())
		return &ErrUsage{Err: errMissingCommand}
	}
	name, rest := args[0], args[1:]
	inv.name = name
	ctx := cmd.Context()
	log := NewZapLogger(inv.logger)

	cached := d.registry.Loaded(name)
	start := time.Now()
	c, err := d.registry.Resolve(ctx, name)
	if err != nil {
		return err
	}
	if !cached {
		d.metrics.RecordLoad(name, time.Since(start))
	}
	log.Debug("Loaded command", "command", name)

	workDir := d.workDir
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
	}
	env := &Env{
		Prog:        d.config.ProgName,
		Name:        name,
		WorkDir:     workDir,
		Logger:      log,
		Diagnostics: inv.state,
		Stdin:       d.stdin,
		Stdout:      d.stdout,
		Stderr:      d.stderr,
	}

	start = time.Now()
	code, err := execute(ctx, c, env, rest)
	d.metrics.RecordRun(name, time.Since(start))
	log.Debug("Command finished", "command", name, "code", code)

	if err != nil {
		if code == ExitOK {
			code = ExitFailure
		}
		return &ErrCommandExecution{Name: name, Code: code, Err: err}
	}
	inv.code = code
	return nil
}

// execute runs c, turning a panic into an error with the panicking stack
func execute(ctx context.Context, c Command, env *Env, args []string) (code int, err error) {
	defer func() {
		if v := recover(); v != nil {
			code, err = ExitFailure, diagnostics.Recovered(v)
		}
	}()
	return c.Run(ctx, env, args)
}

// exitCode reports err to the user and maps it to an exit code
func (inv *invocation) exitCode(err error) int {
	if err == nil {
		return inv.code
	}

	stderr := inv.d.stderr
	var (
		execution *ErrCommandExecution
		notFound  *ErrCommandNotFound
		usage     *ErrUsage
	)
	switch {
	case errors.As(err, &execution):
		inv.reporter().Report(execution.Err)
		return execution.Code
	case errors.As(err, &notFound):
		fmt.Fprintf(stderr, "Error: %v\n", notFound)
		inv.d.writeHint(stderr)
		return ExitCommandNotFound
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "Error: %v\n", usage)
		inv.d.writeHint(stderr)
		return ExitUsage
	case IsCommandLoadError(err):
		inv.reporter().Report(err)
		return ExitFailure
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		inv.d.writeHint(stderr)
		return ExitUsage
	}
}

// reporter renders failures with the configured diagnostics, or with the
// defaults when the invocation failed before configuring them
func (inv *invocation) reporter() *diagnostics.Reporter {
	state := inv.state
	if !inv.configured {
		state = inv.d.diagnostics(diagnostics.FlagNone)
	}
	return state.Reporter(inv.d.stderr)
}

func (inv *invocation) close() {
	if inv.logger != nil {
		inv.logTimings()
		_ = inv.logger.Sync()
	}
	if inv.restore != nil {
		inv.restore()
	}
}

// logTimings logs the recorded load and run timings of the invoked command.
// Nothing is logged when metrics are disabled or the command never resolved.
func (inv *invocation) logTimings() {
	if inv.name == "" {
		return
	}
	snapshot, err := inv.d.metrics.Snapshot(inv.name)
	if err != nil {
		return
	}
	inv.logger.Debug("Command timings",
		zap.String("command", inv.name),
		zap.Int64("loads", snapshot.Load.Count.Load()),
		zap.Duration("load_time", time.Duration(snapshot.Load.TotalTime.Load())),
		zap.Int64("runs", snapshot.Run.Count.Load()),
		zap.Duration("run_time", time.Duration(snapshot.Run.TotalTime.Load())),
		zap.Duration("max_run_time", time.Duration(snapshot.Run.MaxTime.Load())),
	)
}
