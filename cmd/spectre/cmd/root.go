// Package cmd wires the spectre command table into the dispatcher
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"syscall"

	"github.com/sxs-collaboration/spectre-cli/pkg/command"
)

// version is set at link time with -ldflags "-X .../cmd.version=..."
var version = "dev"

type entry struct{}

// entryPackage is the import path of this package
var entryPackage = reflect.TypeOf(entry{}).PkgPath()

// Execute runs one invocation of spectre with the process arguments and
// returns the exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := command.NewDispatcher(Registry(), newConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return command.ExitFailure
	}
	return d.Dispatch(ctx, os.Args[1:])
}

// newConfig keeps the program's entry frames out of failure reports
func newConfig() *command.Config {
	config := command.DefaultConfig()
	config.Version = version
	config.Suppressed = []string{"main", entryPackage}
	return config
}
