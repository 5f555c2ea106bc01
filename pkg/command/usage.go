package command

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func (d *Dispatcher) writeUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [OPTIONS] COMMAND [ARGS]...\n", d.config.ProgName)
}

func (d *Dispatcher) writeHint(w io.Writer) {
	fmt.Fprintf(w, "Try '%s --help' for help.\n", d.config.ProgName)
}

// writeHelp prints the top-level help. Command names and help lines come from
// the descriptors; no command is loaded.
func (d *Dispatcher) writeHelp(w io.Writer, flags *pflag.FlagSet) {
	d.writeUsage(w)
	fmt.Fprintf(w, "\n  %s\n\nOptions:\n", d.config.description())
	fmt.Fprint(w, flags.FlagUsages())
	fmt.Fprint(w, "\nCommands:\n")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, desc := range d.registry.Descriptors() {
		fmt.Fprintf(tw, "  %s\t%s\n", desc.Name, desc.Short)
	}
	_ = tw.Flush()
}

// completeCommandNames completes the command name. Arguments after it belong
// to the command and fall back to file completion.
func (d *Dispatcher) completeCommandNames(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	var names []string
	for _, desc := range d.registry.Descriptors() {
		if strings.HasPrefix(desc.Name, toComplete) {
			names = append(names, desc.Name+"\t"+desc.Short)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
