package cmd

import (
	"github.com/sxs-collaboration/spectre-cli/internal/commands/cleanoutput"
	"github.com/sxs-collaboration/spectre-cli/internal/commands/extractdat"
	"github.com/sxs-collaboration/spectre-cli/internal/commands/extractinput"
	"github.com/sxs-collaboration/spectre-cli/internal/commands/generatexdmf"
	"github.com/sxs-collaboration/spectre-cli/internal/commands/simplifytraces"
	"github.com/sxs-collaboration/spectre-cli/pkg/command"
)

// commands is the fixed command table, in the order shown by --help. Only the
// loader of the invoked command runs.
var commands = []command.Descriptor{
	{
		Name:  "clean-output",
		Short: "Delete the output files listed in an input file.",
		Load:  cleanoutput.Load,
	},
	{
		Name:  "extract-dat",
		Short: "Extract dat files from an H5 file.",
		Load:  extractdat.Load,
	},
	{
		Name:  "extract-input",
		Short: "Print the input file used to create an H5 file.",
		Load:  extractinput.Load,
	},
	{
		Name:  "generate-xdmf",
		Short: "Generate an XDMF file for visualizing volume data.",
		Load:  generatexdmf.Load,
	},
	{
		Name:  "simplify-traces",
		Short: "Simplify Charm++ Projections trace files.",
		Load:  simplifytraces.Load,
	},
}

// Registry returns the spectre command table
func Registry() *command.Registry {
	return command.MustRegistry(commands...)
}
