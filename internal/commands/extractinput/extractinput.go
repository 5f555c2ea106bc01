// Package extractinput recovers the input file that produced an H5 file
package extractinput

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/sxs-collaboration/spectre-cli/internal/h5"
	"github.com/sxs-collaboration/spectre-cli/pkg/command"
)

// Attribute is the root attribute holding the input file
const Attribute = "InputSource.yaml"

// Load returns the extract-input command. It fails when spectre was built
// without HDF5 support.
func Load() (command.Command, error) {
	if !h5.Available() {
		return nil, h5.ErrUnavailable
	}
	return command.Cobra(newCommand(h5.Open)), nil
}

func newCommand(open h5.Opener) func(env *command.Env) *cobra.Command {
	return func(env *command.Env) *cobra.Command {
		return &cobra.Command{
			Use:   "extract-input H5FILE [OUTPUT_FILE]",
			Short: "Print the input file used to create an H5 file.",
			Long: `Print the input file used to create an H5 file.

Executables store their input file in every H5 file they write. It is printed
to stdout, or written to OUTPUT_FILE when given.`,
			Args: cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				source, err := InputSource(open, env.Path(args[0]))
				if err != nil {
					return err
				}
				if len(args) == 1 {
					_, err := io.WriteString(cmd.OutOrStdout(), source)
					return err
				}
				return write(cmd.Context(), env.Path(args[1]), source)
			},
		}
	}
}

// InputSource returns the input file stored in the H5 file at path
func InputSource(open h5.Opener, path string) (string, error) {
	f, err := open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	source, err := f.StringAttribute("/", Attribute)
	if err != nil {
		return "", fmt.Errorf("%s has no input file: %w", path, err)
	}
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	return source, nil
}

func write(ctx context.Context, path, source string) error {
	if err := afs.New().Upload(ctx, path, 0o644, strings.NewReader(source)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
