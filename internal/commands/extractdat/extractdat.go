// Package extractdat writes the .dat datasets of an H5 file as plain text
// tables.
package extractdat

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/sxs-collaboration/spectre-cli/internal/h5"
	"github.com/sxs-collaboration/spectre-cli/pkg/command"
)

// DefaultPrecision is the number of digits after the decimal point
const DefaultPrecision = 16

// Load returns the extract-dat command. It fails when spectre was built
// without HDF5 support.
func Load() (command.Command, error) {
	if !h5.Available() {
		return nil, h5.ErrUnavailable
	}
	return command.Cobra(newCommand(h5.Open)), nil
}

func newCommand(open h5.Opener) func(env *command.Env) *cobra.Command {
	return func(env *command.Env) *cobra.Command {
		var (
			precision int
			force     bool
		)
		cmd := &cobra.Command{
			Use:   "extract-dat H5FILE [OUT_DIR]",
			Short: "Extract dat files from an H5 file.",
			Long: `Extract dat files from an H5 file.

Each .dat dataset of H5FILE is written to OUT_DIR as a whitespace-separated
table, keeping its group structure. Without OUT_DIR the available datasets are
listed instead.`,
			Args: cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if precision < 0 || precision > 32 {
					return &command.ErrUsage{Err: fmt.Errorf("invalid precision %d: must be between 0 and 32", precision)}
				}
				e := &Extractor{
					Open:      open,
					Service:   afs.New(),
					Logger:    env.Logger,
					Precision: precision,
					Force:     force,
				}
				input := env.Path(args[0])
				if len(args) == 1 {
					names, err := e.List(input)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Available dat files:")
					for _, name := range names {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
					}
					return nil
				}
				return e.Extract(cmd.Context(), input, env.Path(args[1]))
			},
		}
		cmd.Flags().IntVarP(&precision, "precision", "p", DefaultPrecision, "Digits after the decimal point.")
		cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files.")
		return cmd
	}
}

// Extractor writes .dat datasets to text files
type Extractor struct {
	Open      h5.Opener
	Service   afs.Service
	Logger    command.Logger
	Precision int
	Force     bool
}

// List returns the .dat datasets of the file at path
func (e *Extractor) List(path string) ([]string, error) {
	f, err := e.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return datFiles(f)
}

// Extract writes every .dat dataset of the file at path below outDir
func (e *Extractor) Extract(ctx context.Context, path, outDir string) error {
	f, err := e.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	names, err := datFiles(f)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no dat files in %s", path)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		output := filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(name, "/")))
		if !e.Force {
			exists, err := e.Service.Exists(ctx, output)
			if err != nil {
				return fmt.Errorf("checking %s: %w", output, err)
			}
			if exists {
				return fmt.Errorf("%s already exists, use --force to overwrite", output)
			}
		}

		var buf bytes.Buffer
		if err := e.writeTable(&buf, f, name); err != nil {
			return err
		}
		if err := e.Service.Upload(ctx, output, 0o644, &buf); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		e.Logger.Info("Extracted dat file", "dataset", name, "output", output)
	}
	return nil
}

func (e *Extractor) writeTable(buf *bytes.Buffer, f h5.File, name string) error {
	shape, err := f.Shape(name)
	if err != nil {
		return err
	}
	data, err := f.ReadFloat64(name)
	if err != nil {
		return err
	}

	var rows, cols int
	switch len(shape) {
	case 1:
		rows, cols = shape[0], 1
	case 2:
		rows, cols = shape[0], shape[1]
	default:
		return fmt.Errorf("dataset %s has rank %d, expected a table", name, len(shape))
	}
	if len(data) != rows*cols {
		return fmt.Errorf("dataset %s: read %d values for shape %v", name, len(data), shape)
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if j > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(strconv.FormatFloat(data[i*cols+j], 'e', e.Precision, 64))
		}
		buf.WriteByte('\n')
	}
	return nil
}

func datFiles(f h5.File) ([]string, error) {
	all, err := h5.Walk(f, "/")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, name := range all {
		if strings.HasSuffix(name, ".dat") {
			names = append(names, name)
		}
	}
	return names, nil
}
