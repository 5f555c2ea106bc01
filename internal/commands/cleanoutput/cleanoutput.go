// Package cleanoutput deletes the output files that an input file declares
// under its ExpectedOutput metadata.
package cleanoutput

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/sxs-collaboration/spectre-cli/pkg/command"
)

// MissingOutputError lists expected output files that were not found
type MissingOutputError struct {
	Paths []string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("expected output files are missing: %s", strings.Join(e.Paths, ", "))
}

// metadata is the first YAML document of an input file
type metadata struct {
	ExpectedOutput []string `yaml:"ExpectedOutput"`
}

// Load returns the clean-output command
func Load() (command.Command, error) {
	return command.Cobra(newCommand), nil
}

func newCommand(env *command.Env) *cobra.Command {
	var (
		outputDir string
		force     bool
	)
	cmd := &cobra.Command{
		Use:   "clean-output INPUT_FILE -o OUTPUT_DIR",
		Short: "Delete the output files listed in an input file.",
		Long: `Delete the output files listed in an input file.

The input file lists the files it produces under the ExpectedOutput key of its
metadata, the first YAML document in the file. Each of them is deleted from
OUTPUT_DIR. Missing files are an error unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				return &command.ErrUsage{Err: errors.New(`required flag(s) "output-dir" not set`)}
			}
			c := &Cleaner{Service: afs.New(), Logger: env.Logger}
			return c.Clean(cmd.Context(), env.Path(args[0]), env.Path(outputDir), force)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory of the run to clean up.")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Suppress the error when expected output files are missing.")
	return cmd
}

// Cleaner removes expected output files through an afs service
type Cleaner struct {
	Service afs.Service
	Logger  command.Logger
}

// Clean deletes every file listed as ExpectedOutput in inputFile from
// outputDir. Files that do not exist are collected into a
// MissingOutputError unless force is set.
func (c *Cleaner) Clean(ctx context.Context, inputFile, outputDir string, force bool) error {
	data, err := c.Service.DownloadWithURL(ctx, inputFile)
	if err != nil {
		return fmt.Errorf("reading input file %s: %w", inputFile, err)
	}
	meta, err := readMetadata(data)
	if err != nil {
		return fmt.Errorf("parsing metadata of %s: %w", inputFile, err)
	}
	if len(meta.ExpectedOutput) == 0 {
		c.Logger.Info("Input file lists no expected output", "input_file", inputFile)
		return nil
	}

	var missing []string
	for _, name := range meta.ExpectedOutput {
		path := filepath.Join(outputDir, name)
		exists, err := c.Service.Exists(ctx, path)
		if err != nil {
			return fmt.Errorf("checking %s: %w", path, err)
		}
		if !exists {
			missing = append(missing, path)
			continue
		}
		if err := c.Service.Delete(ctx, path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		c.Logger.Info("Removed file", "path", path)
	}

	if len(missing) > 0 {
		if !force {
			return &MissingOutputError{Paths: missing}
		}
		for _, path := range missing {
			c.Logger.Debug("Expected output not found", "path", path)
		}
	}
	return nil
}

// readMetadata decodes the first document of a multi-document YAML file
func readMetadata(data []byte) (*metadata, error) {
	var meta metadata
	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&meta)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &meta, nil
}
