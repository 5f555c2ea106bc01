// Package simplifytraces shortens the chare and entry method names recorded in
// Charm++ Projections summary (.sts) files, which otherwise carry fully
// expanded C++ template names.
package simplifytraces

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"golang.org/x/sync/errgroup"

	"github.com/sxs-collaboration/spectre-cli/pkg/command"
)

// maxLineSize bounds a single line of a trace file
const maxLineSize = 16 * 1024 * 1024

// Load returns the simplify-traces command
func Load() (command.Command, error) {
	return command.Cobra(newCommand), nil
}

func newCommand(env *command.Env) *cobra.Command {
	var (
		replacements string
		outputDir    string
	)
	cmd := &cobra.Command{
		Use:   "simplify-traces PROJECTIONS_FILE... -r REPLACEMENTS",
		Short: "Simplify Charm++ Projections trace files.",
		Long: `Simplify Charm++ Projections trace files.

Applies the BasicReplace substitutions and then the RegexReplace patterns of
the REPLACEMENTS file to the CHARE and ENTRY lines of each .sts file. The
replacements file is YAML or JSON, or TOML when its name ends in .toml.

Each FILE.sts is written to FILE.simplified.sts, or to OUTPUT_DIR/FILE.sts
when --output-dir is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if replacements == "" {
				return &command.ErrUsage{Err: errors.New(`required flag(s) "replacements" not set`)}
			}
			ctx := cmd.Context()
			fs := afs.New()
			rulesPath := env.Path(replacements)
			data, err := fs.DownloadWithURL(ctx, rulesPath)
			if err != nil {
				return fmt.Errorf("reading replacements %s: %w", rulesPath, err)
			}
			rules, err := ParseRules(rulesPath, data)
			if err != nil {
				return err
			}
			env.Logger.Debug("Loaded replacements", "file", rulesPath, "rules", rules.Len())

			s := &Simplifier{Service: fs, Rules: rules, Logger: env.Logger}
			inputs := make([]string, len(args))
			for i, arg := range args {
				inputs[i] = env.Path(arg)
			}
			return s.SimplifyFiles(ctx, inputs, env.Path(outputDir))
		},
	}
	cmd.Flags().StringVarP(&replacements, "replacements", "r", "", "YAML, JSON or TOML file with the replacement rules.")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the simplified files.")
	return cmd
}

// Simplifier rewrites trace files with a set of rules
type Simplifier struct {
	Service afs.Service
	Rules   *Rules
	Logger  command.Logger
}

// SimplifyFiles simplifies every input concurrently, at most GOMAXPROCS at a
// time. The first failure cancels the files not yet started. Inputs whose
// outputs would overwrite each other, or another input, are rejected before
// any file is written.
func (s *Simplifier) SimplifyFiles(ctx context.Context, inputs []string, outputDir string) error {
	outputs, err := outputPaths(inputs, outputDir)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, input := range inputs {
		input, output := input, outputs[i]
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.SimplifyFile(ctx, input, output); err != nil {
				return err
			}
			s.Logger.Info("Simplified trace", "input", input, "output", output)
			return nil
		})
	}
	return eg.Wait()
}

// outputPaths maps each input to its output and rejects clashes
func outputPaths(inputs []string, outputDir string) ([]string, error) {
	claimed := make(map[string]string, 2*len(inputs))
	for _, input := range inputs {
		claimed[filepath.Clean(input)] = input
	}
	outputs := make([]string, len(inputs))
	for i, input := range inputs {
		output := filepath.Clean(OutputPath(input, outputDir))
		if other, ok := claimed[output]; ok {
			return nil, &command.ErrUsage{Err: fmt.Errorf("output %s of %s would overwrite %s", output, input, other)}
		}
		claimed[output] = input
		outputs[i] = output
	}
	return outputs, nil
}

// SimplifyFile writes the simplified form of input to output
func (s *Simplifier) SimplifyFile(ctx context.Context, input, output string) error {
	data, err := s.Service.DownloadWithURL(ctx, input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}
	var buf bytes.Buffer
	if err := s.Simplify(bytes.NewReader(data), &buf); err != nil {
		return fmt.Errorf("simplifying %s: %w", input, err)
	}
	if err := s.Service.Upload(ctx, output, 0o644, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

// Simplify copies a trace from r to w, rewriting CHARE and ENTRY lines
func (s *Simplifier) Simplify(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)
	for scanner.Scan() {
		line := scanner.Text()
		if isNameLine(line) {
			line = s.rewriteNames(line)
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// rewriteNames applies the rules to the quoted names of a CHARE or ENTRY
// record. Record tags, IDs and counts are left untouched.
func (s *Simplifier) rewriteNames(line string) string {
	fields := strings.Split(line, `"`)
	for i := 1; i < len(fields); i += 2 {
		fields[i] = s.Rules.Apply(fields[i])
	}
	return strings.Join(fields, `"`)
}

func isNameLine(line string) bool {
	return strings.HasPrefix(line, "CHARE ") || strings.HasPrefix(line, "ENTRY ")
}

// OutputPath returns where the simplified form of input is written
func OutputPath(input, outputDir string) string {
	if outputDir != "" {
		return filepath.Join(outputDir, filepath.Base(input))
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".simplified" + ext
}
