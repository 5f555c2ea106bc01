// Package generatexdmf writes XDMF index files that let ParaView and VisIt
// read the volume data of a SpECTRE run directly from its H5 files.
package generatexdmf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/sxs-collaboration/spectre-cli/internal/h5"
	"github.com/sxs-collaboration/spectre-cli/pkg/command"
)

// Options select what goes into the XDMF file
type Options struct {
	// SubfileName is the volume data group, with or without ".vol"
	SubfileName string
	// Coordinates is the tensor whose components are the grid coordinates
	Coordinates string
	// Stride keeps every Stride-th time step
	Stride int
}

// DefaultOptions returns the options used by the command
func DefaultOptions() Options {
	return Options{
		SubfileName: "VolumeData",
		Coordinates: "InertialCoordinates",
		Stride:      1,
	}
}

// metadata datasets stored next to the tensor components
var metadata = map[string]bool{
	"connectivity":      true,
	"pole_connectivity": true,
	"bases":             true,
	"quadratures":       true,
	"grid_names":        true,
	"total_extents":     true,
}

var errNoData = errors.New("no volume data found")

// Load returns the generate-xdmf command. It fails when spectre was built
// without HDF5 support.
func Load() (command.Command, error) {
	if !h5.Available() {
		return nil, h5.ErrUnavailable
	}
	return command.Cobra(newCommand(h5.Open)), nil
}

func newCommand(open h5.Opener) func(env *command.Env) *cobra.Command {
	return func(env *command.Env) *cobra.Command {
		opts := DefaultOptions()
		var (
			prefix string
			output string
			watch  bool
		)
		cmd := &cobra.Command{
			Use:   "generate-xdmf --file-prefix PREFIX -o OUTPUT",
			Short: "Generate an XDMF file for visualizing volume data.",
			Long: `Generate an XDMF file for visualizing volume data.

Indexes the volume data in all files matching PREFIX*.h5 so visualization
tools can load it. With --watch the file is regenerated whenever the H5 files
change, until interrupted.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if prefix == "" || output == "" {
					return &command.ErrUsage{Err: errors.New(`required flag(s) "file-prefix", "output" not set`)}
				}
				if opts.Stride < 1 {
					return &command.ErrUsage{Err: fmt.Errorf("invalid stride %d: must be positive", opts.Stride)}
				}
				g := &Generator{
					Open:     open,
					Service:  afs.New(),
					Logger:   env.Logger,
					Options:  opts,
					Debounce: DefaultDebounce,
				}
				prefix = env.Path(prefix)
				output = env.Path(output)
				if watch {
					return g.Watch(cmd.Context(), prefix, output)
				}
				return g.GenerateFromPrefix(cmd.Context(), prefix, output)
			},
		}
		flags := cmd.Flags()
		flags.StringVar(&prefix, "file-prefix", "", "Prefix of the H5 volume data files.")
		flags.StringVar(&opts.SubfileName, "subfile-name", opts.SubfileName, "Name of the volume data subfile.")
		flags.StringVarP(&output, "output", "o", "", "Output file. The .xmf extension is added when missing.")
		flags.StringVar(&opts.Coordinates, "coordinates", opts.Coordinates, "Tensor holding the grid coordinates.")
		flags.IntVar(&opts.Stride, "stride", opts.Stride, "Keep every n-th time step.")
		flags.BoolVar(&watch, "watch", false, "Regenerate when the volume data files change.")
		return cmd
	}
}

// Generator builds XDMF files from H5 volume data
type Generator struct {
	Open     h5.Opener
	Service  afs.Service
	Logger   command.Logger
	Options  Options
	Debounce time.Duration
}

type field struct {
	name string
	path string
}

// piece is the data of one file at one observation
type piece struct {
	name         string
	points       int
	cells        int
	connectivity string
	coordinates  []string
	fields       []field
}

type step struct {
	id     string
	time   float64
	pieces []piece
}

// GenerateFromPrefix indexes all files matching prefix*.h5
func (g *Generator) GenerateFromPrefix(ctx context.Context, prefix, output string) error {
	files, err := filepath.Glob(prefix + "*.h5")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %s*.h5", prefix)
	}
	return g.Generate(ctx, files, output)
}

// Generate indexes the volume data of files into output
func (g *Generator) Generate(ctx context.Context, files []string, output string) error {
	output = outputPath(output)
	steps, err := g.collect(files, filepath.Dir(output))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render(&buf, steps); err != nil {
		return err
	}
	if err := g.Service.Upload(ctx, output, 0o644, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	g.Logger.Info("Generated XDMF file", "output", output, "files", len(files), "steps", len(steps))
	return nil
}

func (g *Generator) collect(files []string, outDir string) ([]step, error) {
	volume := h5.Join(strings.TrimSuffix(g.Options.SubfileName, ".vol") + ".vol")
	byID := make(map[string]*step)

	for _, file := range files {
		f, err := g.Open(file)
		if err != nil {
			return nil, err
		}
		err = g.collectFile(f, file, volume, outDir, byID)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
	}
	if len(byID) == 0 {
		return nil, fmt.Errorf("%w in subfile %s", errNoData, volume)
	}

	steps := make([]step, 0, len(byID))
	for _, s := range byID {
		steps = append(steps, *s)
	}
	sort.Slice(steps, func(i, j int) bool {
		if steps[i].time != steps[j].time {
			return steps[i].time < steps[j].time
		}
		return steps[i].id < steps[j].id
	})

	stride := g.Options.Stride
	if stride < 1 {
		stride = 1
	}
	kept := steps[:0]
	for i := 0; i < len(steps); i += stride {
		kept = append(kept, steps[i])
	}
	return kept, nil
}

func (g *Generator) collectFile(f h5.File, file, volume, outDir string, byID map[string]*step) error {
	observations, err := f.Groups(volume)
	if err != nil {
		return err
	}
	ref := file
	if rel, err := filepath.Rel(outDir, file); err == nil {
		ref = rel
	}

	for _, obs := range observations {
		id := h5.Base(obs)
		t, err := f.FloatAttribute(obs, "observation_value")
		if err != nil {
			return err
		}
		p, err := g.readPiece(f, obs, ref)
		if err != nil {
			return err
		}
		s, ok := byID[id]
		if !ok {
			s = &step{id: id, time: t}
			byID[id] = s
		}
		s.pieces = append(s.pieces, p)
	}
	return nil
}

func (g *Generator) readPiece(f h5.File, obs, ref string) (piece, error) {
	datasets, err := f.Datasets(obs)
	if err != nil {
		return piece{}, err
	}
	p := piece{name: ref}
	present := make(map[string]bool, len(datasets))
	for _, d := range datasets {
		present[h5.Base(d)] = true
	}

	for _, axis := range []string{"x", "y", "z"} {
		name := g.Options.Coordinates + "_" + axis
		if !present[name] {
			break
		}
		p.coordinates = append(p.coordinates, ref+":"+h5.Join(obs, name))
	}
	if len(p.coordinates) == 0 {
		return piece{}, fmt.Errorf("%s has no %s", obs, g.Options.Coordinates)
	}
	shape, err := f.Shape(h5.Join(obs, g.Options.Coordinates+"_x"))
	if err != nil {
		return piece{}, err
	}
	p.points = product(shape)

	if !present["connectivity"] {
		return piece{}, fmt.Errorf("%s has no connectivity", obs)
	}
	connectivity := h5.Join(obs, "connectivity")
	shape, err = f.Shape(connectivity)
	if err != nil {
		return piece{}, err
	}
	p.cells = product(shape) / cellShapes[len(p.coordinates)].nodes
	p.connectivity = ref + ":" + connectivity

	for _, d := range datasets {
		name := h5.Base(d)
		if metadata[name] || strings.HasPrefix(name, g.Options.Coordinates+"_") {
			continue
		}
		p.fields = append(p.fields, field{name: name, path: ref + ":" + d})
	}
	return p, nil
}

func product(shape []int) int {
	n := 1
	for _, dim := range shape {
		n *= dim
	}
	return n
}

func outputPath(output string) string {
	if filepath.Ext(output) == "" {
		return output + ".xmf"
	}
	return output
}
