package extractdat

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	"github.com/sxs-collaboration/spectre-cli/internal/h5"
	"github.com/sxs-collaboration/spectre-cli/internal/h5/h5test"
	"github.com/sxs-collaboration/spectre-cli/pkg/command"
)

func reductions() *h5test.File {
	return h5test.New().
		Add("/Norms.dat", []int{2, 3}, 0, 1.5, -2, 0.5, 1.25, 3).
		Add("/Cce/News.dat", []int{2}, 0.125, 0.25).
		Add("/VolumeData.vol/ObservationId0/InertialCoordinates_x", []int{1}, 0)
}

func TestExtract(t *testing.T) {
	outDir := t.TempDir()
	f := reductions()
	e := &Extractor{
		Open:      h5test.Opener(map[string]*h5test.File{"/runs/Reductions.h5": f}),
		Service:   afs.New(),
		Logger:    command.NopLogger(),
		Precision: 2,
	}

	require.NoError(t, e.Extract(context.Background(), "/runs/Reductions.h5", outDir))
	assert.True(t, f.Closed)

	norms, err := os.ReadFile(filepath.Join(outDir, "Norms.dat"))
	require.NoError(t, err)
	assert.Equal(t, "0.00e+00 1.50e+00 -2.00e+00\n5.00e-01 1.25e+00 3.00e+00\n", string(norms))

	news, err := os.ReadFile(filepath.Join(outDir, "Cce", "News.dat"))
	require.NoError(t, err)
	assert.Equal(t, "1.25e-01\n2.50e-01\n", string(news))

	assert.NoDirExists(t, filepath.Join(outDir, "VolumeData.vol"))

	err = e.Extract(context.Background(), "/runs/Reductions.h5", outDir)
	assert.ErrorContains(t, err, "already exists")

	e.Force = true
	assert.NoError(t, e.Extract(context.Background(), "/runs/Reductions.h5", outDir))
}

func TestExtract_NoDatFiles(t *testing.T) {
	e := &Extractor{
		Open:    h5test.Opener(map[string]*h5test.File{"/runs/Volume.h5": h5test.New().Add("/x", []int{1}, 0)}),
		Service: afs.New(),
		Logger:  command.NopLogger(),
	}
	assert.ErrorContains(t, e.Extract(context.Background(), "/runs/Volume.h5", t.TempDir()), "no dat files")
}

func TestExtract_BadRank(t *testing.T) {
	e := &Extractor{
		Open:    h5test.Opener(map[string]*h5test.File{"/r.h5": h5test.New().Add("/Cube.dat", []int{1, 1, 1}, 0)}),
		Service: afs.New(),
		Logger:  command.NopLogger(),
	}
	assert.ErrorContains(t, e.Extract(context.Background(), "/r.h5", t.TempDir()), "rank 3")
}

func TestCommand(t *testing.T) {
	workDir := t.TempDir()
	files := map[string]*h5test.File{filepath.Join(workDir, "Reductions.h5"): reductions()}
	cmd := command.Cobra(newCommand(h5test.Opener(files)))

	var stdout, stderr bytes.Buffer
	env := &command.Env{
		Prog:    "spectre",
		Name:    "extract-dat",
		WorkDir: workDir,
		Logger:  command.NopLogger(),
		Stdout:  &stdout,
		Stderr:  &stderr,
	}

	code, err := cmd.Run(context.Background(), env, []string{"Reductions.h5"})
	require.NoError(t, err)
	assert.Equal(t, command.ExitOK, code)
	assert.Equal(t, "Available dat files:\n  /Cce/News.dat\n  /Norms.dat\n", stdout.String())

	code, err = cmd.Run(context.Background(), env, []string{"Reductions.h5", "dat", "-p", "4"})
	require.NoError(t, err)
	assert.Equal(t, command.ExitOK, code)
	assert.FileExists(t, filepath.Join(workDir, "dat", "Norms.dat"))

	code, err = cmd.Run(context.Background(), env, []string{"Reductions.h5", "dat", "-p", "-1"})
	assert.NoError(t, err)
	assert.Equal(t, command.ExitUsage, code)

	code, err = cmd.Run(context.Background(), env, []string{"Missing.h5", "dat"})
	assert.Error(t, err)
	assert.Equal(t, command.ExitFailure, code)
}

func TestLoad(t *testing.T) {
	cmd, err := Load()
	if h5.Available() {
		assert.NoError(t, err)
		assert.NotNil(t, cmd)
		return
	}
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, h5.ErrUnavailable)
}
