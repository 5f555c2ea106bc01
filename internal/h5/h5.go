// Package h5 reads the HDF5 files written by SpECTRE executables.
//
// The HDF5 library is linked only when building with the hdf5 tag. Without it
// Open returns ErrUnavailable, so commands that need H5 files fail to load
// while the rest of the command table keeps working.
package h5

import (
	"errors"
	"path"
	"sort"
	"strings"
)

// ErrUnavailable is returned by Open when spectre was built without HDF5
var ErrUnavailable = errors.New("HDF5 support not available: rebuild spectre with -tags hdf5")

// File is a read-only view of an open H5 file. Object names are absolute
// paths such as "/Norms.dat" or "/VolumeData.vol/ObservationId42".
type File interface {
	// Groups returns the paths of the groups directly below group
	Groups(group string) ([]string, error)
	// Datasets returns the paths of the datasets directly below group
	Datasets(group string) ([]string, error)
	// Shape returns the dimensions of a dataset
	Shape(dataset string) ([]int, error)
	// ReadFloat64 reads a dataset in row-major order
	ReadFloat64(dataset string) ([]float64, error)
	// StringAttribute reads a scalar string attribute of a group or dataset
	StringAttribute(object, name string) (string, error)
	// FloatAttribute reads a scalar floating point attribute
	FloatAttribute(object, name string) (float64, error)
	Close() error
}

// Opener opens an H5 file for reading
type Opener func(path string) (File, error)

// Open opens the H5 file at path for reading
func Open(path string) (File, error) {
	return open(path)
}

// Available reports whether spectre was built with HDF5 support
func Available() bool {
	return available
}

// Walk returns the paths of all datasets below group, descending into
// subgroups, in lexical order
func Walk(f File, group string) ([]string, error) {
	datasets, err := f.Datasets(group)
	if err != nil {
		return nil, err
	}
	groups, err := f.Groups(group)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		nested, err := Walk(f, g)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, nested...)
	}
	sort.Strings(datasets)
	return datasets, nil
}

// Join joins object names into an absolute path
func Join(elem ...string) string {
	return path.Join(append([]string{"/"}, elem...)...)
}

// Base returns the last element of an object path
func Base(name string) string {
	return path.Base(strings.TrimSuffix(name, "/"))
}
