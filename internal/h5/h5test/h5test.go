// Package h5test provides an in-memory h5.File for tests
package h5test

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/sxs-collaboration/spectre-cli/internal/h5"
)

// Dataset is a dense row-major array
type Dataset struct {
	Shape []int
	Data  []float64
}

// File is an in-memory h5.File. Groups are implied by dataset paths and
// attribute owners.
type File struct {
	Data             map[string]Dataset
	StringAttributes map[string]map[string]string
	FloatAttributes  map[string]map[string]float64
	Closed           bool
}

var _ h5.File = (*File)(nil)

// New creates an empty file
func New() *File {
	return &File{
		Data:             make(map[string]Dataset),
		StringAttributes: make(map[string]map[string]string),
		FloatAttributes:  make(map[string]map[string]float64),
	}
}

// Add stores a dataset of the given shape
func (f *File) Add(name string, shape []int, data ...float64) *File {
	f.Data[name] = Dataset{Shape: shape, Data: data}
	return f
}

// SetString stores a string attribute on object
func (f *File) SetString(object, name, value string) *File {
	if f.StringAttributes[object] == nil {
		f.StringAttributes[object] = make(map[string]string)
	}
	f.StringAttributes[object][name] = value
	return f
}

// SetFloat stores a floating point attribute on object
func (f *File) SetFloat(object, name string, value float64) *File {
	if f.FloatAttributes[object] == nil {
		f.FloatAttributes[object] = make(map[string]float64)
	}
	f.FloatAttributes[object][name] = value
	return f
}

// Opener returns an h5.Opener that serves files by path
func Opener(files map[string]*File) h5.Opener {
	return func(p string) (h5.File, error) {
		f, ok := files[p]
		if !ok {
			return nil, fmt.Errorf("unable to open file %s", p)
		}
		return f, nil
	}
}

func (f *File) Close() error {
	f.Closed = true
	return nil
}

func (f *File) objects() []string {
	var names []string
	for name := range f.Data {
		names = append(names, name)
	}
	for name := range f.StringAttributes {
		names = append(names, name)
	}
	for name := range f.FloatAttributes {
		names = append(names, name)
	}
	return names
}

func (f *File) Groups(group string) ([]string, error) {
	prefix := strings.TrimSuffix(group, "/") + "/"
	seen := make(map[string]bool)
	for _, name := range f.objects() {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		if i := strings.Index(rest, "/"); i > 0 {
			seen[path.Join(prefix, rest[:i])] = true
		} else if _, isData := f.Data[name]; !isData && rest != "" {
			seen[name] = true
		}
	}
	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups, nil
}

func (f *File) Datasets(group string) ([]string, error) {
	prefix := strings.TrimSuffix(group, "/") + "/"
	var datasets []string
	for name := range f.Data {
		if rest, ok := strings.CutPrefix(name, prefix); ok && !strings.Contains(rest, "/") {
			datasets = append(datasets, name)
		}
	}
	sort.Strings(datasets)
	return datasets, nil
}

func (f *File) Shape(dataset string) ([]int, error) {
	d, ok := f.Data[dataset]
	if !ok {
		return nil, fmt.Errorf("no dataset %s", dataset)
	}
	return d.Shape, nil
}

func (f *File) ReadFloat64(dataset string) ([]float64, error) {
	d, ok := f.Data[dataset]
	if !ok {
		return nil, fmt.Errorf("no dataset %s", dataset)
	}
	return append([]float64(nil), d.Data...), nil
}

func (f *File) StringAttribute(object, name string) (string, error) {
	v, ok := f.StringAttributes[object][name]
	if !ok {
		return "", fmt.Errorf("no attribute %s on %s", name, object)
	}
	return v, nil
}

func (f *File) FloatAttribute(object, name string) (float64, error) {
	v, ok := f.FloatAttributes[object][name]
	if !ok {
		return 0, fmt.Errorf("no attribute %s on %s", name, object)
	}
	return v, nil
}
