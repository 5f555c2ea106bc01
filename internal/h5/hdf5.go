//go:build hdf5

package h5

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

const available = true

// file reads through the HDF5 C library
type file struct {
	f *hdf5.File
}

func open(path string) (File, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &file{f: f}, nil
}

func (f *file) Close() error {
	return f.f.Close()
}

func (f *file) Groups(group string) ([]string, error) {
	return f.children(group, hdf5.H5G_GROUP)
}

func (f *file) Datasets(group string) ([]string, error) {
	return f.children(group, hdf5.H5G_DATASET)
}

func (f *file) children(group string, kind hdf5.GType) ([]string, error) {
	g, err := f.f.OpenGroup(group)
	if err != nil {
		return nil, fmt.Errorf("opening group %s: %w", group, err)
	}
	defer g.Close()

	n, err := g.NumObjects()
	if err != nil {
		return nil, err
	}
	var names []string
	for i := uint(0); i < n; i++ {
		t, err := g.ObjectTypeByIndex(i)
		if err != nil {
			return nil, err
		}
		if t != kind {
			continue
		}
		name, err := g.ObjectNameByIndex(i)
		if err != nil {
			return nil, err
		}
		names = append(names, Join(group, name))
	}
	return names, nil
}

func (f *file) Shape(dataset string) ([]int, error) {
	d, err := f.f.OpenDataset(dataset)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", dataset, err)
	}
	defer d.Close()

	space := d.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	shape := make([]int, len(dims))
	for i, dim := range dims {
		shape[i] = int(dim)
	}
	return shape, nil
}

func (f *file) ReadFloat64(dataset string) ([]float64, error) {
	shape, err := f.Shape(dataset)
	if err != nil {
		return nil, err
	}
	size := 1
	for _, dim := range shape {
		size *= dim
	}

	d, err := f.f.OpenDataset(dataset)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", dataset, err)
	}
	defer d.Close()

	data := make([]float64, size)
	if size == 0 {
		return data, nil
	}
	if err := d.Read(&data); err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", dataset, err)
	}
	return data, nil
}

func (f *file) StringAttribute(object, name string) (string, error) {
	var value string
	err := f.readAttribute(object, name, &value, hdf5.T_GO_STRING)
	return value, err
}

func (f *file) FloatAttribute(object, name string) (float64, error) {
	var value float64
	err := f.readAttribute(object, name, &value, hdf5.T_NATIVE_DOUBLE)
	return value, err
}

func (f *file) readAttribute(object, name string, value interface{}, dtype *hdf5.Datatype) error {
	var (
		attr *hdf5.Attribute
		err  error
	)
	if g, gerr := f.f.OpenGroup(object); gerr == nil {
		defer g.Close()
		attr, err = g.OpenAttribute(name)
	} else if d, derr := f.f.OpenDataset(object); derr == nil {
		defer d.Close()
		attr, err = d.OpenAttribute(name)
	} else {
		return fmt.Errorf("no group or dataset %s", object)
	}
	if err != nil {
		return fmt.Errorf("opening attribute %s of %s: %w", name, object, err)
	}
	defer attr.Close()

	if err := attr.Read(value, dtype); err != nil {
		return fmt.Errorf("reading attribute %s of %s: %w", name, object, err)
	}
	return nil
}
