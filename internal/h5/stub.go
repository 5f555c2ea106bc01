//go:build !hdf5

package h5

const available = false

func open(string) (File, error) {
	return nil, ErrUnavailable
}
