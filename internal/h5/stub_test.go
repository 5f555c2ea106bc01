//go:build !hdf5

package h5_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sxs-collaboration/spectre-cli/internal/h5"
)

func TestOpenWithoutHDF5(t *testing.T) {
	assert.False(t, h5.Available())

	f, err := h5.Open("Reductions.h5")
	assert.Nil(t, f)
	assert.ErrorIs(t, err, h5.ErrUnavailable)
}
