package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnv_Path(t *testing.T) {
	env := &Env{WorkDir: "/runs/bbh"}

	tests := []struct {
		path string
		want string
	}{
		{path: "", want: ""},
		{path: "/data/Reductions.h5", want: "/data/Reductions.h5"},
		{path: "Reductions.h5", want: "/runs/bbh/Reductions.h5"},
		{path: "../ns/Input.yaml", want: "/runs/ns/Input.yaml"},
		{path: "./Segment_0000/", want: "/runs/bbh/Segment_0000"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, env.Path(tt.path))
		})
	}
}
