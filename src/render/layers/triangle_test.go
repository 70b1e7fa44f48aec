package layers

import (
	"encoding/binary"
	"io/fs"
	"testing"
	"testing/fstest"

	"sandbox/src/render"
	"sandbox/src/render/shader"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func spirv(words ...uint32) []byte {
	data := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[i*4:], w)
	}
	return data
}

// Shader problems surface before any device call, so these run without a GPU.
func TestNewTriangleShaderErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		fsys fstest.MapFS
		want error
	}{
		{"missing vertex", fstest.MapFS{}, fs.ErrNotExist},
		{"missing fragment", fstest.MapFS{
			TriangleVertexShader: {Data: spirv(shader.Magic, 1)},
		}, fs.ErrNotExist},
		{"misaligned fragment", fstest.MapFS{
			TriangleVertexShader:   {Data: spirv(shader.Magic, 1)},
			TriangleFragmentShader: {Data: []byte{3, 2, 0x23, 7, 0}},
		}, shader.ErrAlignment},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tri, err := NewTriangle(render.Context{}, tc.fsys)
			require.Nil(t, tri)
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestTriangleCloseIsIdempotent(t *testing.T) {
	var tri Triangle
	require.NotPanics(t, tri.Close)
	require.NotPanics(t, tri.Close)
}
