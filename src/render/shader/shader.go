// Package shader loads SPIR-V binaries.
package shader

import (
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Magic is the first word of every SPIR-V module.
const Magic uint32 = 0x07230203

var (
	ErrEmpty     = errors.New("spir-v file is empty")
	ErrAlignment = errors.New("spir-v file size is not a multiple of 4")
	ErrMagic     = errors.New("spir-v magic number mismatch")
)

// Load reads the SPIR-V module at path into words.
func Load(path string) ([]uint32, error) {
	return LoadFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// LoadFS reads the SPIR-V module name from fsys.
func LoadFS(fsys fs.FS, name string) ([]uint32, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "open spir-v file %s", name)
	}
	words, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s (%d bytes)", name, len(data))
	}
	return words, nil
}

// Decode converts a little-endian SPIR-V binary to words.
func Decode(data []byte) ([]uint32, error) {
	switch {
	case len(data) == 0:
		return nil, errors.WithStack(ErrEmpty)
	case len(data)%4 != 0:
		return nil, errors.WithStack(ErrAlignment)
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != Magic {
		return nil, errors.WithStack(ErrMagic)
	}
	return words, nil
}
