package index

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Binary layout: magic, version, dimension (uint32), vector count (uint64),
// then ntotal*dim little-endian float32 values.
var magic = [4]byte{'R', 'D', 'I', 'X'}

const formatVersion uint32 = 1

// Header bounds for Import. The header is untrusted input, so the payload
// size it implies is capped before anything is allocated.
const (
	maxImportDim    = 1 << 20
	maxImportFloats = 1 << 28
)

// Export writes the index in its binary artifact form. The encoding keeps
// row positions intact, so a reimported index answers Reconstruct and Search
// identically.
func (f *Flat) Export(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("index: writing header: %w", err)
	}
	for _, v := range []uint32{formatVersion, uint32(f.dim)} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("index: writing header: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(f.ntotal)); err != nil {
		return fmt.Errorf("index: writing header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, f.data); err != nil {
		return fmt.Errorf("index: writing vectors: %w", err)
	}
	return nil
}

// Import reads an index previously written by Export.
func Import(r io.Reader) (*Flat, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("index: reading header: %w", err)
	}
	if header != magic {
		return nil, fmt.Errorf("index: bad magic %q", header)
	}
	var version, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("index: reading header: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("index: unsupported format version %d", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("index: reading header: %w", err)
	}
	var ntotal uint64
	if err := binary.Read(r, binary.LittleEndian, &ntotal); err != nil {
		return nil, fmt.Errorf("index: reading header: %w", err)
	}

	if dim > maxImportDim || (dim == 0 && ntotal > 0) {
		return nil, fmt.Errorf("index: implausible dimension %d", dim)
	}
	if ntotal > maxImportFloats || uint64(dim)*ntotal > maxImportFloats {
		return nil, fmt.Errorf("index: implausible size: %d vectors of dimension %d", ntotal, dim)
	}

	f := &Flat{dim: int(dim), ntotal: int(ntotal)}
	f.data = make([]float32, int(dim)*int(ntotal))
	if err := binary.Read(r, binary.LittleEndian, f.data); err != nil {
		return nil, fmt.Errorf("index: reading vectors: %w", err)
	}
	return f, nil
}
