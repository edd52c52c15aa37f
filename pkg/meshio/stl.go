package meshio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	gomath "math"
	"strings"

	"github.com/Faultbox/sdfexport/pkg/math"
)

const stlHeaderSize = 80

// WriteSTL writes m as binary STL. Facet normals are computed from the
// winding order.
func WriteSTL(w io.Writer, m *Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	var header [stlHeaderSize]byte
	copy(header[:], "sdfexport "+m.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return err
	}

	var buf [50]byte
	var werr error
	put := func(off int, v [3]float32) {
		for c := 0; c < 3; c++ {
			binary.LittleEndian.PutUint32(buf[off+4*c:], gomath.Float32bits(v[c]))
		}
	}
	m.triangles(func(a, b, c uint32) {
		if werr != nil {
			return
		}
		pa, pb, pc := m.Positions[a], m.Positions[b], m.Positions[c]
		put(0, math.TriangleNormal(pa, pb, pc))
		put(12, pa)
		put(24, pb)
		put(36, pc)
		buf[48], buf[49] = 0, 0
		_, werr = bw.Write(buf[:])
	})
	if werr != nil {
		return werr
	}
	return bw.Flush()
}

// ReadSTL reads a binary STL file. Vertices shared between facets are
// merged.
func ReadSTL(r io.Reader) (*Mesh, error) {
	var header struct {
		H    [stlHeaderSize]byte
		NTri uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("stl header: %w", err)
	}
	m := &Mesh{Name: strings.TrimRight(string(header.H[:]), "\x00 ")}
	g := Group{Indices: make([]uint32, 0, 3*header.NTri)}
	index := make(map[[3]float32]uint32)

	var buf [50]byte
	for i := uint32(0); i < header.NTri; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("stl facet %d: %w", i, err)
		}
		for v := 0; v < 3; v++ {
			var p [3]float32
			for c := 0; c < 3; c++ {
				p[c] = gomath.Float32frombits(binary.LittleEndian.Uint32(buf[12+12*v+4*c:]))
			}
			idx, ok := index[p]
			if !ok {
				idx = uint32(len(m.Positions))
				m.Positions = append(m.Positions, p)
				index[p] = idx
			}
			g.Indices = append(g.Indices, idx)
		}
	}
	m.Groups = []Group{g}
	return m, nil
}
