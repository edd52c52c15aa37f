// Package meshio writes triangle meshes as binary STL or Wavefront OBJ with an
// MTL material library.
package meshio

import (
	"fmt"

	"github.com/Faultbox/sdfexport/pkg/math"
)

// Mesh is an indexed triangle mesh. UVs, when present, are parallel to
// Positions.
type Mesh struct {
	Name      string
	Positions [][3]float32
	UVs       [][2]float32
	Groups    []Group
}

// Group is a run of triangles sharing one material.
type Group struct {
	Material string
	Indices  []uint32
}

// TriangleCount returns the number of triangles across groups.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, g := range m.Groups {
		n += len(g.Indices) / 3
	}
	return n
}

// Validate checks that every index is in range and groups hold whole
// triangles.
func (m *Mesh) Validate() error {
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("mesh %q: %d uvs for %d positions", m.Name, len(m.UVs), len(m.Positions))
	}
	for gi, g := range m.Groups {
		if len(g.Indices)%3 != 0 {
			return fmt.Errorf("mesh %q: group %d has %d indices", m.Name, gi, len(g.Indices))
		}
		for _, idx := range g.Indices {
			if int(idx) >= len(m.Positions) {
				return fmt.Errorf("mesh %q: index %d out of range", m.Name, idx)
			}
		}
	}
	return nil
}

// Transform applies mat to every position in place.
func (m *Mesh) Transform(mat math.Mat4) {
	for i, p := range m.Positions {
		m.Positions[i] = mat.TransformPoint(p)
	}
}

// triangles calls fn for every triangle in group order.
func (m *Mesh) triangles(fn func(a, b, c uint32)) {
	for _, g := range m.Groups {
		for i := 0; i+2 < len(g.Indices); i += 3 {
			fn(g.Indices[i], g.Indices[i+1], g.Indices[i+2])
		}
	}
}
