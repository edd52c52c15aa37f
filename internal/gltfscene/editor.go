package gltfscene

import (
	"fmt"

	"github.com/Faultbox/sdfexport/internal/host"
	"github.com/Faultbox/sdfexport/pkg/meshio"
)

type editor struct {
	scene *Scene
	mode  host.Mode
}

func (e *editor) Mode() host.Mode { return e.mode }

func (e *editor) SetMode(m host.Mode) error {
	if err := host.CheckTransition(e.mode, m); err != nil {
		return err
	}
	e.mode = m
	return nil
}

func (e *editor) target(obj host.Object) (*Object, error) {
	if e.mode != host.ModeEditGeometry {
		return nil, fmt.Errorf("geometry edit in %s mode", e.mode)
	}
	o, err := e.scene.own(obj)
	if err != nil {
		return nil, err
	}
	if o.geom == nil {
		return nil, fmt.Errorf("object %q has no mesh", o.name)
	}
	return o, nil
}

// Triangulate is a validation pass: glTF triangle primitives are already
// triangulated and other modes are dropped on load.
func (e *editor) Triangulate(obj host.Object) error {
	o, err := e.target(obj)
	if err != nil {
		return err
	}
	return o.geom.Validate()
}

// DeleteLoose drops vertices no triangle references and renumbers indices.
func (e *editor) DeleteLoose(obj host.Object) error {
	o, err := e.target(obj)
	if err != nil {
		return err
	}
	compact(o.geom)
	return nil
}

func (e *editor) FillHoles(host.Object) error {
	return host.ErrUnsupported
}

// Snapshot copies the working geometry.
func (e *editor) Snapshot(obj host.Object) (func(), error) {
	o, err := e.scene.own(obj)
	if err != nil {
		return nil, err
	}
	if o.geom == nil {
		return func() {}, nil
	}
	saved := cloneMesh(o.geom)
	return func() { o.geom = saved }, nil
}

func compact(m *meshio.Mesh) {
	remap := make([]int64, len(m.Positions))
	for i := range remap {
		remap[i] = -1
	}
	var positions [][3]float32
	var uvs [][2]float32
	for gi := range m.Groups {
		idx := m.Groups[gi].Indices
		for i, v := range idx {
			if remap[v] < 0 {
				remap[v] = int64(len(positions))
				positions = append(positions, m.Positions[v])
				if m.UVs != nil {
					uvs = append(uvs, m.UVs[v])
				}
			}
			idx[i] = uint32(remap[v])
		}
	}
	m.Positions = positions
	if m.UVs != nil {
		m.UVs = uvs
	}
}
