package gltfscene

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/host"
	"github.com/Faultbox/sdfexport/internal/logger"
	"github.com/Faultbox/sdfexport/pkg/math"
	"github.com/Faultbox/sdfexport/pkg/meshio"
)

// Object is one glTF node.
type Object struct {
	scene  *Scene
	index  int
	name   string
	kind   host.Kind
	parent math.Mat4

	location [3]float64
	orient   host.Orientation
	scale    [3]float64

	// geom is the working copy edited by the editor; nil for non-mesh nodes.
	geom      *meshio.Mesh
	materials []*Material
}

func newObject(s *Scene, idx int, parent math.Mat4) (*Object, error) {
	n := s.doc.Nodes[idx]
	t, r, sc := nodeTRS(n)
	o := &Object{
		scene:    s,
		index:    idx,
		name:     nodeName(s.doc, idx),
		kind:     host.KindEmpty,
		parent:   parent,
		location: t,
		orient:   host.Orientation(r),
		scale:    sc,
	}

	switch {
	case n.Mesh != nil:
		o.kind = host.KindMesh
		geom, mats, err := readMesh(s, *n.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", o.name, err)
		}
		o.geom = geom
		o.materials = mats
	case n.Camera != nil:
		o.kind = host.KindCamera
	case hasLight(n):
		o.kind = host.KindLight
	}
	return o, nil
}

func nodeName(doc *gltf.Document, idx int) string {
	n := doc.Nodes[idx]
	if n.Name != "" {
		return n.Name
	}
	if n.Mesh != nil && *n.Mesh < len(doc.Meshes) && doc.Meshes[*n.Mesh].Name != "" {
		return doc.Meshes[*n.Mesh].Name
	}
	return fmt.Sprintf("node_%d", idx)
}

func hasLight(n *gltf.Node) bool {
	_, ok := n.Extensions["KHR_lights_punctual"]
	return ok
}

// readMesh merges the triangle primitives of a glTF mesh into one indexed
// mesh with a group per primitive.
func readMesh(s *Scene, meshIdx int) (*meshio.Mesh, []*Material, error) {
	doc := s.doc
	if meshIdx >= len(doc.Meshes) {
		return nil, nil, fmt.Errorf("mesh %d out of range", meshIdx)
	}
	gm := doc.Meshes[meshIdx]
	m := &meshio.Mesh{Name: gm.Name}
	var mats []*Material
	seen := make(map[int]bool)
	anyUV := false

	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			logger.Debug("skipping non-triangle primitive",
				zap.String("mesh", gm.Name), zap.Int("primitive", pi))
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		pos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("primitive %d positions: %w", pi, err)
		}

		var uvs [][2]float32
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("primitive %d uvs: %w", pi, err)
			}
			anyUV = true
		}
		if len(uvs) != len(pos) {
			uvs = make([][2]float32, len(pos))
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("primitive %d indices: %w", pi, err)
			}
		} else {
			indices = make([]uint32, len(pos))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		base := uint32(len(m.Positions))
		m.Positions = append(m.Positions, pos...)
		m.UVs = append(m.UVs, uvs...)
		g := meshio.Group{Indices: make([]uint32, 0, len(indices)-len(indices)%3)}
		for _, idx := range indices[:len(indices)-len(indices)%3] {
			g.Indices = append(g.Indices, base+idx)
		}
		if prim.Material != nil && *prim.Material < len(s.materials) {
			mat := s.materials[*prim.Material]
			g.Material = mat.objName
			if !seen[*prim.Material] {
				seen[*prim.Material] = true
				mats = append(mats, mat)
			}
		}
		m.Groups = append(m.Groups, g)
	}
	if !anyUV {
		m.UVs = nil
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}
	return m, mats, nil
}

func (o *Object) Name() string                      { return o.name }
func (o *Object) Kind() host.Kind                   { return o.kind }
func (o *Object) Orientation() host.Orientation     { return o.orient }
func (o *Object) SetOrientation(q host.Orientation) { o.orient = q }

// Location is the node origin after all ancestor transforms.
func (o *Object) Location() [3]float64 {
	p := o.parent.TransformPoint([3]float32{float32(o.location[0]), float32(o.location[1]), float32(o.location[2])})
	return [3]float64{float64(p[0]), float64(p[1]), float64(p[2])}
}

// FaceCount implements host.Object.
func (o *Object) FaceCount() int {
	if o.geom == nil {
		return 0
	}
	return o.geom.TriangleCount()
}

// Materials implements host.Object.
func (o *Object) Materials() []host.Material {
	out := make([]host.Material, len(o.materials))
	for i, m := range o.materials {
		out[i] = m
	}
	return out
}

// worldMesh returns a copy of the working geometry with the world transform
// applied. localOrigin drops the world translation so that the mesh sits
// around Location.
func (o *Object) worldMesh(localOrigin bool) *meshio.Mesh {
	w := o.parent.Mul(compose(o.location, o.orient, o.scale))
	if localOrigin {
		w[12], w[13], w[14] = 0, 0, 0
	}
	m := cloneMesh(o.geom)
	m.Name = o.name
	m.Transform(w)
	return m
}

func cloneMesh(src *meshio.Mesh) *meshio.Mesh {
	m := &meshio.Mesh{
		Name:      src.Name,
		Positions: append([][3]float32(nil), src.Positions...),
	}
	if src.UVs != nil {
		m.UVs = append([][2]float32(nil), src.UVs...)
	}
	for _, g := range src.Groups {
		m.Groups = append(m.Groups, meshio.Group{
			Material: g.Material,
			Indices:  append([]uint32(nil), g.Indices...),
		})
	}
	return m
}
