package gltfscene

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/sdfexport/internal/host"
	"github.com/Faultbox/sdfexport/pkg/meshio"
	"github.com/Faultbox/sdfexport/pkg/sdf"
)

// Material is a glTF material. Its texture slots are the image nodes.
type Material struct {
	name    string
	objName string
	diffuse [3]float64
	nodes   []*ImageNode
}

func newMaterial(s *Scene, idx int, m *gltf.Material) *Material {
	name := m.Name
	if name == "" {
		name = fmt.Sprintf("material_%d", idx)
	}
	mat := &Material{name: name, objName: sdf.SanitizeName(name), diffuse: [3]float64{1, 1, 1}}

	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			mat.diffuse = [3]float64{f[0], f[1], f[2]}
		}
		if ti := pbr.BaseColorTexture; ti != nil {
			mat.addTexture(s, ti.Index)
		}
	}
	if ti := m.EmissiveTexture; ti != nil {
		mat.addTexture(s, ti.Index)
	}
	return mat
}

func (m *Material) addTexture(s *Scene, texIdx int) {
	if texIdx < 0 || texIdx >= len(s.doc.Textures) {
		return
	}
	src := s.doc.Textures[texIdx].Source
	if src == nil || *src >= len(s.images) {
		return
	}
	img := s.images[*src]
	m.nodes = append(m.nodes, &ImageNode{image: img, path: img.defaultPath()})
}

func (m *Material) Name() string { return m.name }

// ImageNodes implements host.Material.
func (m *Material) ImageNodes() []host.ImageNode {
	out := make([]host.ImageNode, len(m.nodes))
	for i, n := range m.nodes {
		out[i] = n
	}
	return out
}

// mtl describes the material for an MTL library, sampling the first texture
// slot through its current path.
func (m *Material) mtl() meshio.Material {
	out := meshio.Material{Name: m.objName, Diffuse: m.diffuse}
	if len(m.nodes) > 0 {
		out.DiffuseMap = m.nodes[0].path
	}
	return out
}

// ImageNode is one texture slot of a material.
type ImageNode struct {
	image *Image
	path  string
}

// Image implements host.ImageNode.
func (n *ImageNode) Image() host.Image { return n.image }

func (n *ImageNode) Path() string     { return n.path }
func (n *ImageNode) SetPath(p string) { n.path = p }
