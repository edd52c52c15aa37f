// Package gltfscene hosts the exporter on glTF 2.0 documents. Nodes become
// scene objects, glTF materials expose their texture slots as image nodes and
// the editor works on an in-memory copy of each node's triangles, so the
// source file is never modified.
package gltfscene

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/host"
	"github.com/Faultbox/sdfexport/internal/logger"
	"github.com/Faultbox/sdfexport/pkg/math"
)

// Scene is a host.Scene backed by a glTF document.
type Scene struct {
	doc *gltf.Document
	dir string

	objects   []*Object
	materials []*Material
	images    []*Image
	editor    *editor
	selected  []*Object
}

// Open loads a .gltf or .glb file.
func Open(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return New(doc, filepath.Dir(path))
}

// New wraps an already decoded document. dir resolves relative image URIs.
func New(doc *gltf.Document, dir string) (*Scene, error) {
	s := &Scene{doc: doc, dir: dir}
	s.editor = &editor{scene: s}

	for i, img := range doc.Images {
		s.images = append(s.images, newImage(s, i, img))
	}
	for i, mat := range doc.Materials {
		s.materials = append(s.materials, newMaterial(s, i, mat))
	}

	var err error
	walkNodes(doc, func(idx int, parent math.Mat4) bool {
		if err != nil {
			return false
		}
		var obj *Object
		obj, err = newObject(s, idx, parent)
		if err == nil {
			s.objects = append(s.objects, obj)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("glTF scene loaded",
		zap.Int("objects", len(s.objects)),
		zap.Int("materials", len(s.materials)),
		zap.Int("images", len(s.images)))
	return s, nil
}

// walkNodes visits the nodes of the default scene depth first, or every root
// node when the document declares no scene. fn receives the world transform
// of the node's parent and returns false to stop descending.
func walkNodes(doc *gltf.Document, fn func(idx int, parent math.Mat4) bool) {
	visited := make(map[int]bool)
	var visit func(idx int, parent math.Mat4)
	visit = func(idx int, parent math.Mat4) {
		if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
			return
		}
		visited[idx] = true
		if !fn(idx, parent) {
			return
		}
		world := parent.Mul(localMatrix(doc.Nodes[idx]))
		for _, child := range doc.Nodes[idx].Children {
			visit(child, world)
		}
	}
	for _, root := range rootNodes(doc) {
		visit(root, math.Identity())
	}
}

func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		sc := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			sc = *doc.Scene
		}
		return doc.Scenes[sc].Nodes
	}
	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// Document returns the underlying glTF document.
func (s *Scene) Document() *gltf.Document { return s.doc }

// Objects implements host.Scene.
func (s *Scene) Objects() []host.Object {
	out := make([]host.Object, len(s.objects))
	for i, o := range s.objects {
		out[i] = o
	}
	return out
}

// Select implements host.Scene.
func (s *Scene) Select(obj host.Object) error {
	o, err := s.own(obj)
	if err != nil {
		return err
	}
	s.selected = []*Object{o}
	return nil
}

// Editor implements host.Scene.
func (s *Scene) Editor() host.Editor { return s.editor }

var errForeignObject = errors.New("object does not belong to this scene")

func (s *Scene) own(obj host.Object) (*Object, error) {
	o, ok := obj.(*Object)
	if !ok || o.scene != s {
		return nil, errForeignObject
	}
	return o, nil
}
