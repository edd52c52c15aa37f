package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/sdfexport/internal/host"
)

type fakeImage struct {
	key    string
	name   string
	file   string
	pixels bool
	packed bool
}

func (i *fakeImage) Key() string      { return i.key }
func (i *fakeImage) Name() string     { return i.name }
func (i *fakeImage) HasPixels() bool  { return i.pixels }
func (i *fakeImage) Packed() bool     { return i.packed }
func (i *fakeImage) FilePath() string { return i.file }

type fakeNode struct {
	img  *fakeImage
	path string
}

func (n *fakeNode) Image() host.Image {
	if n.img == nil {
		return nil
	}
	return n.img
}
func (n *fakeNode) Path() string     { return n.path }
func (n *fakeNode) SetPath(p string) { n.path = p }

type fakeMaterial struct {
	name  string
	nodes []*fakeNode
}

func (m *fakeMaterial) Name() string { return m.name }
func (m *fakeMaterial) ImageNodes() []host.ImageNode {
	out := make([]host.ImageNode, len(m.nodes))
	for i, n := range m.nodes {
		out[i] = n
	}
	return out
}

type fakeObject struct {
	name   string
	kind   host.Kind
	faces  int
	orient host.Orientation
	loc    [3]float64
	mats   []*fakeMaterial

	exportErr   error
	skipWrite   bool
	panicExport bool

	orientAtExport host.Orientation
	modeAtExport   host.Mode
}

func mesh(name string, faces int) *fakeObject {
	return &fakeObject{
		name:   name,
		kind:   host.KindMesh,
		faces:  faces,
		orient: host.Orientation{0.1, 0.2, 0.3, 0.9},
	}
}

func (o *fakeObject) Name() string                      { return o.name }
func (o *fakeObject) Kind() host.Kind                   { return o.kind }
func (o *fakeObject) FaceCount() int                    { return o.faces }
func (o *fakeObject) Orientation() host.Orientation     { return o.orient }
func (o *fakeObject) SetOrientation(q host.Orientation) { o.orient = q }
func (o *fakeObject) Location() [3]float64              { return o.loc }
func (o *fakeObject) Materials() []host.Material {
	out := make([]host.Material, len(o.mats))
	for i, m := range o.mats {
		out[i] = m
	}
	return out
}

type fakeEditor struct {
	mode     host.Mode
	ops      []string
	restored []string
}

func (e *fakeEditor) Mode() host.Mode { return e.mode }

func (e *fakeEditor) SetMode(m host.Mode) error {
	if err := host.CheckTransition(e.mode, m); err != nil {
		return err
	}
	e.mode = m
	return nil
}

func (e *fakeEditor) op(name string, obj host.Object) error {
	if e.mode != host.ModeEditGeometry {
		return fmt.Errorf("%s outside edit mode", name)
	}
	e.ops = append(e.ops, name+":"+obj.Name())
	return nil
}

func (e *fakeEditor) Triangulate(obj host.Object) error { return e.op("triangulate", obj) }
func (e *fakeEditor) DeleteLoose(obj host.Object) error { return e.op("delete_loose", obj) }
func (e *fakeEditor) FillHoles(obj host.Object) error   { return host.ErrUnsupported }

func (e *fakeEditor) Snapshot(obj host.Object) (func(), error) {
	return func() { e.restored = append(e.restored, obj.Name()) }, nil
}

type savedImage struct {
	name   string
	format host.ImageFormat
	path   string
}

type fakeScene struct {
	objs     []*fakeObject
	ed       *fakeEditor
	selected *fakeObject
	saved    []savedImage
	saveErr  error
}

func newScene(objs ...*fakeObject) *fakeScene {
	return &fakeScene{objs: objs, ed: &fakeEditor{}}
}

func (s *fakeScene) Objects() []host.Object {
	out := make([]host.Object, len(s.objs))
	for i, o := range s.objs {
		out[i] = o
	}
	return out
}

func (s *fakeScene) Select(obj host.Object) error {
	o, ok := obj.(*fakeObject)
	if !ok {
		return errors.New("foreign object")
	}
	s.selected = o
	return nil
}

func (s *fakeScene) Editor() host.Editor { return s.ed }

// ExportMesh writes a small deterministic file. OBJ exports also write an
// .mtl that carries directives the cleanup must strip.
func (s *fakeScene) ExportMesh(format host.MeshFormat, path string, opts host.ExportOptions) error {
	o := s.selected
	o.orientAtExport = o.orient
	o.modeAtExport = s.ed.mode
	if o.panicExport {
		panic("exporter crashed")
	}
	if o.exportErr != nil {
		return o.exportErr
	}
	if o.skipWrite {
		return nil
	}
	if format == host.FormatSTL {
		return os.WriteFile(path, []byte("solid "+o.name+"\n"), 0644)
	}
	base := strings.TrimSuffix(filepath.Base(path), ".obj")
	if err := os.WriteFile(path, []byte("mtllib "+base+".mtl\nv 0 0 0\n"), 0644); err != nil {
		return err
	}
	var mtl strings.Builder
	mtl.WriteString("# exported\n")
	for _, m := range o.mats {
		fmt.Fprintf(&mtl, "newmtl %s\nNs 250\nKd 0.8 0.8 0.8\n", m.name)
		for _, n := range m.nodes {
			fmt.Fprintf(&mtl, "map_Kd %s\n", n.path)
		}
		mtl.WriteString("illum 2\n\n")
	}
	return os.WriteFile(filepath.Join(filepath.Dir(path), base+".mtl"), []byte(mtl.String()), 0644)
}

func (s *fakeScene) SaveImage(img host.Image, format host.ImageFormat, path string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, savedImage{name: img.Name(), format: format, path: path})
	return os.WriteFile(path, []byte("packed:"+img.Name()), 0644)
}
