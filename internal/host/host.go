// Package host defines the capabilities the exporter borrows from a 3D
// content-creation application. The application owns the scene; the exporter
// only reads it, applies scoped transient edits, and asks the host to write
// mesh and image files.
package host

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupported is returned by hosts for optional operations they cannot
// perform. Callers treat it as a no-op.
var ErrUnsupported = errors.New("operation not supported by host")

// Kind is the type tag of a scene object.
type Kind int

const (
	KindOther Kind = iota
	KindMesh
	KindEmpty
	KindLight
	KindCamera
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindEmpty:
		return "empty"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	default:
		return "other"
	}
}

// MeshFormat selects the mesh exporter for a whole batch.
type MeshFormat int

const (
	// FormatSTL is binary STL: triangulated surface only, no materials.
	FormatSTL MeshFormat = iota
	// FormatOBJ is Wavefront OBJ with an .mtl companion carrying materials.
	FormatOBJ
)

// ParseMeshFormat maps a config value to a MeshFormat.
func ParseMeshFormat(s string) (MeshFormat, error) {
	switch s {
	case "stl":
		return FormatSTL, nil
	case "obj":
		return FormatOBJ, nil
	default:
		return 0, fmt.Errorf("unknown mesh format %q", s)
	}
}

// Ext returns the file extension without the dot.
func (f MeshFormat) Ext() string {
	if f == FormatOBJ {
		return "obj"
	}
	return "stl"
}

// CarriesMaterials reports whether the format references materials and
// textures.
func (f MeshFormat) CarriesMaterials() bool {
	return f == FormatOBJ
}

// String implements fmt.Stringer.
func (f MeshFormat) String() string {
	return f.Ext()
}

// ImageFormat selects the encoder used when re-saving packed images.
type ImageFormat int

const (
	ImagePNG ImageFormat = iota
	ImageJPEG
)

// Ext returns the canonical file extension without the dot.
func (f ImageFormat) Ext() string {
	if f == ImageJPEG {
		return "jpg"
	}
	return "png"
}

// Orientation is a rotation quaternion stored as [x, y, z, w]. It is a
// comparable value so callers can verify that a restore was exact.
type Orientation [4]float64

// IdentityOrientation is no rotation.
var IdentityOrientation = Orientation{0, 0, 0, 1}

// AxisAngle returns the rotation of angle radians about a unit axis.
func AxisAngle(axis [3]float64, angle float64) Orientation {
	s := math.Sin(angle / 2)
	return Orientation{axis[0] * s, axis[1] * s, axis[2] * s, math.Cos(angle / 2)}
}

// Scene is the host-owned document for one batch.
type Scene interface {
	// Objects returns every object in iteration order.
	Objects() []Object
	// Select makes obj the only selected and active object.
	Select(obj Object) error
	// Editor exposes mode transitions and geometry operators.
	Editor() Editor
	// ExportMesh writes the selection (or everything when selectedOnly is
	// false) to path in the given format.
	ExportMesh(format MeshFormat, path string, opts ExportOptions) error
	// SaveImage re-encodes img into path.
	SaveImage(img Image, format ImageFormat, path string) error
}

// ExportOptions tune a mesh export call.
type ExportOptions struct {
	SelectedOnly bool
	// LocalOrigin leaves the object location out of the baked transform,
	// for callers that place the model with a world pose instead.
	LocalOrigin bool
}

// Object is one entity in the scene graph.
type Object interface {
	Name() string
	Kind() Kind
	// FaceCount is the number of polygonal faces, 0 for non-mesh objects.
	FaceCount() int
	Orientation() Orientation
	SetOrientation(Orientation)
	// Location is the object origin in world space, scene units.
	Location() [3]float64
	// Materials returns the material slots; entries may be nil for empty slots.
	Materials() []Material
}

// Material is a shader graph attached to an object slot.
type Material interface {
	Name() string
	// ImageNodes returns the image-sampling nodes of the shader graph.
	ImageNodes() []ImageNode
}

// ImageNode samples one image inside a material.
type ImageNode interface {
	Image() Image
	// Path is the file reference the node currently uses.
	Path() string
	// SetPath re-points the node. The change lives only in the host's
	// in-memory document.
	SetPath(path string)
}

// Image is pixel data either embedded in the host document or backed by an
// external file.
type Image interface {
	// Key identifies the image within the scene; equal keys mean the same
	// pixels.
	Key() string
	// Name is the declared image name, including its extension when known.
	Name() string
	// HasPixels reports whether pixel data is loaded or embedded.
	HasPixels() bool
	// Packed reports whether the pixels are embedded in the host document.
	Packed() bool
	// FilePath is the resolved absolute path of the backing file, or "".
	FilePath() string
}
