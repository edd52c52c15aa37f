package exporter

import (
	"errors"
	"fmt"
)

// Stage names the step of the per-object pipeline where a failure happened.
type Stage string

const (
	StageValidate   Stage = "validate"
	StageName       Stage = "name"
	StageNormalize  Stage = "normalize"
	StageMesh       Stage = "mesh"
	StageTexture    Stage = "texture"
	StageMTL        Stage = "mtl"
	StageScript     Stage = "material_script"
	StageDescriptor Stage = "descriptor"
)

var (
	// ErrNoFaces marks a mesh object without polygonal faces.
	ErrNoFaces = errors.New("object has no faces")
	// ErrMeshMissing is reported when the host returned without writing the mesh file.
	ErrMeshMissing = errors.New("mesh file missing after export")
	// ErrNoImageData marks an image with neither pixels nor a readable file.
	ErrNoImageData = errors.New("image has no pixel data and no accessible file")
)

// ObjectError excludes one object from the batch.
type ObjectError struct {
	Object string
	Stage  Stage
	Err    error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("object %q: %s: %v", e.Object, e.Stage, e.Err)
}

func (e *ObjectError) Unwrap() error { return e.Err }

// AssetError drops one sub-artifact of an object that is otherwise exported.
type AssetError struct {
	Object string
	Asset  string
	Stage  Stage
	Err    error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("object %q: %s %q: %v", e.Object, e.Stage, e.Asset, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// FatalError aborts the batch. It is returned from Run.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
