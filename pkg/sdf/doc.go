// Package sdf builds the files a Gazebo model package consists of: the
// aggregate .world descriptor, per-model model.sdf and model.config, the OGRE
// material script, and a cleaned Wavefront .mtl companion.
//
// Documents are Go structs encoded with encoding/xml, so object names that
// contain XML-reserved characters are always escaped.
package sdf

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultVersion is the SDF schema version written when none is given.
const DefaultVersion = "1.6"

// Encode writes v as an indented XML document with a declaration.
func Encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteFile encodes v into path, replacing any previous file.
// The document is written to a temporary sibling first so that a failed
// write never leaves a truncated descriptor behind.
func WriteFile(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, v); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ModelURI returns model://<name>.
func ModelURI(name string) string {
	return "model://" + name
}

// ResourceURI returns model://<name>/<rel> using forward slashes.
func ResourceURI(name, rel string) string {
	return ModelURI(name) + "/" + filepath.ToSlash(rel)
}

// floats renders space-separated numbers, the SDF vector notation.
func floats(vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// Pose is x y z roll pitch yaw.
type Pose [6]float64

// MarshalText implements encoding.TextMarshaler.
func (p Pose) MarshalText() ([]byte, error) {
	return []byte(floats(p[:]...)), nil
}

// Vector3 is an SDF vector3.
type Vector3 [3]float64

// MarshalText implements encoding.TextMarshaler.
func (v Vector3) MarshalText() ([]byte, error) {
	return []byte(floats(v[:]...)), nil
}

// Color is an SDF RGBA color.
type Color [4]float64

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(floats(c[:]...)), nil
}
