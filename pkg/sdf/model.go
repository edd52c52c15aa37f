package sdf

import "encoding/xml"

// ModelFile is the root of a model.sdf document.
type ModelFile struct {
	XMLName xml.Name `xml:"sdf"`
	Version string   `xml:"version,attr"`
	Model   Model    `xml:"model"`
}

// Model is a single static body.
type Model struct {
	Name   string `xml:"name,attr"`
	Static bool   `xml:"static"`
	Link   Link   `xml:"link"`
}

// Link holds one visual and one collision shape.
type Link struct {
	Name      string    `xml:"name,attr"`
	Visual    Visual    `xml:"visual"`
	Collision Collision `xml:"collision"`
}

// Visual is the rendered shape.
type Visual struct {
	Name     string    `xml:"name,attr"`
	Material *Material `xml:"material,omitempty"`
	Geometry Geometry  `xml:"geometry"`
}

// Collision is the physics shape.
type Collision struct {
	Name     string   `xml:"name,attr"`
	Geometry Geometry `xml:"geometry"`
}

// Geometry wraps a mesh reference.
type Geometry struct {
	Mesh Mesh `xml:"mesh"`
}

// Mesh points at a mesh file.
type Mesh struct {
	URI string `xml:"uri"`
}

// Material references an OGRE material script.
type Material struct {
	Script Script `xml:"script"`
}

// Script names the material and where Gazebo looks for scripts and textures.
type Script struct {
	URIs []string `xml:"uri"`
	Name string   `xml:"name"`
}

// MaterialName is the script material name used for a model.
func MaterialName(model string) string {
	return model + "_material"
}

// NewMaterial builds the script reference for a model whose scripts and
// textures live under the given model-relative directories.
func NewMaterial(model, scriptsDir, texturesDir string) *Material {
	return &Material{Script: Script{
		URIs: []string{ResourceURI(model, scriptsDir), ResourceURI(model, texturesDir)},
		Name: MaterialName(model),
	}}
}

// NewModel builds a static model whose visual and collision shapes share
// meshURI. material may be nil.
func NewModel(name, version, meshURI string, material *Material) ModelFile {
	if version == "" {
		version = DefaultVersion
	}
	geom := Geometry{Mesh: Mesh{URI: meshURI}}
	return ModelFile{
		Version: version,
		Model: Model{
			Name:   name,
			Static: true,
			Link: Link{
				Name:      "link",
				Visual:    Visual{Name: "visual", Material: material, Geometry: geom},
				Collision: Collision{Name: "collision", Geometry: geom},
			},
		},
	}
}
