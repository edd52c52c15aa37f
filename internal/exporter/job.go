package exporter

import (
	"path/filepath"

	"github.com/Faultbox/sdfexport/internal/host"
	"github.com/Faultbox/sdfexport/pkg/sdf"
)

// Model-relative directories of the package layout.
const (
	MeshesDir   = "meshes"
	TexturesDir = "materials/textures"
	ScriptsDir  = "materials/scripts"
)

// Job is the work for one object: where its package lives and what gets
// written into it.
type Job struct {
	Object host.Object
	Name   string
	Dir    string
	Format host.MeshFormat
}

func newJob(root string, obj host.Object, name string, format host.MeshFormat) *Job {
	return &Job{
		Object: obj,
		Name:   name,
		Dir:    filepath.Join(root, name),
		Format: format,
	}
}

// MeshRel is the mesh path relative to the model directory, slash separated.
func (j *Job) MeshRel() string {
	return MeshesDir + "/" + j.Name + "." + j.Format.Ext()
}

// MeshPath is the absolute mesh file path.
func (j *Job) MeshPath() string {
	return filepath.Join(j.Dir, filepath.FromSlash(j.MeshRel()))
}

// MTLPath is the material companion written next to an OBJ mesh.
func (j *Job) MTLPath() string {
	return filepath.Join(j.Dir, MeshesDir, j.Name+".mtl")
}

// MeshURI is the model:// URI of the mesh, shared by visual and collision.
func (j *Job) MeshURI() string {
	return sdf.ResourceURI(j.Name, j.MeshRel())
}

func (j *Job) texturesPath() string {
	return filepath.Join(j.Dir, filepath.FromSlash(TexturesDir))
}

func (j *Job) scriptsPath() string {
	return filepath.Join(j.Dir, filepath.FromSlash(ScriptsDir))
}

// ScriptPath is the OGRE material script of the model.
func (j *Job) ScriptPath() string {
	return filepath.Join(j.scriptsPath(), j.Name+".material")
}
