package gltfscene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/sdfexport/internal/host"
	"github.com/Faultbox/sdfexport/internal/logger"
	"github.com/Faultbox/sdfexport/pkg/meshio"
)

// ExportMesh implements host.Scene. The selected objects (or every mesh
// object) are baked into one mesh with their current transforms. OBJ output
// gets a .mtl library next to it whose texture maps use each material's
// current image node paths.
func (s *Scene) ExportMesh(format host.MeshFormat, dest string, opts host.ExportOptions) error {
	objs := s.selected
	if !opts.SelectedOnly {
		objs = nil
		for _, o := range s.objects {
			if o.kind == host.KindMesh {
				objs = append(objs, o)
			}
		}
	}

	merged := &meshio.Mesh{Name: strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest))}
	var mats []*Material
	seen := make(map[*Material]bool)
	anyUV := false
	for _, o := range objs {
		if o.geom == nil {
			continue
		}
		part := o.worldMesh(opts.LocalOrigin)
		base := uint32(len(merged.Positions))
		merged.Positions = append(merged.Positions, part.Positions...)
		if part.UVs != nil {
			anyUV = true
			merged.UVs = append(merged.UVs, part.UVs...)
		} else {
			merged.UVs = append(merged.UVs, make([][2]float32, len(part.Positions))...)
		}
		for _, g := range part.Groups {
			for i := range g.Indices {
				g.Indices[i] += base
			}
			merged.Groups = append(merged.Groups, g)
		}
		for _, m := range o.materials {
			if !seen[m] {
				seen[m] = true
				mats = append(mats, m)
			}
		}
	}
	if !anyUV {
		merged.UVs = nil
	}
	if merged.TriangleCount() == 0 {
		return fmt.Errorf("export %s: nothing to export", dest)
	}

	var err error
	switch format {
	case host.FormatSTL:
		err = writeFile(dest, func(f *os.File) error { return meshio.WriteSTL(f, merged) })
	case host.FormatOBJ:
		err = s.writeOBJ(dest, merged, mats)
	default:
		err = fmt.Errorf("unsupported mesh format %v", format)
	}
	if err != nil {
		return err
	}
	logger.Debug("mesh written",
		zap.String("path", dest),
		zap.Stringer("format", format),
		zap.Int("triangles", merged.TriangleCount()))
	return nil
}

func (s *Scene) writeOBJ(dest string, m *meshio.Mesh, mats []*Material) error {
	mtlName := strings.TrimSuffix(filepath.Base(dest), filepath.Ext(dest)) + ".mtl"
	if len(mats) > 0 {
		lib := make([]meshio.Material, len(mats))
		for i, mat := range mats {
			lib[i] = mat.mtl()
		}
		err := writeFile(filepath.Join(filepath.Dir(dest), mtlName), func(f *os.File) error {
			return meshio.WriteMTL(f, lib)
		})
		if err != nil {
			return err
		}
	} else {
		mtlName = ""
	}
	return writeFile(dest, func(f *os.File) error { return meshio.WriteOBJ(f, m, mtlName) })
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
