package meshio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Material is one entry of an MTL library.
type Material struct {
	Name    string
	Diffuse [3]float64
	// DiffuseMap is the texture file reference, empty for untextured
	// materials.
	DiffuseMap string
}

// WriteOBJ writes m as Wavefront OBJ referencing mtllib. Triangles are 1-based
// and carry texture coordinates when m has UVs.
func WriteOBJ(w io.Writer, m *Mesh, mtllib string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	if mtllib != "" {
		p("mtllib %s", mtllib)
	}
	p("o %s", m.Name)
	for _, v := range m.Positions {
		p("v %s %s %s", ftoa(v[0]), ftoa(v[1]), ftoa(v[2]))
	}
	haveUV := len(m.UVs) > 0
	for _, uv := range m.UVs {
		// OBJ texture space has V pointing up.
		p("vt %s %s", ftoa(uv[0]), ftoa(1-uv[1]))
	}

	for _, g := range m.Groups {
		if g.Material != "" {
			p("usemtl %s", g.Material)
		}
		for i := 0; i+2 < len(g.Indices); i += 3 {
			a, b, c := g.Indices[i]+1, g.Indices[i+1]+1, g.Indices[i+2]+1
			if haveUV {
				p("f %d/%d %d/%d %d/%d", a, a, b, b, c, c)
			} else {
				p("f %d %d %d", a, b, c)
			}
		}
	}
	return bw.Flush()
}

// WriteMTL writes a material library in the form modeling tools emit,
// including directives the simulator ignores.
func WriteMTL(w io.Writer, mats []Material) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Material Count: %d\n", len(mats))
	for _, mat := range mats {
		d := mat.Diffuse
		fmt.Fprintf(bw, "\nnewmtl %s\n", mat.Name)
		fmt.Fprintf(bw, "Ns 250.000000\n")
		fmt.Fprintf(bw, "Ka 1.000000 1.000000 1.000000\n")
		fmt.Fprintf(bw, "Kd %.6f %.6f %.6f\n", d[0], d[1], d[2])
		fmt.Fprintf(bw, "Ks 0.500000 0.500000 0.500000\n")
		fmt.Fprintf(bw, "d 1.000000\n")
		fmt.Fprintf(bw, "illum 2\n")
		if mat.DiffuseMap != "" {
			fmt.Fprintf(bw, "map_Kd %s\n", mat.DiffuseMap)
		}
	}
	return bw.Flush()
}

func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
