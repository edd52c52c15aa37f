package gltfscene

import (
	"github.com/qmuntal/gltf"

	"github.com/Faultbox/sdfexport/pkg/math"
)

var zeroMatrix [16]float64

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// nodeTRS returns the node's local transform as TRS. Documents built in code
// leave rotation and scale zeroed; those read identity.
func nodeTRS(n *gltf.Node) (t [3]float64, r [4]float64, s [3]float64) {
	if n.Matrix != zeroMatrix && n.Matrix != identityMatrix {
		var m math.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		mt, mr, ms := m.Decompose()
		return [3]float64{float64(mt.X), float64(mt.Y), float64(mt.Z)},
			mr.Array(),
			[3]float64{float64(ms.X), float64(ms.Y), float64(ms.Z)}
	}
	t, r, s = n.Translation, n.Rotation, n.Scale
	if r == [4]float64{} {
		r = [4]float64{0, 0, 0, 1}
	}
	if s == [3]float64{} {
		s = [3]float64{1, 1, 1}
	}
	return t, r, s
}

func localMatrix(n *gltf.Node) math.Mat4 {
	t, r, s := nodeTRS(n)
	return compose(t, r, s)
}

func compose(t [3]float64, r [4]float64, s [3]float64) math.Mat4 {
	return math.TRS(
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		math.QuatFromArray(r),
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	)
}
