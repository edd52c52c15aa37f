package math

import (
	"math"
	"testing"
)

func TestTRSIdentity(t *testing.T) {
	m := TRS(Vec3{}, QuatIdentity(), Vec3{1, 1, 1})
	id := Identity()
	for i := 0; i < 16; i++ {
		if abs(m[i]-id[i]) > 0.0001 {
			t.Errorf("element %d: got %f, want %f", i, m[i], id[i])
		}
	}
}

func TestTRSOrder(t *testing.T) {
	// Scale first, then rotate -90 about X, then translate.
	q := QuatFromAxisAngle(Vec3{1, 0, 0}, -math.Pi/2)
	m := TRS(Vec3{10, 0, 0}, q, Vec3{2, 2, 2})

	got := m.TransformPoint([3]float32{0, 0, 1})
	want := [3]float32{10, 2, 0}
	for i := range got {
		if abs(got[i]-want[i]) > 0.001 {
			t.Fatalf("TransformPoint: got %v, want %v", got, want)
		}
	}
}

func TestRotateMinusNinetyAboutX(t *testing.T) {
	// Z-up to Y-up: +Z maps to +Y, +Y maps to -Z.
	m := QuatFromAxisAngle(Vec3{1, 0, 0}, -math.Pi/2).ToMat4()

	up := m.TransformDirection([3]float32{0, 0, 1})
	if abs(up[1]-1) > 0.001 || abs(up[2]) > 0.001 {
		t.Errorf("expected +Z to map to +Y, got %v", up)
	}
	fwd := m.TransformDirection([3]float32{0, 1, 0})
	if abs(fwd[2]+1) > 0.001 {
		t.Errorf("expected +Y to map to -Z, got %v", fwd)
	}
}

func TestQuatFromArray(t *testing.T) {
	q := QuatFromArray([4]float64{0, 0.5, 0, 0.5})
	n := q.Normalize()
	if abs(n.Y-float32(math.Sqrt2/2)) > 0.001 {
		t.Errorf("expected normalized Y ~0.707, got %v", n.Y)
	}
}

func TestTriangleNormal(t *testing.T) {
	n := TriangleNormal([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	if n != [3]float32{0, 0, 1} {
		t.Errorf("expected (0,0,1), got %v", n)
	}

	degenerate := TriangleNormal([3]float32{1, 1, 1}, [3]float32{1, 1, 1}, [3]float32{1, 1, 1})
	if degenerate != [3]float32{} {
		t.Errorf("expected zero normal for degenerate triangle, got %v", degenerate)
	}
}

func TestDecompose(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/3)
	m := TRS(Vec3{1, 2, 3}, q, Vec3{2, 3, 4})

	tr, r, s := m.Decompose()
	if tr != (Vec3{1, 2, 3}) {
		t.Errorf("expected translation (1,2,3), got %v", tr)
	}
	if abs(s.X-2) > 0.001 || abs(s.Y-3) > 0.001 || abs(s.Z-4) > 0.001 {
		t.Errorf("expected scale (2,3,4), got %v", s)
	}
	rebuilt := TRS(tr, r, s)
	for i := range m {
		if abs(m[i]-rebuilt[i]) > 0.001 {
			t.Fatalf("element %d: got %f, want %f", i, rebuilt[i], m[i])
		}
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
