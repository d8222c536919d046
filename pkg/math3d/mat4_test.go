package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vec3Near(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestMat4MulVec3(t *testing.T) {
	tests := []struct {
		name     string
		m        Mat4
		v        Vec3
		expected Vec3
	}{
		{"identity", Identity(), V3(1, 2, 3), V3(1, 2, 3)},
		{"translate", Translate(V3(10, 20, 30)), V3(1, 2, 3), V3(11, 22, 33)},
		{"scale", Scale(V3(2, 3, 4)), V3(1, 1, 1), V3(2, 3, 4)},
		{"rotate y 90", RotateY(math.Pi / 2), V3(1, 0, 0), V3(0, 0, -1)},
		{"rotate x 90", RotateX(math.Pi / 2), V3(0, 1, 0), V3(0, 0, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.m.MulVec3(tc.v)
			if !vec3Near(got, tc.expected, 1e-9) {
				t.Errorf("MulVec3(%v) = %v, want %v", tc.v, got, tc.expected)
			}
		})
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	m := Translate(V3(1, -2, 3)).Mul(RotateY(0.7)).Mul(Scale(V3(2, 0.5, 3)))
	round := m.Mul(m.Inverse())

	id := Identity()
	for i := range 16 {
		if math.Abs(round[i]-id[i]) > 1e-9 {
			t.Fatalf("m * m^-1 differs from identity at [%d]: got %v", i, round[i])
		}
	}
}

func TestMat4InverseSingular(t *testing.T) {
	// Zero scale collapses a dimension; inverse falls back to identity.
	m := Scale(V3(1, 0, 1))
	if m.Inverse() != Identity() {
		t.Error("singular matrix should invert to identity")
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	// A plane squashed along Y: surface normal (0,1,0) must stay perpendicular
	// to a surface tangent after transform.
	model := Scale(V3(1, 0.25, 1))
	tangent := model.MulVec3Dir(V3(1, 0, 0))
	normal := model.NormalMatrix().MulVec3Dir(V3(0, 1, 0)).Normalize()

	if dot := tangent.Dot(normal); math.Abs(dot) > eps {
		t.Errorf("normal not perpendicular to tangent after non-uniform scale, dot = %v", dot)
	}

	// Plain model-matrix transform gets this wrong; guard against regressing
	// to it by checking the normal direction actually changed scale handling.
	naive := model.MulVec3Dir(V3(0, 1, 0)).Normalize()
	if vec3Near(naive, normal, eps) {
		// For axis-aligned scale both normalize to (0,1,0); use a rotated case.
		model = RotateZ(0.5).Mul(Scale(V3(4, 1, 1)))
		tangent = model.MulVec3Dir(V3(1, 0, 0))
		normal = model.NormalMatrix().MulVec3Dir(V3(0, 1, 0)).Normalize()
		if dot := tangent.Dot(normal); math.Abs(dot) > eps {
			t.Errorf("normal matrix failed under rotated non-uniform scale, dot = %v", dot)
		}
	}
}

func TestNormalMatrixIgnoresTranslation(t *testing.T) {
	m := Translate(V3(100, -50, 25)).Mul(RotateY(1.1))
	n := m.NormalMatrix()

	if tr := n.Translation(); !vec3Near(tr, Zero3(), eps) {
		t.Errorf("normal matrix carries translation %v", tr)
	}
}

func TestPerspectiveMapsNearFar(t *testing.T) {
	near, far := 0.1, 100.0
	proj := Perspective(math.Pi/3, 1, near, far)

	onNear := proj.MulVec4(V4(0, 0, -near, 1))
	onFar := proj.MulVec4(V4(0, 0, -far, 1))

	if z := onNear.Z / onNear.W; math.Abs(z-(-1)) > 1e-9 {
		t.Errorf("near plane maps to NDC z=%v, want -1", z)
	}
	if z := onFar.Z / onFar.W; math.Abs(z-1) > 1e-9 {
		t.Errorf("far plane maps to NDC z=%v, want 1", z)
	}
}

func TestLookAtCenterMapsToNegativeZ(t *testing.T) {
	view := LookAt(V3(3, 4, 5), Zero3(), Up())
	p := view.MulVec3(Zero3())

	if p.X > eps || p.X < -eps || p.Y > eps || p.Y < -eps {
		t.Errorf("look-at center should land on the view Z axis, got %v", p)
	}
	if p.Z >= 0 {
		t.Errorf("look-at center should have negative view Z, got %v", p.Z)
	}
}

func TestMat4IsFinite(t *testing.T) {
	if !Identity().IsFinite() {
		t.Error("identity should be finite")
	}

	bad := Identity()
	bad[5] = math.NaN()
	if bad.IsFinite() {
		t.Error("NaN element should not be finite")
	}

	bad[5] = math.Inf(1)
	if bad.IsFinite() {
		t.Error("Inf element should not be finite")
	}
}

func TestVec4PerspectiveDivide(t *testing.T) {
	v := V4(2, 4, 6, 2)
	d := v.PerspectiveDivide()
	if !vec3Near(V3(d.X, d.Y, d.Z), V3(1, 2, 3), eps) || math.Abs(d.W-1) > eps {
		t.Errorf("PerspectiveDivide = %v", d)
	}

	// w=0 passes through untouched rather than producing Inf.
	z := V4(1, 2, 3, 0).PerspectiveDivide()
	if z != V4(1, 2, 3, 0) {
		t.Errorf("PerspectiveDivide with w=0 = %v", z)
	}
}
