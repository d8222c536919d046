package models

import (
	"errors"
	"math"
	"testing"

	"github.com/prism3d/prism/pkg/math3d"
)

// quadMesh is a unit quad in the XY plane split into two triangles.
func quadMesh() *Mesh {
	m := NewMesh("quad")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0), UV: math3d.V2(0, 0)},
		{Position: math3d.V3(1, 0, 0), UV: math3d.V2(1, 0)},
		{Position: math3d.V3(1, 1, 0), UV: math3d.V2(1, 1)},
		{Position: math3d.V3(0, 1, 0), UV: math3d.V2(0, 1)},
	}
	m.Faces = [][3]int{{0, 1, 2}, {0, 2, 3}}
	return m
}

func TestMeshValidate(t *testing.T) {
	m := quadMesh()
	if err := m.Validate(); err != nil {
		t.Errorf("valid mesh rejected: %v", err)
	}

	m.Faces = append(m.Faces, [3]int{0, 1, 7})
	if err := m.Validate(); !errors.Is(err, ErrBadIndex) {
		t.Errorf("error = %v, want ErrBadIndex", err)
	}

	m.Faces[2] = [3]int{0, -1, 2}
	if err := m.Validate(); !errors.Is(err, ErrBadIndex) {
		t.Errorf("negative index error = %v, want ErrBadIndex", err)
	}
}

func TestMeshBounds(t *testing.T) {
	m := quadMesh()
	m.CalculateBounds()

	if m.BoundsMin != math3d.V3(0, 0, 0) {
		t.Errorf("BoundsMin = %v, want origin", m.BoundsMin)
	}
	if m.BoundsMax != math3d.V3(1, 1, 0) {
		t.Errorf("BoundsMax = %v, want (1, 1, 0)", m.BoundsMax)
	}

	center := m.Center()
	if center.X != 0.5 || center.Y != 0.5 || center.Z != 0 {
		t.Errorf("Center = %v, want (0.5, 0.5, 0)", center)
	}

	size := m.Size()
	if size.X != 1 || size.Y != 1 || size.Z != 0 {
		t.Errorf("Size = %v, want (1, 1, 0)", size)
	}
}

func TestMeshCounts(t *testing.T) {
	m := quadMesh()
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := quadMesh()
	if m.HasNormals() {
		t.Fatal("fresh quad should have no normals")
	}

	m.CalculateSmoothNormals()
	if !m.HasNormals() {
		t.Fatal("smooth normals not generated")
	}

	// Every vertex of a flat CCW quad gets the +Z normal
	for i, v := range m.Vertices {
		n := v.Normal
		if math.Abs(n.Len()-1) > 1e-9 {
			t.Errorf("vertex %d normal not unit length: %v", i, n)
		}
		if math.Abs(n.Z-1) > 1e-9 {
			t.Errorf("vertex %d normal = %v, want +Z", i, n)
		}
	}
}

func TestCalculateSmoothNormalsAreaWeighted(t *testing.T) {
	// A vertex shared by one large XY-plane triangle and one small
	// XZ-plane triangle: the large face dominates the averaged normal.
	m := NewMesh("bent")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(10, 0, 0)},
		{Position: math3d.V3(0, 10, 0)},
		{Position: math3d.V3(0.5, 0, 0)},
		{Position: math3d.V3(0, 0, 0.5)},
	}
	m.Faces = [][3]int{
		{0, 1, 2}, // large, normal +Z
		{0, 4, 3}, // small, normal... away from +Y
	}
	m.CalculateSmoothNormals()

	n := m.Vertices[0].Normal
	if math.Abs(n.Z) < math.Abs(n.Y) {
		t.Errorf("shared vertex normal %v not dominated by the larger face", n)
	}
}

func TestMeshClone(t *testing.T) {
	m := quadMesh()
	m.CalculateBounds()

	c := m.Clone()
	c.Vertices[0].Position = math3d.V3(99, 99, 99)
	c.Faces[0] = [3]int{3, 2, 1}

	if m.Vertices[0].Position.X == 99 {
		t.Error("clone shares vertex storage with the original")
	}
	if m.Faces[0] == c.Faces[0] {
		t.Error("clone shares face storage with the original")
	}
}

func TestMeshIndices(t *testing.T) {
	m := quadMesh()
	idx := m.Indices()

	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(idx) != len(want) {
		t.Fatalf("Indices length = %d, want %d", len(idx), len(want))
	}
	for i := range want {
		if idx[i] != want[i] {
			t.Errorf("index %d = %d, want %d", i, idx[i], want[i])
		}
	}
}
