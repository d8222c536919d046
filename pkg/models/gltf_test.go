package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prism3d/prism/pkg/math3d"
)

// minimalGLTF is a single-triangle asset with positions and indices packed
// into an embedded data URI buffer.
const minimalGLTF = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3",
     "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{
    "byteLength": 44,
    "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAAAAABAAIAAAA="
  }]
}`

func writeGLTF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.gltf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGLTFTriangle(t *testing.T) {
	mesh, err := LoadGLTF(writeGLTF(t, minimalGLTF))
	if err != nil {
		t.Fatal(err)
	}

	if mesh.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", mesh.VertexCount())
	}
	if mesh.TriangleCount() != 1 {
		t.Errorf("TriangleCount = %d, want 1", mesh.TriangleCount())
	}

	if mesh.Vertices[1].Position != math3d.V3(1, 0, 0) {
		t.Errorf("vertex 1 position = %v, want (1, 0, 0)", mesh.Vertices[1].Position)
	}

	// The file carries no normals; the loader synthesizes them
	if !mesh.HasNormals() {
		t.Error("loader should synthesize normals when the asset has none")
	}

	// Vertex color defaults to opaque white
	if mesh.Vertices[0].Color != math3d.V4(1, 1, 1, 1) {
		t.Errorf("color = %v, want opaque white", mesh.Vertices[0].Color)
	}

	if err := mesh.Validate(); err != nil {
		t.Errorf("loaded mesh fails validation: %v", err)
	}
}

func TestLoadGLTFInvalidPath(t *testing.T) {
	if _, err := LoadGLTF("/nonexistent/model.gltf"); err == nil {
		t.Error("missing file accepted")
	}
}

func TestLoadGLTFWithTextureNoImages(t *testing.T) {
	mesh, img, err := LoadGLTFWithTexture(writeGLTF(t, minimalGLTF))
	if err != nil {
		t.Fatal(err)
	}
	if mesh == nil {
		t.Fatal("mesh is nil")
	}
	if img != nil {
		t.Error("asset has no images; expected nil texture")
	}
}
