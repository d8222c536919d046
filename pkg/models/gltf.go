package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder for embedded textures
	_ "image/png"  // Register PNG decoder for embedded textures
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/prism3d/prism/pkg/math3d"
)

// LoadGLTF loads a glTF or GLB file into a Mesh. All triangle primitives of
// all meshes in the document are merged into one vertex/face buffer.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	for _, gm := range doc.Meshes {
		if err := appendGLTFMesh(doc, gm, mesh); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", gm.Name, err)
		}
	}

	if !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// appendGLTFMesh decodes one glTF mesh's triangle primitives into the
// accumulating Mesh.
func appendGLTFMesh(doc *gltf.Document, gm *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range gm.Primitives {
		// A zero Mode means the file omitted it, which defaults to triangles.
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if ni, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[ni], nil)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if ti, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[ti], nil)
			if err != nil {
				return fmt.Errorf("read texcoords: %w", err)
			}
		}

		base := len(mesh.Vertices)
		for i := range positions {
			v := MeshVertex{
				Position: math3d.V3(float64(positions[i][0]), float64(positions[i][1]), float64(positions[i][2])),
				Color:    math3d.V4(1, 1, 1, 1),
			}
			if i < len(normals) {
				v.Normal = math3d.V3(float64(normals[i][0]), float64(normals[i][1]), float64(normals[i][2]))
			}
			if i < len(uvs) {
				// glTF puts V=0 at the top of the image; flip to the
				// bottom-left origin the sampler expects.
				v.UV = math3d.V2(float64(uvs[i][0]), 1.0-float64(uvs[i][1]))
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
			// glTF front faces are CCW.
			for i := 0; i+2 < len(indices); i += 3 {
				mesh.Faces = append(mesh.Faces, [3]int{
					base + int(indices[i]),
					base + int(indices[i+1]),
					base + int(indices[i+2]),
				})
			}
		} else {
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Faces = append(mesh.Faces, [3]int{base + i, base + i + 1, base + i + 2})
			}
		}
	}
	return nil
}

// LoadGLTFWithTexture loads a glTF/GLB file and returns the mesh plus the
// first decodable texture image, which may be nil when the file has none.
func LoadGLTFWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, err := LoadGLTF(path)
	if err != nil {
		return nil, nil, err
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	for _, img := range doc.Images {
		data := imageBytes(doc, img, filepath.Dir(path))
		if len(data) == 0 {
			continue
		}
		decoded, _, err := image.Decode(bytes.NewReader(data))
		if err == nil {
			return mesh, decoded, nil
		}
	}
	return mesh, nil, nil
}

// imageBytes returns the raw bytes of a glTF image, whether embedded in a
// buffer view or stored in an external file next to the document.
func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) []byte {
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if buf.Data != nil {
			return buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
		}
		return nil
	}
	if img.URI != "" {
		data, err := os.ReadFile(filepath.Join(dir, img.URI))
		if err == nil {
			return data
		}
	}
	return nil
}
