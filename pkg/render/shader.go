package render

import (
	"github.com/prism3d/prism/pkg/math3d"
)

// Vertex is a model-space vertex with all attributes the pipeline
// interpolates. Vertex data is owned by the mesh and never mutated here.
type Vertex struct {
	Position math3d.Vec3 // Model-space position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
	Color    math3d.Vec4 // Vertex color, components in [0, 1]
}

// Varyings are the per-vertex attributes carried through clipping and
// interpolated across each triangle.
type Varyings struct {
	WorldPos math3d.Vec3 // Position after the model transform
	Normal   math3d.Vec3 // World-space normal (not normalized here)
	UV       math3d.Vec2
	Color    math3d.Vec4
}

// Lerp interpolates linearly between two attribute sets.
func (v Varyings) Lerp(o Varyings, t float64) Varyings {
	return Varyings{
		WorldPos: v.WorldPos.Lerp(o.WorldPos, t),
		Normal:   v.Normal.Lerp(o.Normal, t),
		UV:       v.UV.Lerp(o.UV, t),
		Color:    v.Color.Lerp(o.Color, t),
	}
}

// Scale multiplies every attribute by s.
func (v Varyings) Scale(s float64) Varyings {
	return Varyings{
		WorldPos: v.WorldPos.Scale(s),
		Normal:   v.Normal.Scale(s),
		UV:       v.UV.Scale(s),
		Color:    v.Color.Scale(s),
	}
}

// Add sums two attribute sets component-wise.
func (v Varyings) Add(o Varyings) Varyings {
	return Varyings{
		WorldPos: v.WorldPos.Add(o.WorldPos),
		Normal:   v.Normal.Add(o.Normal),
		UV:       v.UV.Add(o.UV),
		Color:    v.Color.Add(o.Color),
	}
}

// ClipVertex is a vertex in 4D homogeneous clip space, before the
// perspective divide, with its attributes carried alongside. Produced by the
// vertex stage; clipping may replace it with interpolated copies.
type ClipVertex struct {
	Position math3d.Vec4
	Varyings Varyings
}

// Lerp interpolates position and attributes by the same parametric factor,
// as near-plane clipping requires.
func (v ClipVertex) Lerp(o ClipVertex, t float64) ClipVertex {
	return ClipVertex{
		Position: v.Position.Lerp(o.Position, t),
		Varyings: v.Varyings.Lerp(o.Varyings, t),
	}
}

// Fragment is a covered pixel with perspective-corrected attributes, handed
// to the fragment stage after the depth test passes.
type Fragment struct {
	X, Y     int
	Depth    float64 // Interpolated NDC depth, smaller is closer
	Varyings Varyings
}

// Uniforms is the read-only per-draw state visible to shader programs.
// The derived matrices are computed once per draw call.
type Uniforms struct {
	Model      math3d.Mat4
	View       math3d.Mat4
	Projection math3d.Mat4

	// Derived, filled in by the pipeline before each draw.
	MVP       math3d.Mat4
	NormalMat math3d.Mat4

	CameraPos math3d.Vec3
	Time      float64

	Lights   []Light
	Material Material

	// Texture binding. An explicitly set Texture wins; otherwise TextureID
	// is resolved through Textures. Id 0 is never assigned by a storage and
	// means nothing is bound.
	Texture   *Texture
	TextureID uint32
	Textures  *TextureStorage
}

// BoundTexture resolves the texture for this draw. A directly bound Texture
// takes precedence; otherwise TextureID is looked up in Textures. Returns nil
// when nothing is bound or the id is unknown.
func (u *Uniforms) BoundTexture() *Texture {
	if u.Texture != nil {
		return u.Texture
	}
	if u.Textures == nil || u.TextureID == 0 {
		return nil
	}
	tex, err := u.Textures.Get(u.TextureID)
	if err != nil {
		return nil
	}
	return tex
}

// finalize recomputes the derived matrices from Model/View/Projection.
func (u *Uniforms) finalize() {
	u.MVP = u.Projection.Mul(u.View).Mul(u.Model)
	u.NormalMat = u.Model.NormalMatrix()
}

// Program is the pair of programmable pipeline stages. Both must be pure:
// deterministic for identical input, no side effects. The active program is
// resolved once per draw call, never looked up per pixel.
type Program interface {
	// VertexShade maps a model-space vertex to clip space and fills in the
	// attributes to interpolate.
	VertexShade(v Vertex, u *Uniforms) ClipVertex

	// FragmentShade computes the color for one fragment. Returning false
	// discards the fragment before any color or depth write.
	FragmentShade(f Fragment, u *Uniforms) (math3d.Vec4, bool)
}

// TransformVertex is the standard vertex transform: clip position through
// MVP, world position through the model matrix, normal through the
// inverse-transpose. Custom programs can call it and then adjust the result.
func TransformVertex(v Vertex, u *Uniforms) ClipVertex {
	world := u.Model.MulVec3(v.Position)
	return ClipVertex{
		Position: u.MVP.MulVec4(math3d.V4FromV3(v.Position, 1)),
		Varyings: Varyings{
			WorldPos: world,
			Normal:   u.NormalMat.MulVec3Dir(v.Normal),
			UV:       v.UV,
			Color:    v.Color,
		},
	}
}
