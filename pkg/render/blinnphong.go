package render

import (
	"math"

	"github.com/prism3d/prism/pkg/math3d"
)

// UnlitProgram shades fragments with the interpolated vertex color,
// modulated by the bound texture when one is set. No lighting.
type UnlitProgram struct{}

// VertexShade applies the standard transform.
func (UnlitProgram) VertexShade(v Vertex, u *Uniforms) ClipVertex {
	return TransformVertex(v, u)
}

// FragmentShade returns vertex color times texture sample.
func (UnlitProgram) FragmentShade(f Fragment, u *Uniforms) (math3d.Vec4, bool) {
	out := f.Varyings.Color
	if tex := u.BoundTexture(); tex != nil {
		out = out.Mul(tex.Sample(f.Varyings.UV))
	}
	return out, true
}

// BlinnPhongProgram implements ambient + diffuse + half-vector specular
// shading summed over all active lights.
type BlinnPhongProgram struct{}

// VertexShade applies the standard transform.
func (BlinnPhongProgram) VertexShade(v Vertex, u *Uniforms) ClipVertex {
	return TransformVertex(v, u)
}

// FragmentShade evaluates the lighting model at the fragment.
func (BlinnPhongProgram) FragmentShade(f Fragment, u *Uniforms) (math3d.Vec4, bool) {
	base := f.Varyings.Color
	if tex := u.BoundTexture(); tex != nil {
		base = base.Mul(tex.Sample(f.Varyings.UV))
	}

	normal := f.Varyings.Normal.Normalize()
	viewDir := u.CameraPos.Sub(f.Varyings.WorldPos).Normalize()

	out := u.Material.Ambient.Mul(base)
	for i := range u.Lights {
		out = out.Add(lightTerm(&u.Lights[i], u.Material, base, f.Varyings.WorldPos, normal, viewDir))
	}

	out.W = base.W
	return out.Clamp01(), true
}

// lightTerm computes one light's diffuse + specular contribution.
func lightTerm(l *Light, mat Material, base math3d.Vec4, worldPos, normal, viewDir math3d.Vec3) math3d.Vec4 {
	var lightDir math3d.Vec3 // fragment toward light
	intensity := l.Intensity

	switch l.Kind {
	case LightDirectional:
		lightDir = l.Direction.Negate()
	case LightPoint:
		toLight := l.Position.Sub(worldPos)
		d := toLight.Len()
		if d == 0 {
			return math3d.Vec4{}
		}
		lightDir = toLight.Scale(1 / d)
		intensity *= l.Atten.Factor(d)
	case LightSpot:
		toLight := l.Position.Sub(worldPos)
		d := toLight.Len()
		if d == 0 {
			return math3d.Vec4{}
		}
		lightDir = toLight.Scale(1 / d)
		intensity *= l.Atten.Factor(d) * l.coneFalloff(lightDir.Negate())
	}

	if intensity <= 0 {
		return math3d.Vec4{}
	}

	diff := math.Max(0, normal.Dot(lightDir))
	half := lightDir.Add(viewDir).Normalize()
	spec := math.Pow(math.Max(0, normal.Dot(half)), mat.Shininess)

	contrib := mat.Diffuse.Mul(base).Scale(diff).Add(mat.Specular.Scale(spec))
	return contrib.Mul(l.Color).Scale(intensity)
}
