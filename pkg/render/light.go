package render

import (
	"math"

	"github.com/prism3d/prism/pkg/math3d"
)

// LightKind selects the light variant.
type LightKind int

const (
	LightDirectional LightKind = iota
	LightPoint
	LightSpot
)

// Attenuation describes distance falloff for point and spot lights:
// 1 / (Constant + Linear*d + Quadratic*d²). The coefficients are plain
// configuration so the curve can be tuned per scene.
type Attenuation struct {
	Constant  float64
	Linear    float64
	Quadratic float64
}

// DefaultAttenuation covers roughly a 50-unit radius.
func DefaultAttenuation() Attenuation {
	return Attenuation{Constant: 1, Linear: 0.09, Quadratic: 0.032}
}

// Factor returns the attenuation factor at distance d.
func (a Attenuation) Factor(d float64) float64 {
	denom := a.Constant + a.Linear*d + a.Quadratic*d*d
	if denom <= 0 {
		return 1
	}
	return 1 / denom
}

// Light is a tagged light variant. Fields not used by a given kind are
// ignored. Lights are immutable for the duration of a frame.
type Light struct {
	Kind LightKind

	Direction math3d.Vec3 // Directional and spot: direction light travels
	Position  math3d.Vec3 // Point and spot

	Color     math3d.Vec4 // Usually opaque, components in [0, 1]
	Intensity float64

	Atten Attenuation // Point and spot

	// Spot cone, stored as cosines of the half angles.
	// Full intensity inside Inner, zero outside Outer.
	InnerCos float64
	OuterCos float64
}

// NewDirectionalLight creates a light with parallel rays along dir.
func NewDirectionalLight(dir math3d.Vec3, color math3d.Vec4, intensity float64) Light {
	return Light{
		Kind:      LightDirectional,
		Direction: dir.Normalize(),
		Color:     color,
		Intensity: intensity,
	}
}

// NewPointLight creates an omnidirectional light at pos.
func NewPointLight(pos math3d.Vec3, color math3d.Vec4, intensity float64, atten Attenuation) Light {
	return Light{
		Kind:      LightPoint,
		Position:  pos,
		Color:     color,
		Intensity: intensity,
		Atten:     atten,
	}
}

// NewSpotLight creates a cone light. inner and outer are half angles in
// radians; outer is widened to inner if given smaller.
func NewSpotLight(pos, dir math3d.Vec3, color math3d.Vec4, intensity float64, inner, outer float64, atten Attenuation) Light {
	if outer < inner {
		outer = inner
	}
	return Light{
		Kind:      LightSpot,
		Position:  pos,
		Direction: dir.Normalize(),
		Color:     color,
		Intensity: intensity,
		Atten:     atten,
		InnerCos:  math.Cos(inner),
		OuterCos:  math.Cos(outer),
	}
}

// coneFalloff returns the spot falloff for a fragment lit from direction
// toFrag (normalized, light to fragment): 1 inside the inner cone, 0 outside
// the outer cone, smoothstep between.
func (l Light) coneFalloff(toFrag math3d.Vec3) float64 {
	cos := l.Direction.Dot(toFrag)
	if cos >= l.InnerCos {
		return 1
	}
	if cos <= l.OuterCos {
		return 0
	}
	t := (cos - l.OuterCos) / (l.InnerCos - l.OuterCos)
	return t * t * (3 - 2*t)
}

// Material holds Blinn-Phong surface parameters. Shininess is the plain
// exponent applied to the half-vector term.
type Material struct {
	Ambient   math3d.Vec4
	Diffuse   math3d.Vec4
	Specular  math3d.Vec4
	Shininess float64
}

// DefaultMaterial is a neutral gray plastic-like surface.
func DefaultMaterial() Material {
	return Material{
		Ambient:   math3d.V4(0.1, 0.1, 0.1, 1),
		Diffuse:   math3d.V4(0.8, 0.8, 0.8, 1),
		Specular:  math3d.V4(0.5, 0.5, 0.5, 1),
		Shininess: 32,
	}
}
