package render

import (
	"github.com/prism3d/prism/pkg/math3d"
)

// FaceCull selects which triangle facing to discard.
type FaceCull int

const (
	CullNone FaceCull = iota
	CullBack
	CullFront
)

// FrontFace selects which winding counts as front-facing.
type FrontFace int

const (
	FrontCW FrontFace = iota
	FrontCCW
)

// shouldCullFace decides whether a triangle faces away using its world-space
// winding normal against the view direction. Advisory only: skipping it
// never breaks correctness, it just wastes clipping and raster work.
func shouldCullFace(p0, p1, p2, viewDir math3d.Vec3, front FrontFace, cull FaceCull) bool {
	norm := p1.Sub(p0).Cross(p2.Sub(p1))

	var isFront bool
	switch front {
	case FrontCW:
		isFront = norm.Dot(viewDir) > 0
	case FrontCCW:
		isFront = norm.Dot(viewDir) <= 0
	}

	switch cull {
	case CullFront:
		return isFront
	case CullBack:
		return !isFront
	default:
		return false
	}
}

// Clip-space outcode bits, one per frustum bound.
const (
	outLeft = 1 << iota
	outRight
	outBottom
	outTop
	outNear
	outFar
)

// clipOutcode classifies a clip-space position against the six frustum
// bounds |x|,|y|,|z| <= w.
func clipOutcode(p math3d.Vec4) uint8 {
	var code uint8
	if p.X < -p.W {
		code |= outLeft
	}
	if p.X > p.W {
		code |= outRight
	}
	if p.Y < -p.W {
		code |= outBottom
	}
	if p.Y > p.W {
		code |= outTop
	}
	if p.Z < -p.W {
		code |= outNear
	}
	if p.Z > p.W {
		code |= outFar
	}
	return code
}

// frustumRejects reports whether all three vertices violate the same frustum
// bound, which means the triangle cannot touch the view volume. Conservative:
// a triangle spanning a frustum corner may survive and is handled by the
// near clip plus viewport bounding-box clamp downstream.
func frustumRejects(v0, v1, v2 math3d.Vec4) bool {
	return clipOutcode(v0)&clipOutcode(v1)&clipOutcode(v2) != 0
}
