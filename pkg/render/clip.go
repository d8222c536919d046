package render

import (
	"github.com/prism3d/prism/pkg/math3d"
)

// Cohen-Sutherland outcode bits for 2D screen-space segment clipping.
const (
	csInside = 0
	csLeft   = 1
	csRight  = 2
	csBottom = 4
	csTop    = 8
)

func segmentOutcode(p, min, max math3d.Vec2) uint8 {
	var code uint8
	if p.X < min.X {
		code |= csLeft
	} else if p.X > max.X {
		code |= csRight
	}
	if p.Y < min.Y {
		code |= csBottom
	} else if p.Y > max.Y {
		code |= csTop
	}
	return code
}

// ClipSegment2D clips the segment p1-p2 against the axis-aligned rectangle
// [min, max] using the Cohen-Sutherland algorithm. It reports false when the
// segment lies entirely outside. An endpoint already inside is returned
// unchanged; an endpoint outside is moved to the boundary intersection.
// Terminates in at most four intersection steps.
func ClipSegment2D(p1, p2, min, max math3d.Vec2) (math3d.Vec2, math3d.Vec2, bool) {
	out1 := segmentOutcode(p1, min, max)
	out2 := segmentOutcode(p2, min, max)

	for {
		if out1&out2 != 0 {
			// Both endpoints share an outside half-plane.
			return math3d.Vec2{}, math3d.Vec2{}, false
		}
		if out1|out2 == csInside {
			return p1, p2, true
		}

		out := out1
		if out2 > out1 {
			out = out2
		}

		var p math3d.Vec2
		switch {
		case out&csTop != 0:
			p.X = p1.X + (p2.X-p1.X)*(max.Y-p1.Y)/(p2.Y-p1.Y)
			p.Y = max.Y
		case out&csBottom != 0:
			p.X = p1.X + (p2.X-p1.X)*(min.Y-p1.Y)/(p2.Y-p1.Y)
			p.Y = min.Y
		case out&csRight != 0:
			p.Y = p1.Y + (p2.Y-p1.Y)*(max.X-p1.X)/(p2.X-p1.X)
			p.X = max.X
		case out&csLeft != 0:
			p.Y = p1.Y + (p2.Y-p1.Y)*(min.X-p1.X)/(p2.X-p1.X)
			p.X = min.X
		}

		if out == out1 {
			p1 = p
			out1 = segmentOutcode(p1, min, max)
		} else {
			p2 = p
			out2 = segmentOutcode(p2, min, max)
		}
	}
}

// nearDist is the signed distance proxy for the near plane in homogeneous
// clip space: positive means z > -w, i.e. in front of the near plane.
func nearDist(p math3d.Vec4) float64 {
	return p.Z + p.W
}

// clipTriangleNear clips one triangle against the near plane in homogeneous
// clip space, before the perspective divide. Appends 0, 1, or 2 output
// triangles to dst and returns it. Clipping here rather than after the
// divide is what keeps vertices with w <= 0 from producing garbage
// projections: every emitted vertex satisfies z > -w, which under a
// perspective projection implies w > 0.
//
// Intersection vertices interpolate position and all attributes by the same
// parametric factor t = d0 / (d0 - d1). Winding order is preserved.
func clipTriangleNear(tri [3]ClipVertex, dst [][3]ClipVertex) [][3]ClipVertex {
	d := [3]float64{
		nearDist(tri[0].Position),
		nearDist(tri[1].Position),
		nearDist(tri[2].Position),
	}

	insideCount := 0
	for _, v := range d {
		if v > 0 {
			insideCount++
		}
	}

	switch insideCount {
	case 3:
		return append(dst, tri)
	case 0:
		return dst
	}

	// intersect returns the clip vertex where edge i->j crosses the plane.
	intersect := func(i, j int) ClipVertex {
		t := d[i] / (d[i] - d[j])
		return tri[i].Lerp(tri[j], t)
	}

	if insideCount == 1 {
		// Find the inside vertex; replace the two outside ones with the
		// edge intersections. One triangle out, winding kept by walking
		// the vertices in their original order.
		for i := range 3 {
			if d[i] > 0 {
				j, k := (i+1)%3, (i+2)%3
				dst = append(dst, [3]ClipVertex{tri[i], intersect(i, j), intersect(i, k)})
				break
			}
		}
		return dst
	}

	// Two inside: the outside vertex is cut off, leaving a quad split into
	// two triangles that share the first intersection point.
	for i := range 3 {
		if d[i] <= 0 {
			j, k := (i+1)%3, (i+2)%3
			pj := intersect(i, j)
			pk := intersect(i, k)
			dst = append(dst, [3]ClipVertex{pj, tri[j], tri[k]})
			dst = append(dst, [3]ClipVertex{pj, tri[k], pk})
			break
		}
	}
	return dst
}
