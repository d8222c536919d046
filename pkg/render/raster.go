package render

import (
	"math"

	"github.com/prism3d/prism/pkg/math3d"
)

// screenVertex is a projected vertex in pixel coordinates with everything the
// inner loop needs: NDC depth, the perspective-correction divisor, and the
// attributes to interpolate.
type screenVertex struct {
	x, y float64 // Pixel coordinates, sampled at pixel centers
	z    float64 // NDC depth, smaller is closer
	invW float64 // 1 / clip w
	vary Varyings
}

// project performs the perspective divide and viewport transform. The caller
// guarantees w > 0 (near clipping ran first).
func project(v ClipVertex, width, height int) screenVertex {
	invW := 1 / v.Position.W
	ndcX := v.Position.X * invW
	ndcY := v.Position.Y * invW
	ndcZ := v.Position.Z * invW

	return screenVertex{
		x:    (ndcX + 1) * 0.5 * float64(width),
		y:    (1 - ndcY) * 0.5 * float64(height), // Y is flipped
		z:    ndcZ,
		invW: invW,
		vary: v.Varyings,
	}
}

// edge holds one edge function w(x,y) = A*x + B*y + C, positive on the
// interior side once the triangle is orientation-normalized.
type edge struct {
	a, b, c float64
}

func makeEdge(x0, y0, x1, y1 float64) edge {
	return edge{a: y0 - y1, b: x1 - x0, c: x0*y1 - x1*y0}
}

func (e edge) at(x, y float64) float64 {
	return e.a*x + e.b*y + e.c
}

// topLeft reports whether a zero-weight sample on this edge is covered.
// In y-down pixel space a left edge has a > 0 and a top edge is horizontal
// with b > 0; counting exactly those keeps shared edges between adjacent
// triangles from being filled twice.
func (e edge) topLeft() bool {
	return e.a > 0 || (e.a == 0 && e.b > 0)
}

// rasterizeTriangle scans one clip-space triangle (all vertices with w > 0)
// into the target through the given program. Fragments that fail the early
// depth test never reach the fragment stage.
func rasterizeTriangle(t *Target, prog Program, u *Uniforms, tri [3]ClipVertex) {
	v0 := project(tri[0], t.Width, t.Height)
	v1 := project(tri[1], t.Width, t.Height)
	v2 := project(tri[2], t.Width, t.Height)

	// Signed doubled area. Normalize orientation so the interior is the
	// positive side regardless of winding; zero means a degenerate triangle
	// that produces no fragments.
	area2 := (v1.x-v0.x)*(v2.y-v0.y) - (v2.x-v0.x)*(v1.y-v0.y)
	if area2 == 0 {
		return
	}
	if area2 < 0 {
		v1, v2 = v2, v1
		area2 = -area2
	}

	// Edge i is opposite vertex i, so its weight is vertex i's barycentric
	// numerator.
	e0 := makeEdge(v1.x, v1.y, v2.x, v2.y)
	e1 := makeEdge(v2.x, v2.y, v0.x, v0.y)
	e2 := makeEdge(v0.x, v0.y, v1.x, v1.y)

	minX := int(math.Floor(min3(v0.x, v1.x, v2.x)))
	maxX := int(math.Ceil(max3(v0.x, v1.x, v2.x)))
	minY := int(math.Floor(min3(v0.y, v1.y, v2.y)))
	maxY := int(math.Ceil(max3(v0.y, v1.y, v2.y)))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > t.Width-1 {
		maxX = t.Width - 1
	}
	if maxY > t.Height-1 {
		maxY = t.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	invArea := 1 / area2
	tl0, tl1, tl2 := e0.topLeft(), e1.topLeft(), e2.topLeft()

	// Evaluate the edge functions at the first pixel center, then step
	// incrementally: +a per column, +b per row.
	startX := float64(minX) + 0.5
	startY := float64(minY) + 0.5
	row0 := e0.at(startX, startY)
	row1 := e1.at(startX, startY)
	row2 := e2.at(startX, startY)

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := row0, row1, row2

		for x := minX; x <= maxX; x++ {
			if covered(w0, tl0) && covered(w1, tl1) && covered(w2, tl2) {
				b0 := w0 * invArea
				b1 := w1 * invArea
				b2 := w2 * invArea

				// NDC depth is linear in screen space, so the raw
				// barycentrics interpolate it directly.
				depth := b0*v0.z + b1*v1.z + b2*v2.z

				if depth < t.Depth.depth[y*t.Width+x] {
					shadeFragment(t, prog, u, x, y, depth, b0, b1, b2, &v0, &v1, &v2)
				}
			}

			w0 += e0.a
			w1 += e1.a
			w2 += e2.a
		}

		row0 += e0.b
		row1 += e1.b
		row2 += e2.b
	}
}

// covered applies the fill rule: strictly inside always counts, a sample
// exactly on an edge counts only for top-left edges.
func covered(w float64, topLeft bool) bool {
	if w > 0 {
		return true
	}
	return w == 0 && topLeft
}

// shadeFragment runs perspective-correct interpolation and the fragment
// stage for one covered pixel, then commits through the depth test.
func shadeFragment(t *Target, prog Program, u *Uniforms, x, y int, depth float64, b0, b1, b2 float64, v0, v1, v2 *screenVertex) {
	// Perspective correction: weight each barycentric by 1/w and
	// renormalize. Raw screen-space weights would warp attributes toward
	// the near vertices.
	q0 := b0 * v0.invW
	q1 := b1 * v1.invW
	q2 := b2 * v2.invW
	norm := 1 / (q0 + q1 + q2)

	vary := v0.vary.Scale(q0 * norm).
		Add(v1.vary.Scale(q1 * norm)).
		Add(v2.vary.Scale(q2 * norm))

	out, ok := prog.FragmentShade(Fragment{X: x, Y: y, Depth: depth, Varyings: vary}, u)
	if !ok {
		return
	}
	t.DepthTestAndSet(x, y, depth, Vec4ToColor(out))
}

// rasterizeLine draws one clip-space segment (both endpoints with w > 0)
// with Bresenham stepping, a per-pixel depth test, and perspective-correct
// attribute interpolation. Used by wireframe mode.
func rasterizeLine(t *Target, prog Program, u *Uniforms, a, b ClipVertex) {
	p0 := project(a, t.Width, t.Height)
	p1 := project(b, t.Width, t.Height)

	min := math3d.V2(0, 0)
	max := math3d.V2(float64(t.Width-1), float64(t.Height-1))
	c0, c1, ok := ClipSegment2D(math3d.V2(p0.x, p0.y), math3d.V2(p1.x, p1.y), min, max)
	if !ok {
		return
	}

	// Re-parameterize the clipped endpoints along the original segment so
	// depth and attributes line up with the surviving span.
	t0 := segmentParam(p0, p1, c0)
	t1 := segmentParam(p0, p1, c1)
	s0 := lerpScreenVertex(p0, p1, t0)
	s1 := lerpScreenVertex(p0, p1, t1)

	x0, y0 := int(s0.x), int(s0.y)
	x1, y1 := int(s1.x), int(s1.y)

	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}

	steps := dx
	if -dy > dx {
		steps = -dy
	}
	ds := 0.0
	if steps > 0 {
		ds = 1 / float64(steps)
	}

	errAcc := dx + dy
	x, y := x0, y0
	s := 0.0

	for {
		writeLineFragment(t, prog, u, x, y, &s0, &s1, s)

		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x += sx
		}
		if e2 <= dx {
			errAcc += dx
			y += sy
		}
		s += ds
	}
}

// writeLineFragment interpolates one line sample at parameter s in [0,1] and
// commits it through the depth test.
func writeLineFragment(t *Target, prog Program, u *Uniforms, x, y int, s0, s1 *screenVertex, s float64) {
	depth := s0.z + (s1.z-s0.z)*s
	if depth >= t.Depth.At(x, y) {
		return
	}

	// Same 1/w correction as the triangle path, reduced to two points.
	q0 := (1 - s) * s0.invW
	q1 := s * s1.invW
	norm := 1 / (q0 + q1)
	vary := s0.vary.Scale(q0 * norm).Add(s1.vary.Scale(q1 * norm))

	out, ok := prog.FragmentShade(Fragment{X: x, Y: y, Depth: depth, Varyings: vary}, u)
	if !ok {
		return
	}
	t.DepthTestAndSet(x, y, depth, Vec4ToColor(out))
}

// segmentParam returns where point c sits between p0 and p1, using the
// dominant axis to avoid dividing by a near-zero span.
func segmentParam(p0, p1 screenVertex, c math3d.Vec2) float64 {
	dx := p1.x - p0.x
	dy := p1.y - p0.y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx == 0 {
			return 0
		}
		return (c.X - p0.x) / dx
	}
	return (c.Y - p0.y) / dy
}

// lerpScreenVertex interpolates a projected vertex at screen parameter t.
// Attributes get the 1/w correction here so a clipped endpoint carries the
// values the original segment had at that point.
func lerpScreenVertex(p0, p1 screenVertex, t float64) screenVertex {
	q0 := (1 - t) * p0.invW
	q1 := t * p1.invW
	norm := 1 / (q0 + q1)
	return screenVertex{
		x:    p0.x + (p1.x-p0.x)*t,
		y:    p0.y + (p1.y-p0.y)*t,
		z:    p0.z + (p1.z-p0.z)*t,
		invW: p0.invW + (p1.invW-p0.invW)*t,
		vary: p0.vary.Scale(q0 * norm).Add(p1.vary.Scale(q1 * norm)),
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
