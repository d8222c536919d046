package render

// Direct is the CPU-direct backend: transform, cull, clip, and rasterize are
// fused into a single pass per triangle with no intermediate buffers.
type Direct struct {
	pipelineState
}

// NewDirect creates a direct renderer targeting the given resolution.
func NewDirect(width, height int) (*Direct, error) {
	target, err := NewTarget(width, height)
	if err != nil {
		return nil, err
	}
	return &Direct{pipelineState: newPipelineState(target)}, nil
}

// DrawTriangles renders len(verts)/3 triangles in submission order.
func (r *Direct) DrawTriangles(verts []Vertex) (err error) {
	if err := r.validateDraw(verts, nil); err != nil {
		return err
	}
	defer recoverDraw(&err)

	prog, u := r.beginDraw()
	for i := 0; i+2 < len(verts); i += 3 {
		r.drawOne(prog, u, verts[i], verts[i+1], verts[i+2])
	}
	return nil
}

// DrawIndexed renders len(indices)/3 triangles from the shared vertex buffer.
func (r *Direct) DrawIndexed(verts []Vertex, indices []uint32) (err error) {
	if err := r.validateDraw(verts, indices); err != nil {
		return err
	}
	defer recoverDraw(&err)

	prog, u := r.beginDraw()
	for i := 0; i+2 < len(indices); i += 3 {
		r.drawOne(prog, u, verts[indices[i]], verts[indices[i+1]], verts[indices[i+2]])
	}
	return nil
}

// drawOne pushes a single triangle through the whole pipeline.
func (r *Direct) drawOne(prog Program, u *Uniforms, a, b, c Vertex) {
	r.stats.TrianglesIn++

	tri := [3]ClipVertex{
		prog.VertexShade(a, u),
		prog.VertexShade(b, u),
		prog.VertexShade(c, u),
	}

	w0 := tri[0].Varyings.WorldPos
	w1 := tri[1].Varyings.WorldPos
	w2 := tri[2].Varyings.WorldPos
	if shouldCullFace(w0, w1, w2, r.viewDir(w0), r.frontFace, r.faceCull) {
		r.stats.TrianglesCulled++
		return
	}

	if frustumRejects(tri[0].Position, tri[1].Position, tri[2].Position) {
		r.stats.TrianglesCulled++
		return
	}

	r.clipScratch = clipTriangleNear(tri, r.clipScratch[:0])
	r.stats.TrianglesClipped += len(r.clipScratch)

	for _, clipped := range r.clipScratch {
		if r.mode == ModeWireframe {
			rasterizeLine(r.target, prog, u, clipped[0], clipped[1])
			rasterizeLine(r.target, prog, u, clipped[1], clipped[2])
			rasterizeLine(r.target, prog, u, clipped[2], clipped[0])
			r.stats.LinesDrawn += 3
		} else {
			rasterizeTriangle(r.target, prog, u, clipped)
		}
	}
}
