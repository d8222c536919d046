package render

// StageBuffers holds the intermediate geometry a Staged renderer materializes
// between pipeline stages for the most recent draw call. Useful for
// inspecting what each stage produced; not a performance feature.
type StageBuffers struct {
	// Transformed holds every submitted vertex after the vertex stage,
	// three per input triangle, in submission order.
	Transformed []ClipVertex

	// Culled holds the triangles that survived backface and frustum
	// culling, three vertices per triangle.
	Culled []ClipVertex

	// Clipped holds the triangles emitted by the near-plane clipper, three
	// vertices per triangle. This is exactly what the rasterizer consumed.
	Clipped []ClipVertex
}

func (b *StageBuffers) reset() {
	b.Transformed = b.Transformed[:0]
	b.Culled = b.Culled[:0]
	b.Clipped = b.Clipped[:0]
}

// Staged is the GPU-simulated backend: each stage runs to completion over
// the whole draw call and writes its output to an explicit buffer before the
// next stage starts, mimicking a hardware pipeline's stage boundaries. The
// color output is identical to the Direct backend for identical input.
type Staged struct {
	pipelineState
	stages StageBuffers
}

// NewStaged creates a staged renderer targeting the given resolution.
func NewStaged(width, height int) (*Staged, error) {
	target, err := NewTarget(width, height)
	if err != nil {
		return nil, err
	}
	return &Staged{pipelineState: newPipelineState(target)}, nil
}

// Stages exposes the intermediate buffers of the most recent draw call.
func (r *Staged) Stages() *StageBuffers {
	return &r.stages
}

// DrawTriangles renders len(verts)/3 triangles in submission order.
func (r *Staged) DrawTriangles(verts []Vertex) (err error) {
	if err := r.validateDraw(verts, nil); err != nil {
		return err
	}
	defer recoverDraw(&err)

	prog, u := r.beginDraw()

	r.stages.reset()
	for _, v := range verts {
		r.stages.Transformed = append(r.stages.Transformed, prog.VertexShade(v, u))
	}
	r.runStages(prog, u)
	return nil
}

// DrawIndexed renders len(indices)/3 triangles from the shared vertex buffer.
func (r *Staged) DrawIndexed(verts []Vertex, indices []uint32) (err error) {
	if err := r.validateDraw(verts, indices); err != nil {
		return err
	}
	defer recoverDraw(&err)

	prog, u := r.beginDraw()

	// The vertex stage runs per index; a post-transform cache would be an
	// optimization the staged backend deliberately skips to keep each stage
	// a plain pass over its input.
	r.stages.reset()
	for _, idx := range indices {
		r.stages.Transformed = append(r.stages.Transformed, prog.VertexShade(verts[idx], u))
	}
	r.runStages(prog, u)
	return nil
}

// runStages executes cull, clip, and rasterize as whole-buffer passes.
func (r *Staged) runStages(prog Program, u *Uniforms) {
	// Cull stage: Transformed -> Culled.
	for i := 0; i+2 < len(r.stages.Transformed); i += 3 {
		r.stats.TrianglesIn++
		t0 := r.stages.Transformed[i]
		t1 := r.stages.Transformed[i+1]
		t2 := r.stages.Transformed[i+2]

		w0 := t0.Varyings.WorldPos
		if shouldCullFace(w0, t1.Varyings.WorldPos, t2.Varyings.WorldPos, r.viewDir(w0), r.frontFace, r.faceCull) {
			r.stats.TrianglesCulled++
			continue
		}
		if frustumRejects(t0.Position, t1.Position, t2.Position) {
			r.stats.TrianglesCulled++
			continue
		}
		r.stages.Culled = append(r.stages.Culled, t0, t1, t2)
	}

	// Clip stage: Culled -> Clipped.
	for i := 0; i+2 < len(r.stages.Culled); i += 3 {
		tri := [3]ClipVertex{r.stages.Culled[i], r.stages.Culled[i+1], r.stages.Culled[i+2]}
		r.clipScratch = clipTriangleNear(tri, r.clipScratch[:0])
		r.stats.TrianglesClipped += len(r.clipScratch)
		for _, clipped := range r.clipScratch {
			r.stages.Clipped = append(r.stages.Clipped, clipped[0], clipped[1], clipped[2])
		}
	}

	// Raster stage: Clipped -> Target.
	for i := 0; i+2 < len(r.stages.Clipped); i += 3 {
		tri := [3]ClipVertex{r.stages.Clipped[i], r.stages.Clipped[i+1], r.stages.Clipped[i+2]}
		if r.mode == ModeWireframe {
			rasterizeLine(r.target, prog, u, tri[0], tri[1])
			rasterizeLine(r.target, prog, u, tri[1], tri[2])
			rasterizeLine(r.target, prog, u, tri[2], tri[0])
			r.stats.LinesDrawn += 3
		} else {
			rasterizeTriangle(r.target, prog, u, tri)
		}
	}
}
