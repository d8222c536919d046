package render

import (
	"errors"
	"fmt"

	"github.com/prism3d/prism/pkg/math3d"
)

// Configuration and input errors, reported before any frame work begins.
var (
	ErrVertexCount     = errors.New("render: vertex count must be a multiple of 3")
	ErrIndexCount      = errors.New("render: index count must be a multiple of 3")
	ErrIndexOutOfRange = errors.New("render: index out of range")
	ErrNonFiniteMatrix = errors.New("render: matrix contains NaN or Inf")
)

// RenderMode selects how draw calls produce pixels.
type RenderMode int

const (
	ModeFill     RenderMode = iota // Filled triangles, no texture
	ModeTextured                   // Filled triangles with the bound texture
	ModeWireframe
)

// FrameStats counts work done and skipped since the last reset.
type FrameStats struct {
	TrianglesIn      int // Submitted
	TrianglesCulled  int // Dropped by backface or frustum culling
	TrianglesClipped int // Emitted by the near-plane clipper
	LinesDrawn       int
}

// Renderer is the pipeline orchestrator. Two implementations exist: Direct
// fuses all stages into one pass per triangle, Staged materializes the
// intermediate buffers between stages. Both produce identical color output
// for identical input.
type Renderer interface {
	// Target returns the render target for presentation or inspection.
	Target() *Target

	// Clear resets both attachments. ClearDepth resets only depth.
	Clear(c Color)
	ClearDepth()

	// Size returns the target dimensions.
	Size() (width, height int)

	// SetProgram selects the active shader program for subsequent draws.
	SetProgram(p Program)

	// Uniforms exposes the mutable per-draw uniform state.
	Uniforms() *Uniforms

	// Pipeline configuration.
	SetFaceCull(c FaceCull)
	SetFrontFace(f FrontFace)
	SetRenderMode(m RenderMode)

	// DrawTriangles renders len(verts)/3 triangles in submission order.
	DrawTriangles(verts []Vertex) error

	// DrawIndexed renders len(indices)/3 triangles from the shared vertex
	// buffer.
	DrawIndexed(verts []Vertex, indices []uint32) error

	// Stats returns counters accumulated since ResetStats.
	Stats() FrameStats
	ResetStats()
}

// pipelineState is the configuration and scratch state shared by both
// backends.
type pipelineState struct {
	target    *Target
	program   Program
	uniforms  Uniforms
	faceCull  FaceCull
	frontFace FrontFace
	mode      RenderMode
	stats     FrameStats

	// Scratch buffer reused by the near clipper to avoid per-triangle
	// allocation.
	clipScratch [][3]ClipVertex
}

func newPipelineState(target *Target) pipelineState {
	return pipelineState{
		target:    target,
		program:   UnlitProgram{},
		faceCull:  CullBack,
		frontFace: FrontCW,
		mode:      ModeTextured,
		uniforms: Uniforms{
			Model:      math3d.Identity(),
			View:       math3d.Identity(),
			Projection: math3d.Identity(),
			Material:   DefaultMaterial(),
		},
		clipScratch: make([][3]ClipVertex, 0, 4),
	}
}

func (s *pipelineState) Target() *Target            { return s.target }
func (s *pipelineState) Clear(c Color)              { s.target.Clear(c) }
func (s *pipelineState) ClearDepth()                { s.target.ClearDepth() }
func (s *pipelineState) Size() (int, int)           { return s.target.Width, s.target.Height }
func (s *pipelineState) SetProgram(p Program)       { s.program = p }
func (s *pipelineState) Uniforms() *Uniforms        { return &s.uniforms }
func (s *pipelineState) SetFaceCull(c FaceCull)     { s.faceCull = c }
func (s *pipelineState) SetFrontFace(f FrontFace)   { s.frontFace = f }
func (s *pipelineState) SetRenderMode(m RenderMode) { s.mode = m }
func (s *pipelineState) Stats() FrameStats          { return s.stats }
func (s *pipelineState) ResetStats()                { s.stats = FrameStats{} }

// validateDraw checks everything that must hold before the frame is touched.
// Malformed input is a caller bug surfaced as an error here, never discovered
// mid-rasterization.
func (s *pipelineState) validateDraw(verts []Vertex, indices []uint32) error {
	if indices == nil {
		if len(verts)%3 != 0 {
			return fmt.Errorf("%w: got %d", ErrVertexCount, len(verts))
		}
	} else {
		if len(indices)%3 != 0 {
			return fmt.Errorf("%w: got %d", ErrIndexCount, len(indices))
		}
		n := uint32(len(verts))
		for _, idx := range indices {
			if idx >= n {
				return fmt.Errorf("%w: index %d, %d vertices", ErrIndexOutOfRange, idx, n)
			}
		}
	}

	if !s.uniforms.Model.IsFinite() || !s.uniforms.View.IsFinite() || !s.uniforms.Projection.IsFinite() {
		return ErrNonFiniteMatrix
	}
	return nil
}

// beginDraw finalizes per-draw uniform state and returns the resolved
// program and an effective uniform view honoring the render mode. The
// program is resolved once here so the inner loop never does a dynamic
// lookup per pixel.
func (s *pipelineState) beginDraw() (Program, *Uniforms) {
	s.uniforms.finalize()
	if s.mode == ModeFill {
		// Hide both texture bindings without touching user state.
		u := s.uniforms
		u.Texture = nil
		u.TextureID = 0
		return s.program, &u
	}
	return s.program, &s.uniforms
}

// recoverDraw converts a panicking shader program into an error at the draw
// call boundary. The target is left partially written; the caller must clear
// before retrying.
func recoverDraw(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("render: shader program panicked: %v", r)
	}
}

// viewDir returns the direction used for the backface test: from the camera
// position toward the triangle's first vertex.
func (s *pipelineState) viewDir(p0 math3d.Vec3) math3d.Vec3 {
	return p0.Sub(s.uniforms.CameraPos)
}
