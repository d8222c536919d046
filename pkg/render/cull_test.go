package render

import (
	"testing"

	"github.com/prism3d/prism/pkg/math3d"
)

func TestShouldCullFace(t *testing.T) {
	// Triangle in the z=0 plane wound counter-clockwise when viewed from +Z.
	p0 := math3d.V3(0, 0, 0)
	p1 := math3d.V3(1, 0, 0)
	p2 := math3d.V3(0, 1, 0)

	// Camera at +Z looking toward the triangle
	viewDir := p0.Sub(math3d.V3(0, 0, 5))

	tests := []struct {
		name  string
		front FrontFace
		cull  FaceCull
		want  bool
	}{
		{"ccw front, cull back", FrontCCW, CullBack, false},
		{"ccw front, cull front", FrontCCW, CullFront, true},
		{"cw front, cull back", FrontCW, CullBack, true},
		{"cw front, cull front", FrontCW, CullFront, false},
		{"ccw front, cull none", FrontCCW, CullNone, false},
		{"cw front, cull none", FrontCW, CullNone, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := shouldCullFace(p0, p1, p2, viewDir, tc.front, tc.cull)
			if got != tc.want {
				t.Errorf("shouldCullFace = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShouldCullFaceReversedWinding(t *testing.T) {
	// Swapping two vertices flips the face and the cull decision with it.
	p0 := math3d.V3(0, 0, 0)
	p1 := math3d.V3(1, 0, 0)
	p2 := math3d.V3(0, 1, 0)
	viewDir := p0.Sub(math3d.V3(0, 0, 5))

	ccw := shouldCullFace(p0, p1, p2, viewDir, FrontCCW, CullBack)
	cw := shouldCullFace(p0, p2, p1, viewDir, FrontCCW, CullBack)
	if ccw == cw {
		t.Errorf("reversed winding should flip the cull decision: both %v", ccw)
	}
}

func TestClipOutcode(t *testing.T) {
	tests := []struct {
		name string
		p    math3d.Vec4
		want uint8
	}{
		{"inside", math3d.V4(0, 0, 0, 1), 0},
		{"out left", math3d.V4(-2, 0, 0, 1), outLeft},
		{"out right", math3d.V4(2, 0, 0, 1), outRight},
		{"out bottom", math3d.V4(0, -2, 0, 1), outBottom},
		{"out top", math3d.V4(0, 2, 0, 1), outTop},
		{"out near", math3d.V4(0, 0, -2, 1), outNear},
		{"out far", math3d.V4(0, 0, 2, 1), outFar},
		{"corner", math3d.V4(2, 2, 0, 1), outRight | outTop},
		{"on boundary", math3d.V4(1, 0, 0, 1), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := clipOutcode(tc.p); got != tc.want {
				t.Errorf("clipOutcode(%v) = %b, want %b", tc.p, got, tc.want)
			}
		})
	}
}

func TestFrustumRejects(t *testing.T) {
	inside := math3d.V4(0, 0, 0, 1)
	farLeft := math3d.V4(-5, 0, 0, 1)
	farRight := math3d.V4(5, 0, 0, 1)

	tests := []struct {
		name       string
		v0, v1, v2 math3d.Vec4
		want       bool
	}{
		{"all inside", inside, math3d.V4(0.5, 0, 0, 1), math3d.V4(0, 0.5, 0, 1), false},
		{"all beyond left plane", farLeft, math3d.V4(-6, 1, 0, 1), math3d.V4(-7, -1, 0, 1), true},
		{"spanning left to right", farLeft, farRight, inside, false},
		{"one vertex inside", farLeft, math3d.V4(-6, 0, 0, 1), inside, false},
		{"all beyond far plane", math3d.V4(0, 0, 5, 1), math3d.V4(1, 0, 6, 1), math3d.V4(0, 1, 7, 1), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := frustumRejects(tc.v0, tc.v1, tc.v2); got != tc.want {
				t.Errorf("frustumRejects = %v, want %v", got, tc.want)
			}
		})
	}
}
