package render

import (
	"testing"

	"github.com/prism3d/prism/pkg/math3d"
)

func TestColorVec4RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    Color
	}{
		{"black", RGB(0, 0, 0)},
		{"white", RGB(255, 255, 255)},
		{"mid gray", RGB(128, 128, 128)},
		{"mixed", RGBA(12, 200, 99, 180)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Vec4ToColor(ColorToVec4(tc.c)); got != tc.c {
				t.Errorf("round trip = %v, want %v", got, tc.c)
			}
		})
	}
}

func TestVec4ToColorClamps(t *testing.T) {
	over := Vec4ToColor(math3d.V4(2, 1.5, -0.5, 3))
	if over.R != 255 || over.G != 255 || over.B != 0 || over.A != 255 {
		t.Errorf("clamped color = %v, want (255, 255, 0, 255)", over)
	}
}
