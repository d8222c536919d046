package render

import (
	"errors"
	"math"
	"testing"
)

func TestNewTargetInvalidResolution(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative width", -1, 10},
		{"negative height", 10, -5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTarget(tc.width, tc.height)
			if !errors.Is(err, ErrInvalidResolution) {
				t.Errorf("NewTarget(%d, %d) error = %v, want ErrInvalidResolution",
					tc.width, tc.height, err)
			}
		})
	}
}

func TestColorBufferFill(t *testing.T) {
	buffers := []struct {
		name string
		buf  ColorBuffer
	}{
		{"packed", NewPackedBuffer(7, 5)},
		{"planar", NewPlanarBuffer(7, 5)},
	}

	want := RGBA(10, 20, 30, 255)

	for _, tc := range buffers {
		t.Run(tc.name, func(t *testing.T) {
			tc.buf.Fill(want)
			w, h := tc.buf.Size()
			for y := range h {
				for x := range w {
					if got := tc.buf.At(x, y); got != want {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}

			// Filling twice must be idempotent
			tc.buf.Fill(want)
			if got := tc.buf.At(w-1, h-1); got != want {
				t.Errorf("second fill changed pixel: got %v, want %v", got, want)
			}
		})
	}
}

func TestColorBufferParity(t *testing.T) {
	// Packed and planar layouts must be observationally identical.
	packed := NewPackedBuffer(16, 9)
	planar := NewPlanarBuffer(16, 9)

	for y := range 9 {
		for x := range 16 {
			c := RGBA(uint8(x*16), uint8(y*28), uint8(x+y), 255)
			packed.Set(x, y, c)
			planar.Set(x, y, c)
		}
	}

	for y := range 9 {
		for x := range 16 {
			if packed.At(x, y) != planar.At(x, y) {
				t.Fatalf("layouts disagree at (%d,%d): packed %v, planar %v",
					x, y, packed.At(x, y), planar.At(x, y))
			}
		}
	}
}

func TestColorBufferBounds(t *testing.T) {
	buffers := []struct {
		name string
		buf  ColorBuffer
	}{
		{"packed", NewPackedBuffer(4, 4)},
		{"planar", NewPlanarBuffer(4, 4)},
	}

	for _, tc := range buffers {
		t.Run(tc.name, func(t *testing.T) {
			// Out-of-bounds writes are dropped, reads return zero
			tc.buf.Set(-1, 0, RGB(255, 0, 0))
			tc.buf.Set(0, -1, RGB(255, 0, 0))
			tc.buf.Set(4, 0, RGB(255, 0, 0))
			tc.buf.Set(0, 4, RGB(255, 0, 0))

			if got := tc.buf.At(-1, 0); got != (Color{}) {
				t.Errorf("out-of-bounds read = %v, want zero color", got)
			}
			if got := tc.buf.At(4, 4); got != (Color{}) {
				t.Errorf("out-of-bounds read = %v, want zero color", got)
			}
		})
	}
}

func TestDepthBufferClear(t *testing.T) {
	db := NewDepthBuffer(8, 8)
	db.Set(3, 3, 0.5)
	db.Clear()

	for y := range 8 {
		for x := range 8 {
			if db.At(x, y) != math.MaxFloat64 {
				t.Fatalf("depth (%d,%d) = %v after clear, want MaxFloat64", x, y, db.At(x, y))
			}
		}
	}
}

func TestDepthTestAndSet(t *testing.T) {
	target, err := NewTarget(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	target.Clear(ColorBlack)

	red := RGB(255, 0, 0)
	green := RGB(0, 255, 0)
	blue := RGB(0, 0, 255)

	// First write always passes against a cleared buffer
	if !target.DepthTestAndSet(1, 1, 0.8, red) {
		t.Error("write against cleared depth buffer should pass")
	}
	if target.GetPixel(1, 1) != red {
		t.Errorf("pixel = %v, want %v", target.GetPixel(1, 1), red)
	}

	// Closer fragment wins
	if !target.DepthTestAndSet(1, 1, 0.3, green) {
		t.Error("closer fragment should pass the depth test")
	}
	if target.GetPixel(1, 1) != green {
		t.Errorf("pixel = %v, want %v", target.GetPixel(1, 1), green)
	}

	// Farther fragment rejected, color untouched
	if target.DepthTestAndSet(1, 1, 0.6, blue) {
		t.Error("farther fragment should fail the depth test")
	}
	if target.GetPixel(1, 1) != green {
		t.Errorf("rejected fragment modified color: %v", target.GetPixel(1, 1))
	}

	// Equal depth rejected (first write wins)
	if target.DepthTestAndSet(1, 1, 0.3, blue) {
		t.Error("equal-depth fragment should fail the depth test")
	}
}

func TestTargetClearResetsDepth(t *testing.T) {
	target, err := NewTarget(4, 4)
	if err != nil {
		t.Fatal(err)
	}

	target.DepthTestAndSet(2, 2, 0.1, RGB(255, 255, 255))
	target.Clear(ColorBlack)

	if target.DepthAt(2, 2) != math.MaxFloat64 {
		t.Errorf("depth after Clear = %v, want MaxFloat64", target.DepthAt(2, 2))
	}
	if !target.DepthTestAndSet(2, 2, 0.9, RGB(1, 2, 3)) {
		t.Error("write after Clear should pass the depth test")
	}
}

func TestTargetWithPlanarColor(t *testing.T) {
	target, err := NewTargetWithColor(NewPlanarBuffer(6, 6))
	if err != nil {
		t.Fatal(err)
	}

	bg := RGB(40, 40, 60)
	target.Clear(bg)
	if target.GetPixel(5, 5) != bg {
		t.Errorf("pixel = %v, want %v", target.GetPixel(5, 5), bg)
	}

	img := target.Image()
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 6 {
		t.Errorf("image bounds = %v, want 6x6", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != bg {
		t.Errorf("image pixel = %v, want %v", got, bg)
	}
}

func BenchmarkPackedFill(b *testing.B) {
	buf := NewPackedBuffer(320, 180)
	c := RGB(30, 30, 50)
	for b.Loop() {
		buf.Fill(c)
	}
}

func BenchmarkPlanarFill(b *testing.B) {
	buf := NewPlanarBuffer(320, 180)
	c := RGB(30, 30, 50)
	for b.Loop() {
		buf.Fill(c)
	}
}

func BenchmarkDepthClear(b *testing.B) {
	db := NewDepthBuffer(320, 180)
	for b.Loop() {
		db.Clear()
	}
}
