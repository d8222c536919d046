// Package render implements a software 3D rendering pipeline for Prism:
// framebuffer attachments, geometry transform, culling, clipping,
// rasterization with perspective-correct interpolation, a programmable
// shader stage, and terminal presentation.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
)

// ErrInvalidResolution is returned when a render target is created with a
// non-positive width or height.
var ErrInvalidResolution = errors.New("render: resolution must be positive")

// ColorBuffer is the storage backend for the color attachment. Two layouts
// are provided: PackedBuffer (flat []Color, the default) and PlanarBuffer
// (separate byte planes per channel). The packed layout clears and writes
// faster; the planar one is kept swappable for layout experiments.
type ColorBuffer interface {
	Size() (width, height int)
	Set(x, y int, c Color)
	At(x, y int) Color
	Fill(c Color)
	Image() *image.RGBA
}

// PackedBuffer stores pixels as a flat row-major []Color.
type PackedBuffer struct {
	width  int
	height int
	pixels []Color
}

// NewPackedBuffer allocates a packed color buffer.
func NewPackedBuffer(width, height int) *PackedBuffer {
	return &PackedBuffer{
		width:  width,
		height: height,
		pixels: make([]Color, width*height),
	}
}

// Size returns the buffer dimensions.
func (b *PackedBuffer) Size() (int, int) { return b.width, b.height }

// Set writes a pixel. Out-of-bounds writes are ignored.
func (b *PackedBuffer) Set(x, y int, c Color) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.pixels[y*b.width+x] = c
}

// At returns the pixel at (x, y), or transparent black out of bounds.
func (b *PackedBuffer) At(x, y int) Color {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Color{}
	}
	return b.pixels[y*b.width+x]
}

// Fill sets every pixel to c using copy-doubling for a bulk memory fill.
func (b *PackedBuffer) Fill(c Color) {
	n := len(b.pixels)
	if n == 0 {
		return
	}
	b.pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(b.pixels[i:], b.pixels[:i])
	}
}

// Image converts the buffer to a standard Go image.RGBA.
func (b *PackedBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			img.SetRGBA(x, y, b.pixels[y*b.width+x])
		}
	}
	return img
}

// PlanarBuffer stores each channel in its own byte plane (structure of
// arrays). Slower to clear than PackedBuffer; kept for comparison.
type PlanarBuffer struct {
	width  int
	height int
	r      []uint8
	g      []uint8
	bl     []uint8
	a      []uint8
}

// NewPlanarBuffer allocates a planar color buffer.
func NewPlanarBuffer(width, height int) *PlanarBuffer {
	n := width * height
	return &PlanarBuffer{
		width:  width,
		height: height,
		r:      make([]uint8, n),
		g:      make([]uint8, n),
		bl:     make([]uint8, n),
		a:      make([]uint8, n),
	}
}

// Size returns the buffer dimensions.
func (b *PlanarBuffer) Size() (int, int) { return b.width, b.height }

// Set writes a pixel. Out-of-bounds writes are ignored.
func (b *PlanarBuffer) Set(x, y int, c Color) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := y*b.width + x
	b.r[i] = c.R
	b.g[i] = c.G
	b.bl[i] = c.B
	b.a[i] = c.A
}

// At returns the pixel at (x, y), or transparent black out of bounds.
func (b *PlanarBuffer) At(x, y int) Color {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Color{}
	}
	i := y*b.width + x
	return Color{R: b.r[i], G: b.g[i], B: b.bl[i], A: b.a[i]}
}

// Fill sets every pixel to c, one bulk fill per plane.
func (b *PlanarBuffer) Fill(c Color) {
	fillBytes(b.r, c.R)
	fillBytes(b.g, c.G)
	fillBytes(b.bl, c.B)
	fillBytes(b.a, c.A)
}

// Image converts the buffer to a standard Go image.RGBA.
func (b *PlanarBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			i := y*b.width + x
			img.SetRGBA(x, y, Color{R: b.r[i], G: b.g[i], B: b.bl[i], A: b.a[i]})
		}
	}
	return img
}

func fillBytes(buf []uint8, v uint8) {
	n := len(buf)
	if n == 0 {
		return
	}
	buf[0] = v
	for i := 1; i < n; i *= 2 {
		copy(buf[i:], buf[:i])
	}
}

// DepthBuffer is a flat row-major Z-buffer. Smaller values are closer;
// cleared to math.MaxFloat64.
type DepthBuffer struct {
	width  int
	height int
	depth  []float64
}

// NewDepthBuffer allocates a depth buffer.
func NewDepthBuffer(width, height int) *DepthBuffer {
	b := &DepthBuffer{
		width:  width,
		height: height,
		depth:  make([]float64, width*height),
	}
	b.Clear()
	return b
}

// Clear resets every depth sample to the far value using copy-doubling.
func (b *DepthBuffer) Clear() {
	n := len(b.depth)
	if n == 0 {
		return
	}
	b.depth[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(b.depth[i:], b.depth[:i])
	}
}

// At returns the depth at (x, y), or the far value out of bounds.
func (b *DepthBuffer) At(x, y int) float64 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return math.MaxFloat64
	}
	return b.depth[y*b.width+x]
}

// Set writes the depth at (x, y). Out-of-bounds writes are ignored.
func (b *DepthBuffer) Set(x, y int, z float64) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.depth[y*b.width+x] = z
}

// Target is a render target: a color attachment and a depth attachment of
// the same dimensions. Allocated once, cleared at the start of each frame,
// written during the frame, read at frame end for presentation.
type Target struct {
	Width  int
	Height int
	Color  ColorBuffer
	Depth  *DepthBuffer
}

// NewTarget creates a render target with the default packed color layout.
func NewTarget(width, height int) (*Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidResolution, width, height)
	}
	return &Target{
		Width:  width,
		Height: height,
		Color:  NewPackedBuffer(width, height),
		Depth:  NewDepthBuffer(width, height),
	}, nil
}

// NewTargetWithColor creates a render target backed by the given color buffer.
func NewTargetWithColor(buf ColorBuffer) (*Target, error) {
	w, h := buf.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidResolution, w, h)
	}
	return &Target{Width: w, Height: h, Color: buf, Depth: NewDepthBuffer(w, h)}, nil
}

// Clear resets the color plane to c and the depth plane to the far value.
func (t *Target) Clear(c Color) {
	t.Color.Fill(c)
	t.Depth.Clear()
}

// ClearDepth resets only the depth plane.
func (t *Target) ClearDepth() {
	t.Depth.Clear()
}

// DepthTestAndSet compares z against the stored depth at (x, y). If z is
// closer it writes both planes and reports success, otherwise it leaves the
// target unchanged. Out-of-bounds coordinates always fail.
func (t *Target) DepthTestAndSet(x, y int, z float64, c Color) bool {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return false
	}
	i := y*t.Width + x
	if z >= t.Depth.depth[i] {
		return false
	}
	t.Depth.depth[i] = z
	t.Color.Set(x, y, c)
	return true
}

// DepthAt returns the stored depth at (x, y).
func (t *Target) DepthAt(x, y int) float64 {
	return t.Depth.At(x, y)
}

// SetPixel writes a color without a depth test.
func (t *Target) SetPixel(x, y int, c Color) {
	t.Color.Set(x, y, c)
}

// GetPixel returns the color at (x, y).
func (t *Target) GetPixel(x, y int) Color {
	return t.Color.At(x, y)
}

// Image converts the color attachment to a standard Go image.
func (t *Target) Image() *image.RGBA {
	return t.Color.Image()
}

// SavePNG writes the color attachment as a PNG file.
func (t *Target) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, t.Image())
}
