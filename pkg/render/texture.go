package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/prism3d/prism/pkg/math3d"
)

// ErrTextureNotFound is returned by TextureStorage lookups that miss.
var ErrTextureNotFound = errors.New("render: texture not found")

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture holds a 2D image for texture mapping.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color    // Row-major pixel data
	WrapU      WrapMode   // Horizontal wrap mode
	WrapV      WrapMode   // Vertical wrap mode
	FilterMode FilterMode // Sampling filter mode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:      width,
		Height:     height,
		Pixels:     make([]Color, width*height),
		WrapU:      WrapRepeat,
		WrapV:      WrapRepeat,
		FilterMode: FilterNearest,
	}
}

// LoadTexture loads a texture from an image file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tex := NewTexture(width, height)

	for y := range height {
		for x := range width {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b, a := c.RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.SetPixel(x, y, Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			})
		}
	}

	return tex
}

// Resized returns a copy of the texture rescaled to the given dimensions
// using Catmull-Rom resampling.
func (t *Texture) Resized(width, height int) *Texture {
	src := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := range t.Height {
		for x := range t.Width {
			src.SetRGBA(x, y, t.Pixels[y*t.Width+x])
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	out := TextureFromImage(dst)
	out.WrapU = t.WrapU
	out.WrapV = t.WrapV
	out.FilterMode = t.FilterMode
	return out
}

// FitWithin returns the texture downsampled to fit inside the given bounds,
// preserving aspect ratio. A texture already within bounds is returned as is.
func (t *Texture) FitWithin(maxWidth, maxHeight int) *Texture {
	if t.Width <= maxWidth && t.Height <= maxHeight {
		return t
	}
	scale := math.Min(float64(maxWidth)/float64(t.Width), float64(maxHeight)/float64(t.Height))
	w := max(1, int(float64(t.Width)*scale))
	h := max(1, int(float64(t.Height)*scale))
	return t.Resized(w, h)
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			cx := x / checkSize
			cy := y / checkSize
			if (cx+cy)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// NewGradientTexture creates a horizontal gradient texture.
func NewGradientTexture(width, height int, left, right Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			t := float64(x) / float64(width-1)
			tex.SetPixel(x, y, lerpColor(left, right, t))
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at the given UV coordinate and returns a
// normalized color vector.
func (t *Texture) Sample(uv math3d.Vec2) math3d.Vec4 {
	u := t.wrapCoord(uv.X, t.WrapU)
	v := t.wrapCoord(uv.Y, t.WrapV)

	// Flip V coordinate (image Y=0 at top, UV V=0 at bottom)
	v = 1.0 - v

	var c Color
	switch t.FilterMode {
	case FilterBilinear:
		c = t.sampleBilinear(u, v)
	default:
		c = t.sampleNearest(u, v)
	}
	return ColorToVec4(c)
}

// wrapCoord applies the wrap mode to a coordinate.
func (t *Texture) wrapCoord(coord float64, mode WrapMode) float64 {
	switch mode {
	case WrapRepeat:
		coord = coord - math.Floor(coord) // fmod to [0,1)
	case WrapClamp:
		coord = math.Max(0, math.Min(1, coord))
	}
	return coord
}

// sampleNearest returns the nearest pixel.
func (t *Texture) sampleNearest(u, v float64) Color {
	x := int(u * float64(t.Width))
	y := int(v * float64(t.Height))

	if x >= t.Width {
		x = t.Width - 1
	}
	if y >= t.Height {
		y = t.Height - 1
	}

	return t.GetPixel(x, y)
}

// sampleBilinear returns bilinearly interpolated color.
func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := x0 + 1
	y1 := y0 + 1

	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x0 = t.wrapPixelCoord(x0, t.Width, t.WrapU)
	x1 = t.wrapPixelCoord(x1, t.Width, t.WrapU)
	y0 = t.wrapPixelCoord(y0, t.Height, t.WrapV)
	y1 = t.wrapPixelCoord(y1, t.Height, t.WrapV)

	c00 := t.GetPixel(x0, y0)
	c10 := t.GetPixel(x1, y0)
	c01 := t.GetPixel(x0, y1)
	c11 := t.GetPixel(x1, y1)

	top := lerpColor(c00, c10, tx)
	bot := lerpColor(c01, c11, tx)
	return lerpColor(top, bot, ty)
}

// wrapPixelCoord wraps a pixel coordinate.
func (t *Texture) wrapPixelCoord(x, size int, mode WrapMode) int {
	switch mode {
	case WrapRepeat:
		x = x % size
		if x < 0 {
			x += size
		}
	case WrapClamp:
		if x < 0 {
			x = 0
		} else if x >= size {
			x = size - 1
		}
	}
	return x
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// TextureStorage owns loaded textures and hands out stable integer ids so
// shader uniforms can reference a texture without holding a pointer.
// Ids start at 1; id 0 is reserved to mean no texture.
type TextureStorage struct {
	textures map[uint32]*Texture
	names    map[string]uint32
	nextID   uint32
}

// NewTextureStorage creates an empty storage.
func NewTextureStorage() *TextureStorage {
	return &TextureStorage{
		textures: make(map[uint32]*Texture),
		names:    make(map[string]uint32),
		nextID:   1,
	}
}

// Add registers a texture under a name and returns its id.
func (s *TextureStorage) Add(name string, tex *Texture) uint32 {
	id := s.nextID
	s.nextID++
	s.textures[id] = tex
	s.names[name] = id
	return id
}

// Load reads an image file and registers it under the given name.
func (s *TextureStorage) Load(name, path string) (uint32, error) {
	tex, err := LoadTexture(path)
	if err != nil {
		return 0, err
	}
	return s.Add(name, tex), nil
}

// Get returns the texture with the given id.
func (s *TextureStorage) Get(id uint32) (*Texture, error) {
	tex, ok := s.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrTextureNotFound, id)
	}
	return tex, nil
}

// GetByName returns the texture registered under name.
func (s *TextureStorage) GetByName(name string) (*Texture, error) {
	id, ok := s.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTextureNotFound, name)
	}
	return s.textures[id], nil
}

// ID returns the id registered under name.
func (s *TextureStorage) ID(name string) (uint32, bool) {
	id, ok := s.names[name]
	return id, ok
}
