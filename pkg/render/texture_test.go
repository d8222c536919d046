package render

import (
	"errors"
	"math"
	"testing"

	"github.com/prism3d/prism/pkg/math3d"
)

// twoTone builds a 2x2 texture with a white top-left pixel on black.
func twoTone() *Texture {
	tex := NewTexture(2, 2)
	tex.SetPixel(0, 0, ColorWhite)
	tex.SetPixel(1, 0, ColorBlack)
	tex.SetPixel(0, 1, ColorBlack)
	tex.SetPixel(1, 1, ColorBlack)
	return tex
}

func TestTextureSampleNearest(t *testing.T) {
	tex := twoTone()

	// V is flipped: v=1 addresses image row 0
	got := tex.Sample(math3d.V2(0.25, 0.75))
	if got.X != 1 || got.Y != 1 || got.Z != 1 {
		t.Errorf("sample at top-left = %v, want white", got)
	}

	got = tex.Sample(math3d.V2(0.75, 0.25))
	if got.X != 0 {
		t.Errorf("sample at bottom-right = %v, want black", got)
	}
}

func TestTextureWrapRepeat(t *testing.T) {
	tex := twoTone()

	inside := tex.Sample(math3d.V2(0.25, 0.75))
	for _, uv := range []math3d.Vec2{
		math3d.V2(1.25, 0.75),
		math3d.V2(-0.75, 0.75),
		math3d.V2(0.25, 1.75),
		math3d.V2(2.25, -1.25),
	} {
		if got := tex.Sample(uv); got != inside {
			t.Errorf("repeat sample at %v = %v, want %v", uv, got, inside)
		}
	}
}

func TestTextureWrapClamp(t *testing.T) {
	tex := twoTone()
	tex.WrapU = WrapClamp
	tex.WrapV = WrapClamp

	// Coordinates past 1 clamp to the edge texel
	edge := tex.Sample(math3d.V2(0.99, 0.01))
	if got := tex.Sample(math3d.V2(5, -5)); got != edge {
		t.Errorf("clamped sample = %v, want edge texel %v", got, edge)
	}
}

func TestTextureSampleBilinear(t *testing.T) {
	tex := twoTone()
	tex.FilterMode = FilterBilinear

	// Dead center of the 2x2 grid blends all four texels equally:
	// one white + three black = 25% gray.
	got := tex.Sample(math3d.V2(0.5, 0.5))
	if math.Abs(got.X-0.25) > 0.01 {
		t.Errorf("center bilinear sample = %v, want 0.25", got.X)
	}
}

func TestCheckerTexture(t *testing.T) {
	tex := NewCheckerTexture(8, 8, 2, ColorWhite, ColorBlack)

	if tex.GetPixel(0, 0) != ColorWhite {
		t.Errorf("pixel (0,0) = %v, want white", tex.GetPixel(0, 0))
	}
	if tex.GetPixel(2, 0) != ColorBlack {
		t.Errorf("pixel (2,0) = %v, want black", tex.GetPixel(2, 0))
	}
	if tex.GetPixel(2, 2) != ColorWhite {
		t.Errorf("pixel (2,2) = %v, want white", tex.GetPixel(2, 2))
	}
}

func TestGradientTexture(t *testing.T) {
	tex := NewGradientTexture(16, 4, RGB(0, 0, 0), RGB(255, 255, 255))

	left := tex.GetPixel(0, 0)
	right := tex.GetPixel(15, 0)
	if left.R >= right.R {
		t.Errorf("gradient not increasing: left %v, right %v", left, right)
	}
}

func TestTextureStorage(t *testing.T) {
	store := NewTextureStorage()

	checker := NewCheckerTexture(4, 4, 2, ColorWhite, ColorBlack)
	id := store.Add("checker", checker)

	t.Run("get by id", func(t *testing.T) {
		got, err := store.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		if got != checker {
			t.Error("Get returned a different texture")
		}
	})

	t.Run("get by name", func(t *testing.T) {
		got, err := store.GetByName("checker")
		if err != nil {
			t.Fatal(err)
		}
		if got != checker {
			t.Error("GetByName returned a different texture")
		}
	})

	t.Run("id lookup", func(t *testing.T) {
		gotID, ok := store.ID("checker")
		if !ok || gotID != id {
			t.Errorf("ID(checker) = %v, %v; want %v, true", gotID, ok, id)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := store.Get(9999); !errors.Is(err, ErrTextureNotFound) {
			t.Errorf("error = %v, want ErrTextureNotFound", err)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		if _, err := store.GetByName("nope"); !errors.Is(err, ErrTextureNotFound) {
			t.Errorf("error = %v, want ErrTextureNotFound", err)
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		other := store.Add("gradient", NewGradientTexture(4, 4, ColorWhite, ColorBlack))
		if other == id {
			t.Error("two textures share an id")
		}
	})

	t.Run("id zero is reserved", func(t *testing.T) {
		if id == 0 {
			t.Error("Add assigned the reserved zero id")
		}
		if _, err := store.Get(0); !errors.Is(err, ErrTextureNotFound) {
			t.Errorf("Get(0) = %v, want ErrTextureNotFound", err)
		}
	})
}

func TestUniformsBoundTexture(t *testing.T) {
	store := NewTextureStorage()
	stored := NewCheckerTexture(4, 4, 2, ColorWhite, ColorBlack)
	id := store.Add("checker", stored)
	direct := NewGradientTexture(4, 4, ColorWhite, ColorBlack)

	tests := []struct {
		name string
		u    Uniforms
		want *Texture
	}{
		{"nothing bound", Uniforms{}, nil},
		{"direct texture", Uniforms{Texture: direct}, direct},
		{"storage lookup", Uniforms{Textures: store, TextureID: id}, stored},
		{"direct wins over storage", Uniforms{Texture: direct, Textures: store, TextureID: id}, direct},
		{"zero id means unbound", Uniforms{Textures: store}, nil},
		{"unknown id", Uniforms{Textures: store, TextureID: 9999}, nil},
		{"id without storage", Uniforms{TextureID: id}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.u.BoundTexture(); got != tc.want {
				t.Errorf("BoundTexture() = %p, want %p", got, tc.want)
			}
		})
	}
}

func TestTextureResized(t *testing.T) {
	tex := NewGradientTexture(32, 32, RGB(0, 0, 0), RGB(255, 255, 255))
	tex.WrapU = WrapClamp
	tex.FilterMode = FilterBilinear

	small := tex.Resized(8, 8)
	if small.Width != 8 || small.Height != 8 {
		t.Fatalf("resized to %dx%d, want 8x8", small.Width, small.Height)
	}
	// Sampling configuration carries over
	if small.WrapU != WrapClamp || small.FilterMode != FilterBilinear {
		t.Error("resize dropped wrap or filter configuration")
	}
	// The gradient still runs left to right
	if small.GetPixel(0, 4).R >= small.GetPixel(7, 4).R {
		t.Error("resized gradient lost its direction")
	}
}

func TestTextureFitWithin(t *testing.T) {
	t.Run("oversized is downsampled", func(t *testing.T) {
		tex := NewGradientTexture(64, 32, RGB(0, 0, 0), RGB(255, 255, 255))
		got := tex.FitWithin(16, 16)
		if got.Width != 16 || got.Height != 8 {
			t.Fatalf("fit to %dx%d, want 16x8", got.Width, got.Height)
		}
	})

	t.Run("tall aspect preserved", func(t *testing.T) {
		tex := NewTexture(10, 40)
		got := tex.FitWithin(20, 20)
		if got.Width != 5 || got.Height != 20 {
			t.Fatalf("fit to %dx%d, want 5x20", got.Width, got.Height)
		}
	})

	t.Run("within bounds unchanged", func(t *testing.T) {
		tex := NewTexture(8, 8)
		if got := tex.FitWithin(16, 16); got != tex {
			t.Error("texture within bounds was copied")
		}
	})
}
