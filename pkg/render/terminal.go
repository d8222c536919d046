package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/prism3d/prism/pkg/math3d"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack    = color.RGBA{0, 0, 0, 255}
	ColorWhite    = color.RGBA{255, 255, 255, 255}
	ColorRed      = color.RGBA{255, 0, 0, 255}
	ColorGreen    = color.RGBA{0, 255, 0, 255}
	ColorBlue     = color.RGBA{0, 0, 255, 255}
	ColorYellow   = color.RGBA{255, 255, 0, 255}
	ColorCyan     = color.RGBA{0, 255, 255, 255}
	ColorMagenta  = color.RGBA{255, 0, 255, 255}
	ColorGray     = color.RGBA{128, 128, 128, 255}
	ColorMidnight = color.RGBA{16, 18, 36, 255}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGBA creates a color from RGBA values.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}

// ColorToVec4 converts an 8-bit color to a normalized [0,1] vector.
func ColorToVec4(c Color) math3d.Vec4 {
	return math3d.V4(
		float64(c.R)/255.0,
		float64(c.G)/255.0,
		float64(c.B)/255.0,
		float64(c.A)/255.0,
	)
}

// Vec4ToColor converts a normalized color vector to 8-bit, clamping to [0,1].
func Vec4ToColor(v math3d.Vec4) Color {
	v = v.Clamp01()
	return Color{
		R: uint8(v.X*255 + 0.5),
		G: uint8(v.Y*255 + 0.5),
		B: uint8(v.Z*255 + 0.5),
		A: uint8(v.W*255 + 0.5),
	}
}

// Draw converts the target's color attachment to terminal cells and draws
// them on the screen. Each terminal row shows two pixel rows using the ▀
// half block: foreground is the top pixel, background the bottom one.
// The target height should be 2x the terminal height.
func (t *Target) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := row * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col < t.Width; col++ {
			topColor := t.GetPixel(col, topY)
			botColor := t.GetPixel(col, botY)

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(topColor),
					Bg: rgbaToColor(botColor),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// TerminalRenderer presents finished frames on a terminal. It owns the
// cell-grid conversion; the pipeline never knows about terminals.
type TerminalRenderer struct {
	term *uv.Terminal
	cols int
	rows int
}

// NewTerminalRenderer wraps a terminal of the given size in cells.
func NewTerminalRenderer(term *uv.Terminal, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{term: term, cols: cols, rows: rows}
}

// FramebufferSize returns the pixel resolution matching the terminal:
// one pixel per column, two per row thanks to the half-block cells.
func (r *TerminalRenderer) FramebufferSize() (width, height int) {
	return r.cols, r.rows * 2
}

// Render converts the target into terminal cells.
func (r *TerminalRenderer) Render(t *Target) {
	t.Draw(r.term, uv.Rect(0, 0, r.cols, r.rows))
}

// Flush pushes the pending cells to the terminal.
func (r *TerminalRenderer) Flush() error {
	return r.term.Display()
}
