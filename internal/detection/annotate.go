package detection

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/object-counter/internal/segment"
)

// paletteHex is the outline color cycle, one entry per object index.
var paletteHex = []string{
	"#00ff00", "#0000ff", "#ff0000", "#00ffff", "#ff00ff",
	"#ffff00", "#800080", "#00a5ff", "#808000", "#008080",
}

// Palette holds the parsed outline colors.
var Palette = parsePalette(paletteHex)

// parsePalette panics on a malformed entry; the table is fixed at compile time.
func parsePalette(hexes []string) []color.RGBA {
	out := make([]color.RGBA, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("detection: bad palette color %q: %v", h, err))
		}
		r, g, b := c.RGB255()
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// PaletteColor returns the outline color for a 1-based object index.
func PaletteColor(index int) color.RGBA {
	n := len(Palette)
	return Palette[((index-1)%n+n)%n]
}

// AnnotateOptions controls what Annotate draws.
type AnnotateOptions struct {
	// Thickness of contour outlines in pixels.
	Thickness int

	// BoundaryColor paints watershed boundary cells.
	BoundaryColor color.RGBA

	// LabelColor is used for the index drawn at each centroid.
	LabelColor color.RGBA

	// ShowLabels draws each object's index at its centroid.
	ShowLabels bool

	// ShowBanner draws "Objects detected: N" in the top-left corner.
	ShowBanner bool
}

// DefaultAnnotateOptions draws red boundaries, 2-pixel outlines, white
// indexes and the count banner.
func DefaultAnnotateOptions() AnnotateOptions {
	return AnnotateOptions{
		Thickness:     2,
		BoundaryColor: color.RGBA{R: 255, A: 255},
		LabelColor:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
		ShowLabels:    true,
		ShowBanner:    true,
	}
}

// Annotate draws the count onto a copy of img and returns it. img, grid and
// result are not modified.
//
// Drawing order:
//  1. Boundary cells of grid (may be nil) in BoundaryColor
//  2. Each contour in PaletteColor(Index)
//  3. Each index at (centroid.X-10, centroid.Y+5), the text baseline origin
//  4. The banner at (10, 30), white with a black overlay
func Annotate(img image.Image, grid *segment.LabelGrid, result *Result, opts AnnotateOptions) *image.NRGBA {
	out := imaging.Clone(img)

	if grid != nil {
		for y := 0; y < grid.Height; y++ {
			for x := 0; x < grid.Width; x++ {
				if grid.State(x, y) == segment.CellBoundary {
					out.SetNRGBA(x, y, toNRGBA(opts.BoundaryColor))
				}
			}
		}
	}

	if result == nil {
		return out
	}

	for _, det := range result.Detections {
		drawContour(out, det.Contour, PaletteColor(det.Index), opts.Thickness)
	}
	if opts.ShowLabels {
		for _, det := range result.Detections {
			drawText(out, strconv.Itoa(det.Index), det.Centroid.X-10, det.Centroid.Y+5, opts.LabelColor, true)
		}
	}
	if opts.ShowBanner {
		banner := fmt.Sprintf("Objects detected: %d", result.Count)
		drawText(out, banner, 10, 30, color.RGBA{R: 255, G: 255, B: 255, A: 255}, true)
		drawText(out, banner, 10, 30, color.RGBA{A: 255}, false)
	}
	return out
}

func toNRGBA(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// drawContour strokes the closed polygon with a square brush.
func drawContour(img *image.NRGBA, contour []Point, c color.RGBA, thickness int) {
	if len(contour) == 0 {
		return
	}
	if thickness < 1 {
		thickness = 1
	}
	for i, p := range contour {
		q := contour[(i+1)%len(contour)]
		drawLine(img, p, q, c, thickness)
	}
}

// drawLine uses Bresenham's algorithm and stamps a thickness x thickness
// square at every step.
func drawLine(img *image.NRGBA, a, b Point, c color.RGBA, thickness int) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		stamp(img, x, y, c, thickness)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func stamp(img *image.NRGBA, x, y int, c color.RGBA, thickness int) {
	lo := -(thickness / 2)
	bounds := img.Bounds()
	nc := toNRGBA(c)
	for oy := lo; oy < lo+thickness; oy++ {
		for ox := lo; ox < lo+thickness; ox++ {
			p := image.Point{X: x + ox, Y: y + oy}
			if p.In(bounds) {
				img.SetNRGBA(p.X, p.Y, nc)
			}
		}
	}
}

// drawText writes s with its baseline starting at (x, y). Bold text is
// drawn twice, one pixel apart.
func drawText(img *image.NRGBA, s string, x, y int, c color.RGBA, bold bool) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	offsets := []int{0}
	if bold {
		offsets = []int{0, 1}
	}
	for _, o := range offsets {
		d.Dot = fixed.P(x+o, y)
		d.DrawString(s)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
