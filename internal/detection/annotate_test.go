package detection

import (
	"image"
	"image/color"
	"testing"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var white = color.RGBA{255, 255, 255, 255}

func TestPaletteColor_Cycles(t *testing.T) {
	if len(Palette) != 10 {
		t.Fatalf("palette size: got %d, want 10", len(Palette))
	}
	if got := PaletteColor(1); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("first color: got %v, want green", got)
	}
	if got := PaletteColor(2); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("second color: got %v, want blue", got)
	}
	for i := 1; i <= 10; i++ {
		if PaletteColor(i) != PaletteColor(i+10) {
			t.Errorf("index %d and %d should share a color", i, i+10)
		}
	}
}

func TestParsePalette(t *testing.T) {
	got := parsePalette([]string{"#00a5ff", "#808000", "#FFFFFF"})
	want := []color.RGBA{
		{0, 165, 255, 255},
		{128, 128, 0, 255},
		{255, 255, 255, 255},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d colors, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("color %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParsePalette_PanicsOnBadHex(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for malformed color")
		}
	}()
	parsePalette([]string{"not-a-color"})
}

func TestAnnotate_DoesNotModifyInput(t *testing.T) {
	img := createTestImage(40, 40, white)
	g := gridWithRegions(40, 40, map[int][]image.Rectangle{2: {image.Rect(10, 10, 30, 30)}})
	result := Count(g, 50)

	out := Annotate(img, g, result, DefaultAnnotateOptions())
	if out == nil {
		t.Fatal("Annotate returned nil")
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if img.RGBAAt(x, y) != white {
				t.Fatalf("input modified at (%d,%d)", x, y)
			}
		}
	}
	if out.Bounds() != img.Bounds() {
		t.Errorf("bounds: got %v, want %v", out.Bounds(), img.Bounds())
	}
}

func TestAnnotate_ContoursAndBoundaries(t *testing.T) {
	img := createTestImage(60, 30, white)
	g := gridWithRegions(60, 30, map[int][]image.Rectangle{
		2: {image.Rect(5, 5, 25, 25)},
		3: {image.Rect(35, 5, 55, 25)},
	})
	for y := 0; y < 30; y++ {
		g.SetBoundary(30, y)
	}
	result := Count(g, 50)

	opts := DefaultAnnotateOptions()
	opts.Thickness = 1
	opts.ShowLabels = false
	opts.ShowBanner = false
	out := Annotate(img, g, result, opts)

	if c := out.NRGBAAt(30, 2); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("boundary cell: got %v, want red", c)
	}
	for _, det := range result.Detections {
		want := toNRGBA(PaletteColor(det.Index))
		p := det.Contour[0]
		if c := out.NRGBAAt(p.X, p.Y); c != want {
			t.Errorf("detection %d outline: got %v, want %v", det.Index, c, want)
		}
	}
	if c := out.NRGBAAt(15, 15); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("object interior should be untouched, got %v", c)
	}
}

func TestAnnotate_LabelsAndBanner(t *testing.T) {
	img := createTestImage(200, 80, color.RGBA{128, 128, 128, 255})
	g := gridWithRegions(200, 80, map[int][]image.Rectangle{2: {image.Rect(100, 40, 140, 70)}})
	result := Count(g, 50)

	plain := DefaultAnnotateOptions()
	plain.ShowLabels = false
	plain.ShowBanner = false
	base := Annotate(img, g, result, plain)
	full := Annotate(img, g, result, DefaultAnnotateOptions())

	changed := func(r image.Rectangle) bool {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if base.NRGBAAt(x, y) != full.NRGBAAt(x, y) {
					return true
				}
			}
		}
		return false
	}

	if !changed(image.Rect(10, 18, 160, 33)) {
		t.Error("banner text not drawn")
	}
	c := result.Detections[0].Centroid
	if !changed(image.Rect(c.X-10, c.Y-8, c.X, c.Y+6)) {
		t.Error("index label not drawn near centroid")
	}
}

func TestAnnotate_NilResult(t *testing.T) {
	img := createTestImage(10, 10, white)

	out := Annotate(img, nil, nil, DefaultAnnotateOptions())
	if out.NRGBAAt(5, 5) != (color.NRGBA{255, 255, 255, 255}) {
		t.Error("nothing should be drawn without a grid or result")
	}
}
