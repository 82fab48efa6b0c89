package segment

import (
	"image"
	"testing"
)

// textured builds a gray image with light and dark blobs, a gradient and
// a faint square so every detector has something to find.
func textured() *image.Gray {
	return grayWith(64, 48, func(x, y int) uint8 {
		v := 100 + x
		dx, dy := x-16, y-16
		if dx*dx+dy*dy < 64 {
			v = 20
		}
		dx, dy = x-44, y-30
		if dx*dx+dy*dy < 80 {
			v = 240
		}
		if x >= 5 && x < 15 && y >= 32 && y < 42 {
			v += 12
		}
		if v > 255 {
			v = 255
		}
		return uint8(v)
	})
}

func allDetectors() []Detector {
	return []Detector{
		GlobalDark{},
		GlobalLight{},
		LocalDark{Window: 11, Bias: 2},
		LocalLight{Window: 11, Bias: 2},
		EdgeBlobs{Low: 50, High: 150, Element: Rect(3, 3), Iterations: 1},
		NotBright{Level: 220},
	}
}

func TestUnion_SupersetOfEveryDetector(t *testing.T) {
	images := map[string]*image.Gray{
		"textured": textured(),
		"uniform":  uniformGray(20, 20, 128),
		"black":    uniformGray(20, 20, 0),
	}

	for name, g := range images {
		t.Run(name, func(t *testing.T) {
			u := Union{Detectors: allDetectors()}
			union := u.Detect(g)
			for _, d := range u.Detectors {
				m := d.Detect(g)
				for i, v := range m.Pix {
					if v != Off && union.Pix[i] == Off {
						t.Fatalf("%s marks cell %d that the union does not", d.Name(), i)
					}
				}
			}
		})
	}
}

func TestUnion_Empty(t *testing.T) {
	m := Union{}.Detect(textured())
	if !m.IsEmpty() || m.Width != 64 || m.Height != 48 {
		t.Errorf("empty union should yield an empty 64x48 mask, got %dx%d with %d cells",
			m.Width, m.Height, m.Count())
	}
}

func TestDetectors_DistinctNames(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range append(allDetectors(), FilledEdges{}, Union{}, Union{Label: "light"}) {
		if seen[d.Name()] {
			t.Errorf("duplicate detector name %q", d.Name())
		}
		seen[d.Name()] = true
	}
}

func TestEdgeBlobs_OutlinesSquare(t *testing.T) {
	g := grayWith(40, 40, func(x, y int) uint8 {
		if x >= 10 && x < 30 && y >= 10 && y < 30 {
			return 0
		}
		return 255
	})

	m := EdgeBlobs{Low: 50, High: 150, Element: Rect(3, 3), Iterations: 1}.Detect(g)
	if !m.At(10, 20) || !m.At(29, 20) {
		t.Error("square sides should be covered by edge blobs")
	}
	if m.At(20, 20) || m.At(2, 2) {
		t.Error("square center and far background should stay clear")
	}
}

func TestFilledEdges_FillsSmallOutline(t *testing.T) {
	// Thin bright ring barely distinguishable from the background
	g := grayWith(40, 40, func(x, y int) uint8 {
		dx, dy := x-20, y-20
		d := dx*dx + dy*dy
		if d >= 25 && d <= 36 {
			return 140
		}
		return 230
	})

	d := FilledEdges{
		Edges:      EdgeBlobs{Low: 30, High: 80, Element: Ellipse(3, 3), Iterations: 2},
		Fill:       Ellipse(7, 7),
		Iterations: 3,
	}
	if !d.Detect(g).At(20, 20) {
		t.Error("interior of a small outline should be filled")
	}
}

func TestNotBright(t *testing.T) {
	g := grayWith(3, 1, func(x, _ int) uint8 { return []uint8{100, 220, 221}[x] })
	m := NotBright{Level: 220}.Detect(g)
	if !m.At(0, 0) || !m.At(1, 0) || m.At(2, 0) {
		t.Errorf("got %v, want [on on off]", m.Pix)
	}
}
