package segment

import (
	"image"
	"image/color"
	"testing"
)

// maskWithRects returns a mask with the given rectangles set.
func maskWithRects(w, h int, rects ...image.Rectangle) Mask {
	m := NewMask(w, h)
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// maskWithDiscs returns a mask with filled discs of the given radius.
func maskWithDiscs(w, h, radius int, centers ...image.Point) Mask {
	m := NewMask(w, h)
	for _, c := range centers {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dx, dy := x-c.X, y-c.Y
				if dx*dx+dy*dy <= radius*radius {
					m.Set(x, y, true)
				}
			}
		}
	}
	return m
}

// imageFromMask paints foreground black on white.
func imageFromMask(m Mask) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if m.At(x, y) {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestMask_SetAndAt(t *testing.T) {
	m := NewMask(4, 3)
	m.Set(1, 2, true)

	if !m.At(1, 2) {
		t.Error("At(1,2) should be foreground after Set")
	}
	if m.At(2, 1) {
		t.Error("At(2,1) should be background")
	}
	if m.At(-1, 0) || m.At(4, 0) || m.At(0, 3) {
		t.Error("out-of-range cells must read as background")
	}

	m.Set(1, 2, false)
	if !m.IsEmpty() {
		t.Error("mask should be empty after clearing the only cell")
	}
}

func TestMask_OrAndSubtract(t *testing.T) {
	a := maskWithRects(10, 10, image.Rect(0, 0, 5, 5))
	b := maskWithRects(10, 10, image.Rect(3, 3, 8, 8))

	union := a.Or(b)
	if union.Count() != 25+25-4 {
		t.Errorf("union count: got %d, want 46", union.Count())
	}
	if a.Count() != 25 {
		t.Error("Or must not modify the receiver")
	}

	diff := b.SubtractFrom(a)
	if diff.Count() != 21 {
		t.Errorf("a - b count: got %d, want 21", diff.Count())
	}
	if diff.At(4, 4) {
		t.Error("overlap cell should be cleared by subtraction")
	}
}

func TestOr_FixedOrder(t *testing.T) {
	a := maskWithRects(6, 6, image.Rect(0, 0, 2, 2))
	b := maskWithRects(6, 6, image.Rect(4, 4, 6, 6))
	c := NewMask(6, 6)

	got := Or(a, b, c)
	if got.Count() != 8 {
		t.Errorf("count: got %d, want 8", got.Count())
	}
	if !Or(c, b, a).Equal(got) {
		t.Error("union should not depend on argument order")
	}
	if len(Or().Pix) != 0 {
		t.Error("Or of nothing should be a zero mask")
	}
}

func TestMask_EmptyFull(t *testing.T) {
	m := NewMask(3, 3)
	if !m.IsEmpty() || m.IsFull() {
		t.Error("new mask should be empty and not full")
	}
	full := m.Invert()
	if full.IsEmpty() || !full.IsFull() {
		t.Error("inverted empty mask should be full")
	}
}

func TestMask_EqualAndClone(t *testing.T) {
	a := maskWithRects(5, 5, image.Rect(1, 1, 3, 3))
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should equal original")
	}
	b.Set(0, 0, true)
	if a.Equal(b) {
		t.Error("modifying the clone must not affect the original")
	}
	if a.Equal(NewMask(5, 4)) {
		t.Error("masks of different sizes are never equal")
	}
}

func TestMask_ToGray(t *testing.T) {
	m := maskWithRects(4, 4, image.Rect(2, 0, 4, 4))
	gray := m.ToGray()

	if gray.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds: got %v", gray.Bounds())
	}
	if gray.GrayAt(3, 1).Y != 255 || gray.GrayAt(0, 1).Y != 0 {
		t.Errorf("pixel values: got %d and %d, want 255 and 0", gray.GrayAt(3, 1).Y, gray.GrayAt(0, 1).Y)
	}
	if !MaskFromGray(gray).Equal(m) {
		t.Error("MaskFromGray(ToGray(m)) should equal m")
	}
}
