package segment

import (
	"fmt"
	"math"
	"strings"
)

// Shape names accepted by NewElement.
const (
	ShapeEllipse = "ellipse"
	ShapeRect    = "rect"
)

// StructuringElement is an immutable neighborhood used by erosion and
// dilation. The anchor sits at (Width/2, Height/2).
type StructuringElement struct {
	width   int
	height  int
	offsets []offset
}

type offset struct {
	dx, dy int
}

// Ellipse returns the elliptical element inscribed in a width x height box.
//
// Each row i spans the columns within round(c*sqrt(1 - (i-r)²/r²)) of the
// center column c = width/2, where r = height/2. This reproduces the usual
// shapes: 2x2 keeps three cells, 3x3 is a cross, 5x5 and larger are discs
// clipped to the box.
func Ellipse(width, height int) StructuringElement {
	r := height / 2
	c := width / 2
	invR2 := 0.0
	if r > 0 {
		invR2 = 1 / float64(r*r)
	}

	var offs []offset
	for i := 0; i < height; i++ {
		dy := i - r
		if abs(dy) > r {
			continue
		}
		dx := int(math.RoundToEven(float64(c) * math.Sqrt(float64(r*r-dy*dy)*invR2)))
		j1 := max(c-dx, 0)
		j2 := min(c+dx+1, width)
		for j := j1; j < j2; j++ {
			offs = append(offs, offset{dx: j - c, dy: i - r})
		}
	}
	return StructuringElement{width: width, height: height, offsets: offs}
}

// Rect returns a fully populated width x height element.
func Rect(width, height int) StructuringElement {
	offs := make([]offset, 0, width*height)
	for i := 0; i < height; i++ {
		for j := 0; j < width; j++ {
			offs = append(offs, offset{dx: j - width/2, dy: i - height/2})
		}
	}
	return StructuringElement{width: width, height: height, offsets: offs}
}

// NewElement builds a square element of the given shape name.
func NewElement(shape string, size int) (StructuringElement, error) {
	if size < 1 {
		return StructuringElement{}, fmt.Errorf("%w: element size must be positive, got %d", ErrInvalidParams, size)
	}
	switch strings.ToLower(shape) {
	case ShapeEllipse:
		return Ellipse(size, size), nil
	case ShapeRect:
		return Rect(size, size), nil
	}
	return StructuringElement{}, fmt.Errorf("%w: unknown element shape %q", ErrInvalidParams, shape)
}

// Size returns the bounding box of the element.
func (se StructuringElement) Size() (width, height int) {
	return se.width, se.height
}

// Contains reports whether cell (col, row) of the bounding box is part of
// the element.
func (se StructuringElement) Contains(col, row int) bool {
	for _, o := range se.offsets {
		if o.dx == col-se.width/2 && o.dy == row-se.height/2 {
			return true
		}
	}
	return false
}

// Cells returns the number of active cells.
func (se StructuringElement) Cells() int {
	return len(se.offsets)
}

// String renders the element as rows of 0 and 1, mostly for test failures.
func (se StructuringElement) String() string {
	var b strings.Builder
	for row := 0; row < se.height; row++ {
		for col := 0; col < se.width; col++ {
			if se.Contains(col, row) {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		if row < se.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
