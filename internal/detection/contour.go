package detection

import (
	"math"

	"github.com/ironsheep/object-counter/internal/segment"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Width returns X2 - X1.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Clockwise neighbor order on screen (y grows downward), starting west.
var mooreDirs = [8]Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func dirIndex(dx, dy int) int {
	for i, d := range mooreDirs {
		if d.X == dx && d.Y == dy {
			return i
		}
	}
	return 0
}

// TraceContour returns the outer boundary of the 8-connected piece of m that
// contains start, as an ordered, closed list of pixel centers (the first
// point is not repeated at the end).
//
// start must be the first foreground pixel of the piece in raster order, so
// its west neighbor is known to be background.
//
// # Algorithm
//
// Moore-neighbor tracing: from the current pixel, neighbors are examined
// clockwise starting just after the pixel we backtracked from. The first
// foreground neighbor becomes the current pixel and the background cell
// examined just before it becomes the new backtrack. Tracing stops when the
// start pixel is left for the second time in the same direction (Jacob's
// stopping criterion), which handles one-pixel-wide necks correctly.
func TraceContour(m segment.Mask, start Point) []Point {
	contour := []Point{start}
	c := start
	back := 0 // direction from c to its backtrack cell

	limit := 4*m.Count() + 8
	for step := 0; step < limit; step++ {
		next, nextBack, ok := mooreStep(m, c, back)
		if !ok {
			// Isolated pixel
			return contour
		}
		if c == start && len(contour) > 1 && next == contour[1] {
			break
		}
		contour = append(contour, next)
		c, back = next, nextBack
	}

	if n := len(contour); n > 1 && contour[n-1] == start {
		contour = contour[:n-1]
	}
	return contour
}

func mooreStep(m segment.Mask, c Point, back int) (Point, int, bool) {
	for k := 1; k <= 8; k++ {
		d := (back + k) % 8
		n := Point{c.X + mooreDirs[d].X, c.Y + mooreDirs[d].Y}
		if !m.At(n.X, n.Y) {
			continue
		}
		prev := (back + k - 1) % 8
		b := Point{c.X + mooreDirs[prev].X, c.Y + mooreDirs[prev].Y}
		return n, dirIndex(b.X-n.X, b.Y-n.Y), true
	}
	return Point{}, 0, false
}

// ShoelaceArea returns the area enclosed by a closed polygon. Fewer than
// three vertices enclose nothing.
func ShoelaceArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum int
	for i, p := range poly {
		q := poly[(i+1)%len(poly)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// InsidePolygon reports whether p lies inside poly or on its outline.
func InsidePolygon(p Point, poly []Point) bool {
	n := len(poly)
	if n == 0 {
		return false
	}
	for i := range poly {
		if onSegment(p, poly[i], poly[(i+1)%n]) {
			return true
		}
	}

	inside := false
	px, py := float64(p.X), float64(p.Y)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := float64(poly[i].X), float64(poly[i].Y)
		xj, yj := float64(poly[j].X), float64(poly[j].Y)
		if (yi > py) != (yj > py) && px < (xj-xi)*(py-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func onSegment(p, a, b Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if cross != 0 {
		return false
	}
	return p.X >= min(a.X, b.X) && p.X <= max(a.X, b.X) &&
		p.Y >= min(a.Y, b.Y) && p.Y <= max(a.Y, b.Y)
}
