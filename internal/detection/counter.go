package detection

import (
	"image"
	"math"

	"github.com/ironsheep/object-counter/internal/segment"
)

// Detection describes one counted object.
type Detection struct {
	// Index is the 1-based position in the count, in ascending label order.
	Index int `json:"index"`

	// Label is the object id in the label grid.
	Label int `json:"label"`

	// Centroid is the pixel-moment center of the region, truncated to whole
	// pixels. It always lies inside the contour.
	Centroid Point `json:"centroid"`

	// Area is the area enclosed by the contour (shoelace formula over pixel
	// centers), in square pixels.
	Area float64 `json:"area"`

	// PixelCount is the number of pixels in the region.
	PixelCount int `json:"pixel_count"`

	// Bounds is the bounding box of the region.
	Bounds Bounds `json:"bounds"`

	// Contour is the closed outer boundary of the region.
	Contour []Point `json:"contour,omitempty"`
}

// Result contains every object counted in one image.
type Result struct {
	// Count is the number of accepted objects (len(Detections)).
	Count int `json:"count"`

	// Detections are ordered by Index.
	Detections []Detection `json:"detections"`
}

// Count measures every object region of grid and keeps those whose contour
// area exceeds minArea.
//
// Parameters:
//   - grid: Label grid from the watershed stage. Not modified.
//   - minArea: Regions with contour area <= minArea are discarded as noise.
//     50 for the advanced pipeline, 100 for the simple one.
//
// Returns a Result with 1-based indexes assigned in ascending label order.
// Each label is counted at most once: when a label is split into several
// 8-connected pieces, only the piece with the largest area is measured.
//
// # Measurements
//
//   - Contour: Moore-neighbor trace of the outer boundary
//   - Area: shoelace formula over the contour vertices
//   - Centroid: first-order pixel moments divided by pixel count; regions
//     without pixels are skipped. A centroid falling outside the contour
//     (crescents, rings) is moved to the nearest region pixel.
func Count(grid *segment.LabelGrid, minArea float64) *Result {
	result := &Result{Detections: make([]Detection, 0)}

	boxes := labelBoxes(grid)
	for _, label := range grid.ObjectIDs() {
		box := boxes[label]
		det, ok := measure(regionMask(grid, label, box), box.Min)
		if !ok || det.Area <= minArea {
			continue
		}
		det.Label = label
		det.Index = len(result.Detections) + 1
		result.Detections = append(result.Detections, det)
	}

	result.Count = len(result.Detections)
	return result
}

// labelBoxes returns the bounding box of every object label in one pass.
func labelBoxes(grid *segment.LabelGrid) map[int]image.Rectangle {
	boxes := make(map[int]image.Rectangle)
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			if grid.State(x, y) != segment.CellObject {
				continue
			}
			id := grid.ObjectID(x, y)
			r, ok := boxes[id]
			if !ok {
				boxes[id] = image.Rect(x, y, x+1, y+1)
				continue
			}
			r.Min.X = min(r.Min.X, x)
			r.Max.X = max(r.Max.X, x+1)
			r.Max.Y = y + 1
			boxes[id] = r
		}
	}
	return boxes
}

// regionMask returns the cells of label inside box as a mask local to box.
func regionMask(grid *segment.LabelGrid, label int, box image.Rectangle) segment.Mask {
	m := segment.NewMask(box.Dx(), box.Dy())
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if grid.State(x, y) == segment.CellObject && grid.ObjectID(x, y) == label {
				m.Set(x-box.Min.X, y-box.Min.Y, true)
			}
		}
	}
	return m
}

// measure picks the largest 8-connected piece of region and measures it.
// region is local to a box whose top-left corner is origin; the returned
// detection is in image coordinates.
func measure(region segment.Mask, origin image.Point) (Detection, bool) {
	pieces, n := segment.ConnectedComponents(region, segment.Connectivity8)
	if n == 0 {
		return Detection{}, false
	}

	// Pixels per piece in raster order, so the first one starts the trace.
	pixels := make([][]Point, n+1)
	for i, piece := range pieces {
		if piece != 0 {
			pixels[piece] = append(pixels[piece], Point{X: i % region.Width, Y: i / region.Width})
		}
	}

	var best Detection
	found := false
	for piece := 1; piece <= n; piece++ {
		if len(pixels[piece]) == 0 {
			continue
		}
		trace := region
		if n > 1 {
			// Trace on the piece alone so neighboring pieces are not followed.
			trace = segment.NewMask(region.Width, region.Height)
			for _, p := range pixels[piece] {
				trace.Set(p.X, p.Y, true)
			}
		}
		det := measurePiece(trace, pixels[piece], origin)
		if !found || det.Area > best.Area {
			best = det
			found = true
		}
	}
	return best, found
}

func measurePiece(piece segment.Mask, pixels []Point, origin image.Point) Detection {
	start := pixels[0]
	bounds := Bounds{X1: start.X, Y1: start.Y, X2: start.X + 1, Y2: start.Y + 1}

	var m10, m01 int
	for _, p := range pixels {
		m10 += p.X
		m01 += p.Y
		bounds.X1 = min(bounds.X1, p.X)
		bounds.Y1 = min(bounds.Y1, p.Y)
		bounds.X2 = max(bounds.X2, p.X+1)
		bounds.Y2 = max(bounds.Y2, p.Y+1)
	}
	m00 := len(pixels)

	contour := TraceContour(piece, start)

	centroid := Point{X: m10 / m00, Y: m01 / m00}
	if !InsidePolygon(centroid, contour) {
		centroid = nearestPixel(pixels, float64(m10)/float64(m00), float64(m01)/float64(m00))
	}

	// Back to image coordinates
	for i := range contour {
		contour[i].X += origin.X
		contour[i].Y += origin.Y
	}
	centroid.X += origin.X
	centroid.Y += origin.Y
	bounds.X1 += origin.X
	bounds.X2 += origin.X
	bounds.Y1 += origin.Y
	bounds.Y2 += origin.Y

	return Detection{
		Centroid:   centroid,
		Area:       ShoelaceArea(contour),
		PixelCount: m00,
		Bounds:     bounds,
		Contour:    contour,
	}
}

func nearestPixel(pixels []Point, cx, cy float64) Point {
	best := pixels[0]
	bestDist := math.Inf(1)
	for _, p := range pixels {
		dx, dy := float64(p.X)-cx, float64(p.Y)-cy
		if d := dx*dx + dy*dy; d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}
