package detection

import (
	"image"
	"testing"

	"github.com/ironsheep/object-counter/internal/segment"
)

// gridWithRegions builds a label grid with every cell background except the
// given rectangles, which are assigned their object ids.
func gridWithRegions(w, h int, regions map[int][]image.Rectangle) *segment.LabelGrid {
	g := segment.NewLabelGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.SetBackground(x, y)
		}
	}
	for id, rects := range regions {
		for _, r := range rects {
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					g.SetObject(x, y, id)
				}
			}
		}
	}
	return g
}

func TestCount_EmptyGrid(t *testing.T) {
	g := gridWithRegions(20, 20, nil)

	result := Count(g, 50)
	if result.Count != 0 || len(result.Detections) != 0 {
		t.Errorf("expected no detections, got %d", result.Count)
	}
}

func TestCount_OrderAndIndexes(t *testing.T) {
	g := gridWithRegions(60, 30, map[int][]image.Rectangle{
		5: {image.Rect(35, 5, 50, 20)},
		2: {image.Rect(5, 5, 20, 20)},
	})

	result := Count(g, 50)
	if result.Count != 2 {
		t.Fatalf("count: got %d, want 2", result.Count)
	}
	for i, det := range result.Detections {
		if det.Index != i+1 {
			t.Errorf("detection %d has index %d", i, det.Index)
		}
	}
	if result.Detections[0].Label != 2 || result.Detections[1].Label != 5 {
		t.Errorf("labels out of order: %d, %d", result.Detections[0].Label, result.Detections[1].Label)
	}

	det := result.Detections[0]
	if det.Area != 14*14 {
		t.Errorf("area: got %v, want 196", det.Area)
	}
	if det.PixelCount != 15*15 {
		t.Errorf("pixel count: got %d, want 225", det.PixelCount)
	}
	if det.Bounds != (Bounds{X1: 5, Y1: 5, X2: 20, Y2: 20}) {
		t.Errorf("bounds: got %+v", det.Bounds)
	}
	if det.Centroid != (Point{X: 12, Y: 12}) {
		t.Errorf("centroid: got %v, want (12,12)", det.Centroid)
	}
}

func TestCount_MinAreaFilter(t *testing.T) {
	g := gridWithRegions(40, 20, map[int][]image.Rectangle{
		2: {image.Rect(2, 2, 14, 14)},  // area 121
		3: {image.Rect(20, 2, 26, 8)},  // area 25
		4: {image.Rect(30, 2, 38, 10)}, // area 49
	})

	result := Count(g, 50)
	if result.Count != 1 {
		t.Fatalf("count: got %d, want 1", result.Count)
	}
	if result.Detections[0].Label != 2 || result.Detections[0].Index != 1 {
		t.Errorf("unexpected survivor: %+v", result.Detections[0])
	}

	if got := Count(g, 0).Count; got != 3 {
		t.Errorf("min area 0: got %d, want 3", got)
	}
}

func TestCount_SplitLabelCountedOnce(t *testing.T) {
	g := gridWithRegions(50, 30, map[int][]image.Rectangle{
		2: {image.Rect(2, 2, 22, 22), image.Rect(30, 2, 45, 17)},
	})

	result := Count(g, 10)
	if result.Count != 1 {
		t.Fatalf("a label split in two pieces must count once, got %d", result.Count)
	}
	if result.Detections[0].Area != 19*19 {
		t.Errorf("largest piece should be measured, got area %v", result.Detections[0].Area)
	}
}

func TestCount_CentroidInsideConcaveRegion(t *testing.T) {
	// U shape whose moment center falls in the open notch.
	g := gridWithRegions(30, 30, map[int][]image.Rectangle{
		2: {
			image.Rect(5, 5, 9, 25),
			image.Rect(21, 5, 25, 25),
			image.Rect(9, 21, 21, 25),
		},
	})

	result := Count(g, 50)
	if result.Count != 1 {
		t.Fatalf("count: got %d, want 1", result.Count)
	}
	det := result.Detections[0]
	if !InsidePolygon(det.Centroid, det.Contour) {
		t.Errorf("centroid %v outside contour", det.Centroid)
	}
	if g.ObjectID(det.Centroid.X, det.Centroid.Y) != 2 {
		t.Errorf("centroid %v is not a region pixel", det.Centroid)
	}
}

func TestCount_IgnoresBoundaryCells(t *testing.T) {
	g := gridWithRegions(30, 20, map[int][]image.Rectangle{
		2: {image.Rect(2, 2, 14, 18)},
		3: {image.Rect(15, 2, 28, 18)},
	})
	for y := 2; y < 18; y++ {
		g.SetBoundary(14, y)
	}

	result := Count(g, 50)
	if result.Count != 2 {
		t.Errorf("count: got %d, want 2", result.Count)
	}
}

func TestCount_ManyLabels(t *testing.T) {
	// 20x20 squares on a 30 pixel pitch, labels assigned row by row
	regions := make(map[int][]image.Rectangle)
	label := segment.FirstObjectLabel
	for row := 0; row < 20; row++ {
		for col := 0; col < 20; col++ {
			x, y := 5+col*30, 5+row*30
			regions[label] = []image.Rectangle{image.Rect(x, y, x+20, y+20)}
			label++
		}
	}
	g := gridWithRegions(600, 600, regions)

	result := Count(g, 50)
	if result.Count != 400 {
		t.Fatalf("count: got %d, want 400", result.Count)
	}
	for i, d := range result.Detections {
		want := regions[d.Label][0]
		if d.Index != i+1 {
			t.Fatalf("detection %d has index %d", i, d.Index)
		}
		if d.Bounds != (Bounds{X1: want.Min.X, Y1: want.Min.Y, X2: want.Max.X, Y2: want.Max.Y}) {
			t.Fatalf("label %d: bounds %+v, want %v", d.Label, d.Bounds, want)
		}
		if d.Centroid != (Point{X: want.Min.X + 9, Y: want.Min.Y + 9}) {
			t.Fatalf("label %d: centroid %+v", d.Label, d.Centroid)
		}
		if d.Area != 361 || d.PixelCount != 400 {
			t.Fatalf("label %d: area %v, pixels %d", d.Label, d.Area, d.PixelCount)
		}
		if d.Contour[0] != (Point{X: want.Min.X, Y: want.Min.Y}) {
			t.Fatalf("label %d: contour starts at %+v", d.Label, d.Contour[0])
		}
	}
}

func BenchmarkCount(b *testing.B) {
	regions := make(map[int][]image.Rectangle)
	label := segment.FirstObjectLabel
	for row := 0; row < 15; row++ {
		for col := 0; col < 20; col++ {
			x, y := 10+col*95, 10+row*95
			regions[label] = []image.Rectangle{image.Rect(x, y, x+60, y+60)}
			label++
		}
	}
	g := gridWithRegions(2000, 1500, regions)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Count(g, 50)
	}
}
