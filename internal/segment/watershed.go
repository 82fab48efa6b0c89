package segment

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Separator splits a cleaned foreground mask into one region per object
// with a marker-based watershed.
type Separator struct {
	// SureBackground is dilated over the mask; cells it never reaches are
	// certainly background.
	SureBackground           StructuringElement
	SureBackgroundIterations int

	// SureForegroundFraction of the maximum distance marks seed cores.
	SureForegroundFraction float64

	// SeedSplitDepth is passed to PlaceSeeds.
	SeedSplitDepth float64
}

// DefaultSeparator dilates with a 3x3 square three times and seeds at 30%
// of the maximum distance.
func DefaultSeparator() Separator {
	return Separator{
		SureBackground:           Rect(3, 3),
		SureBackgroundIterations: 3,
		SureForegroundFraction:   0.3,
		SeedSplitDepth:           2.0,
	}
}

// Segmentation is the output of Separate. Intermediate grids are kept for
// debugging and for the MCP tools.
type Segmentation struct {
	Grid           *LabelGrid
	SureBackground Mask
	SureForeground Mask
	Unknown        Mask
	Distance       DistanceField
	Seeds          int
	Degenerate     bool
}

// ObjectCount returns the number of object regions in the grid.
func (s *Segmentation) ObjectCount() int {
	return s.Grid.ObjectCount()
}

// Separate labels mask using surface (normally the original color image) as
// the flooding relief.
//
// Parameters:
//   - mask: Cleaned foreground mask.
//   - surface: Image with the same dimensions as mask. Region fronts advance
//     fastest across pixels that look like the pixel they come from.
//
// Returns ErrInvalidInput when the dimensions disagree. An empty or full mask
// is not an error: the grid is all background and Degenerate is set.
//
// # Algorithm
//
//  1. Sure background: dilate mask with SureBackground
//  2. Distance field: exact Euclidean distance to the nearest background cell
//  3. Sure foreground: distance > fraction * max distance
//  4. Unknown: sure background minus sure foreground
//  5. Seeds: PlaceSeeds on the sure foreground; cells outside the sure
//     background get the background label, seed cells get ids 2, 3, ...
//  6. Flood: unknown cells are taken from a 256-level priority queue keyed
//     by the largest per-channel difference to the neighbor that queued
//     them. A cell whose labeled 4-neighbors disagree becomes a boundary.
func (s Separator) Separate(mask Mask, surface image.Image) (*Segmentation, error) {
	if surface == nil {
		return nil, fmt.Errorf("%w: surface image is nil", ErrInvalidInput)
	}
	b := surface.Bounds()
	if b.Dx() != mask.Width || b.Dy() != mask.Height {
		return nil, fmt.Errorf("%w: surface is %dx%d but mask is %dx%d",
			ErrInvalidInput, b.Dx(), b.Dy(), mask.Width, mask.Height)
	}

	seg := &Segmentation{Grid: NewLabelGrid(mask.Width, mask.Height)}
	if mask.IsEmpty() || mask.IsFull() {
		fillBackground(seg.Grid)
		seg.Degenerate = true
		seg.SureBackground = mask.Clone()
		seg.SureForeground = NewMask(mask.Width, mask.Height)
		seg.Unknown = NewMask(mask.Width, mask.Height)
		seg.Distance = DistanceTransform(mask)
		return seg, nil
	}

	seg.SureBackground = Dilate(mask, s.SureBackground, s.SureBackgroundIterations)
	seg.Distance = DistanceTransform(mask)

	maxDist := seg.Distance.Max()
	if maxDist > 0 {
		seg.SureForeground = seg.Distance.Above(s.SureForegroundFraction * maxDist)
	} else {
		seg.SureForeground = NewMask(mask.Width, mask.Height)
	}
	seg.Unknown = seg.SureForeground.SubtractFrom(seg.SureBackground)

	seeds, n := PlaceSeeds(seg.SureForeground, seg.Distance, s.SeedSplitDepth)
	seg.Seeds = n

	grid := seg.Grid
	for i := range grid.states {
		x, y := i%grid.Width, i/grid.Width
		switch {
		case seg.SureBackground.Pix[i] == Off:
			grid.SetBackground(x, y)
		case seeds[i] > 0:
			grid.SetObject(x, y, seeds[i]+BackgroundLabel)
		}
	}

	flood(grid, imaging.Clone(surface))
	return seg, nil
}

func fillBackground(g *LabelGrid) {
	for i := range g.states {
		g.set(i, CellBackground, 0)
	}
}

// bucketQueue is a FIFO per priority level. The active level only moves up
// while empty levels are skipped, but a push below it pulls it back down.
type bucketQueue struct {
	buckets [256][]int
	active  int
	size    int
}

func (q *bucketQueue) push(priority uint8, i int) {
	q.buckets[priority] = append(q.buckets[priority], i)
	if int(priority) < q.active {
		q.active = int(priority)
	}
	q.size++
}

func (q *bucketQueue) pop() int {
	for len(q.buckets[q.active]) == 0 {
		q.active++
	}
	b := q.buckets[q.active]
	i := b[0]
	q.buckets[q.active] = b[1:]
	q.size--
	return i
}

func flood(g *LabelGrid, surface *image.NRGBA) {
	w, h := g.Width, g.Height
	diff := func(a, b int) uint8 {
		pa := surface.Pix[(a/w)*surface.Stride+(a%w)*4:]
		pb := surface.Pix[(b/w)*surface.Stride+(b%w)*4:]
		var d uint8
		for c := 0; c < 3; c++ {
			v := pa[c] - pb[c]
			if pb[c] > pa[c] {
				v = pb[c] - pa[c]
			}
			if v > d {
				d = v
			}
		}
		return d
	}
	labeled := func(i int) bool {
		s := g.states[i]
		return s == CellBackground || s == CellObject
	}

	queued := make([]bool, w*h)
	q := &bucketQueue{active: 255}

	for i := range g.states {
		if g.states[i] != CellUnlabeled {
			continue
		}
		x, y := i%w, i/w
		best := -1
		for _, o := range neighbors4 {
			nx, ny := x+o.dx, y+o.dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if labeled(j) {
				if d := int(diff(i, j)); best < 0 || d < best {
					best = d
				}
			}
		}
		if best >= 0 {
			q.push(uint8(best), i)
			queued[i] = true
		}
	}

	for q.size > 0 {
		i := q.pop()
		x, y := i%w, i/w

		state, id := CellUnlabeled, 0
		conflict := false
		for _, o := range neighbors4 {
			nx, ny := x+o.dx, y+o.dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if !labeled(j) {
				continue
			}
			if state == CellUnlabeled {
				state, id = g.states[j], g.ids[j]
			} else if g.states[j] != state || g.ids[j] != id {
				conflict = true
			}
		}
		if conflict || state == CellUnlabeled {
			g.set(i, CellBoundary, 0)
			continue
		}
		g.set(i, state, id)

		for _, o := range neighbors4 {
			nx, ny := x+o.dx, y+o.dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if g.states[j] == CellUnlabeled && !queued[j] {
				q.push(diff(j, i), j)
				queued[j] = true
			}
		}
	}
}
