package segment

import (
	"sort"
)

// CellState is the role of one cell of a LabelGrid.
type CellState uint8

const (
	// CellUnlabeled has not been reached by any seed.
	CellUnlabeled CellState = iota
	// CellBackground belongs to the background region.
	CellBackground
	// CellObject belongs to the object whose id is stored alongside.
	CellObject
	// CellBoundary lies where two regions meet.
	CellBoundary
)

func (s CellState) String() string {
	switch s {
	case CellUnlabeled:
		return "unlabeled"
	case CellBackground:
		return "background"
	case CellObject:
		return "object"
	case CellBoundary:
		return "boundary"
	}
	return "invalid"
}

// Integer labels used by LabelGrid.Label.
const (
	BoundaryLabel    = -1
	UnlabeledLabel   = 0
	BackgroundLabel  = 1
	FirstObjectLabel = 2
)

// LabelGrid assigns every cell of an image a CellState and, for object
// cells, an object id >= FirstObjectLabel.
type LabelGrid struct {
	Width  int
	Height int
	states []CellState
	ids    []int
}

// NewLabelGrid returns a grid with every cell unlabeled.
func NewLabelGrid(width, height int) *LabelGrid {
	return &LabelGrid{
		Width:  width,
		Height: height,
		states: make([]CellState, width*height),
		ids:    make([]int, width*height),
	}
}

// State returns the state of (x, y).
func (g *LabelGrid) State(x, y int) CellState {
	return g.states[y*g.Width+x]
}

// ObjectID returns the object id at (x, y), or 0 if the cell is not an
// object cell.
func (g *LabelGrid) ObjectID(x, y int) int {
	return g.ids[y*g.Width+x]
}

// Label returns the integer encoding of (x, y): BoundaryLabel,
// UnlabeledLabel, BackgroundLabel or the object id.
func (g *LabelGrid) Label(x, y int) int {
	i := y*g.Width + x
	switch g.states[i] {
	case CellBoundary:
		return BoundaryLabel
	case CellBackground:
		return BackgroundLabel
	case CellObject:
		return g.ids[i]
	}
	return UnlabeledLabel
}

// SetBackground marks (x, y) as background.
func (g *LabelGrid) SetBackground(x, y int) {
	g.set(y*g.Width+x, CellBackground, 0)
}

// SetBoundary marks (x, y) as a boundary cell.
func (g *LabelGrid) SetBoundary(x, y int) {
	g.set(y*g.Width+x, CellBoundary, 0)
}

// SetObject assigns (x, y) to object id. Ids below FirstObjectLabel are
// ignored.
func (g *LabelGrid) SetObject(x, y, id int) {
	if id < FirstObjectLabel {
		return
	}
	g.set(y*g.Width+x, CellObject, id)
}

func (g *LabelGrid) set(i int, s CellState, id int) {
	g.states[i] = s
	g.ids[i] = id
}

// ObjectIDs returns the distinct object ids present, ascending.
func (g *LabelGrid) ObjectIDs() []int {
	seen := make(map[int]struct{})
	for i, s := range g.states {
		if s == CellObject {
			seen[g.ids[i]] = struct{}{}
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ObjectCount returns the number of distinct object ids present.
func (g *LabelGrid) ObjectCount() int {
	return len(g.ObjectIDs())
}

// CountState returns how many cells are in state s.
func (g *LabelGrid) CountState(s CellState) int {
	n := 0
	for _, v := range g.states {
		if v == s {
			n++
		}
	}
	return n
}

// RegionMask returns a mask of the cells belonging to object id.
func (g *LabelGrid) RegionMask(id int) Mask {
	m := NewMask(g.Width, g.Height)
	for i, s := range g.states {
		if s == CellObject && g.ids[i] == id {
			m.Pix[i] = On
		}
	}
	return m
}

// BoundaryMask returns a mask of the boundary cells.
func (g *LabelGrid) BoundaryMask() Mask {
	m := NewMask(g.Width, g.Height)
	for i, s := range g.states {
		if s == CellBoundary {
			m.Pix[i] = On
		}
	}
	return m
}

// Connectivity selects the neighborhood used by ConnectedComponents.
type Connectivity int

const (
	Connectivity4 Connectivity = 4
	Connectivity8 Connectivity = 8
)

var (
	neighbors4 = []offset{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	neighbors8 = []offset{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
)

func (c Connectivity) offsets() []offset {
	if c == Connectivity4 {
		return neighbors4
	}
	return neighbors8
}

// ConnectedComponents labels the foreground of m. Components are numbered
// from 1 in raster order of their first cell; background cells get 0.
// The second return value is the number of components.
func ConnectedComponents(m Mask, conn Connectivity) ([]int, int) {
	labels := make([]int, len(m.Pix))
	stack := make([]int, 0, 64)
	n := 0
	for start, p := range m.Pix {
		if p == Off || labels[start] != 0 {
			continue
		}
		n++
		labels[start] = n
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%m.Width, i/m.Width
			for _, o := range conn.offsets() {
				nx, ny := x+o.dx, y+o.dy
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				j := ny*m.Width + nx
				if m.Pix[j] != Off && labels[j] == 0 {
					labels[j] = n
					stack = append(stack, j)
				}
			}
		}
	}
	return labels, n
}
