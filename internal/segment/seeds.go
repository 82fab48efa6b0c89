package segment

import (
	"sort"
)

// PlaceSeeds labels the seed cores in sureFG.
//
// Every 8-connected component of sureFG is a seed, except that a component
// holding two distance peaks is split where the field dips at least
// splitDepth below both of them. Touching round objects keep a connected
// core after thresholding when their neck is wide; the dip between their
// centers still separates them. splitDepth <= 0 disables splitting.
//
// Seeds are numbered from 1 in raster order of their first cell; cells of
// sureFG that lie on a split line get 0 and are left to the flood.
//
// # Algorithm
//
// Cells are visited from the highest distance down. A cell with no visited
// neighbor starts a new basin whose peak is its own distance. A cell next to
// one basin joins it. A cell next to several basins merges them unless at
// least two are deeper than splitDepth relative to the cell's distance, in
// which case the cell becomes a split cell and shallow basins merge into the
// highest one. Since distances only decrease, basins separated once stay
// separated.
func PlaceSeeds(sureFG Mask, dist DistanceField, splitDepth float64) ([]int, int) {
	if splitDepth <= 0 {
		return ConnectedComponents(sureFG, Connectivity8)
	}

	order := make([]int, 0, sureFG.Count())
	for i, p := range sureFG.Pix {
		if p != Off {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dist.Values[order[a]] > dist.Values[order[b]]
	})

	const (
		unvisited = -1
		splitCell = -2
	)
	parent := make([]int, len(sureFG.Pix))
	for i := range parent {
		parent[i] = unvisited
	}
	peak := make(map[int]float64)

	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	w, h := sureFG.Width, sureFG.Height
	roots := make([]int, 0, 8)
	for _, i := range order {
		level := dist.Values[i]
		x, y := i%w, i/w

		roots = roots[:0]
		for _, o := range neighbors8 {
			nx, ny := x+o.dx, y+o.dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if parent[j] < 0 {
				continue
			}
			r := find(j)
			if !containsInt(roots, r) {
				roots = append(roots, r)
			}
		}

		if len(roots) == 0 {
			parent[i] = i
			peak[i] = level
			continue
		}

		// Highest basin first; it absorbs everything that merges.
		sort.Slice(roots, func(a, b int) bool { return peak[roots[a]] > peak[roots[b]] })
		deep := 0
		for _, r := range roots {
			if peak[r]-level >= splitDepth {
				deep++
			}
		}

		top := roots[0]
		if deep >= 2 {
			for _, r := range roots[1:] {
				if peak[r]-level < splitDepth {
					parent[r] = top
					delete(peak, r)
				}
			}
			parent[i] = splitCell
			continue
		}
		for _, r := range roots[1:] {
			parent[r] = top
			delete(peak, r)
		}
		parent[i] = top
	}

	labels := make([]int, len(sureFG.Pix))
	ids := make(map[int]int)
	n := 0
	for i, p := range parent {
		if p < 0 {
			continue
		}
		r := find(i)
		id, ok := ids[r]
		if !ok {
			n++
			id = n
			ids[r] = id
		}
		labels[i] = id
	}
	return labels, n
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
