package segment

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistanceField holds, for every foreground cell, the Euclidean distance to
// the nearest background cell. Background cells hold 0. Cells beyond the
// image edge are not background.
type DistanceField struct {
	Width  int
	Height int
	Values []float64
}

// At returns the distance at (x, y).
func (d DistanceField) At(x, y int) float64 {
	return d.Values[y*d.Width+x]
}

// Max returns the largest distance, or 0 for an empty field.
func (d DistanceField) Max() float64 {
	if len(d.Values) == 0 {
		return 0
	}
	return floats.Max(d.Values)
}

// Above marks cells whose distance is strictly greater than level.
func (d DistanceField) Above(level float64) Mask {
	m := NewMask(d.Width, d.Height)
	for i, v := range d.Values {
		if v > level {
			m.Pix[i] = On
		}
	}
	return m
}

// inf stands in for "no background seen yet". Squared distances in an
// image never approach it.
const inf = 1e20

// DistanceTransform computes the exact Euclidean distance transform of m.
//
// # Algorithm
//
// Felzenszwalb and Huttenlocher's separable method: a 1D squared distance
// transform (lower envelope of parabolas) runs down every column, then along
// every row of the column result. Both passes are linear, so the whole
// transform is O(width*height).
//
// A mask with no background cell has no finite distances; its field is all
// zeros.
func DistanceTransform(m Mask) DistanceField {
	field := DistanceField{Width: m.Width, Height: m.Height, Values: make([]float64, len(m.Pix))}
	if m.IsFull() || len(m.Pix) == 0 {
		return field
	}

	n := max(m.Width, m.Height)
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	sq := field.Values
	for i, p := range m.Pix {
		if p != Off {
			sq[i] = inf
		}
	}

	for x := 0; x < m.Width; x++ {
		for y := 0; y < m.Height; y++ {
			f[y] = sq[y*m.Width+x]
		}
		edt1D(f[:m.Height], d, v, z)
		for y := 0; y < m.Height; y++ {
			sq[y*m.Width+x] = d[y]
		}
	}

	for y := 0; y < m.Height; y++ {
		row := sq[y*m.Width : (y+1)*m.Width]
		copy(f, row)
		edt1D(f[:m.Width], d, v, z)
		for x := range row {
			row[x] = math.Sqrt(d[x])
		}
	}
	return field
}

// edt1D writes into d the squared distance transform of the sampled
// function f. v and z are scratch space of at least len(f) and len(f)+1.
func edt1D(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := intersect(f, q, v[k])
		for s <= z[k] {
			k--
			s = intersect(f, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

func intersect(f []float64, q, p int) float64 {
	fq, fp := float64(q), float64(p)
	return ((f[q] + fq*fq) - (f[p] + fp*fp)) / (2*fq - 2*fp)
}
