package segment

import (
	"fmt"
)

// Erode keeps a cell only when every cell of the element, placed with its
// anchor on that cell, lies on foreground. Cells outside the image never
// erode.
func Erode(m Mask, se StructuringElement, iterations int) Mask {
	out := m.Clone()
	for it := 0; it < iterations; it++ {
		out = erodeOnce(out, se)
	}
	return out
}

// Dilate sets a cell when the reflected element placed on it touches any
// foreground cell. Cells outside the image never dilate.
func Dilate(m Mask, se StructuringElement, iterations int) Mask {
	out := m.Clone()
	for it := 0; it < iterations; it++ {
		out = dilateOnce(out, se)
	}
	return out
}

// Open erodes then dilates, each repeated iterations times. Foreground
// features that cannot contain the element disappear.
func Open(m Mask, se StructuringElement, iterations int) Mask {
	return Dilate(Erode(m, se, iterations), se, iterations)
}

// Close dilates then erodes, each repeated iterations times. Background
// holes and gaps that cannot contain the element are filled.
func Close(m Mask, se StructuringElement, iterations int) Mask {
	return Erode(Dilate(m, se, iterations), se, iterations)
}

func erodeOnce(m Mask, se StructuringElement) Mask {
	out := NewMask(m.Width, m.Height)
	anchored := hasOffset(se, 0, 0)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if anchored && m.Pix[y*m.Width+x] == Off {
				continue
			}
			keep := true
			for _, o := range se.offsets {
				nx, ny := x+o.dx, y+o.dy
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				if m.Pix[ny*m.Width+nx] == Off {
					keep = false
					break
				}
			}
			if keep {
				out.Pix[y*m.Width+x] = On
			}
		}
	}
	return out
}

func dilateOnce(m Mask, se StructuringElement) Mask {
	out := NewMask(m.Width, m.Height)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] == Off {
				continue
			}
			for _, o := range se.offsets {
				nx, ny := x+o.dx, y+o.dy
				if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
					continue
				}
				out.Pix[ny*m.Width+nx] = On
			}
		}
	}
	return out
}

func hasOffset(se StructuringElement, dx, dy int) bool {
	for _, o := range se.offsets {
		if o.dx == dx && o.dy == dy {
			return true
		}
	}
	return false
}

// Cleaner removes speckle noise and fills small gaps: an opening with a small
// element followed by closings with a medium and a large element. The order
// is fixed; closing first would merge speckle into real objects.
type Cleaner struct {
	Open        StructuringElement
	CloseMedium StructuringElement
	CloseLarge  StructuringElement
}

// NewCleaner builds a Cleaner from elliptical elements of the given sizes.
func NewCleaner(openSize, mediumSize, largeSize int) (Cleaner, error) {
	if openSize < 1 || mediumSize < 1 || largeSize < 1 {
		return Cleaner{}, fmt.Errorf("%w: cleaner element sizes must be positive (%d, %d, %d)",
			ErrInvalidParams, openSize, mediumSize, largeSize)
	}
	return Cleaner{
		Open:        Ellipse(openSize, openSize),
		CloseMedium: Ellipse(mediumSize, mediumSize),
		CloseLarge:  Ellipse(largeSize, largeSize),
	}, nil
}

// DefaultCleaner uses 2x2, 4x4 and 6x6 ellipses.
func DefaultCleaner() Cleaner {
	c, _ := NewCleaner(2, 4, 6)
	return c
}

// MaxCleanRounds bounds how often Clean repeats its sequence.
const MaxCleanRounds = 8

// Clean returns a new mask; m is not modified.
//
// One open/close/close pass is not idempotent on noisy masks: the closings
// can build thin bridges that the next opening removes again. Clean therefore
// repeats the pass until the mask stops changing, so Clean(Clean(m)) equals
// Clean(m). Masks that have not settled after MaxCleanRounds passes are
// returned as they are.
func (c Cleaner) Clean(m Mask) Mask {
	cur := m
	for round := 0; round < MaxCleanRounds; round++ {
		next := c.pass(cur)
		if next.Equal(cur) {
			return next
		}
		cur = next
	}
	return cur
}

func (c Cleaner) pass(m Mask) Mask {
	opened := Open(m, c.Open, 1)
	closed := Close(opened, c.CloseMedium, 1)
	return Close(closed, c.CloseLarge, 1)
}
