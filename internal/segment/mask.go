package segment

import (
	"image"
)

// Mask values for the two cell states.
const (
	Off uint8 = 0
	On  uint8 = 255
)

// Mask is a binary grid with the same dimensions as the source image.
// Every cell is either Off (background) or On (foreground).
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask returns an all-background mask.
func NewMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// MaskFromGray thresholds a grayscale image: any non-zero pixel is On.
func MaskFromGray(gray *image.Gray) Mask {
	b := gray.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < m.Width; x++ {
			if row[x] != 0 {
				m.Pix[y*m.Width+x] = On
			}
		}
	}
	return m
}

// At reports whether (x, y) is foreground. Out-of-range cells are background.
func (m Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != Off
}

// Set marks (x, y) as foreground or background.
func (m Mask) Set(x, y int, on bool) {
	if on {
		m.Pix[y*m.Width+x] = On
	} else {
		m.Pix[y*m.Width+x] = Off
	}
}

// Or returns the cell-wise union of m and other.
func (m Mask) Or(other Mask) Mask {
	out := m.Clone()
	for i, v := range other.Pix {
		if v != Off {
			out.Pix[i] = On
		}
	}
	return out
}

// SubtractFrom returns base with every foreground cell of m cleared
// (saturating base - m).
func (m Mask) SubtractFrom(base Mask) Mask {
	out := base.Clone()
	for i, v := range m.Pix {
		if v != Off {
			out.Pix[i] = Off
		}
	}
	return out
}

// Invert returns the complement of m.
func (m Mask) Invert() Mask {
	out := NewMask(m.Width, m.Height)
	for i, v := range m.Pix {
		if v == Off {
			out.Pix[i] = On
		}
	}
	return out
}

// Count returns the number of foreground cells.
func (m Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != Off {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no cell is foreground.
func (m Mask) IsEmpty() bool {
	return m.Count() == 0
}

// IsFull reports whether every cell is foreground.
func (m Mask) IsFull() bool {
	return m.Count() == len(m.Pix)
}

// Equal reports whether both masks have the same size and cells.
func (m Mask) Equal(other Mask) bool {
	if m.Width != other.Width || m.Height != other.Height {
		return false
	}
	for i := range m.Pix {
		if (m.Pix[i] != Off) != (other.Pix[i] != Off) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of m.
func (m Mask) Clone() Mask {
	out := Mask{Width: m.Width, Height: m.Height, Pix: make([]uint8, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// ToGray renders the mask as a black and white image suitable for saving.
func (m Mask) ToGray() *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(gray.Pix, m.Pix)
	return gray
}

// Or reduces masks with a cell-wise union in the order given. All masks must
// share the same dimensions; an empty argument list yields a zero Mask.
func Or(masks ...Mask) Mask {
	if len(masks) == 0 {
		return Mask{}
	}
	out := masks[0].Clone()
	for _, m := range masks[1:] {
		for i, v := range m.Pix {
			if v != Off {
				out.Pix[i] = On
			}
		}
	}
	return out
}
