package segment

import (
	"image"

	"github.com/ironsheep/object-counter/internal/imaging"
)

// Detector produces a foreground mask from a smoothed intensity image.
// Implementations must not modify gray and must return a mask with the
// same dimensions.
type Detector interface {
	Name() string
	Detect(gray *image.Gray) Mask
}

// GlobalDark marks pixels at or below the Otsu level.
type GlobalDark struct{}

func (GlobalDark) Name() string { return "global_dark" }

func (GlobalDark) Detect(gray *image.Gray) Mask {
	return ThresholdBelow(gray, OtsuThreshold(gray))
}

// GlobalLight marks pixels above the Otsu level. It computes the level
// itself rather than sharing GlobalDark's so the two can be tuned apart.
type GlobalLight struct{}

func (GlobalLight) Name() string { return "global_light" }

func (GlobalLight) Detect(gray *image.Gray) Mask {
	return ThresholdAbove(gray, OtsuThreshold(gray))
}

// LocalDark marks pixels darker than their Gaussian-weighted neighborhood.
type LocalDark struct {
	Window int
	Bias   float64
}

func (LocalDark) Name() string { return "local_dark" }

func (d LocalDark) Detect(gray *image.Gray) Mask {
	return AdaptiveBelow(gray, d.Window, d.Bias)
}

// LocalLight is the complement of LocalDark for the same window and bias.
type LocalLight struct {
	Window int
	Bias   float64
}

func (LocalLight) Name() string { return "local_light" }

func (d LocalLight) Detect(gray *image.Gray) Mask {
	return AdaptiveAbove(gray, d.Window, d.Bias)
}

// EdgeBlobs runs Canny and dilates the edge map so broken outlines join into
// solid regions.
type EdgeBlobs struct {
	Low        float64
	High       float64
	Element    StructuringElement
	Iterations int
}

func (EdgeBlobs) Name() string { return "edge_blobs" }

func (d EdgeBlobs) Detect(gray *image.Gray) Mask {
	edges := MaskFromGray(imaging.Canny(gray, d.Low, d.High))
	return Dilate(edges, d.Element, d.Iterations)
}

// FilledEdges closes the output of Edges with a large element so the
// interiors of faint outlines are filled. Light objects on a light
// background rarely survive a global threshold; their outline does.
type FilledEdges struct {
	Edges      EdgeBlobs
	Fill       StructuringElement
	Iterations int
}

func (FilledEdges) Name() string { return "filled_edges" }

func (d FilledEdges) Detect(gray *image.Gray) Mask {
	return Close(d.Edges.Detect(gray), d.Fill, d.Iterations)
}

// NotBright marks everything at or below Level, i.e. all but near-white
// pixels.
type NotBright struct {
	Level uint8
}

func (NotBright) Name() string { return "not_bright" }

func (d NotBright) Detect(gray *image.Gray) Mask {
	return ThresholdBelow(gray, d.Level)
}

// Union ORs the masks of its detectors in order. It is itself a Detector, so
// unions nest.
type Union struct {
	Label     string
	Detectors []Detector
}

func (u Union) Name() string {
	if u.Label != "" {
		return u.Label
	}
	return "union"
}

// Detect returns an all-background mask when the union is empty.
func (u Union) Detect(gray *image.Gray) Mask {
	b := gray.Bounds()
	out := NewMask(b.Dx(), b.Dy())
	for _, d := range u.Detectors {
		out = Or(out, d.Detect(gray))
	}
	return out
}
