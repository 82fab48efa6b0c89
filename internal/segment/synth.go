package segment

import (
	"image"
)

// Masks are the binary grids produced by a Synthesizer. Combined feeds the
// watershed stage; Dark and Light are kept for debugging and are zero-sized
// when the synthesizer does not build them separately.
type Masks struct {
	Combined Mask
	Dark     Mask
	Light    Mask
}

// HasSplit reports whether the dark and light masks were built.
func (m Masks) HasSplit() bool {
	return len(m.Dark.Pix) > 0 && len(m.Light.Pix) > 0
}

// Synthesizer builds the cleaned foreground mask for an image.
type Synthesizer interface {
	Synthesize(blurred *image.Gray) Masks
}

// UnionSynthesizer ORs every detector and cleans the result once. It favors
// recall and relies on the cleaner to suppress what the local detectors
// over-report.
type UnionSynthesizer struct {
	Union   Union
	Cleaner Cleaner
}

// Synthesize implements Synthesizer.
func (s UnionSynthesizer) Synthesize(blurred *image.Gray) Masks {
	return Masks{Combined: s.Cleaner.Clean(s.Union.Detect(blurred))}
}

// SplitSynthesizer builds and cleans dark and light masks independently and
// ORs the cleaned results. A single global level cannot separate dark and
// light objects from a mid-tone background at the same time.
type SplitSynthesizer struct {
	Dark    Detector
	Light   Detector
	Cleaner Cleaner
}

// Synthesize implements Synthesizer.
func (s SplitSynthesizer) Synthesize(blurred *image.Gray) Masks {
	dark := s.Cleaner.Clean(s.Dark.Detect(blurred))
	light := s.Cleaner.Clean(s.Light.Detect(blurred))
	return Masks{
		Combined: Or(dark, light),
		Dark:     dark,
		Light:    light,
	}
}
