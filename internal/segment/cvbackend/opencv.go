//go:build opencv

package cvbackend

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"github.com/ironsheep/object-counter/internal/segment"
)

// Segmenter is a segment.Segmenter backed by OpenCV.
type Segmenter struct {
	params segment.Params
	logger zerolog.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Segmenter) { s.logger = logger }
}

// New validates params and returns an OpenCV Segmenter.
func New(params segment.Params, opts ...Option) (*Segmenter, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := &Segmenter{params: params, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Params returns the parameters the segmenter was built with.
func (s *Segmenter) Params() segment.Params {
	return s.params
}

// Segment runs the full pipeline on img. All Mats are released before it
// returns.
func (s *Segmenter) Segment(img image.Image) (*segment.Result, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: image is nil", segment.ErrInvalidInput)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero-sized image (%dx%d)", segment.ErrInvalidInput, b.Dx(), b.Dy())
	}
	start := time.Now()
	p := s.params

	nrgba := imaging.Clone(img)
	rgba, err := gocv.NewMatFromBytes(nrgba.Rect.Dy(), nrgba.Rect.Dx(), gocv.MatTypeCV8UC4, nrgba.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: p.BlurKernel, Y: p.BlurKernel}, 0, 0, gocv.BorderDefault)

	var masks segment.Masks
	combined := gocv.NewMat()
	defer combined.Close()
	if p.Mode == segment.ModeSimple {
		s.simpleMask(blurred, &combined)
		masks.Combined = toMask(combined)
	} else {
		dark, light := s.splitMasks(blurred)
		defer dark.Close()
		defer light.Close()
		gocv.BitwiseOr(dark, light, &combined)
		masks = segment.Masks{Combined: toMask(combined), Dark: toMask(dark), Light: toMask(light)}
	}
	s.logger.Debug().Int("foreground", masks.Combined.Count()).Msg("mask synthesized")

	seg := s.watershed(combined, bgr)
	s.logger.Debug().
		Int("objects", seg.ObjectCount()).
		Int("seeds", seg.Seeds).
		Bool("degenerate", seg.Degenerate).
		Dur("elapsed", time.Since(start)).
		Msg("watershed complete")

	return &segment.Result{
		Gray:         toGray(gray),
		Blurred:      toGray(blurred),
		Masks:        masks,
		Segmentation: seg,
	}, nil
}

// simpleMask ORs the five detectors into dst and cleans the union.
func (s *Segmenter) simpleMask(blurred gocv.Mat, dst *gocv.Mat) {
	p := s.params
	parts := make([]gocv.Mat, 5)
	for i := range parts {
		parts[i] = gocv.NewMat()
		defer parts[i].Close()
	}

	gocv.Threshold(blurred, &parts[0], 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	gocv.Threshold(blurred, &parts[1], 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	gocv.AdaptiveThreshold(blurred, &parts[2], 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, p.AdaptiveWindow, float32(p.AdaptiveBias))
	gocv.AdaptiveThreshold(blurred, &parts[3], 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, p.AdaptiveWindow, float32(p.AdaptiveBias))
	s.dilatedEdges(blurred, &parts[4])

	union := parts[0].Clone()
	defer union.Close()
	for _, m := range parts[1:] {
		gocv.BitwiseOr(union, m, &union)
	}
	s.clean(union, dst)
}

// splitMasks returns the cleaned dark and light masks. The caller closes
// both.
func (s *Segmenter) splitMasks(blurred gocv.Mat) (gocv.Mat, gocv.Mat) {
	p := s.params

	rawDark := gocv.NewMat()
	defer rawDark.Close()
	gocv.Threshold(blurred, &rawDark, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	dark := gocv.NewMat()
	s.clean(rawDark, &dark)

	edges := gocv.NewMat()
	defer edges.Close()
	s.dilatedEdges(blurred, &edges)
	fill := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: p.LightFillKernel, Y: p.LightFillKernel})
	defer fill.Close()
	for i := 0; i < p.LightFillIterations; i++ {
		gocv.MorphologyEx(edges, &edges, gocv.MorphClose, fill)
	}

	notBright := gocv.NewMat()
	defer notBright.Close()
	gocv.Threshold(blurred, &notBright, float32(p.LightThreshold), 255, gocv.ThresholdBinaryInv)

	rawLight := gocv.NewMat()
	defer rawLight.Close()
	gocv.BitwiseOr(edges, notBright, &rawLight)
	light := gocv.NewMat()
	s.clean(rawLight, &light)

	return dark, light
}

// dilatedEdges writes the Canny edge map, dilated with a 3x3 element, to dst.
func (s *Segmenter) dilatedEdges(blurred gocv.Mat, dst *gocv.Mat) {
	p := s.params
	gocv.Canny(blurred, dst, float32(p.CannyLow), float32(p.CannyHigh))

	shape := gocv.MorphEllipse
	if p.EdgeDilateShape == segment.ShapeRect {
		shape = gocv.MorphRect
	}
	kernel := gocv.GetStructuringElement(shape, image.Point{X: 3, Y: 3})
	defer kernel.Close()
	for i := 0; i < p.EdgeDilateIterations; i++ {
		gocv.Dilate(*dst, dst, kernel)
	}
}

// clean applies the opening and the two closings, repeated until the mask
// settles, like segment.Cleaner.
func (s *Segmenter) clean(src gocv.Mat, dst *gocv.Mat) {
	p := s.params
	steps := []struct {
		op     gocv.MorphType
		kernel gocv.Mat
	}{
		{gocv.MorphOpen, gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: p.OpenKernel, Y: p.OpenKernel})},
		{gocv.MorphClose, gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: p.CloseMediumKernel, Y: p.CloseMediumKernel})},
		{gocv.MorphClose, gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: p.CloseLargeKernel, Y: p.CloseLargeKernel})},
	}
	for _, st := range steps {
		defer st.kernel.Close()
	}

	prev := gocv.NewMat()
	defer prev.Close()
	diff := gocv.NewMat()
	defer diff.Close()

	src.CopyTo(dst)
	for round := 0; round < segment.MaxCleanRounds; round++ {
		dst.CopyTo(&prev)
		for _, st := range steps {
			gocv.MorphologyEx(*dst, dst, st.op, st.kernel)
		}
		gocv.AbsDiff(*dst, prev, &diff)
		if gocv.CountNonZero(diff) == 0 {
			return
		}
	}
}

func (s *Segmenter) watershed(mask, bgr gocv.Mat) *segment.Segmentation {
	p := s.params
	w, h := mask.Cols(), mask.Rows()
	seg := &segment.Segmentation{Grid: segment.NewLabelGrid(w, h)}

	fg := gocv.CountNonZero(mask)
	if fg == 0 || fg == w*h {
		seg.Degenerate = true
		m := toMask(mask)
		seg.SureBackground = m
		seg.SureForeground = segment.NewMask(w, h)
		seg.Unknown = segment.NewMask(w, h)
		seg.Distance = segment.DistanceField{Width: w, Height: h, Values: make([]float64, w*h)}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				seg.Grid.SetBackground(x, y)
			}
		}
		return seg
	}

	sureBg := gocv.NewMat()
	defer sureBg.Close()
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: p.SureBgKernel, Y: p.SureBgKernel})
	defer kernel.Close()
	mask.CopyTo(&sureBg)
	for i := 0; i < p.SureBgIterations; i++ {
		gocv.Dilate(sureBg, &sureBg, kernel)
	}

	dist := gocv.NewMat()
	defer dist.Close()
	labels := gocv.NewMat()
	defer labels.Close()
	gocv.DistanceTransform(mask, &dist, &labels, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp)
	_, maxDist, _, _ := gocv.MinMaxLoc(dist)

	fgFloat := gocv.NewMat()
	defer fgFloat.Close()
	gocv.Threshold(dist, &fgFloat, float32(p.SureFgFraction)*maxDist, 255, gocv.ThresholdBinary)
	sureFg := gocv.NewMat()
	defer sureFg.Close()
	fgFloat.ConvertTo(&sureFg, gocv.MatTypeCV8U)

	unknown := gocv.NewMat()
	defer unknown.Close()
	gocv.Subtract(sureBg, sureFg, &unknown)

	markers := gocv.NewMat()
	defer markers.Close()
	seg.Seeds = gocv.ConnectedComponents(sureFg, &markers) - 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := markers.GetIntAt(y, x) + 1
			if unknown.GetUCharAt(y, x) != 0 {
				v = 0
			}
			markers.SetIntAt(y, x, v)
		}
	}
	gocv.Watershed(bgr, &markers)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch v := int(markers.GetIntAt(y, x)); {
			case v == segment.BoundaryLabel:
				seg.Grid.SetBoundary(x, y)
			case v >= segment.FirstObjectLabel:
				seg.Grid.SetObject(x, y, v)
			default:
				seg.Grid.SetBackground(x, y)
			}
		}
	}

	seg.SureBackground = toMask(sureBg)
	seg.SureForeground = toMask(sureFg)
	seg.Unknown = toMask(unknown)
	seg.Distance = toDistance(dist)
	return seg
}

func toMask(m gocv.Mat) segment.Mask {
	out := segment.NewMask(m.Cols(), m.Rows())
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			out.Set(x, y, m.GetUCharAt(y, x) != 0)
		}
	}
	return out
}

func toGray(m gocv.Mat) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Cols(), m.Rows()))
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			g.Pix[y*g.Stride+x] = m.GetUCharAt(y, x)
		}
	}
	return g
}

func toDistance(m gocv.Mat) segment.DistanceField {
	d := segment.DistanceField{Width: m.Cols(), Height: m.Rows(), Values: make([]float64, m.Cols()*m.Rows())}
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			d.Values[y*d.Width+x] = float64(m.GetFloatAt(y, x))
		}
	}
	return d
}
