package segment

import (
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/object-counter/internal/imaging"
)

// Result carries every intermediate product of one Segment call.
type Result struct {
	Gray         *image.Gray
	Blurred      *image.Gray
	Masks        Masks
	Segmentation *Segmentation
}

// Segmenter turns an image into labeled regions. Pipeline is the pure Go
// implementation; other backends can be swapped in behind it.
type Segmenter interface {
	Segment(img image.Image) (*Result, error)
	Params() Params
}

// Pipeline runs reduction, mask synthesis, cleaning and watershed
// separation with one fixed parameter set. It holds no per-image state and
// is safe for concurrent use.
type Pipeline struct {
	params    Params
	synth     Synthesizer
	separator Separator
	logger    zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New validates params and builds a Pipeline.
func New(params Params, opts ...Option) (*Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	synth, err := NewSynthesizer(params)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		params: params,
		synth:  synth,
		separator: Separator{
			SureBackground:           Rect(params.SureBgKernel, params.SureBgKernel),
			SureBackgroundIterations: params.SureBgIterations,
			SureForegroundFraction:   params.SureFgFraction,
			SeedSplitDepth:           params.SeedSplitDepth,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewSynthesizer builds the mask synthesizer selected by params.Mode.
func NewSynthesizer(params Params) (Synthesizer, error) {
	cleaner, err := NewCleaner(params.OpenKernel, params.CloseMediumKernel, params.CloseLargeKernel)
	if err != nil {
		return nil, err
	}
	edgeElement, err := NewElement(params.EdgeDilateShape, 3)
	if err != nil {
		return nil, err
	}
	edges := EdgeBlobs{
		Low:        params.CannyLow,
		High:       params.CannyHigh,
		Element:    edgeElement,
		Iterations: params.EdgeDilateIterations,
	}

	switch params.Mode {
	case ModeSimple:
		return UnionSynthesizer{
			Union: Union{Label: "all", Detectors: []Detector{
				GlobalDark{},
				GlobalLight{},
				LocalDark{Window: params.AdaptiveWindow, Bias: params.AdaptiveBias},
				LocalLight{Window: params.AdaptiveWindow, Bias: params.AdaptiveBias},
				edges,
			}},
			Cleaner: cleaner,
		}, nil
	case ModeAdvanced:
		return SplitSynthesizer{
			Dark: GlobalDark{},
			Light: Union{Label: "light", Detectors: []Detector{
				FilledEdges{
					Edges:      edges,
					Fill:       Ellipse(params.LightFillKernel, params.LightFillKernel),
					Iterations: params.LightFillIterations,
				},
				NotBright{Level: uint8(params.LightThreshold)},
			}},
			Cleaner: cleaner,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidParams, params.Mode)
}

// Params returns the parameters the pipeline was built with.
func (p *Pipeline) Params() Params {
	return p.params
}

// Segment runs every stage on img. img is not modified.
//
// Returns ErrInvalidInput for nil or empty images. A mask with no usable
// foreground is not an error; the result then has zero objects.
func (p *Pipeline) Segment(img image.Image) (*Result, error) {
	start := time.Now()
	gray, blurred, err := imaging.Reduce(img, p.params.BlurKernel)
	if err != nil {
		return nil, err
	}

	masks := p.synth.Synthesize(blurred)
	p.logger.Debug().
		Str("mode", p.params.Mode).
		Int("foreground", masks.Combined.Count()).
		Int("pixels", len(masks.Combined.Pix)).
		Msg("mask synthesized")

	seg, err := p.separator.Separate(masks.Combined, img)
	if err != nil {
		return nil, err
	}
	p.logger.Debug().
		Int("seeds", seg.Seeds).
		Int("objects", seg.ObjectCount()).
		Int("boundary", seg.Grid.CountState(CellBoundary)).
		Bool("degenerate", seg.Degenerate).
		Float64("max_distance", seg.Distance.Max()).
		Dur("elapsed", time.Since(start)).
		Msg("watershed complete")

	return &Result{
		Gray:         gray,
		Blurred:      blurred,
		Masks:        masks,
		Segmentation: seg,
	}, nil
}
