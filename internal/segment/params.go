package segment

import (
	"errors"
	"fmt"
)

// Pipeline variants.
const (
	// ModeAdvanced builds dark and light masks separately. It is the default.
	ModeAdvanced = "advanced"
	// ModeSimple ORs all five detectors and cleans once.
	ModeSimple = "simple"
)

// Implementations of Segmenter selectable through Params.Backend.
const (
	// BackendGo is the pure Go pipeline in this package.
	BackendGo = "go"
	// BackendOpenCV runs the same stages through OpenCV. Binaries must be
	// built with the "opencv" tag.
	BackendOpenCV = "opencv"
)

// Params controls every tunable of the pipeline. The zero value is not
// usable; start from DefaultParams or SimpleParams.
type Params struct {
	Mode    string `mapstructure:"mode" json:"mode"`
	Backend string `mapstructure:"backend" json:"backend"`

	// BlurKernel is the odd side of the Gaussian smoothing kernel.
	BlurKernel int `mapstructure:"blur_kernel" json:"blur_kernel"`

	// Local threshold window (odd) and the margin below the local mean.
	AdaptiveWindow int     `mapstructure:"adaptive_window" json:"adaptive_window"`
	AdaptiveBias   float64 `mapstructure:"adaptive_bias" json:"adaptive_bias"`

	// Canny hysteresis thresholds in 8-bit gradient units.
	CannyLow  float64 `mapstructure:"canny_low" json:"canny_low"`
	CannyHigh float64 `mapstructure:"canny_high" json:"canny_high"`

	// Edge map dilation: element shape ("ellipse" or "rect", always 3x3)
	// and repeat count.
	EdgeDilateShape      string `mapstructure:"edge_dilate_shape" json:"edge_dilate_shape"`
	EdgeDilateIterations int    `mapstructure:"edge_dilate_iterations" json:"edge_dilate_iterations"`

	// Light mask: closing of the dilated edges plus everything not brighter
	// than LightThreshold. Used only in advanced mode.
	LightFillKernel     int `mapstructure:"light_fill_kernel" json:"light_fill_kernel"`
	LightFillIterations int `mapstructure:"light_fill_iterations" json:"light_fill_iterations"`
	LightThreshold      int `mapstructure:"light_threshold" json:"light_threshold"`

	// Cleaner ellipse sizes.
	OpenKernel        int `mapstructure:"open_kernel" json:"open_kernel"`
	CloseMediumKernel int `mapstructure:"close_medium_kernel" json:"close_medium_kernel"`
	CloseLargeKernel  int `mapstructure:"close_large_kernel" json:"close_large_kernel"`

	// Watershed.
	SureBgKernel     int     `mapstructure:"sure_bg_kernel" json:"sure_bg_kernel"`
	SureBgIterations int     `mapstructure:"sure_bg_iterations" json:"sure_bg_iterations"`
	SureFgFraction   float64 `mapstructure:"sure_fg_fraction" json:"sure_fg_fraction"`
	SeedSplitDepth   float64 `mapstructure:"seed_split_depth" json:"seed_split_depth"`

	// MinArea is the contour area a region must exceed to be counted.
	MinArea float64 `mapstructure:"min_area" json:"min_area"`
}

// DefaultParams returns the advanced pipeline settings, tuned for coins,
// seeds and sweets photographed on a plain surface.
func DefaultParams() Params {
	return Params{
		Mode:       ModeAdvanced,
		Backend:    BackendGo,
		BlurKernel: 5,

		AdaptiveWindow: 11,
		AdaptiveBias:   2,

		// Light objects have weak outlines
		CannyLow:  30,
		CannyHigh: 80,

		EdgeDilateShape:      ShapeEllipse,
		EdgeDilateIterations: 2,

		LightFillKernel:     7,
		LightFillIterations: 3,
		LightThreshold:      220,

		OpenKernel:        2,
		CloseMediumKernel: 4,
		CloseLargeKernel:  6,

		SureBgKernel:     3,
		SureBgIterations: 3,
		SureFgFraction:   0.3,
		SeedSplitDepth:   2.0,

		MinArea: 50,
	}
}

// SimpleParams returns the five-detector union settings.
func SimpleParams() Params {
	p := DefaultParams()
	p.Mode = ModeSimple
	p.CannyLow = 50
	p.CannyHigh = 150
	p.EdgeDilateShape = ShapeRect
	p.EdgeDilateIterations = 1
	p.MinArea = 100
	return p
}

// ParamsForMode returns the defaults of the named mode.
func ParamsForMode(mode string) (Params, error) {
	switch mode {
	case ModeAdvanced, "":
		return DefaultParams(), nil
	case ModeSimple:
		return SimpleParams(), nil
	}
	return Params{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidParams, mode)
}

// WithCanny returns a copy of p with new hysteresis thresholds.
func (p Params) WithCanny(low, high float64) Params {
	p.CannyLow = low
	p.CannyHigh = high
	return p
}

// WithMinArea returns a copy of p with a new minimum region area.
func (p Params) WithMinArea(area float64) Params {
	p.MinArea = area
	return p
}

// WithSureForeground returns a copy of p with a new seed fraction and split
// depth.
func (p Params) WithSureForeground(fraction, splitDepth float64) Params {
	p.SureFgFraction = fraction
	p.SeedSplitDepth = splitDepth
	return p
}

// WithCleaner returns a copy of p with new cleaner element sizes.
func (p Params) WithCleaner(open, medium, large int) Params {
	p.OpenKernel = open
	p.CloseMediumKernel = medium
	p.CloseLargeKernel = large
	return p
}

// Validate reports every problem with p, joined, wrapping ErrInvalidParams.
func (p Params) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidParams}, args...)...))
	}

	if p.Mode != ModeAdvanced && p.Mode != ModeSimple {
		bad("mode must be %q or %q, got %q", ModeAdvanced, ModeSimple, p.Mode)
	}
	if p.Backend != BackendGo && p.Backend != BackendOpenCV {
		bad("backend must be %q or %q, got %q", BackendGo, BackendOpenCV, p.Backend)
	}
	if p.BlurKernel < 1 || p.BlurKernel%2 == 0 {
		bad("blur_kernel must be odd and positive, got %d", p.BlurKernel)
	}
	if p.AdaptiveWindow < 3 || p.AdaptiveWindow%2 == 0 {
		bad("adaptive_window must be odd and at least 3, got %d", p.AdaptiveWindow)
	}
	if p.CannyLow < 0 || p.CannyHigh < p.CannyLow {
		bad("canny thresholds must satisfy 0 <= low <= high, got %.1f/%.1f", p.CannyLow, p.CannyHigh)
	}
	if p.EdgeDilateShape != ShapeEllipse && p.EdgeDilateShape != ShapeRect {
		bad("edge_dilate_shape must be %q or %q, got %q", ShapeEllipse, ShapeRect, p.EdgeDilateShape)
	}
	if p.EdgeDilateIterations < 0 || p.LightFillIterations < 0 || p.SureBgIterations < 0 {
		bad("iteration counts must not be negative")
	}
	if p.LightFillKernel < 1 {
		bad("light_fill_kernel must be positive, got %d", p.LightFillKernel)
	}
	if p.LightThreshold < 0 || p.LightThreshold > 255 {
		bad("light_threshold must be within 0-255, got %d", p.LightThreshold)
	}
	if p.OpenKernel < 1 || p.CloseMediumKernel < 1 || p.CloseLargeKernel < 1 || p.SureBgKernel < 1 {
		bad("structuring element sizes must be positive")
	}
	if p.SureFgFraction <= 0 || p.SureFgFraction >= 1 {
		bad("sure_fg_fraction must be within (0, 1), got %.3f", p.SureFgFraction)
	}
	if p.SeedSplitDepth < 0 {
		bad("seed_split_depth must not be negative, got %.2f", p.SeedSplitDepth)
	}
	if p.MinArea < 0 {
		bad("min_area must not be negative, got %.1f", p.MinArea)
	}
	return errors.Join(errs...)
}
