package segment

import (
	"errors"
	"testing"
)

func TestDefaultParams_Valid(t *testing.T) {
	for name, p := range map[string]Params{"advanced": DefaultParams(), "simple": SimpleParams()} {
		if err := p.Validate(); err != nil {
			t.Errorf("%s defaults should be valid: %v", name, err)
		}
	}
}

func TestSimpleParams(t *testing.T) {
	p := SimpleParams()
	if p.Mode != ModeSimple || p.CannyLow != 50 || p.CannyHigh != 150 || p.MinArea != 100 {
		t.Errorf("unexpected simple params: %+v", p)
	}
	if p.EdgeDilateShape != ShapeRect || p.EdgeDilateIterations != 1 {
		t.Errorf("simple mode dilates edges once with a square: got %s x%d", p.EdgeDilateShape, p.EdgeDilateIterations)
	}
}

func TestParams_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"unknown mode", func(p *Params) { p.Mode = "fast" }},
		{"unknown backend", func(p *Params) { p.Backend = "cuda" }},
		{"empty backend", func(p *Params) { p.Backend = "" }},
		{"even blur", func(p *Params) { p.BlurKernel = 4 }},
		{"small window", func(p *Params) { p.AdaptiveWindow = 1 }},
		{"even window", func(p *Params) { p.AdaptiveWindow = 10 }},
		{"inverted canny", func(p *Params) { p.CannyLow, p.CannyHigh = 100, 50 }},
		{"bad shape", func(p *Params) { p.EdgeDilateShape = "star" }},
		{"negative iterations", func(p *Params) { p.SureBgIterations = -1 }},
		{"light threshold", func(p *Params) { p.LightThreshold = 300 }},
		{"zero open kernel", func(p *Params) { p.OpenKernel = 0 }},
		{"fraction zero", func(p *Params) { p.SureFgFraction = 0 }},
		{"fraction one", func(p *Params) { p.SureFgFraction = 1 }},
		{"negative split", func(p *Params) { p.SeedSplitDepth = -1 }},
		{"negative area", func(p *Params) { p.MinArea = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("got %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestParams_WithCopies(t *testing.T) {
	base := DefaultParams()
	p := base.WithCanny(10, 20).WithMinArea(5).WithSureForeground(0.5, 0).WithCleaner(3, 5, 7)

	if p.CannyLow != 10 || p.CannyHigh != 20 || p.MinArea != 5 ||
		p.SureFgFraction != 0.5 || p.SeedSplitDepth != 0 ||
		p.OpenKernel != 3 || p.CloseMediumKernel != 5 || p.CloseLargeKernel != 7 {
		t.Errorf("With* did not apply: %+v", p)
	}
	if base != DefaultParams() {
		t.Error("With* must not modify the receiver")
	}
}

func TestParamsForMode(t *testing.T) {
	p, err := ParamsForMode("")
	if err != nil || p.Mode != ModeAdvanced {
		t.Errorf("empty mode should select advanced, got %q, %v", p.Mode, err)
	}
	p, err = ParamsForMode(ModeSimple)
	if err != nil || p != SimpleParams() {
		t.Errorf("simple mode: got %+v, %v", p, err)
	}
	if _, err := ParamsForMode("other"); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("unknown mode: got %v, want ErrInvalidParams", err)
	}
}
