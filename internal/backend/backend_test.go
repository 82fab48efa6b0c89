package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/object-counter/internal/segment"
)

func TestNew_GoBackend(t *testing.T) {
	for _, name := range []string{segment.BackendGo, ""} {
		p := segment.DefaultParams()
		p.Backend = name
		s, err := New(p, zerolog.Nop())
		if err != nil {
			t.Fatalf("backend %q: %v", name, err)
		}
		if _, ok := s.(*segment.Pipeline); !ok {
			t.Errorf("backend %q: got %T, want *segment.Pipeline", name, s)
		}
		if s.Params().Backend != segment.BackendGo {
			t.Errorf("backend %q: params report %q", name, s.Params().Backend)
		}
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	p := segment.DefaultParams()
	p.Backend = "cuda"
	if _, err := New(p, zerolog.Nop()); !errors.Is(err, segment.ErrInvalidParams) {
		t.Errorf("got %v, want ErrInvalidParams", err)
	}
}

func TestNew_InvalidParams(t *testing.T) {
	p := segment.DefaultParams()
	p.BlurKernel = 4
	if _, err := New(p, zerolog.Nop()); !errors.Is(err, segment.ErrInvalidParams) {
		t.Errorf("got %v, want ErrInvalidParams", err)
	}
}

func TestAvailable(t *testing.T) {
	got := Available()
	if !slices.Contains(got, segment.BackendGo) {
		t.Errorf("go backend missing from %v", got)
	}
	if slices.Contains(got, segment.BackendOpenCV) != openCVAvailable {
		t.Errorf("opencv listed as %v, compiled in: %v", got, openCVAvailable)
	}
}
