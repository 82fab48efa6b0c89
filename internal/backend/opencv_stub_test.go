//go:build !opencv

package backend

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/object-counter/internal/segment"
)

func TestNew_OpenCVWithoutTag(t *testing.T) {
	p := segment.DefaultParams()
	p.Backend = segment.BackendOpenCV
	if _, err := New(p, zerolog.Nop()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}
