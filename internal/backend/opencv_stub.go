//go:build !opencv

package backend

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ironsheep/object-counter/internal/segment"
)

const openCVAvailable = false

func newOpenCV(segment.Params, zerolog.Logger) (segment.Segmenter, error) {
	return nil, fmt.Errorf("%w: %q requires a build with -tags opencv", ErrUnavailable, segment.BackendOpenCV)
}
