// Package backend builds the segment.Segmenter named by Params.Backend.
//
// The pure Go pipeline is always available. The OpenCV pipeline from
// internal/segment/cvbackend is linked in only when the binary is built
// with the "opencv" tag; otherwise asking for it returns ErrUnavailable.
package backend

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ironsheep/object-counter/internal/segment"
)

// ErrUnavailable is returned for a backend this binary was built without.
var ErrUnavailable = errors.New("segmentation backend not available")

// New returns the Segmenter selected by params.Backend. An empty backend
// selects the pure Go pipeline.
func New(params segment.Params, logger zerolog.Logger) (segment.Segmenter, error) {
	switch params.Backend {
	case segment.BackendGo, "":
		params.Backend = segment.BackendGo
		pl, err := segment.New(params, segment.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return pl, nil
	case segment.BackendOpenCV:
		return newOpenCV(params, logger)
	}
	return nil, fmt.Errorf("%w: unknown backend %q", segment.ErrInvalidParams, params.Backend)
}

// Available lists the backends compiled into this binary.
func Available() []string {
	if openCVAvailable {
		return []string{segment.BackendGo, segment.BackendOpenCV}
	}
	return []string{segment.BackendGo}
}
