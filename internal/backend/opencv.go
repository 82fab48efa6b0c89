//go:build opencv

package backend

import (
	"github.com/rs/zerolog"

	"github.com/ironsheep/object-counter/internal/segment"
	"github.com/ironsheep/object-counter/internal/segment/cvbackend"
)

const openCVAvailable = true

func newOpenCV(params segment.Params, logger zerolog.Logger) (segment.Segmenter, error) {
	s, err := cvbackend.New(params, cvbackend.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return s, nil
}
