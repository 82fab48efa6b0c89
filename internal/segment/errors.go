package segment

import (
	"errors"

	"github.com/ironsheep/object-counter/internal/imaging"
)

var (
	// ErrInvalidInput is returned for nil, undecodable or zero-sized images.
	// It is the same sentinel the imaging package wraps, so either can be
	// used with errors.Is.
	ErrInvalidInput = imaging.ErrInvalidInput

	// ErrInvalidParams is returned by Params.Validate and by constructors
	// that receive a configuration that cannot be run.
	ErrInvalidParams = errors.New("invalid pipeline parameters")
)
