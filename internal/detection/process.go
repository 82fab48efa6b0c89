package detection

import (
	"image"

	"github.com/ironsheep/object-counter/internal/segment"
)

// Outcome is everything produced for one image.
type Outcome struct {
	Result       *Result
	Annotated    *image.NRGBA
	Masks        segment.Masks
	Segmentation *segment.Segmentation
}

// Process segments img, counts the regions using the segmenter's minimum
// area and draws the annotated copy.
//
// Returns segment.ErrInvalidInput for nil or empty images. Images without
// any detectable object yield a Result with Count 0.
func Process(img image.Image, s segment.Segmenter, opts AnnotateOptions) (*Outcome, error) {
	res, err := s.Segment(img)
	if err != nil {
		return nil, err
	}

	result := Count(res.Segmentation.Grid, s.Params().MinArea)
	return &Outcome{
		Result:       result,
		Annotated:    Annotate(img, res.Segmentation.Grid, result, opts),
		Masks:        res.Masks,
		Segmentation: res.Segmentation,
	}, nil
}
