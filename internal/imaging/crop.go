package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropResult contains the cropped image data
type CropResult struct {
	X1          int    `json:"x1"`
	Y1          int    `json:"y1"`
	X2          int    `json:"x2"`
	Y2          int    `json:"y2"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Crop extracts rect grown by padding pixels on every side, clipped to the
// image, and optionally rescales it. Used to inspect a single detected object.
func Crop(img image.Image, rect image.Rectangle, padding int, scale float64) (*CropResult, error) {
	bounds := img.Bounds()
	if padding < 0 {
		padding = 0
	}

	r := rect.Inset(-padding).Intersect(bounds)
	if r.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %v", rect, bounds)
	}

	cropped := imaging.Crop(img, r)
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %.3f collapses crop to nothing", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	encoded, err := EncodePNGBase64(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X1:          r.Min.X,
		Y1:          r.Min.Y,
		X2:          r.Max.X,
		Y2:          r.Max.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
