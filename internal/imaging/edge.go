package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
)

// EdgeDetectResult contains an edge-detected image encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	// The image is grayscale with edges marked in white (255).
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect performs Canny edge detection on an image and returns the edge
// map as a base64 PNG.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - thresholdLow: Low hysteresis threshold in 8-bit gradient units.
//   - thresholdHigh: High hysteresis threshold in 8-bit gradient units.
//
// The image is reduced to luminance and smoothed with a 5x5 Gaussian before
// the gradient is taken, which is the same preparation the object pipeline
// applies.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*EdgeDetectResult, error) {
	_, blurred, err := Reduce(img, DefaultBlurKernel)
	if err != nil {
		return nil, err
	}

	edges := Canny(blurred, float64(thresholdLow), float64(thresholdHigh))

	count := 0
	for _, v := range edges.Pix {
		if v != 0 {
			count++
		}
	}

	encoded, err := EncodePNGBase64(edges)
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	b := edges.Bounds()
	return &EdgeDetectResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		EdgePixels:  count,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// Canny runs Canny edge detection on an already smoothed grayscale image.
//
// Parameters:
//   - gray: Smoothed 8-bit intensity image. It is not blurred again.
//   - low: Gradient magnitudes below this are discarded.
//   - high: Gradient magnitudes at or above this seed strong edges.
//
// Returns a new *image.Gray with edges at 255 and everything else at 0.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients
//     magnitude = |Gx| + |Gy| (L1), direction = atan2(Gy, Gx)
//
//  2. Non-maximum suppression: keep only local maxima along the gradient
//     direction, which thins edges to one pixel
//
//  3. Hysteresis: pixels >= high are strong edges; pixels in [low, high) are
//     kept only when 8-connected (possibly through other weak pixels) to a
//     strong edge
//
// Thresholds are in the units of the 8-bit input and the magnitude uses the
// L1 norm, the same as OpenCV's Canny without L2gradient, so the usual
// low=50/high=150 settings carry over.
func Canny(gray *image.Gray, low, high float64) *image.Gray {
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return result
	}

	at := func(x, y int) float64 {
		return float64(gray.Pix[y*gray.Stride+x])
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([]float64, width*height)
	direction := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := at(clamp(x+kx, 0, width-1), clamp(y+ky, 0, height-1))
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y*width+x] = math.Abs(gx) + math.Abs(gy)
			direction[y*width+x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			angle := direction[i]
			mag := magnitude[i]
			if mag == 0 {
				continue
			}

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[i-width-1]
				n2 = magnitude[i+width+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			} else {
				n1 = magnitude[i-width+1]
				n2 = magnitude[i+width-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Hysteresis: grow strong edges through weak ones
	stack := make([]int, 0, 64)
	for i, v := range suppressed {
		if v >= high {
			result.Pix[i] = 255
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if result.Pix[j] == 0 && suppressed[j] >= low && suppressed[j] > 0 {
					result.Pix[j] = 255
					stack = append(stack, j)
				}
			}
		}
	}

	return result
}

// EncodePNGBase64 encodes an image as PNG and returns it base64 encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
