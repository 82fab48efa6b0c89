package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// ErrInvalidInput is returned when an image is nil or has no pixels.
// Callers compare with errors.Is; the pipeline re-exports it.
var ErrInvalidInput = errors.New("invalid input image")

// DefaultBlurKernel is the side length of the smoothing kernel applied after
// luminance conversion.
const DefaultBlurKernel = 5

// Validate reports ErrInvalidInput for nil or zero-sized images.
func Validate(img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: image is nil", ErrInvalidInput)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: zero-sized image (%dx%d)", ErrInvalidInput, b.Dx(), b.Dy())
	}
	return nil
}

// Reduce converts a color image to a single-channel intensity grid and
// smooths it with a Gaussian kernel.
//
// Parameters:
//   - img: Source image (any color model). Must be non-nil and non-empty.
//   - kernelSize: Odd side length of the Gaussian kernel. Typical value: 5.
//
// Returns:
//   - gray: Luminance image (ITU-R BT.601 weights), origin at (0,0).
//   - blurred: gray convolved with the Gaussian kernel.
//   - error: ErrInvalidInput for nil/zero-sized images or a bad kernel size.
//
// # Algorithm
//
//  1. Luminance: Y = 0.299*R + 0.587*G + 0.114*B via imaging.Grayscale
//  2. Gaussian blur: kernelSize x kernelSize, sigma derived from the size
//     (sigma = 0.3*((k-1)*0.5 - 1) + 0.8), replicated borders
//
// The input image is never modified.
func Reduce(img image.Image, kernelSize int) (*image.Gray, *image.Gray, error) {
	if err := Validate(img); err != nil {
		return nil, nil, err
	}
	if kernelSize < 1 || kernelSize%2 == 0 {
		return nil, nil, fmt.Errorf("%w: blur kernel must be odd and positive, got %d", ErrInvalidInput, kernelSize)
	}

	gray := ToGray(img)
	return gray, GaussianBlur(gray, kernelSize), nil
}

// ToGray returns the luminance of img as an *image.Gray whose bounds start
// at (0,0).
func ToGray(img image.Image) *image.Gray {
	lum := imaging.Grayscale(img)
	b := lum.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := lum.Pix[y*lum.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// GaussianSigma returns the standard deviation used for a kernel of the given
// size when none is specified.
func GaussianSigma(kernelSize int) float64 {
	return 0.3*((float64(kernelSize)-1)*0.5-1) + 0.8
}

// GaussianKernel builds a normalized size x size Gaussian kernel.
func GaussianKernel(size int) *convolution.Kernel {
	sigma := GaussianSigma(size)
	half := size / 2

	weights := make([]float64, size)
	var sum float64
	for i := range weights {
		d := float64(i - half)
		weights[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}

	k := convolution.NewKernel(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			k.Matrix[y*size+x] = weights[y] * weights[x]
		}
	}
	return k
}

// GaussianBlur convolves a grayscale image with a size x size Gaussian kernel.
// Border pixels use replicated edge values.
func GaussianBlur(gray *image.Gray, size int) *image.Gray {
	if size <= 1 {
		return cloneGray(gray)
	}
	// Bias of 0.5 rounds to nearest when the result is stored as uint8.
	out := convolution.Convolve(gray, GaussianKernel(size), &convolution.Options{Bias: 0.5})
	return redChannel(out)
}

// redChannel extracts the first channel of an RGBA produced from a gray source.
func redChannel(rgba *image.RGBA) *image.Gray {
	b := rgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

func cloneGray(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], gray.Pix[(y)*gray.Stride:(y)*gray.Stride+b.Dx()])
	}
	return out
}
