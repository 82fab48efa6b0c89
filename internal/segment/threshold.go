package segment

import (
	"image"
	"math"

	"github.com/ironsheep/object-counter/internal/imaging"
)

// OtsuThreshold returns the gray level that maximizes the between-class
// variance of the histogram of gray.
//
// Pixels <= the returned level form the lower class. When no level splits
// the histogram into two non-empty classes (a uniform image), 0 is returned.
//
// # Algorithm
//
// For each candidate level t the weight q1 and mean mu1 of the lower class
// are accumulated incrementally; mu2 follows from the global mean. The
// between-class variance is q1*q2*(mu1-mu2)². The first level reaching the
// maximum wins.
func OtsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			hist[row[x]]++
		}
	}
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}

	scale := 1 / float64(total)
	var mu float64
	for i, h := range hist {
		mu += float64(i) * float64(h) * scale
	}

	const eps = 1.1920929e-07
	var q1, sum1, maxSigma float64
	level := 0
	for i, h := range hist {
		p := float64(h) * scale
		q1 += p
		sum1 += float64(i) * p
		q2 := 1 - q1
		if math.Min(q1, q2) < eps || math.Max(q1, q2) > 1-eps {
			continue
		}
		mu1 := sum1 / q1
		mu2 := (mu - q1*mu1) / q2
		sigma := q1 * q2 * (mu1 - mu2) * (mu1 - mu2)
		if sigma > maxSigma {
			maxSigma = sigma
			level = i
		}
	}
	return uint8(level)
}

// ThresholdBelow marks cells whose value is <= level.
func ThresholdBelow(gray *image.Gray, level uint8) Mask {
	return thresholdFunc(gray, func(v uint8) bool { return v <= level })
}

// ThresholdAbove marks cells whose value is > level.
func ThresholdAbove(gray *image.Gray, level uint8) Mask {
	return thresholdFunc(gray, func(v uint8) bool { return v > level })
}

// LocalMean returns the Gaussian-weighted mean of the window x window
// neighborhood of every pixel, with replicated borders.
func LocalMean(gray *image.Gray, window int) *image.Gray {
	return imaging.GaussianBlur(gray, window)
}

// AdaptiveBelow marks cells darker than their local mean by at least bias:
// v <= mean - bias.
func AdaptiveBelow(gray *image.Gray, window int, bias float64) Mask {
	return adaptive(gray, window, bias, false)
}

// AdaptiveAbove marks cells that are not darker than their local mean by
// bias: v > mean - bias. Flat regions therefore come out foreground.
func AdaptiveAbove(gray *image.Gray, window int, bias float64) Mask {
	return adaptive(gray, window, bias, true)
}

func adaptive(gray *image.Gray, window int, bias float64, above bool) Mask {
	mean := LocalMean(gray, window)
	delta := int(math.Ceil(bias))
	b := gray.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		src := gray.Pix[y*gray.Stride:]
		avg := mean.Pix[y*mean.Stride:]
		for x := 0; x < m.Width; x++ {
			brighter := int(src[x])-int(avg[x]) > -delta
			if brighter == above {
				m.Pix[y*m.Width+x] = On
			}
		}
	}
	return m
}

func thresholdFunc(gray *image.Gray, fg func(uint8) bool) Mask {
	b := gray.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < m.Width; x++ {
			if fg(row[x]) {
				m.Pix[y*m.Width+x] = On
			}
		}
	}
	return m
}
