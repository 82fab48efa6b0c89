package batch

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the outcomes of one run.
type Summary struct {
	Images    int     `json:"images"`
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Total     int     `json:"total_objects"`
	Mean      float64 `json:"mean_per_image"`
	StdDev    float64 `json:"stddev_per_image"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
}

// Summarize computes per-image statistics over the successful outcomes.
// Mean and StdDev are 0 when nothing succeeded; StdDev is 0 for a single
// image.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Images: len(outcomes)}

	counts := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Failed() {
			s.Failed++
			continue
		}
		if s.Succeeded == 0 {
			s.Min, s.Max = o.Count, o.Count
		}
		s.Succeeded++
		s.Total += o.Count
		s.Min = min(s.Min, o.Count)
		s.Max = max(s.Max, o.Count)
		counts = append(counts, float64(o.Count))
	}

	if len(counts) > 0 {
		s.Mean = stat.Mean(counts, nil)
	}
	if len(counts) > 1 {
		s.StdDev = stat.StdDev(counts, nil)
	}
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	return s
}

// WriteReport prints one line per image followed by the summary.
func WriteReport(w io.Writer, outcomes []Outcome) error {
	for _, o := range outcomes {
		var err error
		if o.Failed() {
			_, err = fmt.Fprintf(w, "  %s: error: %v\n", o.Path, o.Err)
		} else {
			_, err = fmt.Fprintf(w, "  %s: %d objects\n", o.Path, o.Count)
		}
		if err != nil {
			return err
		}
	}

	s := Summarize(outcomes)
	if s.Succeeded == 0 {
		_, err := fmt.Fprintln(w, "No image was processed successfully.")
		return err
	}
	_, err := fmt.Fprintf(w, "Processed %d of %d images: %d objects (mean %.2f, stddev %.2f, min %d, max %d)\n",
		s.Succeeded, s.Images, s.Total, s.Mean, s.StdDev, s.Min, s.Max)
	return err
}
