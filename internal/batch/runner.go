package batch

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/object-counter/internal/detection"
	"github.com/ironsheep/object-counter/internal/imaging"
	"github.com/ironsheep/object-counter/internal/segment"
)

// Outcome reports what happened to one input file.
type Outcome struct {
	Path     string            `json:"path"`
	Count    int               `json:"count"`
	Result   *detection.Result `json:"result,omitempty"`
	Outputs  []string          `json:"outputs,omitempty"`
	Duration time.Duration     `json:"duration"`
	Err      error             `json:"-"`
}

// Failed reports whether the file could not be processed.
func (o Outcome) Failed() bool { return o.Err != nil }

// Runner processes image files with a bounded worker pool.
type Runner struct {
	segmenter segment.Segmenter
	workers   int
	outputDir string
	saveMasks bool
	annotate  detection.AnnotateOptions
	logger    zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many files are processed at once. Values below 1
// are treated as 1.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = max(n, 1) }
}

// WithOutputDir writes outputs into dir instead of beside each input.
func WithOutputDir(dir string) Option {
	return func(r *Runner) { r.outputDir = dir }
}

// WithSaveMasks controls whether the debug masks are written.
func WithSaveMasks(save bool) Option {
	return func(r *Runner) { r.saveMasks = save }
}

// WithAnnotateOptions replaces the drawing options.
func WithAnnotateOptions(opts detection.AnnotateOptions) Option {
	return func(r *Runner) { r.annotate = opts }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner returns a Runner using s for segmentation. By default it runs
// one worker, saves masks beside the inputs and draws with
// detection.DefaultAnnotateOptions.
func NewRunner(s segment.Segmenter, opts ...Option) *Runner {
	r := &Runner{
		segmenter: s,
		workers:   1,
		saveMasks: true,
		annotate:  detection.DefaultAnnotateOptions(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes paths and returns one Outcome per path, in the same order.
//
// Failures are recorded in Outcome.Err and do not stop the other files.
// When ctx is cancelled, files not yet started get ctx.Err() as their error
// and Run returns ctx.Err() alongside the partial outcomes.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Outcome, error) {
	outcomes := make([]Outcome, len(paths))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)
	for i, path := range paths {
		select {
		case <-ctx.Done():
			outcomes[i] = Outcome{Path: path, Err: ctx.Err()}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = r.ProcessFile(ctx, path)
		}(i, path)
	}
	wg.Wait()

	return outcomes, ctx.Err()
}

// ProcessFile loads, counts and saves a single file.
func (r *Runner) ProcessFile(ctx context.Context, path string) Outcome {
	start := time.Now()
	out := Outcome{Path: path}
	finish := func(err error) Outcome {
		out.Err = err
		out.Duration = time.Since(start)
		if err != nil {
			r.logger.Error().Err(err).Str("file", path).Msg("processing failed")
		} else {
			r.logger.Info().Str("file", path).Int("count", out.Count).Dur("duration", out.Duration).Msg("objects counted")
		}
		return out
	}

	if err := ctx.Err(); err != nil {
		return finish(err)
	}

	r.logger.Debug().Str("file", path).Msg("processing")
	img, err := imaging.Open(path)
	if err != nil {
		return finish(err)
	}

	res, err := detection.Process(img, r.segmenter, r.annotate)
	if err != nil {
		return finish(fmt.Errorf("failed to process %s: %w", path, err))
	}
	out.Result = res.Result
	out.Count = res.Result.Count

	written, err := r.save(path, res)
	out.Outputs = written
	return finish(err)
}

func (r *Runner) save(path string, res *detection.Outcome) ([]string, error) {
	names := OutputsFor(path, r.outputDir)

	type output struct {
		path string
		img  image.Image
	}
	outputs := []output{{names.Result, res.Annotated}}
	if r.saveMasks {
		outputs = append(outputs, output{names.MaskCombined, res.Masks.Combined.ToGray()})
		if res.Masks.HasSplit() {
			outputs = append(outputs,
				output{names.MaskDark, res.Masks.Dark.ToGray()},
				output{names.MaskLight, res.Masks.Light.ToGray()},
			)
		}
	}

	written := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if err := imaging.Save(o.img, o.path); err != nil {
			return written, err
		}
		written = append(written, o.path)
	}
	return written, nil
}
