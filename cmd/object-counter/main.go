package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/ironsheep/object-counter/internal/backend"
	"github.com/ironsheep/object-counter/internal/batch"
	"github.com/ironsheep/object-counter/internal/config"
	"github.com/ironsheep/object-counter/internal/logging"
	"github.com/ironsheep/object-counter/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "object-counter %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printUsage(stdout)
			return 0
		}
	}

	serve := len(args) > 0 && args[0] == "mcp"
	if serve {
		args = args[1:]
	}

	fs := flag.NewFlagSet("object-counter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "YAML configuration file")
		mode       = fs.String("mode", "", "pipeline variant: advanced or simple")
		engine     = fs.String("backend", "", "segmentation backend: go or opencv")
		minArea    = fs.Float64("min-area", 0, "minimum contour area of a counted object")
		workers    = fs.Int("workers", 0, "images processed in parallel")
		outputDir  = fs.String("out", "", "directory for result images (default: beside each input)")
		noMasks    = fs.Bool("no-masks", false, "do not write the debug masks")
		logLevel   = fs.String("log-level", "", "log level: debug, info, warn, error")
		logConsole = fs.Bool("log-console", false, "human-readable log output")
	)
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Flags win over the file and the environment, but only when given.
	// A -mode flag is handed to the loader so that file and environment
	// keys still apply on top of that mode's defaults.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	forcedMode := ""
	if set["mode"] {
		if *mode == "" {
			fmt.Fprintln(stderr, "Error: -mode needs a value")
			return 2
		}
		forcedMode = *mode
	}

	cfg, err := config.LoadMode(*configPath, forcedMode)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if set["backend"] {
		cfg.Pipeline.Backend = *engine
	}
	if set["min-area"] {
		cfg.Pipeline.MinArea = *minArea
	}
	if set["workers"] {
		cfg.Batch.Workers = *workers
	}
	if set["out"] {
		cfg.Batch.OutputDir = *outputDir
	}
	if set["no-masks"] {
		cfg.Batch.SaveMasks = !*noMasks
	}
	if set["log-level"] {
		cfg.Log.Level = *logLevel
	}
	if set["log-console"] {
		cfg.Log.Console = *logConsole
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Console)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger.Debug().Str("version", Version).Str("built", BuildTime).Str("commit", GitCommit).Msg("object-counter starting")

	if serve {
		if _, err := backend.New(cfg.Pipeline, logger); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		srv := server.New(server.WithParams(cfg.Pipeline), server.WithLogger(logger))
		if err := srv.Run(); err != nil {
			logger.Error().Err(err).Msg("server error")
			return 1
		}
		return 0
	}

	if fs.NArg() == 0 {
		printUsage(stderr)
		return 2
	}
	return runBatch(cfg, fs.Args(), logger, stdout, stderr)
}

func runBatch(cfg *config.Config, inputs []string, logger zerolog.Logger, stdout, stderr io.Writer) int {
	paths, err := batch.CollectImages(inputs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "Error: no images found")
		return 1
	}

	pl, err := backend.New(cfg.Pipeline, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := batch.NewRunner(pl,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithOutputDir(cfg.Batch.OutputDir),
		batch.WithSaveMasks(cfg.Batch.SaveMasks),
		batch.WithLogger(logger),
	)
	outcomes, runErr := runner.Run(ctx, paths)

	fmt.Fprintln(stdout, "Results:")
	if err := batch.WriteReport(stdout, outcomes); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return 1
	}
	if batch.Summarize(outcomes).Failed > 0 {
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "object-counter - count objects on a plain background")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  object-counter [options] <image|directory>...")
	fmt.Fprintln(w, "  object-counter mcp [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -config FILE      YAML configuration file")
	fmt.Fprintln(w, "  -mode MODE        advanced (default) or simple")
	fmt.Fprintln(w, "  -backend NAME     go (default) or opencv (needs a -tags opencv build)")
	fmt.Fprintln(w, "  -min-area N       minimum contour area of a counted object")
	fmt.Fprintln(w, "  -workers N        images processed in parallel (default 1)")
	fmt.Fprintln(w, "  -out DIR          write results into DIR instead of beside each input")
	fmt.Fprintln(w, "  -no-masks         do not write the debug masks")
	fmt.Fprintln(w, "  -log-level LEVEL  debug, info, warn or error (default info)")
	fmt.Fprintln(w, "  -log-console      human-readable log output")
	fmt.Fprintln(w, "  --version, -v     Print version information")
	fmt.Fprintln(w, "  --help, -h        Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "For every input the annotated image is written as <name>_result<ext>")
	fmt.Fprintln(w, "together with <name>_mask_combined.png, <name>_mask_dark.png and")
	fmt.Fprintln(w, "<name>_mask_light.png.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  OBJECT_COUNTER_LOG_LEVEL=debug          Enable debug logging")
	fmt.Fprintln(w, "  OBJECT_COUNTER_PIPELINE_MIN_AREA=80     Override any pipeline setting")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "In mcp mode the server communicates via MCP protocol over stdin/stdout.")
}
