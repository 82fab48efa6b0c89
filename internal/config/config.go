// Package config loads object-counter settings from an optional YAML file
// and OBJECT_COUNTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ironsheep/object-counter/internal/logging"
	"github.com/ironsheep/object-counter/internal/segment"
)

// EnvPrefix is prepended to every environment override, e.g.
// OBJECT_COUNTER_PIPELINE_MIN_AREA=80 or OBJECT_COUNTER_LOG_LEVEL=debug.
const EnvPrefix = "OBJECT_COUNTER"

// Config is the complete runtime configuration.
type Config struct {
	Pipeline segment.Params `mapstructure:"pipeline"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Log      LogConfig      `mapstructure:"log"`
}

// BatchConfig controls the directory runner.
type BatchConfig struct {
	Workers   int    `mapstructure:"workers"`
	OutputDir string `mapstructure:"output_dir"`
	SaveMasks bool   `mapstructure:"save_masks"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// Load reads path (skipped when empty), applies environment overrides and
// fills everything else with defaults. Pipeline defaults follow the
// configured mode, so a file that only says "mode: simple" gets the simple
// thresholds.
func Load(path string) (*Config, error) {
	return LoadMode(path, "")
}

// LoadMode is Load with the pipeline mode forced to mode, as a command line
// flag does. Defaults come from that mode; every other key set in the file
// or the environment still applies. An empty mode forces nothing.
func LoadMode(path, mode string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if mode != "" {
		v.Set("pipeline.mode", mode)
	}
	mode = v.GetString("pipeline.mode")
	if mode == "" {
		mode = segment.ModeAdvanced
	}
	base, err := segment.ParamsForMode(mode)
	if err != nil {
		return nil, err
	}
	setDefaults(v, base)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Pipeline: segment.DefaultParams(),
		Batch: BatchConfig{
			Workers:   1,
			SaveMasks: true,
		},
		Log: LogConfig{
			Level: logging.DefaultLevel,
		},
	}
}

// Validate checks the pipeline parameters and the batch settings.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Pipeline.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("batch.workers must be at least 1, got %d", c.Batch.Workers))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper, p segment.Params) {
	v.SetDefault("pipeline.mode", p.Mode)
	v.SetDefault("pipeline.backend", p.Backend)
	v.SetDefault("pipeline.blur_kernel", p.BlurKernel)
	v.SetDefault("pipeline.adaptive_window", p.AdaptiveWindow)
	v.SetDefault("pipeline.adaptive_bias", p.AdaptiveBias)
	v.SetDefault("pipeline.canny_low", p.CannyLow)
	v.SetDefault("pipeline.canny_high", p.CannyHigh)
	v.SetDefault("pipeline.edge_dilate_shape", p.EdgeDilateShape)
	v.SetDefault("pipeline.edge_dilate_iterations", p.EdgeDilateIterations)
	v.SetDefault("pipeline.light_fill_kernel", p.LightFillKernel)
	v.SetDefault("pipeline.light_fill_iterations", p.LightFillIterations)
	v.SetDefault("pipeline.light_threshold", p.LightThreshold)
	v.SetDefault("pipeline.open_kernel", p.OpenKernel)
	v.SetDefault("pipeline.close_medium_kernel", p.CloseMediumKernel)
	v.SetDefault("pipeline.close_large_kernel", p.CloseLargeKernel)
	v.SetDefault("pipeline.sure_bg_kernel", p.SureBgKernel)
	v.SetDefault("pipeline.sure_bg_iterations", p.SureBgIterations)
	v.SetDefault("pipeline.sure_fg_fraction", p.SureFgFraction)
	v.SetDefault("pipeline.seed_split_depth", p.SeedSplitDepth)
	v.SetDefault("pipeline.min_area", p.MinArea)

	def := Default()
	v.SetDefault("batch.workers", def.Batch.Workers)
	v.SetDefault("batch.output_dir", def.Batch.OutputDir)
	v.SetDefault("batch.save_masks", def.Batch.SaveMasks)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.console", def.Log.Console)
}
