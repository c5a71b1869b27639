// Package config loads estimator settings from a YAML file with
// environment variable overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"circle-center/internal/center"
	"circle-center/internal/edges"
	"circle-center/internal/vote"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v3"
)

// CannyConfig holds the edge detector thresholds.
type CannyConfig struct {
	Low  float32 `yaml:"low"`
	High float32 `yaml:"high"`
}

// SobelConfig holds the gradient operator settings.
type SobelConfig struct {
	KernelSize int `yaml:"kernel_size"`
}

// Config is the full configuration surface of the estimator.
type Config struct {
	MinRadius       int     `yaml:"min_radius" env:"CENTER_MIN_RADIUS"`
	MaxRadius       int     `yaml:"max_radius" env:"CENTER_MAX_RADIUS"` // 0 or null = half the smaller dimension
	GradientEpsilon float64 `yaml:"gradient_epsilon" env:"CENTER_GRADIENT_EPSILON"`
	Workers         int     `yaml:"workers" env:"CENTER_WORKERS"`
	KeepAccumulator bool    `yaml:"keep_accumulator"`

	Canny CannyConfig `yaml:"canny"`
	Sobel SobelConfig `yaml:"sobel"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := center.DefaultParams()
	return &Config{
		MinRadius:       p.MinRadius,
		MaxRadius:       p.MaxRadius,
		GradientEpsilon: p.GradientEpsilon,
		Workers:         p.Workers,
		Canny:           CannyConfig{Low: edges.DefaultCannyLow, High: edges.DefaultCannyHigh},
		Sobel:           SobelConfig{KernelSize: edges.DefaultSobelKernel},
	}
}

// maxFileSize bounds the config file read.
const maxFileSize = 1 << 20

// Load reads a YAML config file on top of the defaults, then applies
// environment overrides. An empty path skips the file. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxFileSize {
		return fmt.Errorf("config file too large (max %d bytes)", maxFileSize)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", cleanPath, err)
	}
	return nil
}

// ApplyEnv overrides fields from CENTER_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Validate checks the configuration before any estimation work.
func (c *Config) Validate() error {
	if c.MaxRadius < 0 {
		return fmt.Errorf("max_radius must be >= 0 (0 selects the default), got %d", c.MaxRadius)
	}
	if c.MaxRadius > 0 {
		if err := (vote.RadiusRange{Min: c.MinRadius, Max: c.MaxRadius}).Validate(); err != nil {
			return err
		}
	} else if c.MinRadius < 1 {
		return &vote.InvalidRadiusRangeError{Min: c.MinRadius, Max: c.MaxRadius}
	}
	if c.GradientEpsilon < 0 {
		return fmt.Errorf("gradient_epsilon must be >= 0, got %g", c.GradientEpsilon)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Canny.Low < 0 || c.Canny.High < c.Canny.Low {
		return fmt.Errorf("canny thresholds must satisfy 0 <= low <= high, got %g/%g", c.Canny.Low, c.Canny.High)
	}
	switch c.Sobel.KernelSize {
	case 1, 3, 5, 7:
	default:
		return fmt.Errorf("sobel kernel_size must be 1, 3, 5 or 7, got %d", c.Sobel.KernelSize)
	}
	return nil
}

// EstimatorParams converts the configuration to estimator parameters.
func (c *Config) EstimatorParams() center.Params {
	return center.DefaultParams().
		WithRadius(c.MinRadius, c.MaxRadius).
		WithEpsilon(c.GradientEpsilon).
		WithWorkers(c.Workers).
		WithAccumulator(c.KeepAccumulator)
}

// CannySource returns the configured edge source.
func (c *Config) CannySource() edges.Canny {
	return edges.Canny{Low: c.Canny.Low, High: c.Canny.High}
}

// SobelSource returns the configured gradient source.
func (c *Config) SobelSource() edges.Sobel {
	return edges.Sobel{KernelSize: c.Sobel.KernelSize}
}

// Estimator builds an OpenCV-backed estimator from the configuration.
func (c *Config) Estimator() *center.Estimator {
	return center.New(c.CannySource(), c.SobelSource(), c.EstimatorParams())
}
