// Package config handles benchmark configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"regexp"
)

// Config holds all benchmark settings.
type Config struct {
	Render    RenderConfig    `yaml:"render"`
	Fractal   FractalConfig   `yaml:"fractal"`
	Animation AnimationConfig `yaml:"animation"`
	Bench     BenchConfig     `yaml:"bench"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RenderConfig holds output image settings.
type RenderConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Supersample int    `yaml:"supersample"`
	Background  string `yaml:"background"`
	Color       string `yaml:"color"`
}

// FractalConfig holds mesh generation settings.
type FractalConfig struct {
	GridSize     int     `yaml:"grid_size"`
	Power        float64 `yaml:"power"`
	MaxIteration int     `yaml:"max_iteration"`
	LowerBound   float64 `yaml:"lower_bound"`
	UpperBound   float64 `yaml:"upper_bound"`
	Level        float64 `yaml:"level"`
	Workers      int     `yaml:"workers"`
}

// AnimationConfig holds the rotation schedule settings.
type AnimationConfig struct {
	Duration      float64 `yaml:"duration"`       // seconds
	FPS           float64 `yaml:"fps"`            // frames per second
	RotationSpeed float64 `yaml:"rotation_speed"` // radians per second
}

// BenchConfig holds benchmark run settings.
type BenchConfig struct {
	Repeat   int      `yaml:"repeat"`
	Backends []string `yaml:"backends"`
	Output   string   `yaml:"output"` // .gif file, PNG directory or empty to discard
	Chart    string   `yaml:"chart"`  // FPS bar chart PNG, empty to skip
	STL      string   `yaml:"stl"`    // base mesh STL, empty to skip
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the reference benchmark configuration: a 100³ Mandelbulb
// rotated at π rad/s for 3 seconds at 60 fps into 480x480 frames.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:       480,
			Height:      480,
			Supersample: 1,
			Background:  "#FFF8E3",
			Color:       "#468966",
		},
		Fractal: FractalConfig{
			GridSize:     100,
			Power:        8,
			MaxIteration: 8,
			LowerBound:   -1,
			UpperBound:   1,
			Level:        2.4,
			Workers:      1,
		},
		Animation: AnimationConfig{
			Duration:      3.0,
			FPS:           60,
			RotationSpeed: 3.1415926,
		},
		Bench: BenchConfig{
			Repeat:   4,
			Backends: []string{"fauxgl", "canvas"},
			Output:   "out.gif",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	finite := func(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

	check(c.Render.Width > 0 && c.Render.Height > 0, "render: invalid size %dx%d", c.Render.Width, c.Render.Height)
	check(c.Render.Supersample >= 0, "render: negative supersample %d", c.Render.Supersample)
	check(c.Render.Background == "" || hexColor.MatchString(c.Render.Background), "render: invalid background color %q", c.Render.Background)
	check(c.Render.Color == "" || hexColor.MatchString(c.Render.Color), "render: invalid color %q", c.Render.Color)

	check(c.Fractal.GridSize >= 2, "fractal: grid_size must be at least 2, got %d", c.Fractal.GridSize)
	check(c.Fractal.Power > 0 && finite(c.Fractal.Power), "fractal: power must be positive, got %g", c.Fractal.Power)
	check(c.Fractal.MaxIteration >= 0, "fractal: negative max_iteration %d", c.Fractal.MaxIteration)
	check(finite(c.Fractal.LowerBound) && finite(c.Fractal.UpperBound) && c.Fractal.LowerBound < c.Fractal.UpperBound,
		"fractal: invalid bounds [%g, %g]", c.Fractal.LowerBound, c.Fractal.UpperBound)
	check(finite(c.Fractal.Level), "fractal: level must be finite, got %g", c.Fractal.Level)

	check(c.Animation.Duration > 0 && finite(c.Animation.Duration), "animation: duration must be positive, got %g", c.Animation.Duration)
	check(c.Animation.FPS > 0 && finite(c.Animation.FPS), "animation: fps must be positive, got %g", c.Animation.FPS)
	check(finite(c.Animation.RotationSpeed), "animation: rotation_speed must be finite, got %g", c.Animation.RotationSpeed)
	check(math.Floor(c.Animation.Duration*c.Animation.FPS) >= 1, "animation: %gs at %g fps yields no frames", c.Animation.Duration, c.Animation.FPS)

	check(c.Bench.Repeat >= 1, "bench: repeat must be at least 1, got %d", c.Bench.Repeat)
	check(len(c.Bench.Backends) > 0, "bench: no backends")
	return errors.Join(errs...)
}
