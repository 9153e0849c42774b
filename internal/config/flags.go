package config

import (
	"flag"
	"strings"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagGrid    = flag.Int("grid", 0, "Mandelbulb grid size per axis")
	flagBackend = flag.String("backend", "", "Comma separated backends to benchmark")
	flagOutput  = flag.String("output", "", "Frame output: .gif file or PNG directory")
	flagSTL     = flag.String("stl", "", "Write the base mesh to this STL file")
	flagChart   = flag.String("chart", "", "Write an FPS bar chart to this PNG file")
	flagRepeat  = flag.Int("repeat", 0, "Timed repetitions per backend")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagGrid > 0 {
		cfg.Fractal.GridSize = *flagGrid
	}
	if *flagBackend != "" {
		cfg.Bench.Backends = nil
		for _, name := range strings.Split(*flagBackend, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Bench.Backends = append(cfg.Bench.Backends, name)
			}
		}
	}
	if *flagOutput != "" {
		cfg.Bench.Output = *flagOutput
	}
	if *flagSTL != "" {
		cfg.Bench.STL = *flagSTL
	}
	if *flagChart != "" {
		cfg.Bench.Chart = *flagChart
	}
	if *flagRepeat > 0 {
		cfg.Bench.Repeat = *flagRepeat
	}
}
