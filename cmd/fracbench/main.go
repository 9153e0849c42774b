// Command fracbench benchmarks rendering a rotating Mandelbulb mesh with each
// available backend and reports frames per second.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/soypat/fracmesh/backend"
	"github.com/soypat/fracmesh/bench"
	"github.com/soypat/fracmesh/encode"
	"github.com/soypat/fracmesh/internal/config"
	"github.com/soypat/fracmesh/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("=== fracbench ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("benchmark failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config) error {
	suite := bench.Suite{Config: cfg, Logger: logger.Log}
	if err := suite.Prepare(); err != nil {
		return err
	}
	if cfg.Bench.STL != "" {
		if err := suite.WriteSTL(cfg.Bench.STL); err != nil {
			return err
		}
	}

	fps := cfg.Animation.FPS
	newWriter := func() (encode.FrameWriter, error) {
		return encode.Create(cfg.Bench.Output, fps)
	}

	var results []bench.Result
	loop, err := suite.FrameLoop()
	if err != nil {
		return err
	}
	logger.Info("reference", loop.Fields()...)
	results = append(results, loop)

	enc, err := suite.EncodeOnly(newWriter)
	if err != nil {
		return err
	}
	logger.Info("reference", enc.Fields()...)
	results = append(results, enc)

	for _, name := range cfg.Bench.Backends {
		b, err := backend.ByName(name, suite.Options())
		if err != nil {
			return err
		}
		res, err := suite.Run(b, newWriter)
		if cerr := b.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		logger.Info("result", res.Fields()...)
		results = append(results, res)
	}

	for _, r := range results {
		fmt.Printf("%-12s %8.2f fps  (%d frames, avg %.6fs)\n", r.Backend, r.FPS, r.Frames, r.Avg.Seconds())
	}
	if cfg.Bench.Chart != "" {
		if err := bench.PlotFPS(results, cfg.Bench.Chart); err != nil {
			return fmt.Errorf("plotting results: %w", err)
		}
		logger.Info("chart written", zap.String("path", cfg.Bench.Chart))
	}
	return nil
}
