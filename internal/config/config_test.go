package config

import (
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Render.Width != 480 || cfg.Render.Height != 480 {
		t.Errorf("expected 480x480 frames, got %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Fractal.GridSize != 100 {
		t.Errorf("expected grid size 100, got %d", cfg.Fractal.GridSize)
	}
	if cfg.Fractal.Level != 2.4 {
		t.Errorf("expected level 2.4, got %g", cfg.Fractal.Level)
	}
	if cfg.Animation.Duration != 3 || cfg.Animation.FPS != 60 {
		t.Errorf("expected 3s at 60 fps, got %gs at %g fps", cfg.Animation.Duration, cfg.Animation.FPS)
	}
	if cfg.Bench.Repeat != 4 {
		t.Errorf("expected 4 repeats, got %d", cfg.Bench.Repeat)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
render:
  width: 320
  height: 240
  supersample: 2

fractal:
  grid_size: 64
  power: 4
  level: 1.9
  workers: 8

animation:
  duration: 1.5
  fps: 30

bench:
  repeat: 2
  backends: [canvas]
  output: frames

logging:
  level: "debug"
  log_file: "bench.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Render.Width != 320 || cfg.Render.Height != 240 || cfg.Render.Supersample != 2 {
		t.Errorf("render section not loaded: %+v", cfg.Render)
	}
	if cfg.Fractal.GridSize != 64 || cfg.Fractal.Power != 4 || cfg.Fractal.Level != 1.9 || cfg.Fractal.Workers != 8 {
		t.Errorf("fractal section not loaded: %+v", cfg.Fractal)
	}
	// Keys missing from the file keep their defaults.
	if cfg.Fractal.MaxIteration != 8 || cfg.Animation.RotationSpeed != 3.1415926 {
		t.Errorf("defaults lost on merge: %+v %+v", cfg.Fractal, cfg.Animation)
	}
	if !reflect.DeepEqual(cfg.Bench.Backends, []string{"canvas"}) || cfg.Bench.Output != "frames" {
		t.Errorf("bench section not loaded: %+v", cfg.Bench)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "bench.log" {
		t.Errorf("logging section not loaded: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	for name, content := range map[string]string{
		"syntax.yaml":  "fractal:\n  grid_size: not a number\n  invalid syntax here\n",
		"unknown.yaml": "fractal:\n  grid_sise: 10\n",
	} {
		configPath := filepath.Join(tmpDir, name)
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if err := loadFromFile(Default(), configPath); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"width":    func(c *Config) { c.Render.Width = 0 },
		"color":    func(c *Config) { c.Render.Color = "green" },
		"grid":     func(c *Config) { c.Fractal.GridSize = 1 },
		"power":    func(c *Config) { c.Fractal.Power = 0 },
		"bounds":   func(c *Config) { c.Fractal.LowerBound = 2 },
		"frames":   func(c *Config) { c.Animation.Duration = 0.001 },
		"fps":      func(c *Config) { c.Animation.FPS = -1 },
		"repeat":   func(c *Config) { c.Bench.Repeat = 0 },
		"backends": func(c *Config) { c.Bench.Backends = nil },
	} {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
	cfg := Default()
	cfg.Render.Width = 0
	cfg.Bench.Repeat = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "render") || !strings.Contains(err.Error(), "repeat") {
		t.Errorf("expected both errors reported, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fracbench.yaml")
	want := Default()
	want.Fractal.GridSize = 32
	want.Bench.Backends = []string{"canvas"}
	want.Bench.Chart = "fps.png"
	if err := want.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestApplyFlags(t *testing.T) {
	set := func(name, value string) {
		t.Helper()
		prev := flag.Lookup(name).Value.String()
		if err := flag.Set(name, value); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { flag.Set(name, prev) })
	}
	set("debug", "true")
	set("grid", "48")
	set("backend", "canvas, fauxgl")
	set("repeat", "7")
	set("stl", "bulb.stl")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fractal:\n  grid_size: 20\nbench:\n  repeat: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Fractal.GridSize != 48 || cfg.Bench.Repeat != 7 {
		t.Errorf("flags did not override file: grid %d repeat %d", cfg.Fractal.GridSize, cfg.Bench.Repeat)
	}
	if cfg.Logging.Level != "debug" || cfg.Bench.STL != "bulb.stl" {
		t.Errorf("flags not applied: %+v %+v", cfg.Logging, cfg.Bench)
	}
	if !reflect.DeepEqual(cfg.Bench.Backends, []string{"canvas", "fauxgl"}) {
		t.Errorf("backends %q", cfg.Bench.Backends)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}
	if err := os.WriteFile("fracbench.yaml", []byte("bench:\n  repeat: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if path := findConfigFile(); path != "./fracbench.yaml" {
		t.Errorf("expected ./fracbench.yaml, got %q", path)
	}
}
