package bench

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soypat/fracmesh/backend"
	"github.com/soypat/fracmesh/encode"
	"github.com/soypat/fracmesh/internal/config"
	"github.com/soypat/fracmesh/render"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimer(t *testing.T) {
	var timer Timer
	if _, err := timer.Avg(); !errors.Is(err, ErrNoRecords) {
		t.Errorf("expected no records error, got %v", err)
	}
	if !strings.Contains(timer.String(), "avg=n/a") {
		t.Errorf("unexpected string before run: %s", timer.String())
	}
	if err := timer.Run(func() error { return nil }); err == nil {
		t.Error("expected error for zero repeat")
	}

	timer.Repeat = 3
	calls := 0
	err := timer.Run(func() error {
		calls++
		time.Sleep(time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 || len(timer.Records) != 3 {
		t.Fatalf("got %d calls and %d records, want 3", calls, len(timer.Records))
	}
	avg, err := timer.Avg()
	if err != nil {
		t.Fatal(err)
	}
	var sum time.Duration
	for _, r := range timer.Records {
		if r < time.Millisecond {
			t.Errorf("record %v shorter than the sleep", r)
		}
		sum += r
	}
	if avg != sum/3 {
		t.Errorf("avg %v, want %v", avg, sum/3)
	}
	if s := timer.String(); !strings.HasPrefix(s, "Timer(repeat=3, records=[") {
		t.Errorf("unexpected string %s", s)
	}

	// A second run replaces the records.
	timer.Repeat = 1
	if err := timer.Run(func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if len(timer.Records) != 1 {
		t.Errorf("got %d records after rerun, want 1", len(timer.Records))
	}

	boom := errors.New("boom")
	if err := timer.Run(func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func testSuite(t *testing.T) (*Suite, *observer.ObservedLogs) {
	t.Helper()
	cfg := config.Default()
	cfg.Render.Width, cfg.Render.Height = 32, 32
	cfg.Fractal.GridSize = 20
	cfg.Animation.Duration = 1
	cfg.Animation.FPS = 4
	cfg.Bench.Repeat = 2
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zap.DebugLevel)
	return &Suite{Config: cfg, Logger: zap.New(core)}, logs
}

func TestSuite(t *testing.T) {
	s, logs := testSuite(t)
	discard := func() (encode.FrameWriter, error) { return &encode.Discard{}, nil }
	if _, err := s.Run(nil, discard); !errors.Is(err, ErrNotPrepared) {
		t.Errorf("expected not prepared error, got %v", err)
	}
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}
	if s.Batch().Len() != 4 {
		t.Fatalf("prepared %d frames, want 4", s.Batch().Len())
	}
	if logs.FilterMessage("mesh generated").Len() != 1 || logs.FilterMessage("frames rotated").Len() != 1 {
		t.Errorf("missing preparation logs: %v", logs.All())
	}

	var results []Result
	for _, name := range backend.Names() {
		b, err := backend.ByName(name, s.Options())
		if err != nil {
			t.Fatal(err)
		}
		var writers []*encode.Discard
		res, err := s.Run(b, func() (encode.FrameWriter, error) {
			w := &encode.Discard{}
			writers = append(writers, w)
			return w, nil
		})
		b.Close()
		if err != nil {
			t.Fatal(err)
		}
		if res.Backend != name || res.Frames != 4 || len(res.Records) != 2 {
			t.Errorf("unexpected result %+v", res)
		}
		if res.FPS <= 0 || res.Avg <= 0 {
			t.Errorf("non-positive timing %+v", res)
		}
		if len(writers) != 2 {
			t.Fatalf("got %d writers, want one per repeat", len(writers))
		}
		for _, w := range writers {
			if w.Frames != 4 {
				t.Errorf("writer received %d frames, want 4", w.Frames)
			}
		}
		results = append(results, res)
	}

	res, err := s.EncodeOnly(discard)
	if err != nil {
		t.Fatal(err)
	}
	if res.Backend != EncodeOnlyName || res.Frames != 4 {
		t.Errorf("unexpected encode only result %+v", res)
	}
	results = append(results, res)

	res, err = s.FrameLoop()
	if err != nil {
		t.Fatal(err)
	}
	if res.Backend != FrameLoopName || res.Frames != 4 {
		t.Errorf("unexpected frame loop result %+v", res)
	}
	results = append(results, res)

	dir := t.TempDir()
	chart := filepath.Join(dir, "fps.png")
	if err := PlotFPS(results, chart); err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(chart)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	if _, err := png.Decode(fp); err != nil {
		t.Errorf("chart is not a PNG: %v", err)
	}

	stl := filepath.Join(dir, "bulb.stl")
	if err := s.WriteSTL(stl); err != nil {
		t.Fatal(err)
	}
	sf, err := os.Open(stl)
	if err != nil {
		t.Fatal(err)
	}
	defer sf.Close()
	tris, err := render.ReadSTL(sf)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != s.Mesh().NumFaces() {
		t.Errorf("STL has %d triangles, mesh has %d faces", len(tris), s.Mesh().NumFaces())
	}
}

func TestSuiteGIFOutput(t *testing.T) {
	s, _ := testSuite(t)
	s.Config.Bench.Repeat = 1
	if err := s.Prepare(); err != nil {
		t.Fatal(err)
	}
	b, err := backend.ByName("canvas", s.Options())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	path := filepath.Join(t.TempDir(), "out.gif")
	_, err = s.Run(b, func() (encode.FrameWriter, error) {
		return encode.Create(path, s.Config.Animation.FPS)
	})
	if err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("gif not written: %v", err)
	}
}

func TestPlotFPSEmpty(t *testing.T) {
	if err := PlotFPS(nil, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Error("expected error for no results")
	}
}

func TestSuiteOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Background = "#000000"
	s := Suite{Config: cfg}
	opts := s.Options()
	r, g, b, a := opts.Background.RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0xFFFF {
		t.Errorf("background %v, want opaque black", opts.Background)
	}
	gen := s.GeneratorConfig()
	if gen.Grid.Size != cfg.Fractal.GridSize || gen.Level != cfg.Fractal.Level || gen.Fractal.Power != cfg.Fractal.Power {
		t.Errorf("generator config %+v does not match %+v", gen, cfg.Fractal)
	}
}
