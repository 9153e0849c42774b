package bench

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gogpu/gg"
	"github.com/soypat/fracmesh"
	"github.com/soypat/fracmesh/animate"
	"github.com/soypat/fracmesh/backend"
	"github.com/soypat/fracmesh/encode"
	"github.com/soypat/fracmesh/internal/config"
	"github.com/soypat/fracmesh/render"
	"go.uber.org/zap"
)

// Names of the reference runs that do not use a backend.
const (
	EncodeOnlyName = "encode-only"
	FrameLoopName  = "frame-loop"
)

// ErrNotPrepared is returned by runs before Prepare succeeds.
var ErrNotPrepared = errors.New("suite geometry not prepared")

// WriterFunc opens a fresh FrameWriter for one timed run.
type WriterFunc func() (encode.FrameWriter, error)

// Result is the outcome of a timed benchmark run.
type Result struct {
	Backend string
	Frames  int
	Avg     time.Duration
	FPS     float64
	Records []time.Duration
}

// Fields returns the result as structured log fields.
func (r Result) Fields() []zap.Field {
	return []zap.Field{
		zap.String("backend", r.Backend),
		zap.Int("frames", r.Frames),
		zap.String("fps", humanize.SIWithDigits(r.FPS, 2, "")),
		zap.Duration("avg", r.Avg),
		zap.Durations("records", r.Records),
	}
}

func newResult(name string, frames int, t *Timer) (Result, error) {
	avg, err := t.Avg()
	if err != nil {
		return Result{}, err
	}
	return Result{
		Backend: name,
		Frames:  frames,
		Avg:     avg,
		FPS:     float64(frames) / avg.Seconds(),
		Records: append([]time.Duration(nil), t.Records...),
	}, nil
}

// Suite prepares the animated Mandelbulb once and times backends on it.
type Suite struct {
	Config *config.Config
	// Logger receives progress and results. Nil discards them.
	Logger *zap.Logger

	mesh  fracmesh.Mesh
	batch *animate.Batch
}

func (s *Suite) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// GeneratorConfig returns the mesh generation parameters of the suite.
func (s *Suite) GeneratorConfig() fracmesh.GeneratorConfig {
	f := s.Config.Fractal
	return fracmesh.GeneratorConfig{
		Grid:    fracmesh.Grid{Size: f.GridSize, Lower: f.LowerBound, Upper: f.UpperBound},
		Fractal: fracmesh.Mandelbulb{Power: f.Power, MaxIteration: f.MaxIteration},
		Level:   f.Level,
		Workers: f.Workers,
	}
}

// Options returns the backend options of the suite.
func (s *Suite) Options() backend.Options {
	r := s.Config.Render
	opts := backend.DefaultOptions()
	opts.Width, opts.Height = r.Width, r.Height
	opts.Supersample = r.Supersample
	if r.Background != "" {
		opts.Background = gg.Hex(r.Background).Color()
	}
	if r.Color != "" {
		opts.Color = gg.Hex(r.Color).Color()
	}
	return opts
}

// Prepare generates the mesh and the rotated frames.
func (s *Suite) Prepare() error {
	if s.Config == nil {
		return errors.New("suite has no config")
	}
	log := s.log()
	start := time.Now()
	gen, err := fracmesh.NewGenerator(s.GeneratorConfig())
	if err != nil {
		return err
	}
	mesh, err := gen.Generate()
	if err != nil {
		return fmt.Errorf("generating mesh: %w", err)
	}
	log.Info("mesh generated",
		zap.String("vertices", humanize.SIWithDigits(float64(mesh.NumVertices()), 2, "")),
		zap.String("faces", humanize.SIWithDigits(float64(mesh.NumFaces()), 2, "")),
		zap.Duration("elapsed", time.Since(start)),
	)
	a := s.Config.Animation
	batch, err := animate.New(mesh, a.Duration, a.FPS, a.RotationSpeed)
	if err != nil {
		return err
	}
	log.Info("frames rotated",
		zap.Int("frames", batch.Len()),
		zap.String("size", humanize.Bytes(batch.SizeBytes())),
	)
	s.mesh, s.batch = mesh, batch
	return nil
}

// Mesh returns the prepared base mesh.
func (s *Suite) Mesh() fracmesh.Mesh { return s.mesh }

// Batch returns the prepared frames or nil before Prepare.
func (s *Suite) Batch() *animate.Batch { return s.batch }

// WriteSTL writes the prepared base mesh to a binary STL file.
func (s *Suite) WriteSTL(path string) error {
	if s.batch == nil {
		return ErrNotPrepared
	}
	if err := render.CreateSTL(path, render.NewSliceRenderer(s.mesh.Triangles())); err != nil {
		return err
	}
	s.log().Info("mesh written", zap.String("path", path), zap.Int("triangles", s.mesh.NumFaces()))
	return nil
}

// Run sets up b with the mesh and times rendering every frame into a new
// writer. Setup is not timed.
func (s *Suite) Run(b backend.Backend, newWriter WriterFunc) (Result, error) {
	if s.batch == nil {
		return Result{}, ErrNotPrepared
	}
	log := s.log().With(zap.String("backend", b.Name()))
	if err := b.Setup(s.mesh.Faces(), s.mesh.Bounds()); err != nil {
		return Result{}, fmt.Errorf("%s setup: %w", b.Name(), err)
	}
	timer := Timer{Repeat: s.Config.Bench.Repeat}
	err := timer.Run(func() error {
		w, err := newWriter()
		if err != nil {
			return err
		}
		for i := 0; i < s.batch.Len(); i++ {
			img, err := b.Render(s.batch.Frame(i))
			if err != nil {
				w.Close()
				return fmt.Errorf("frame %d: %w", i, err)
			}
			if err := w.WriteFrame(img); err != nil {
				w.Close()
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}
		return w.Close()
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", b.Name(), err)
	}
	log.Debug("timer", zap.Stringer("timer", &timer))
	return newResult(b.Name(), s.batch.Len(), &timer)
}

// EncodeOnly times writing prerendered noise frames of the configured size,
// measuring the writer alone.
func (s *Suite) EncodeOnly(newWriter WriterFunc) (Result, error) {
	if s.batch == nil {
		return Result{}, ErrNotPrepared
	}
	frames := noiseFrames(s.batch.Len(), s.Config.Render.Width, s.Config.Render.Height)
	timer := Timer{Repeat: s.Config.Bench.Repeat}
	err := timer.Run(func() error {
		w, err := newWriter()
		if err != nil {
			return err
		}
		for i, img := range frames {
			if err := w.WriteFrame(img); err != nil {
				w.Close()
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}
		return w.Close()
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", EncodeOnlyName, err)
	}
	return newResult(EncodeOnlyName, len(frames), &timer)
}

// FrameLoop times walking the frames without rendering them. It bounds the
// cost the animation data structure adds to every backend run.
func (s *Suite) FrameLoop() (Result, error) {
	if s.batch == nil {
		return Result{}, ErrNotPrepared
	}
	var sink float64
	timer := Timer{Repeat: s.Config.Bench.Repeat}
	err := timer.Run(func() error {
		for i := 0; i < s.batch.Len(); i++ {
			verts, normals := s.batch.Frame(i)
			if len(verts) > 0 {
				sink += verts[0].X + normals[0].X
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.log().Debug("frame loop", zap.Float64("checksum", sink))
	return newResult(FrameLoopName, s.batch.Len(), &timer)
}

func noiseFrames(n, width, height int) []image.Image {
	rng := rand.New(rand.NewPCG(1, 2))
	frames := make([]image.Image, n)
	for i := range frames {
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		for p := 0; p < len(img.Pix); p += 4 {
			c := color.NRGBA{R: uint8(rng.Uint32()), G: uint8(rng.Uint32()), B: uint8(rng.Uint32()), A: 0xFF}
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = c.R, c.G, c.B, c.A
		}
		frames[i] = img
	}
	return frames
}
