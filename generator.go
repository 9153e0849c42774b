package fracmesh

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/soypat/fracmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// GeneratorConfig holds the immutable parameters of a mesh generation.
type GeneratorConfig struct {
	Grid    Grid
	Fractal Mandelbulb
	// Level is the isovalue the surface is extracted at. It depends on the
	// field: render.DefaultLevel suits a power 8 Mandelbulb and must be tuned
	// again for other powers.
	Level float64
	// Workers is the number of slices sampled at the same time. Values
	// below 2 sample sequentially.
	Workers int
}

// DefaultGeneratorConfig returns the configuration of the reference
// benchmark mesh: a 100³ power 8 Mandelbulb extracted at level 2.4.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Grid:    DefaultGrid(),
		Fractal: DefaultMandelbulb(),
		Level:   render.DefaultLevel,
		Workers: 1,
	}
}

// Validate checks the grid, the fractal parameters and the level.
func (cfg GeneratorConfig) Validate() error {
	if err := cfg.Grid.Validate(); err != nil {
		return err
	}
	if err := cfg.Fractal.Validate(); err != nil {
		return err
	}
	if math.IsNaN(cfg.Level) || math.IsInf(cfg.Level, 0) {
		return fmt.Errorf("level must be finite, got %g", cfg.Level)
	}
	return nil
}

// Generator builds a Mesh from a field. The mesh is computed once, on the
// first call to Generate or to any of the accessors, and reused afterwards.
// A Generator is safe for concurrent use.
type Generator struct {
	cfg   GeneratorConfig
	field Field

	once sync.Once
	mesh Mesh
	err  error
}

// NewGenerator returns a Generator for the Mandelbulb described by cfg.
// Invalid configurations fail here, before any sampling.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, field: cfg.Fractal}, nil
}

// NewGeneratorField returns a Generator that samples f instead of the
// configured fractal. cfg.Fractal is ignored.
func NewGeneratorField(cfg GeneratorConfig, f Field) (*Generator, error) {
	if f == nil {
		return nil, fmt.Errorf("nil field")
	}
	if err := cfg.Grid.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(cfg.Level) || math.IsInf(cfg.Level, 0) {
		return nil, fmt.Errorf("level must be finite, got %g", cfg.Level)
	}
	return &Generator{cfg: cfg, field: f}, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() GeneratorConfig { return g.cfg }

// Generate samples the field, extracts the isosurface and post-processes it
// into a Mesh. Only the first call does the work; concurrent first calls
// wait for that single pass and all calls return its result.
func (g *Generator) Generate() (Mesh, error) {
	g.once.Do(func() {
		g.mesh, g.err = g.generate()
	})
	return g.mesh, g.err
}

// Vertices returns the world space vertices, generating the mesh if needed.
func (g *Generator) Vertices() ([]r3.Vec, error) {
	m, err := g.Generate()
	if err != nil {
		return nil, err
	}
	return m.Vertices(), nil
}

// Faces returns the triangle indices, generating the mesh if needed.
func (g *Generator) Faces() ([][3]int, error) {
	m, err := g.Generate()
	if err != nil {
		return nil, err
	}
	return m.Faces(), nil
}

// Normals returns the outward vertex normals, generating the mesh if needed.
func (g *Generator) Normals() ([]r3.Vec, error) {
	m, err := g.Generate()
	if err != nil {
		return nil, err
	}
	return m.Normals(), nil
}

func (g *Generator) generate() (Mesh, error) {
	vol, err := SampleVolumeConcurrent(context.Background(), g.cfg.Grid, g.field, g.cfg.Workers)
	if err != nil {
		return Mesh{}, err
	}
	iso, err := render.MarchingCubes(vol, g.cfg.Level)
	if err != nil {
		return Mesh{}, err
	}
	m, err := postprocess(iso, g.cfg.Grid)
	if err != nil {
		lo, hi := vol.Range()
		return Mesh{}, fmt.Errorf("level %g with field range [%g, %g]: %w", g.cfg.Level, lo, hi, err)
	}
	return m, nil
}
