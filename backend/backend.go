// Package backend renders animation frames of an indexed triangle mesh to
// images. A Backend is set up once with the mesh topology and then renders
// one frame per set of rotated vertices and normals.
package backend

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/soypat/fracmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotSetup is returned by Render before a successful Setup.
var ErrNotSetup = errors.New("backend not set up")

// Backend renders frames of a mesh whose faces stay fixed while vertex
// positions and normals change. Backends are not safe for concurrent use.
type Backend interface {
	// Name identifies the backend in benchmark results.
	Name() string
	// Setup stores the mesh topology and frames the camera on bounds.
	Setup(faces [][3]int, bounds r3.Box) error
	// Render draws one frame. The returned image is owned by the caller.
	Render(vertices, normals []r3.Vec) (image.Image, error)
	Close() error
}

// Options are shared by all backends.
type Options struct {
	Width, Height int
	Background    color.Color
	Color         color.Color
	// Supersample renders at Supersample times the output size and
	// downscales. Values below 2 disable it.
	Supersample int
}

// DefaultOptions matches the reference benchmark output of 480x480 frames.
func DefaultOptions() Options {
	return Options{
		Width:       480,
		Height:      480,
		Background:  color.NRGBA{R: 0xFF, G: 0xF8, B: 0xE3, A: 0xFF},
		Color:       color.NRGBA{R: 0x46, G: 0x89, B: 0x66, A: 0xFF},
		Supersample: 1,
	}
}

// Validate checks the image size.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", o.Width, o.Height)
	}
	if o.Supersample < 0 {
		return fmt.Errorf("negative supersample factor %d", o.Supersample)
	}
	return nil
}

func (o Options) scale() int {
	if o.Supersample < 2 {
		return 1
	}
	return o.Supersample
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Background == nil {
		o.Background = def.Background
	}
	if o.Color == nil {
		o.Color = def.Color
	}
	return o
}

// Names lists the backends ByName knows.
func Names() []string { return []string{"fauxgl", "canvas"} }

// ByName returns a new backend by name.
func ByName(name string, opts Options) (Backend, error) {
	switch name {
	case "fauxgl":
		return NewFauxgl(opts)
	case "canvas":
		return NewCanvas(opts)
	}
	return nil, fmt.Errorf("unknown backend %q, want one of %v", name, Names())
}

// camera frames a mesh that rotates about the world +Y axis. center lies on
// that axis at the height of the bounds center and radius bounds every
// rotation of the mesh.
type camera struct {
	center r3.Vec
	radius float64
}

func newCamera(bounds r3.Box) (camera, error) {
	size := r3.Sub(bounds.Max, bounds.Min)
	if d3.LTZero(size) {
		return camera{}, fmt.Errorf("invalid bounds %v", bounds)
	}
	mid := r3.Scale(0.5, r3.Add(bounds.Min, bounds.Max))
	c := camera{
		center: r3.Vec{Y: mid.Y},
		// Offset of the bounds center from the rotation axis.
		radius: 0.5*r3.Norm(size) + math.Hypot(mid.X, mid.Z),
	}
	if c.radius == 0 || math.IsNaN(c.radius) || math.IsInf(c.radius, 0) {
		return camera{}, fmt.Errorf("degenerate bounds %v", bounds)
	}
	return c, nil
}

func checkFaces(faces [][3]int) error {
	if len(faces) == 0 {
		return errors.New("no faces to render")
	}
	for i, f := range faces {
		if f[0] < 0 || f[1] < 0 || f[2] < 0 {
			return fmt.Errorf("face %d has negative index", i)
		}
	}
	return nil
}

func checkFrame(faces [][3]int, vertices, normals []r3.Vec) error {
	if faces == nil {
		return ErrNotSetup
	}
	if len(vertices) != len(normals) {
		return fmt.Errorf("%d vertices with %d normals", len(vertices), len(normals))
	}
	for i, f := range faces {
		if f[0] >= len(vertices) || f[1] >= len(vertices) || f[2] >= len(vertices) {
			return fmt.Errorf("face %d references vertex out of %d", i, len(vertices))
		}
	}
	return nil
}

// depthOrder returns face indices sorted far to near for a viewer on the +Z
// axis.
func depthOrder(faces [][3]int, vertices []r3.Vec, order []int) []int {
	order = order[:0]
	for i := range faces {
		order = append(order, i)
	}
	depth := func(i int) float64 {
		f := faces[i]
		return vertices[f[0]].Z + vertices[f[1]].Z + vertices[f[2]].Z
	}
	sort.SliceStable(order, func(a, b int) bool { return depth(order[a]) < depth(order[b]) })
	return order
}
