// Package fracmesh samples fractal scalar fields on a uniform 3D grid and
// extracts their isosurface as an indexed triangle mesh.
package fracmesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Field is the interface to a scalar field evaluated in batches.
// Evaluate writes the field value at (x[i], y[i], z[i]) to dst[i].
// All four slices must be of equal length.
type Field interface {
	Evaluate(dst, x, y, z []float64) error
}

const (
	// escapeRadius is the radius past which an iterate is considered escaped.
	escapeRadius = 2.0
	// escapedSentinel is the value assigned to every component of an escaped
	// iterate so it can not diverge further.
	escapedSentinel = 2.5
)

// Mandelbulb is the power-escape fractal field. The value at a point is the
// radius of the iterate after MaxIteration steps of the spherical power map
// seeded with the point itself.
type Mandelbulb struct {
	// Power sets the rotational symmetry and complexity of the fractal.
	Power float64
	// MaxIteration bounds the iteration count. Zero returns the seed radius.
	MaxIteration int

	// noEarlyExit forces every iteration to run even when all points escaped.
	noEarlyExit bool
}

// DefaultMandelbulb returns the classic power 8 Mandelbulb with 8 iterations.
func DefaultMandelbulb() Mandelbulb {
	return Mandelbulb{Power: 8, MaxIteration: 8}
}

// Validate checks the fractal parameters.
func (m Mandelbulb) Validate() error {
	switch {
	case !(m.Power > 0) || math.IsInf(m.Power, 0):
		return fmt.Errorf("%w: power must be positive and finite, got %g", ErrInvalidFractal, m.Power)
	case m.MaxIteration < 0:
		return fmt.Errorf("%w: negative max iteration %d", ErrInvalidFractal, m.MaxIteration)
	}
	return nil
}

// Evaluate computes the escape radius of every point. It implements Field.
func (m Mandelbulb) Evaluate(dst, x, y, z []float64) error {
	if err := checkShapes(dst, x, y, z); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	var it iterate
	it.reset(x, y, z)
	for i := 0; i < m.MaxIteration; i++ {
		if !it.step(m.Power) && !m.noEarlyExit {
			break
		}
	}
	it.radius(dst)
	return nil
}

// EvaluateAt returns the escape radius at a single point.
func (m Mandelbulb) EvaluateAt(p r3.Vec) float64 {
	var d [1]float64
	err := m.Evaluate(d[:], []float64{p.X}, []float64{p.Y}, []float64{p.Z})
	if err != nil {
		panic(err)
	}
	return d[0]
}

// iterate holds the state of the escape-time iteration for a batch of points.
// z is the current iterate, c the constant (seed) and next receives the
// result of a step before being swapped with z.
type iterate struct {
	zx, zy, zz []float64
	cx, cy, cz []float64
	nx, ny, nz []float64
	active     []bool
}

func (it *iterate) reset(x, y, z []float64) {
	n := len(x)
	it.zx, it.zy, it.zz = clone(x), clone(y), clone(z)
	it.cx, it.cy, it.cz = x, y, z
	it.nx, it.ny, it.nz = make([]float64, n), make([]float64, n), make([]float64, n)
	it.active = make([]bool, n)
}

// step advances the iteration once and reports whether any point was active
// at the start of the step. Escaped points take the sentinel value on every
// step, so once step returns false further steps do not change the iterate.
func (it *iterate) step(power float64) (anyActive bool) {
	for i := range it.zx {
		r := math.Sqrt(it.zx[i]*it.zx[i] + it.zy[i]*it.zy[i] + it.zz[i]*it.zz[i])
		it.active[i] = r < escapeRadius
		anyActive = anyActive || it.active[i]
	}
	if !anyActive {
		for i := range it.zx {
			it.zx[i], it.zy[i], it.zz[i] = escapedSentinel, escapedSentinel, escapedSentinel
		}
		return false
	}
	for i := range it.zx {
		if !it.active[i] {
			it.nx[i], it.ny[i], it.nz[i] = escapedSentinel, escapedSentinel, escapedSentinel
			continue
		}
		zx, zy, zz := it.zx[i], it.zy[i], it.zz[i]
		r := math.Sqrt(zx*zx + zy*zy + zz*zz)
		theta := math.Atan2(math.Sqrt(zx*zx+zy*zy), zz) * power
		phi := math.Atan2(zy, zx) * power
		zr := math.Pow(r, power)
		sinTheta, cosTheta := math.Sincos(theta)
		sinPhi, cosPhi := math.Sincos(phi)
		it.nx[i] = zr*sinTheta*cosPhi + it.cx[i]
		it.ny[i] = zr*sinTheta*sinPhi + it.cy[i]
		it.nz[i] = zr*cosTheta + it.cz[i]
	}
	it.zx, it.nx = it.nx, it.zx
	it.zy, it.ny = it.ny, it.zy
	it.zz, it.nz = it.nz, it.zz
	return true
}

func (it *iterate) radius(dst []float64) {
	for i := range dst {
		dst[i] = math.Sqrt(it.zx[i]*it.zx[i] + it.zy[i]*it.zy[i] + it.zz[i]*it.zz[i])
	}
}

// Sphere is the distance field to Center. It grows outward like the
// Mandelbulb escape radius so a level set of it is a sphere of radius level.
type Sphere struct {
	Center r3.Vec
}

// Evaluate implements Field.
func (s Sphere) Evaluate(dst, x, y, z []float64) error {
	if err := checkShapes(dst, x, y, z); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Sqrt(sq(x[i]-s.Center.X) + sq(y[i]-s.Center.Y) + sq(z[i]-s.Center.Z))
	}
	return nil
}

func checkShapes(dst, x, y, z []float64) error {
	if len(x) != len(dst) || len(y) != len(dst) || len(z) != len(dst) {
		return fmt.Errorf("%w: dst=%d x=%d y=%d z=%d", ErrShapeMismatch, len(dst), len(x), len(y), len(z))
	}
	return nil
}

func clone(a []float64) []float64 {
	return append(make([]float64, 0, len(a)), a...)
}

func sq(a float64) float64 { return a * a }

var (
	// ErrInvalidGrid is returned for a grid with fewer than 2 samples per
	// axis or with an empty range.
	ErrInvalidGrid = errors.New("invalid grid")
	// ErrInvalidFractal is returned for unusable fractal parameters.
	ErrInvalidFractal = errors.New("invalid fractal parameters")
	// ErrShapeMismatch is returned when batch slices differ in length.
	ErrShapeMismatch = errors.New("mismatched batch lengths")
	// ErrNonFinite is returned when a sampled field holds a NaN or Inf.
	ErrNonFinite = errors.New("non-finite field value")
	// ErrEmptyMesh is returned when the isosurface has no triangles.
	ErrEmptyMesh = errors.New("isosurface is empty")
)
