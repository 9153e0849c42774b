package fracmesh

import (
	"fmt"
	"math"

	"github.com/soypat/fracmesh/internal/d3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is a cubic lattice of Size³ sample points spaced uniformly over
// [Lower, Upper] along each axis.
type Grid struct {
	Size  int
	Lower float64
	Upper float64
}

// DefaultGrid returns the 100³ grid over [-1, 1] that encloses the Mandelbulb.
func DefaultGrid() Grid {
	return Grid{Size: 100, Lower: -1, Upper: 1}
}

// Validate checks the grid invariants: Size >= 2 and Lower < Upper.
func (g Grid) Validate() error {
	switch {
	case g.Size < 2:
		return fmt.Errorf("%w: size must be 2 or larger, got %d", ErrInvalidGrid, g.Size)
	case math.IsNaN(g.Lower) || math.IsNaN(g.Upper) || math.IsInf(g.Lower, 0) || math.IsInf(g.Upper, 0):
		return fmt.Errorf("%w: non-finite bounds [%g, %g]", ErrInvalidGrid, g.Lower, g.Upper)
	case g.Lower >= g.Upper:
		return fmt.Errorf("%w: lower bound %g not below upper bound %g", ErrInvalidGrid, g.Lower, g.Upper)
	}
	return nil
}

// Axis returns the Size sample coordinates of one axis, both bounds included.
func (g Grid) Axis() []float64 {
	return floats.Span(make([]float64, g.Size), g.Lower, g.Upper)
}

// Meshgrid returns the two 2D coordinate grids of a slice, flattened row-major
// with (row, col) indexing: gy[i*Size+j] = axis[i] and gx[i*Size+j] = axis[j].
func (g Grid) Meshgrid() (gx, gy []float64) {
	axis := g.Axis()
	n := g.Size
	gx = make([]float64, n*n)
	gy = make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			gy[i*n+j] = axis[i]
			gx[i*n+j] = axis[j]
		}
	}
	return gx, gy
}

// Scale returns the world size of one grid-index unit, (Upper-Lower)/Size.
// The divisor is the sample count, not the cell count, so a grid-index
// coordinate of Size maps to Upper.
func (g Grid) Scale() float64 {
	return (g.Upper - g.Lower) / float64(g.Size)
}

// ToWorld maps fractional grid-index coordinates to world coordinates.
func (g Grid) ToWorld(v r3.Vec) r3.Vec {
	return r3.Add(r3.Scale(g.Scale(), v), d3.Elem(g.Lower))
}

// Bounds returns the sampled cube in world coordinates.
func (g Grid) Bounds() r3.Box {
	return r3.Box{Min: d3.Elem(g.Lower), Max: d3.Elem(g.Upper)}
}
