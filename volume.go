package fracmesh

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Volume is a dense Size³ array of field samples indexed [i,j,k] in
// (z, y, x) sampling order. A Volume is not modified after sampling.
type Volume struct {
	n    int
	data []float64
}

// Shape returns the number of samples along each of the i, j, k axes.
func (v *Volume) Shape() (ni, nj, nk int) { return v.n, v.n, v.n }

// At returns the sample at z index i, y index j and x index k.
func (v *Volume) At(i, j, k int) float64 {
	return v.data[v.offset(i, j, k)]
}

// Dims returns the number of samples along x, y and z.
func (v *Volume) Dims() (nx, ny, nz int) { return v.n, v.n, v.n }

// Value returns the sample at x index x, y index y and z index z.
// It is the same cell as At(z, y, x).
func (v *Volume) Value(x, y, z int) float64 {
	return v.data[v.offset(z, y, x)]
}

// Range returns the minimum and maximum sample of the volume.
func (v *Volume) Range() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, d := range v.data {
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	return min, max
}

// Len returns the number of samples in the volume.
func (v *Volume) Len() int { return len(v.data) }

func (v *Volume) offset(i, j, k int) int {
	return (i*v.n+j)*v.n + k
}

// layer returns the writable z slice i of the volume.
func (v *Volume) layer(i int) []float64 {
	sz := v.n * v.n
	return v.data[i*sz : (i+1)*sz]
}

// SampleVolume evaluates f over every point of the grid, one z slice at a
// time in ascending z order. Peak scratch memory is that of a single slice.
func SampleVolume(g Grid, f Field) (*Volume, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	vol := newVolume(g.Size)
	axis := g.Axis()
	gx, gy := g.Meshgrid()
	s := newSlicer(len(gx))
	for i, z := range axis {
		if err := s.sample(vol.layer(i), f, gx, gy, z); err != nil {
			return nil, fmt.Errorf("sampling slice %d (z=%g): %w", i, z, err)
		}
	}
	if err := vol.checkFinite(); err != nil {
		return nil, err
	}
	return vol, nil
}

// SampleVolumeConcurrent is like SampleVolume but evaluates up to workers
// slices at the same time. Each slice is written to its own disjoint layer so
// the result is identical to that of SampleVolume. Cancelling ctx stops
// further slices from being scheduled.
func SampleVolumeConcurrent(ctx context.Context, g Grid, f Field, workers int) (*Volume, error) {
	if workers <= 1 {
		return SampleVolume(g, f)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	vol := newVolume(g.Size)
	axis := g.Axis()
	gx, gy := g.Meshgrid()
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, z := range axis {
		if gctx.Err() != nil {
			break
		}
		i, z := i, z
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := newSlicer(len(gx))
			if err := s.sample(vol.layer(i), f, gx, gy, z); err != nil {
				return fmt.Errorf("sampling slice %d (z=%g): %w", i, z, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	// The group context is always done after Wait; only the caller's
	// cancellation means slices were skipped.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := vol.checkFinite(); err != nil {
		return nil, err
	}
	return vol, nil
}

func newVolume(n int) *Volume {
	return &Volume{n: n, data: make([]float64, n*n*n)}
}

// slicer holds the per-slice scratch buffers.
type slicer struct {
	z   []float64
	out []float64
}

func newSlicer(n int) *slicer {
	return &slicer{z: make([]float64, n), out: make([]float64, n)}
}

// sample fills a full 2D array with the constant z, evaluates the slice and
// copies the result to dst.
func (s *slicer) sample(dst []float64, f Field, gx, gy []float64, z float64) error {
	for i := range s.z {
		s.z[i] = z
	}
	if err := f.Evaluate(s.out, gx, gy, s.z); err != nil {
		return err
	}
	copy(dst, s.out)
	return nil
}

func (v *Volume) checkFinite() error {
	for idx, d := range v.data {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			sz := v.n * v.n
			i, j, k := idx/sz, (idx%sz)/v.n, idx%v.n
			err := fmt.Errorf("%w: %g at [%d,%d,%d]", ErrNonFinite, d, i, j, k)
			if debugChecks {
				panic(err)
			}
			return err
		}
	}
	return nil
}
