// Package render extracts isosurfaces with marching cubes and reads and writes
// binary STL files.
package render

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultLevel is the isovalue that bisects the escape radius transition of a
// power 8 Mandelbulb sampled with 8 iterations. It was tuned by hand and has
// to be tuned again for other powers.
const DefaultLevel = 2.4

// ErrVolumeTooSmall is returned for volumes with fewer than 2 samples along
// an axis.
var ErrVolumeTooSmall = errors.New("volume needs at least 2 samples per axis")

// Volume is a scalar field sampled on a regular grid.
type Volume interface {
	// Dims returns the number of samples along x, y and z.
	Dims() (nx, ny, nz int)
	// Value returns the sample at integer grid coordinates.
	Value(x, y, z int) float64
}

// IsoSurface is a welded triangle mesh in fractional grid-index coordinates.
type IsoSurface struct {
	Vertices []r3.Vec
	Faces    [][3]int
	// Normals are unit vectors pointing toward decreasing field values.
	Normals []r3.Vec
	// Values holds the largest sample of the grid edge each vertex lies on.
	Values []float64
}

// Empty reports whether the surface has no triangles.
func (s IsoSurface) Empty() bool { return len(s.Faces) == 0 }

// MarchingCubes extracts the level isosurface of v. Vertices on a grid edge
// shared by neighbouring cubes are emitted once. Vertex normals are the
// negated central difference gradient of the field interpolated along the
// vertex's edge. A volume without any level crossing returns an empty
// IsoSurface and no error.
func MarchingCubes(v Volume, level float64) (IsoSurface, error) {
	nx, ny, nz := v.Dims()
	if nx < 2 || ny < 2 || nz < 2 {
		return IsoSurface{}, fmt.Errorf("%w: got %dx%dx%d", ErrVolumeTooSmall, nx, ny, nz)
	}
	if math.IsNaN(level) || math.IsInf(level, 0) {
		return IsoSurface{}, fmt.Errorf("non-finite level %g", level)
	}
	mc := mcExtractor{
		v:     v,
		nx:    nx,
		ny:    ny,
		nz:    nz,
		level: level,
		cache: make(map[int]int),
	}
	for z := 0; z < nz-1; z++ {
		for y := 0; y < ny-1; y++ {
			for x := 0; x < nx-1; x++ {
				mc.cube(x, y, z)
			}
		}
	}
	mc.fixZeroNormals()
	return mc.out, nil
}

type mcExtractor struct {
	v          Volume
	nx, ny, nz int
	level      float64
	// cache maps a grid edge key to the index of the vertex on it.
	cache map[int]int
	out   IsoSurface
}

// cube emits the triangles of the cell with lowest corner (x, y, z).
func (mc *mcExtractor) cube(x, y, z int) {
	var (
		values  [8]float64
		cubeIdx int
	)
	for i, c := range mcCorners {
		values[i] = mc.v.Value(x+c[0], y+c[1], z+c[2])
		if values[i] < mc.level {
			cubeIdx |= 1 << i
		}
	}
	if mcEdgeTable[cubeIdx] == 0 {
		return
	}
	var edgeVerts [12]int
	for e := 0; e < 12; e++ {
		if mcEdgeTable[cubeIdx]&(1<<e) != 0 {
			edgeVerts[e] = mc.vertex(x, y, z, e, values)
		}
	}
	tris := mcTriangleTable[cubeIdx]
	for i := 0; i+2 < len(tris); i += 3 {
		mc.out.Faces = append(mc.out.Faces, [3]int{
			edgeVerts[tris[i]], edgeVerts[tris[i+1]], edgeVerts[tris[i+2]],
		})
	}
}

// vertex returns the index of the vertex on cube edge e, creating it if the
// neighbouring cubes have not done so already.
func (mc *mcExtractor) vertex(x, y, z, e int, values [8]float64) int {
	a, b := mcEdges[e][0], mcEdges[e][1]
	ca, cb := mcCorners[a], mcCorners[b]
	pa := [3]int{x + ca[0], y + ca[1], z + ca[2]}
	pb := [3]int{x + cb[0], y + cb[1], z + cb[2]}
	key := mc.edgeKey(pa, pb)
	if idx, ok := mc.cache[key]; ok {
		return idx
	}
	va, vb := values[a], values[b]
	t := (mc.level - va) / (vb - va)
	pos := lerp(toVec(pa), toVec(pb), t)
	grad := lerp(mc.gradient(pa), mc.gradient(pb), t)
	var normal r3.Vec
	if n := r3.Norm(grad); n > 0 {
		normal = r3.Scale(-1/n, grad)
	}
	idx := len(mc.out.Vertices)
	mc.out.Vertices = append(mc.out.Vertices, pos)
	mc.out.Normals = append(mc.out.Normals, normal)
	mc.out.Values = append(mc.out.Values, math.Max(va, vb))
	mc.cache[key] = idx
	return idx
}

// edgeKey identifies the grid edge between two adjacent grid points.
func (mc *mcExtractor) edgeKey(pa, pb [3]int) int {
	axis := 0
	switch {
	case pa[1] != pb[1]:
		axis = 1
	case pa[2] != pb[2]:
		axis = 2
	}
	lo := pa
	if pb[axis] < pa[axis] {
		lo = pb
	}
	return ((lo[2]*mc.ny+lo[1])*mc.nx+lo[0])*3 + axis
}

// gradient returns the field gradient at a grid point using central
// differences inside the volume and one sided differences on its border.
func (mc *mcExtractor) gradient(p [3]int) r3.Vec {
	x, y, z := p[0], p[1], p[2]
	return r3.Vec{
		X: mc.diff(x, mc.nx, func(i int) float64 { return mc.v.Value(i, y, z) }),
		Y: mc.diff(y, mc.ny, func(i int) float64 { return mc.v.Value(x, i, z) }),
		Z: mc.diff(z, mc.nz, func(i int) float64 { return mc.v.Value(x, y, i) }),
	}
}

func (mc *mcExtractor) diff(i, n int, at func(int) float64) float64 {
	switch i {
	case 0:
		return at(1) - at(0)
	case n - 1:
		return at(n-1) - at(n-2)
	}
	return 0.5 * (at(i+1) - at(i-1))
}

// fixZeroNormals replaces normals of vertices where the gradient vanished
// with the negated sum of the adjacent face normals.
func (mc *mcExtractor) fixZeroNormals() {
	var zero []int
	for i, n := range mc.out.Normals {
		if n == (r3.Vec{}) {
			zero = append(zero, i)
		}
	}
	if len(zero) == 0 {
		return
	}
	acc := make(map[int]r3.Vec, len(zero))
	for _, i := range zero {
		acc[i] = r3.Vec{}
	}
	for _, f := range mc.out.Faces {
		tri := r3.Triangle{mc.out.Vertices[f[0]], mc.out.Vertices[f[1]], mc.out.Vertices[f[2]]}
		fn := tri.Normal()
		for _, vi := range f {
			if sum, ok := acc[vi]; ok {
				acc[vi] = r3.Add(sum, fn)
			}
		}
	}
	for i, sum := range acc {
		if n := r3.Norm(sum); n > 0 {
			mc.out.Normals[i] = r3.Scale(-1/n, sum)
		}
	}
}

func toVec(p [3]int) r3.Vec {
	return r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}
