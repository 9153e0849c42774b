// Package animate builds per-frame rigid rotations of a mesh about the +Y
// axis.
package animate

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/fracmesh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoFrames is returned when a duration and frame rate yield no frames.
var ErrNoFrames = errors.New("animation has no frames")

// Axis is the rotation axis of every frame.
var Axis = r3.Vec{Y: 1}

// FrameCount returns floor(duration*fps), or 0 if that is negative or not
// finite.
func FrameCount(duration, fps float64) int {
	n := math.Floor(duration * fps)
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return int(n)
}

// Schedule returns FrameCount(duration, fps) rotation angles in radians,
// evenly spaced from 0 to duration*speed inclusive. Angles are not wrapped
// to [0, 2π). A single frame is at angle 0.
func Schedule(duration, fps, speed float64) ([]float64, error) {
	n := FrameCount(duration, fps)
	if n == 0 {
		return nil, fmt.Errorf("%w: duration %gs at %g fps", ErrNoFrames, duration, fps)
	}
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("rotation speed must be finite, got %g", speed)
	}
	angles := make([]float64, n)
	if n == 1 {
		return angles, nil
	}
	floats.Span(angles, 0, duration)
	floats.Scale(speed, angles)
	return angles, nil
}

// Batch holds rotated copies of a base mesh, one per frame. The base mesh is
// never modified.
type Batch struct {
	base     fracmesh.Mesh
	angles   []float64
	vertices [][]r3.Vec
	normals  [][]r3.Vec
}

// New computes the rotation schedule and the rotated frames in one call.
func New(base fracmesh.Mesh, duration, fps, speed float64) (*Batch, error) {
	angles, err := Schedule(duration, fps, speed)
	if err != nil {
		return nil, err
	}
	return Rotate(base, angles)
}

// Rotate returns a Batch with one frame per angle. Each frame applies the
// rotation about Axis to the vertices and normals of base.
func Rotate(base fracmesh.Mesh, angles []float64) (*Batch, error) {
	if len(angles) == 0 {
		return nil, ErrNoFrames
	}
	verts, normals := base.Vertices(), base.Normals()
	b := &Batch{
		base:     base,
		angles:   append([]float64(nil), angles...),
		vertices: make([][]r3.Vec, len(angles)),
		normals:  make([][]r3.Vec, len(angles)),
	}
	for i, angle := range angles {
		if math.IsNaN(angle) || math.IsInf(angle, 0) {
			return nil, fmt.Errorf("frame %d: non-finite angle %g", i, angle)
		}
		rot := r3.NewRotation(angle, Axis).Mat()
		b.vertices[i] = transform(rot, verts)
		b.normals[i] = transform(rot, normals)
	}
	return b, nil
}

func transform(m *r3.Mat, src []r3.Vec) []r3.Vec {
	dst := make([]r3.Vec, len(src))
	for i, v := range src {
		dst[i] = m.MulVec(v)
	}
	return dst
}

// Len returns the number of frames.
func (b *Batch) Len() int { return len(b.angles) }

// Base returns the mesh the frames were computed from.
func (b *Batch) Base() fracmesh.Mesh { return b.base }

// Angles returns a copy of the rotation angle of every frame.
func (b *Batch) Angles() []float64 { return append([]float64(nil), b.angles...) }

// Frame returns the rotated vertices and normals of frame i. The returned
// slices are shared with the Batch and must not be modified.
func (b *Batch) Frame(i int) (vertices, normals []r3.Vec) {
	return b.vertices[i], b.normals[i]
}

// SizeBytes estimates the memory of the batch stored as float32 triples.
func (b *Batch) SizeBytes() uint64 {
	const vecBytes = 3 * 4
	var total uint64
	for i := range b.vertices {
		total += uint64(len(b.vertices[i])+len(b.normals[i])) * vecBytes
	}
	return total
}
