package render

import (
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer streams triangles. ReadTriangles returns io.EOF once every
// triangle has been read.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// Triangle3 is a 3D triangle. Vertex order sets the normal direction.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle or the zero vector if the
// triangle has no area.
func (t Triangle3) Normal() r3.Vec {
	n := r3.Triangle(t.V).Normal()
	if n == (r3.Vec{}) {
		return n
	}
	return r3.Unit(n)
}

// Degenerate returns true if two vertices of the triangle are within tol.
func (t Triangle3) Degenerate(tol float64) bool {
	return equalWithin(t.V[0], t.V[1], tol) ||
		equalWithin(t.V[1], t.V[2], tol) ||
		equalWithin(t.V[2], t.V[0], tol)
}

// NewSliceRenderer returns a Renderer that reads out the given triangles.
func NewSliceRenderer(model []Triangle3) Renderer {
	return &sliceRenderer{buf: triangle3Buffer{buf: model}}
}

type sliceRenderer struct {
	buf triangle3Buffer
}

func (s *sliceRenderer) ReadTriangles(dst []Triangle3) (int, error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	if s.buf.Len() == 0 {
		return 0, io.EOF
	}
	return s.buf.Read(dst), nil
}

func equalWithin(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}
