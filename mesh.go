package fracmesh

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/fracmesh/internal/d3"
	"github.com/soypat/fracmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an immutable indexed triangle mesh in world coordinates with one
// outward unit normal per vertex. Accessors return copies so a Mesh may be
// shared freely once built.
type Mesh struct {
	vertices []r3.Vec
	faces    [][3]int
	normals  []r3.Vec
	values   []float64
}

// NewMesh validates and copies its arguments into a new Mesh.
func NewMesh(vertices []r3.Vec, faces [][3]int, normals []r3.Vec) (Mesh, error) {
	m := Mesh{
		vertices: append([]r3.Vec(nil), vertices...),
		faces:    append([][3]int(nil), faces...),
		normals:  append([]r3.Vec(nil), normals...),
	}
	if err := m.Validate(); err != nil {
		return Mesh{}, err
	}
	return m, nil
}

// Validate checks that every face index is in range and that there is one
// normal per vertex.
func (m Mesh) Validate() error {
	if len(m.normals) != len(m.vertices) {
		return fmt.Errorf("mesh has %d normals for %d vertices", len(m.normals), len(m.vertices))
	}
	if m.values != nil && len(m.values) != len(m.vertices) {
		return fmt.Errorf("mesh has %d values for %d vertices", len(m.values), len(m.vertices))
	}
	for i, f := range m.faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(m.vertices) {
				return fmt.Errorf("face %d index %d out of range [0, %d)", i, idx, len(m.vertices))
			}
		}
	}
	return nil
}

// IsEmpty reports whether the mesh has no faces.
func (m Mesh) IsEmpty() bool { return len(m.faces) == 0 }

// NumVertices returns the number of vertices.
func (m Mesh) NumVertices() int { return len(m.vertices) }

// NumFaces returns the number of triangles.
func (m Mesh) NumFaces() int { return len(m.faces) }

// Vertices returns a copy of the vertex positions.
func (m Mesh) Vertices() []r3.Vec { return append([]r3.Vec(nil), m.vertices...) }

// Faces returns a copy of the 0-based triangle vertex indices.
func (m Mesh) Faces() [][3]int { return append([][3]int(nil), m.faces...) }

// Normals returns a copy of the vertex normals, aligned with Vertices.
func (m Mesh) Normals() []r3.Vec { return append([]r3.Vec(nil), m.normals...) }

// Values returns a copy of the per vertex field values reported by the
// isosurface extraction. It is nil for meshes built with NewMesh.
func (m Mesh) Values() []float64 {
	if m.values == nil {
		return nil
	}
	return append([]float64(nil), m.values...)
}

// Bounds returns the bounding box of the vertices.
func (m Mesh) Bounds() r3.Box {
	if len(m.vertices) == 0 {
		return r3.Box{}
	}
	return r3.Box{Min: d3.Set(m.vertices).Min(), Max: d3.Set(m.vertices).Max()}
}

// Triangles returns the faces of the mesh as standalone triangles.
func (m Mesh) Triangles() []render.Triangle3 {
	tris := make([]render.Triangle3, len(m.faces))
	for i, f := range m.faces {
		tris[i] = render.Triangle3{V: [3]r3.Vec{m.vertices[f[0]], m.vertices[f[1]], m.vertices[f[2]]}}
	}
	return tris
}

// MeshBuffers is the flat single precision layout expected by GPU-style
// consumers: three floats per vertex and three indices per triangle.
type MeshBuffers struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

// Float32 converts the mesh to flat single precision buffers. It fails if a
// coordinate does not fit in a finite float32.
func (m Mesh) Float32() (MeshBuffers, error) {
	buf := MeshBuffers{
		Positions: make([]float32, 0, 3*len(m.vertices)),
		Normals:   make([]float32, 0, 3*len(m.normals)),
		Indices:   make([]uint32, 0, 3*len(m.faces)),
	}
	for i := range m.vertices {
		p, n := m.vertices[i], m.normals[i]
		buf.Positions = append(buf.Positions, float32(p.X), float32(p.Y), float32(p.Z))
		buf.Normals = append(buf.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for i, f := range buf.Positions {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return MeshBuffers{}, fmt.Errorf("%w: vertex %d does not fit float32", ErrNonFinite, i/3)
		}
	}
	for _, f := range m.faces {
		buf.Indices = append(buf.Indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	return buf, nil
}
