package fracmesh

import (
	"fmt"

	"github.com/soypat/fracmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// postprocess turns an isosurface in grid-index coordinates into a world
// space Mesh with outward normals. The extractor's normals point toward lower
// field values which is inward for fields that grow away from the solid, so
// they are negated. Faces are passed through unchanged.
func postprocess(iso render.IsoSurface, g Grid) (Mesh, error) {
	if iso.Empty() {
		return Mesh{}, ErrEmptyMesh
	}
	if len(iso.Normals) != len(iso.Vertices) {
		return Mesh{}, fmt.Errorf("extractor returned %d normals for %d vertices", len(iso.Normals), len(iso.Vertices))
	}
	m := Mesh{
		vertices: make([]r3.Vec, len(iso.Vertices)),
		normals:  make([]r3.Vec, len(iso.Normals)),
		faces:    append([][3]int(nil), iso.Faces...),
	}
	for i, n := range iso.Normals {
		m.normals[i] = r3.Scale(-1, n)
	}
	for i, v := range iso.Vertices {
		m.vertices[i] = g.ToWorld(v)
	}
	if len(iso.Values) == len(iso.Vertices) {
		m.values = append([]float64(nil), iso.Values...)
	}
	if err := m.Validate(); err != nil {
		return Mesh{}, err
	}
	return m, nil
}
