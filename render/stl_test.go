package render_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/fracmesh/render"
	"gonum.org/v1/gonum/spatial/r3"
)

func sphereTriangles(t testing.TB) []render.Triangle3 {
	t.Helper()
	iso, err := render.MarchingCubes(sphereVolume(10), 3)
	if err != nil {
		t.Fatal(err)
	}
	model := make([]render.Triangle3, len(iso.Faces))
	for i, f := range iso.Faces {
		model[i] = render.Triangle3{V: [3]r3.Vec{iso.Vertices[f[0]], iso.Vertices[f[1]], iso.Vertices[f[2]]}}
	}
	return model
}

func TestSTLCreateWriteRead(t *testing.T) {
	model := sphereTriangles(t)
	path := filepath.Join(t.TempDir(), "sphere.stl")
	err := render.CreateSTL(path, render.NewSliceRenderer(model))
	if err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	bfile, err := io.ReadAll(fp)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	err = render.WriteSTL(&b, model)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != len(bfile) {
		t.Fatal("WriteSTL and CreateSTL output length mismatch")
	}
	if b.String() != string(bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
	if want := 84 + 50*len(model); len(bfile) != want {
		t.Errorf("file is %d bytes, want %d", len(bfile), want)
	}

	got, err := render.ReadSTL(bytes.NewReader(bfile))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(model) {
		t.Fatalf("read %d triangles, wrote %d", len(got), len(model))
	}
	for i := range got {
		for k := 0; k < 3; k++ {
			// Vertices are stored as float32.
			if r3.Norm(r3.Sub(got[i].V[k], model[i].V[k])) > 1e-5 {
				t.Fatalf("triangle %d vertex %d: read %v, wrote %v", i, k, got[i].V[k], model[i].V[k])
			}
		}
	}
}

func TestSTLEmpty(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, nil); err == nil {
		t.Error("expected error writing empty model")
	}
	path := filepath.Join(t.TempDir(), "empty.stl")
	if err := render.CreateSTL(path, render.NewSliceRenderer(nil)); err == nil {
		t.Error("expected error creating empty STL")
	}
}

func TestSTLTruncated(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, sphereTriangles(t)); err != nil {
		t.Fatal(err)
	}
	data := b.Bytes()
	if _, err := render.ReadSTL(bytes.NewReader(data[:len(data)-10])); err == nil {
		t.Error("expected error reading truncated STL")
	}
}
