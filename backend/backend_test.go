package backend_test

import (
	"errors"
	"image/color"
	"testing"

	"github.com/soypat/fracmesh"
	"github.com/soypat/fracmesh/animate"
	"github.com/soypat/fracmesh/backend"
	"gonum.org/v1/gonum/spatial/r3"
)

func sphereMesh(t testing.TB) fracmesh.Mesh {
	t.Helper()
	cfg := fracmesh.DefaultGeneratorConfig()
	cfg.Grid.Size = 16
	cfg.Level = 0.6
	gen, err := fracmesh.NewGeneratorField(cfg, fracmesh.Sphere{})
	if err != nil {
		t.Fatal(err)
	}
	m, err := gen.Generate()
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// sameColor compares colors allowing for resampling round off.
func sameColor(a, b color.Color) bool {
	const tol = 3 << 8
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	near := func(x, y uint32) bool { return x <= y+tol && y <= x+tol }
	return near(r1, r2) && near(g1, g2) && near(b1, b2) && near(a1, a2)
}

func TestBackends(t *testing.T) {
	mesh := sphereMesh(t)
	batch, err := animate.New(mesh, 1, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range backend.Names() {
		for _, supersample := range []int{1, 2} {
			opts := backend.DefaultOptions()
			opts.Width, opts.Height = 64, 48
			opts.Supersample = supersample
			b, err := backend.ByName(name, opts)
			if err != nil {
				t.Fatal(err)
			}
			if b.Name() != name {
				t.Errorf("backend %q reports name %q", name, b.Name())
			}
			if err := b.Setup(mesh.Faces(), mesh.Bounds()); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < batch.Len(); i++ {
				img, err := b.Render(batch.Frame(i))
				if err != nil {
					t.Fatalf("%s frame %d: %v", name, i, err)
				}
				if sz := img.Bounds().Size(); sz.X != opts.Width || sz.Y != opts.Height {
					t.Fatalf("%s: image size %v, want %dx%d", name, sz, opts.Width, opts.Height)
				}
				origin := img.Bounds().Min
				if corner := img.At(origin.X, origin.Y); !sameColor(corner, opts.Background) {
					t.Errorf("%s: corner pixel %v is not background", name, corner)
				}
				if center := img.At(origin.X+opts.Width/2, origin.Y+opts.Height/2); sameColor(center, opts.Background) {
					t.Errorf("%s frame %d: mesh not drawn at image center", name, i)
				}
			}
			if err := b.Close(); err != nil {
				t.Error(err)
			}
		}
	}
}

func TestBackendErrors(t *testing.T) {
	if _, err := backend.ByName("vtk", backend.DefaultOptions()); err == nil {
		t.Error("expected error for unknown backend")
	}
	opts := backend.DefaultOptions()
	opts.Width = 0
	if _, err := backend.ByName("canvas", opts); err == nil {
		t.Error("expected error for zero width")
	}
	mesh := sphereMesh(t)
	for _, name := range backend.Names() {
		b, err := backend.ByName(name, backend.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := b.Render(mesh.Vertices(), mesh.Normals()); !errors.Is(err, backend.ErrNotSetup) {
			t.Errorf("%s: expected not set up error, got %v", name, err)
		}
		if err := b.Setup(nil, mesh.Bounds()); err == nil {
			t.Errorf("%s: expected error for no faces", name)
		}
		if err := b.Setup(mesh.Faces(), r3.Box{}); err == nil {
			t.Errorf("%s: expected error for empty bounds", name)
		}
		if err := b.Setup(mesh.Faces(), mesh.Bounds()); err != nil {
			t.Fatal(err)
		}
		if _, err := b.Render(mesh.Vertices()[:3], mesh.Normals()[:3]); err == nil {
			t.Errorf("%s: expected error for missing vertices", name)
		}
		b.Close()
	}
}
