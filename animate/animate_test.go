package animate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/fracmesh"
	"github.com/soypat/fracmesh/animate"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFrameCount(t *testing.T) {
	for _, test := range []struct {
		duration, fps float64
		want          int
	}{
		{3, 60, 180},
		{1, 1, 1},
		{0.5, 3, 1},
		{0.1, 5, 0},
		{0, 60, 0},
		{-1, 60, 0},
		{math.Inf(1), 60, 0},
		{2.99, 10, 29},
	} {
		if got := animate.FrameCount(test.duration, test.fps); got != test.want {
			t.Errorf("FrameCount(%g, %g) = %d, want %d", test.duration, test.fps, got, test.want)
		}
	}
}

func TestSchedule(t *testing.T) {
	const (
		duration = 3.0
		fps      = 60.0
		speed    = 3.1415926
	)
	angles, err := animate.Schedule(duration, fps, speed)
	if err != nil {
		t.Fatal(err)
	}
	n := animate.FrameCount(duration, fps)
	if len(angles) != n {
		t.Fatalf("got %d angles, want %d", len(angles), n)
	}
	if angles[0] != 0 {
		t.Errorf("first angle %g, want 0", angles[0])
	}
	if math.Abs(angles[n-1]-duration*speed) > 1e-12 {
		t.Errorf("last angle %g, want %g", angles[n-1], duration*speed)
	}
	for i, a := range angles {
		want := float64(i) * duration / float64(n-1) * speed
		if math.Abs(a-want) > 1e-12 {
			t.Errorf("angle %d = %g, want %g", i, a, want)
		}
	}

	// Large angles are not wrapped.
	angles, err = animate.Schedule(10, 2, 100)
	if err != nil {
		t.Fatal(err)
	}
	if last := angles[len(angles)-1]; math.Abs(last-1000) > 1e-9 {
		t.Errorf("last angle %g, want 1000", last)
	}

	angles, err = animate.Schedule(1, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(angles) != 1 || angles[0] != 0 {
		t.Errorf("single frame schedule %v, want [0]", angles)
	}

	if _, err = animate.Schedule(0.1, 5, 1); !errors.Is(err, animate.ErrNoFrames) {
		t.Errorf("expected no frames error, got %v", err)
	}
}

func triangleMesh(t *testing.T) fracmesh.Mesh {
	t.Helper()
	m, err := fracmesh.NewMesh(
		[]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}},
		[][3]int{{0, 1, 2}},
		[]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRotate(t *testing.T) {
	base := triangleMesh(t)
	b, err := animate.Rotate(base, []float64{0, math.Pi / 2, math.Pi, 2 * math.Pi})
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 4 {
		t.Fatalf("got %d frames, want 4", b.Len())
	}
	const tol = 1e-12
	want := [][]r3.Vec{
		{{X: 1}, {Y: 1}, {Z: 1}},
		// A right handed quarter turn about +Y takes +X to -Z and +Z to +X.
		{{Z: -1}, {Y: 1}, {X: 1}},
		{{X: -1}, {Y: 1}, {Z: -1}},
		{{X: 1}, {Y: 1}, {Z: 1}},
	}
	for i := range want {
		verts, normals := b.Frame(i)
		for j := range want[i] {
			if r3.Norm(r3.Sub(verts[j], want[i][j])) > tol {
				t.Errorf("frame %d vertex %d = %v, want %v", i, j, verts[j], want[i][j])
			}
			if r3.Norm(r3.Sub(normals[j], want[i][j])) > tol {
				t.Errorf("frame %d normal %d = %v, want %v", i, j, normals[j], want[i][j])
			}
		}
	}
	if v := base.Vertices(); v[0] != (r3.Vec{X: 1}) {
		t.Error("rotation modified the base mesh")
	}
	if got := b.SizeBytes(); got != 4*6*12 {
		t.Errorf("SizeBytes = %d, want %d", got, 4*6*12)
	}
}

func TestRotatePreservesNorms(t *testing.T) {
	cfg := fracmesh.DefaultGeneratorConfig()
	cfg.Grid.Size = 16
	cfg.Level = 0.6
	gen, err := fracmesh.NewGeneratorField(cfg, fracmesh.Sphere{})
	if err != nil {
		t.Fatal(err)
	}
	base, err := gen.Generate()
	if err != nil {
		t.Fatal(err)
	}
	b, err := animate.New(base, 1, 7, 3)
	if err != nil {
		t.Fatal(err)
	}
	verts := base.Vertices()
	for i := 0; i < b.Len(); i++ {
		fv, fn := b.Frame(i)
		for j := range verts {
			if math.Abs(r3.Norm(fv[j])-r3.Norm(verts[j])) > 1e-12 {
				t.Fatalf("frame %d changed the length of vertex %d", i, j)
			}
			if math.Abs(fv[j].Y-verts[j].Y) > 1e-12 {
				t.Fatalf("frame %d moved vertex %d along the rotation axis", i, j)
			}
			if math.Abs(r3.Norm(fn[j])-1) > 1e-9 {
				t.Fatalf("frame %d normal %d is not unit length", i, j)
			}
		}
	}
}

func TestRotateErrors(t *testing.T) {
	base := triangleMesh(t)
	if _, err := animate.Rotate(base, nil); !errors.Is(err, animate.ErrNoFrames) {
		t.Errorf("expected no frames error, got %v", err)
	}
	if _, err := animate.Rotate(base, []float64{math.NaN()}); err == nil {
		t.Error("expected error for NaN angle")
	}
	if _, err := animate.New(base, 0, 60, 1); !errors.Is(err, animate.ErrNoFrames) {
		t.Errorf("expected no frames error, got %v", err)
	}
}
