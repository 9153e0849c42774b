package d3

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSetBounds(t *testing.T) {
	s := Set{{X: 1, Y: -2, Z: 3}, {X: -1, Y: 5, Z: 0}, {X: 0, Y: 0, Z: 7}}
	if got, want := s.Min(), (r3.Vec{X: -1, Y: -2, Z: 0}); got != want {
		t.Errorf("min %v, want %v", got, want)
	}
	if got, want := s.Max(), (r3.Vec{X: 1, Y: 5, Z: 7}); got != want {
		t.Errorf("max %v, want %v", got, want)
	}
	if (Set{}).Min() != (r3.Vec{}) || (Set{}).Max() != (r3.Vec{}) {
		t.Error("empty set must yield zero vectors")
	}
}

func TestEqualWithin(t *testing.T) {
	a := Elem(1)
	if !EqualWithin(a, r3.Vec{X: 1.05, Y: 1, Z: 0.95}, 0.1) {
		t.Error("vectors within tolerance reported unequal")
	}
	if EqualWithin(a, r3.Vec{X: 1, Y: 1.2, Z: 1}, 0.1) {
		t.Error("vectors outside tolerance reported equal")
	}
	if !LTZero(r3.Vec{X: 1, Y: -1e-9, Z: 1}) || LTZero(Elem(0)) {
		t.Error("LTZero mismatch")
	}
}
