//go:build debug
// +build debug

package fracmesh

import (
	"errors"
	"testing"
)

func TestSampleVolumeNonFinitePanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on non-finite sample")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNonFinite) {
			t.Errorf("expected non-finite error panic, got %v", r)
		}
	}()
	SampleVolume(Grid{Size: 4, Lower: -1, Upper: 1}, nanField{at: 5})
}
