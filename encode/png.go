package encode

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fogleman/fauxgl"
)

// PNGSequence writes each frame to its own numbered PNG file.
type PNGSequence struct {
	dir    string
	prefix string
	n      int
	closed bool
}

// NewPNGSequence creates dir if needed and returns a writer for files named
// prefix00000.png, prefix00001.png and so on.
func NewPNGSequence(dir, prefix string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &PNGSequence{dir: dir, prefix: prefix}, nil
}

// Path returns the file name of frame i.
func (s *PNGSequence) Path(i int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s%05d.png", s.prefix, i))
}

// Len returns the number of frames written.
func (s *PNGSequence) Len() int { return s.n }

func (s *PNGSequence) WriteFrame(img image.Image) error {
	if s.closed {
		return ErrClosed
	}
	if img == nil {
		return errors.New("nil frame")
	}
	if err := fauxgl.SavePNG(s.Path(s.n), img); err != nil {
		return fmt.Errorf("frame %d: %w", s.n, err)
	}
	s.n++
	return nil
}

func (s *PNGSequence) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}
