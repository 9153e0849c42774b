// Package encode writes rendered animation frames to image files.
package encode

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
)

// ErrClosed is returned when writing to a closed FrameWriter.
var ErrClosed = errors.New("frame writer closed")

// FrameWriter consumes frames in order. Close flushes pending output.
type FrameWriter interface {
	WriteFrame(img image.Image) error
	Close() error
}

// Discard is a FrameWriter that only counts frames.
type Discard struct {
	Frames int
}

func (d *Discard) WriteFrame(img image.Image) error {
	if img == nil {
		return errors.New("nil frame")
	}
	d.Frames++
	return nil
}

func (d *Discard) Close() error { return nil }

// Create returns a FrameWriter for path chosen by its extension. A ".gif"
// path is an animated GIF, a path without extension is a directory of
// numbered PNG files and an empty path discards frames.
func Create(path string, fps float64) (FrameWriter, error) {
	if path == "" {
		return &Discard{}, nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gif":
		fp, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		w, err := NewGIF(fp, fps)
		if err != nil {
			fp.Close()
			os.Remove(path)
			return nil, err
		}
		w.closer = fp
		return w, nil
	case "":
		return NewPNGSequence(path, "frame_")
	default:
		return nil, fmt.Errorf("unsupported frame output %q", ext)
	}
}
