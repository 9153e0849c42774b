package encode

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"math"
)

// GIF buffers quantized frames and encodes them as a looping animated GIF on
// Close.
type GIF struct {
	w      io.Writer
	closer io.Closer
	out    gif.GIF
	delay  int
	closed bool
}

// NewGIF returns a GIF writer playing at approximately fps frames per
// second. GIF delays have a resolution of 1/100 s.
func NewGIF(w io.Writer, fps float64) (*GIF, error) {
	if !(fps > 0) || math.IsInf(fps, 0) {
		return nil, fmt.Errorf("invalid frame rate %g", fps)
	}
	return &GIF{
		w:     w,
		delay: max(1, int(math.Round(100/fps))),
	}, nil
}

// Delay returns the per frame delay in hundredths of a second.
func (g *GIF) Delay() int { return g.delay }

// WriteFrame quantizes img to the Plan 9 palette with Floyd-Steinberg
// dithering.
func (g *GIF) WriteFrame(img image.Image) error {
	if g.closed {
		return ErrClosed
	}
	if img == nil {
		return errors.New("nil frame")
	}
	if len(g.out.Image) > 0 && img.Bounds().Size() != g.out.Image[0].Bounds().Size() {
		return fmt.Errorf("frame %d size %v differs from first frame %v", len(g.out.Image), img.Bounds().Size(), g.out.Image[0].Bounds().Size())
	}
	bounds := img.Bounds()
	pimg := image.NewPaletted(image.Rect(0, 0, bounds.Dx(), bounds.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), img, bounds.Min)
	g.out.Image = append(g.out.Image, pimg)
	g.out.Delay = append(g.out.Delay, g.delay)
	return nil
}

// Close encodes the buffered frames. Closing a GIF without frames fails.
func (g *GIF) Close() error {
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	var err error
	if len(g.out.Image) == 0 {
		err = errors.New("gif has no frames")
	} else {
		err = gif.EncodeAll(g.w, &g.out)
	}
	if g.closer != nil {
		if cerr := g.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
