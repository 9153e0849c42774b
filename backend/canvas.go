package backend

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// Canvas draws flat shaded triangles with a 2D vector canvas. Faces are
// projected orthographically along -Z and painted far to near.
type Canvas struct {
	opts  Options
	cam   camera
	dc    *gg.Context
	faces [][3]int
	order []int
	bg    gg.RGBA
	fill  gg.RGBA
}

var _ Backend = (*Canvas)(nil)

// canvasLight is the direction toward the light, in view space.
var canvasLight = r3.Unit(r3.Vec{X: -0.75, Y: 1, Z: 1})

const canvasAmbient = 0.25

// NewCanvas returns a canvas backend.
func NewCanvas(opts Options) (*Canvas, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Canvas{
		opts: opts,
		bg:   gg.FromColor(opts.Background),
		fill: gg.FromColor(opts.Color),
	}, nil
}

func (c *Canvas) Name() string { return "canvas" }

// Setup scales the view so the bounding sphere of bounds fills the image.
func (c *Canvas) Setup(faces [][3]int, bounds r3.Box) error {
	if err := checkFaces(faces); err != nil {
		return err
	}
	cam, err := newCamera(bounds)
	if err != nil {
		return err
	}
	if c.dc != nil {
		c.dc.Close()
	}
	scale := c.opts.scale()
	c.cam = cam
	c.dc = gg.NewContext(c.opts.Width*scale, c.opts.Height*scale)
	c.faces = append([][3]int(nil), faces...)
	c.order = make([]int, 0, len(faces))
	return nil
}

// Render paints the faces facing the viewer, shaded by the mean of their
// vertex normals.
func (c *Canvas) Render(vertices, normals []r3.Vec) (image.Image, error) {
	if err := checkFrame(c.faces, vertices, normals); err != nil {
		return nil, err
	}
	dc := c.dc
	dc.ClearWithColor(c.bg)
	w, h := float64(dc.Width()), float64(dc.Height())
	px := 0.5 * math.Min(w, h) / c.cam.radius
	project := func(v r3.Vec) (x, y float64) {
		d := r3.Sub(v, c.cam.center)
		return 0.5*w + px*d.X, 0.5*h - px*d.Y
	}
	c.order = depthOrder(c.faces, vertices, c.order)
	for _, i := range c.order {
		f := c.faces[i]
		a, b, d := vertices[f[0]], vertices[f[1]], vertices[f[2]]
		// Faces wind counter-clockwise seen from outside.
		if r3.Cross(r3.Sub(b, a), r3.Sub(d, a)).Z <= 0 {
			continue
		}
		n := r3.Add(normals[f[0]], r3.Add(normals[f[1]], normals[f[2]]))
		shade := canvasAmbient
		if norm := r3.Norm(n); norm > 0 {
			shade += (1 - canvasAmbient) * math.Max(0, r3.Dot(n, canvasLight)/norm)
		}
		dc.SetRGB(c.fill.R*shade, c.fill.G*shade, c.fill.B*shade)
		dc.MoveTo(project(a))
		dc.LineTo(project(b))
		dc.LineTo(project(d))
		dc.ClosePath()
		if err := dc.Fill(); err != nil {
			return nil, err
		}
	}
	img := dc.Image()
	if c.opts.scale() > 1 {
		return resize.Resize(uint(c.opts.Width), uint(c.opts.Height), img, resize.Bilinear), nil
	}
	return img, nil
}

func (c *Canvas) Close() error {
	var err error
	if c.dc != nil {
		err = c.dc.Close()
	}
	c.dc = nil
	c.faces = nil
	return err
}
