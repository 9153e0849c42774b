package backend

import (
	"image"
	"image/draw"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	fovy       = 60 // vertical field of view in degrees
	cameraDist = 3  // camera distance in bounding radii
)

// Fauxgl is a software rasterizer backend with per vertex Phong shading and a
// perspective camera.
type Fauxgl struct {
	opts    Options
	context *fauxgl.Context
	shader  *fauxgl.PhongShader
	faces   [][3]int
	tris    []*fauxgl.Triangle
}

var _ Backend = (*Fauxgl)(nil)

// NewFauxgl returns a fauxgl backend.
func NewFauxgl(opts Options) (*Fauxgl, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Fauxgl{opts: opts.withDefaults()}, nil
}

func (f *Fauxgl) Name() string { return "fauxgl" }

// Setup places the camera on the +Z axis at three bounding radii from the
// rotation axis, looking at it with +Y up.
func (f *Fauxgl) Setup(faces [][3]int, bounds r3.Box) error {
	if err := checkFaces(faces); err != nil {
		return err
	}
	cam, err := newCamera(bounds)
	if err != nil {
		return err
	}
	scale := f.opts.scale()
	width, height := f.opts.Width*scale, f.opts.Height*scale
	var (
		center = fauxgl.V(cam.center.X, cam.center.Y, cam.center.Z)
		eye    = fauxgl.V(cam.center.X, cam.center.Y, cam.center.Z+cameraDist*cam.radius)
		up     = fauxgl.V(0, 1, 0)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		near   = (cameraDist - 1.5) * cam.radius
		far    = (cameraDist + 1.5) * cam.radius
	)
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	f.shader = fauxgl.NewPhongShader(matrix, light, eye)
	f.shader.ObjectColor = fauxgl.MakeColor(f.opts.Color)
	f.context = fauxgl.NewContext(width, height)
	f.context.Shader = f.shader
	f.faces = append([][3]int(nil), faces...)
	f.tris = make([]*fauxgl.Triangle, len(faces))
	for i := range f.tris {
		f.tris[i] = &fauxgl.Triangle{}
	}
	return nil
}

// Render rasterizes one frame using the given vertex normals for shading.
func (f *Fauxgl) Render(vertices, normals []r3.Vec) (image.Image, error) {
	if err := checkFrame(f.faces, vertices, normals); err != nil {
		return nil, err
	}
	for i, face := range f.faces {
		t := f.tris[i]
		t.V1 = vertex(vertices[face[0]], normals[face[0]])
		t.V2 = vertex(vertices[face[1]], normals[face[1]])
		t.V3 = vertex(vertices[face[2]], normals[face[2]])
	}
	f.context.ClearColorBufferWith(fauxgl.MakeColor(f.opts.Background))
	f.context.ClearDepthBuffer()
	f.context.DrawTriangles(f.tris)
	img := f.context.Image()
	if scale := f.opts.scale(); scale > 1 {
		// downsample image for antialiasing
		return resize.Resize(uint(f.opts.Width), uint(f.opts.Height), img, resize.Bilinear), nil
	}
	// The color buffer is reused by the next frame.
	out := image.NewNRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out, nil
}

func (f *Fauxgl) Close() error {
	f.context = nil
	f.shader = nil
	f.faces = nil
	f.tris = nil
	return nil
}

func vertex(p, n r3.Vec) fauxgl.Vertex {
	return fauxgl.Vertex{
		Position: fauxgl.V(p.X, p.Y, p.Z),
		Normal:   fauxgl.V(n.X, n.Y, n.Z),
	}
}
