package viewer

import (
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"

	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/raster"
)

// View is everything a surface needs to draw one frame
type View struct {
	Position   geometry.Position
	Direction  mgl64.Vec3
	Zoom       int
	FOV        float64 // vertical, radians
	Width      int
	Height     int
	ViewMatrix mgl64.Mat4
	Projection mgl64.Mat4
}

// Surface draws frames. Draw is called on the frame loop.
type Surface interface {
	Draw(v View)
}

// SurfaceFunc adapts a function to Surface
type SurfaceFunc func(v View)

// Draw calls f
func (f SurfaceFunc) Draw(v View) { f(v) }

// RasterSurface renders frames in software and hands each finished frame
// to an optional callback
type RasterSurface struct {
	renderer *raster.Renderer
	camera   *raster.Camera

	mu      sync.Mutex
	frame   *image.RGBA
	spare   *image.RGBA
	onFrame func(*image.RGBA)
}

// NewRasterSurface creates a surface drawing scene
func NewRasterSurface(scene *raster.Scene) *RasterSurface {
	return &RasterSurface{
		renderer: raster.NewRenderer(scene),
		camera:   raster.NewCamera(geometry.Position{}, mgl64.DegToRad(60), 1, 1),
	}
}

// OnFrame sets a callback receiving every drawn frame. The image is only
// valid until the callback returns; use Snapshot to keep a frame.
func (s *RasterSurface) OnFrame(fn func(*image.RGBA)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFrame = fn
}

// Draw renders v into the back buffer and swaps it in
func (s *RasterSurface) Draw(v View) {
	if v.Width <= 0 || v.Height <= 0 {
		return
	}

	// Render from the direction the viewer settled on, which the gyroscope
	// may have set without going through the position
	pos := geometry.ToSpherical(v.Direction)
	s.camera.Resize(v.Width, v.Height)
	s.camera.Look(pos, v.FOV)

	s.mu.Lock()
	dst := s.spare
	s.mu.Unlock()
	if dst == nil || dst.Rect.Dx() != v.Width || dst.Rect.Dy() != v.Height {
		dst = image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	}

	s.renderer.Render(dst, s.camera)

	s.mu.Lock()
	s.spare = s.frame
	s.frame = dst
	onFrame := s.onFrame
	s.mu.Unlock()

	if onFrame != nil {
		onFrame(dst)
	}
}

// Snapshot returns a copy of the last frame, or nil before the first one
func (s *RasterSurface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return nil
	}
	out := image.NewRGBA(s.frame.Rect)
	copy(out.Pix, s.frame.Pix)
	return out
}

// Scaled returns the last frame resampled to width x height
func (s *RasterSurface) Scaled(width, height int) *image.RGBA {
	frame := s.Snapshot()
	if frame == nil {
		return nil
	}
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	return out
}

// Close stops the render workers
func (s *RasterSurface) Close() {
	s.renderer.Close()
}
