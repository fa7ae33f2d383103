package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/gopano/pkg/geometry"
)

const (
	nearPlane = 0.1
	farPlane  = 100
)

// Camera looks from the center of the sphere
type Camera struct {
	Position geometry.Position
	FOV      float64 // vertical field of view in radians
	Width    int
	Height   int

	viewProj    mgl64.Mat4
	invViewProj mgl64.Mat4
}

// NewCamera creates a camera for an output of width x height pixels
func NewCamera(pos geometry.Position, fov float64, width, height int) *Camera {
	c := &Camera{Position: pos, FOV: fov, Width: width, Height: height}
	c.update()
	return c
}

// Look points the camera at pos with the given field of view
func (c *Camera) Look(pos geometry.Position, fov float64) {
	c.Position = pos
	c.FOV = fov
	c.update()
}

// Resize changes the output size
func (c *Camera) Resize(width, height int) {
	c.Width = width
	c.Height = height
	c.update()
}

// Forward is the viewing direction
func (c *Camera) Forward() mgl64.Vec3 {
	return geometry.ToDirection(c.Position.Longitude, c.Position.Latitude)
}

// Up is perpendicular to Forward so the view stays defined at the poles
func (c *Camera) Up() mgl64.Vec3 {
	return geometry.ToDirection(c.Position.Longitude, c.Position.Latitude+math.Pi/2)
}

func (c *Camera) aspect() float64 {
	if c.Height <= 0 {
		return 1
	}
	return float64(c.Width) / float64(c.Height)
}

func (c *Camera) update() {
	view := mgl64.LookAtV(mgl64.Vec3{}, c.Forward(), c.Up())
	proj := mgl64.Perspective(c.FOV, c.aspect(), nearPlane, farPlane)
	c.viewProj = proj.Mul4(view)
	c.invViewProj = c.viewProj.Inv()
}

// Ray returns the unit direction seen through the screen point (x, y)
func (c *Camera) Ray(x, y float64) mgl64.Vec3 {
	ndcX := 2*x/float64(c.Width) - 1
	ndcY := 1 - 2*y/float64(c.Height)

	p := c.invViewProj.Mul4x1(mgl64.Vec4{ndcX, ndcY, 1, 1})
	return p.Vec3().Mul(1 / p.W()).Normalize()
}

// Project maps a direction to screen coordinates. It reports false for
// directions behind the camera.
func (c *Camera) Project(dir mgl64.Vec3) (float64, float64, bool) {
	clip := c.viewProj.Mul4x1(dir.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()

	x := (ndcX + 1) / 2 * float64(c.Width)
	y := (1 - ndcY) / 2 * float64(c.Height)
	return x, y, true
}
