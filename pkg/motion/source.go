package motion

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Source is the driver currently changing the orientation
type Source int

const (
	None Source = iota
	ManualDrag
	AnimatedRotate
	Autorotate
	Gyroscope
)

func (s Source) String() string {
	switch s {
	case None:
		return "none"
	case ManualDrag:
		return "manual-drag"
	case AnimatedRotate:
		return "animated-rotate"
	case Autorotate:
		return "autorotate"
	case Gyroscope:
		return "gyroscope"
	default:
		return "unknown"
	}
}

// Renderer draws a frame. With updateDirection false the look direction
// already applied to the state is used as is.
type Renderer interface {
	Render(updateDirection bool)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(updateDirection bool)

func (f RendererFunc) Render(updateDirection bool) { f(updateDirection) }

// Sensor reports the device orientation as a look direction
type Sensor interface {
	CurrentDirection() mgl64.Vec3
}

// SensorFunc adapts a function to Sensor
type SensorFunc func() mgl64.Vec3

func (f SensorFunc) CurrentDirection() mgl64.Vec3 { return f() }
