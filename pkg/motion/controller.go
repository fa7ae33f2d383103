// Package motion owns the camera orientation and zoom and makes sure at most
// one of animated rotation, autorotate and gyroscope drives them at a time.
//
// A Controller is not safe for concurrent use. All methods must be called
// from the goroutine running its frame scheduler.
package motion

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/gopano/pkg/animation"
	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/events"
	"github.com/philipparndt/gopano/pkg/frame"
	"github.com/philipparndt/gopano/pkg/geometry"
)

// dragRadiansPerPixel is the rotation per dragged pixel at move speed 1
const dragRadiansPerPixel = math.Pi / 1000

// Config holds the motion settings
type Config struct {
	MinLatitude        float64
	MaxLatitude        float64
	AutorotateSpeed    float64 // radians per second
	AutorotateLatitude float64 // latitude autorotate settles on
	MoveSpeed          float64 // drag speed multiplier
	Easing             string  // easing of animated rotations
	Initial            geometry.Position
	InitialZoom        int
}

// DefaultConfig returns the stock motion settings
func DefaultConfig() Config {
	return Config{
		MinLatitude:     -math.Pi / 2,
		MaxLatitude:     math.Pi / 2,
		AutorotateSpeed: 2 * geometry.TwoPi / 60,
		MoveSpeed:       1,
		Easing:          "inOutSine",
		InitialZoom:     50,
	}
}

// Validate checks ranges and the easing name
func (c Config) Validate() error {
	if c.MinLatitude > c.MaxLatitude {
		return errdefs.Configuration("latitude range [%v, %v] is inverted", c.MinLatitude, c.MaxLatitude)
	}
	if c.MinLatitude < -math.Pi/2 || c.MaxLatitude > math.Pi/2 {
		return errdefs.Configuration("latitude range [%v, %v] exceeds [-π/2, π/2]", c.MinLatitude, c.MaxLatitude)
	}
	if c.MoveSpeed < 0 {
		return errdefs.Configuration("move speed must not be negative, got %v", c.MoveSpeed)
	}
	if c.Easing != "" && !animation.IsEasing(c.Easing) {
		return errdefs.Configuration("unknown easing %q", c.Easing)
	}
	return nil
}

// State is the orientation and zoom owned by the controller
type State struct {
	Position geometry.Position
	// Direction is the look direction last applied by the gyroscope. The
	// renderer derives its own direction from Position otherwise.
	Direction mgl64.Vec3
	Zoom      int
	Source    Source
}

// Option configures a Controller
type Option func(*Controller)

// WithSensor enables gyroscope control
func WithSensor(s Sensor) Option {
	return func(c *Controller) {
		c.sensor = s
	}
}

// WithLogger sets the logger for source changes
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller is the motion source state machine
type Controller struct {
	cfg       Config
	scheduler frame.Scheduler
	animator  *animation.Animator
	bus       *events.Bus
	renderer  Renderer
	sensor    Sensor
	logger    *slog.Logger

	state           State
	animation       *animation.Handle
	autorotate      *frame.Task
	autorotateTimer frame.Timer
	gyroscope       *frame.Task
	dragging        bool
	destroyed       bool
}

// New creates a controller. The initial position is cleaned but no event
// is triggered and nothing is rendered.
func New(cfg Config, s frame.Scheduler, bus *events.Bus, r Renderer, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Easing == "" {
		cfg.Easing = DefaultConfig().Easing
	}

	c := &Controller{
		cfg:       cfg,
		scheduler: s,
		animator:  animation.New(s),
		bus:       bus,
		renderer:  r,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state.Position = c.clean(cfg.Initial)
	c.state.Direction = geometry.ToDirection(c.state.Position.Longitude, c.state.Position.Latitude)
	c.state.Zoom = geometry.ClampZoom(float64(cfg.InitialZoom))
	return c, nil
}

// State returns a copy of the current state
func (c *Controller) State() State {
	s := c.state
	if s.Source == None && c.dragging {
		s.Source = ManualDrag
	}
	return s
}

// Position returns the current orientation
func (c *Controller) Position() geometry.Position {
	return c.state.Position
}

// Zoom returns the current zoom level
func (c *Controller) Zoom() int {
	return c.state.Zoom
}

// Source returns the active motion source
func (c *Controller) Source() Source {
	return c.State().Source
}

// HasSensor reports whether gyroscope control is available
func (c *Controller) HasSensor() bool {
	return c.sensor != nil
}

// IsAutorotateEnabled reports whether the autorotate loop is running
func (c *Controller) IsAutorotateEnabled() bool {
	return c.autorotate.Active()
}

// IsGyroscopeEnabled reports whether the gyroscope loop is running
func (c *Controller) IsGyroscopeEnabled() bool {
	return c.gyroscope.Active()
}

// IsAnimating reports whether an animated rotation is in flight
func (c *Controller) IsAnimating() bool {
	return c.animation.Running()
}

// Clean normalizes the longitude and clamps the latitude to the configured
// range
func (c *Controller) Clean(pos geometry.Position) geometry.Position {
	return c.clean(pos)
}

func (c *Controller) clean(pos geometry.Position) geometry.Position {
	return geometry.Position{
		Longitude: geometry.NormalizeLongitude(pos.Longitude),
		Latitude:  geometry.ClampLatitude(pos.Latitude, c.cfg.MinLatitude, c.cfg.MaxLatitude),
	}
}

// Rotate moves the camera immediately. The motion source is unchanged.
func (c *Controller) Rotate(pos geometry.Position) {
	if c.destroyed {
		return
	}

	c.state.Position = c.clean(pos)
	c.renderer.Render(true)
	c.bus.Trigger(events.PositionUpdated, c.state.Position)
}

// AnimateTo stops every motion source and rotates to pos over the given
// timing, along the shortest longitude arc. Immediate timing, or a computed
// duration of zero, rotates without animation.
func (c *Controller) AnimateTo(pos geometry.Position, timing Timing) error {
	if c.destroyed {
		return errdefs.ErrDestroyed
	}
	if err := timing.validate(); err != nil {
		return err
	}

	c.StopAll()

	if timing.IsImmediate() {
		c.Rotate(pos)
		return nil
	}

	target := c.clean(pos)
	from := c.state.Position

	duration := timing.durationFor(from, target)
	if duration <= 0 {
		c.Rotate(target)
		return nil
	}

	var h *animation.Handle
	h, err := c.animator.Start(animation.Config{
		Properties: map[string]animation.Property{
			"longitude": {Start: from.Longitude, End: from.Longitude + geometry.ShortestLongitudeDelta(from.Longitude, target.Longitude)},
			"latitude":  {Start: from.Latitude, End: target.Latitude},
		},
		Duration: duration,
		Easing:   c.cfg.Easing,
		OnTick: func(v animation.Values) {
			c.Rotate(geometry.NewPosition(v["longitude"], v["latitude"]))
		},
		OnDone: func() {
			// A tick handler may already have started another animation
			if c.animation == h {
				c.finishAnimation()
			}
		},
	})
	if err != nil {
		return err
	}

	c.animation = h
	c.setSource(AnimatedRotate)
	return nil
}

func (c *Controller) finishAnimation() {
	c.animation = nil
	if c.state.Source == AnimatedRotate {
		c.setSource(None)
	}
}

// StopAnimation cancels the animated rotation, if any
func (c *Controller) StopAnimation() {
	if c.animation == nil {
		return
	}
	c.animation.Cancel()
	c.finishAnimation()
}

// StartAutorotate stops every other source and starts turning the camera
func (c *Controller) StartAutorotate() {
	if c.destroyed {
		return
	}
	c.StopAll()

	var last time.Duration
	started := false

	c.autorotate = frame.Repeat(c.scheduler, func(now time.Duration) {
		// The first frame only sets the timing baseline
		if !started {
			started = true
			last = now
			return
		}
		elapsed := now - last
		last = now

		pos := c.state.Position
		c.Rotate(geometry.Position{
			Longitude: pos.Longitude + c.cfg.AutorotateSpeed*elapsed.Seconds(),
			Latitude:  pos.Latitude - (pos.Latitude-c.cfg.AutorotateLatitude)/200,
		})
	})
	c.setSource(Autorotate)
	c.bus.Trigger(events.Autorotate, true)
}

// StopAutorotate stops the autorotate loop and cancels a pending delayed
// start
func (c *Controller) StopAutorotate() {
	c.cancelAutorotateTimer()

	if !c.autorotate.Active() {
		return
	}
	c.autorotate.Stop()
	c.autorotate = nil
	if c.state.Source == Autorotate {
		c.setSource(None)
	}
	c.bus.Trigger(events.Autorotate, false)
}

// ToggleAutorotate starts autorotate when stopped and stops it when running
func (c *Controller) ToggleAutorotate() {
	if c.IsAutorotateEnabled() {
		c.StopAutorotate()
	} else {
		c.StartAutorotate()
	}
}

// ScheduleAutorotate starts autorotate once delay has elapsed, unless
// another motion stops it first. A previous pending start is replaced.
func (c *Controller) ScheduleAutorotate(delay time.Duration) {
	if c.destroyed {
		return
	}
	c.cancelAutorotateTimer()
	c.autorotateTimer = c.scheduler.AfterFunc(delay, func() {
		c.autorotateTimer = nil
		c.StartAutorotate()
	})
}

// AutorotatePending reports whether a delayed start is waiting
func (c *Controller) AutorotatePending() bool {
	return c.autorotateTimer != nil
}

func (c *Controller) cancelAutorotateTimer() {
	if c.autorotateTimer != nil {
		c.autorotateTimer.Stop()
		c.autorotateTimer = nil
	}
}

// StartGyroscopeControl stops every other source and follows the sensor.
// The first reading is applied immediately.
func (c *Controller) StartGyroscopeControl() error {
	if c.destroyed {
		return errdefs.ErrDestroyed
	}
	if c.sensor == nil {
		return errdefs.Configuration("gyroscope control needs an orientation sensor")
	}

	c.StopAll()

	c.followSensor()
	c.gyroscope = frame.Repeat(c.scheduler, func(time.Duration) {
		c.followSensor()
	})
	c.setSource(Gyroscope)
	c.bus.Trigger(events.GyroscopeUpdated, true)
	return nil
}

func (c *Controller) followSensor() {
	direction := c.sensor.CurrentDirection()
	c.state.Direction = direction
	// Sensor data is applied as is, without latitude clamping
	c.state.Position = geometry.ToSpherical(direction)
	c.renderer.Render(false)
}

// StopGyroscopeControl stops following the sensor and renders once
func (c *Controller) StopGyroscopeControl() {
	if !c.gyroscope.Active() {
		return
	}
	c.gyroscope.Stop()
	c.gyroscope = nil
	if c.state.Source == Gyroscope {
		c.setSource(None)
	}
	c.bus.Trigger(events.GyroscopeUpdated, false)
	c.renderer.Render(true)
}

// ToggleGyroscopeControl starts or stops gyroscope control
func (c *Controller) ToggleGyroscopeControl() error {
	if c.IsGyroscopeEnabled() {
		c.StopGyroscopeControl()
		return nil
	}
	return c.StartGyroscopeControl()
}

// StopAll stops autorotate, the animated rotation and the gyroscope
func (c *Controller) StopAll() {
	c.StopAutorotate()
	c.StopAnimation()
	c.StopGyroscopeControl()
}

// SetZoom rounds and clamps level to [0, 100], renders and triggers
// zoom-updated. NaN is ignored.
func (c *Controller) SetZoom(level float64) {
	if c.destroyed || math.IsNaN(level) {
		return
	}
	c.state.Zoom = geometry.ClampZoom(level)
	c.renderer.Render(true)
	c.bus.Trigger(events.ZoomUpdated, c.state.Zoom)
}

// ZoomIn increases the zoom level by one
func (c *Controller) ZoomIn() {
	if c.state.Zoom < geometry.MaxZoom {
		c.SetZoom(float64(c.state.Zoom + 1))
	}
}

// ZoomOut decreases the zoom level by one
func (c *Controller) ZoomOut() {
	if c.state.Zoom > geometry.MinZoom {
		c.SetZoom(float64(c.state.Zoom - 1))
	}
}

// ZoomBy changes the zoom level by delta, as for a scroll wheel
func (c *Controller) ZoomBy(delta float64) {
	if delta == 0 {
		return
	}
	c.SetZoom(float64(c.state.Zoom) + delta)
}

// StartDrag begins manual rotation. It stops autorotate and the animated
// rotation and is refused while the gyroscope drives the camera.
func (c *Controller) StartDrag() bool {
	if c.destroyed || c.gyroscope.Active() {
		return false
	}
	c.StopAutorotate()
	c.StopAnimation()
	c.dragging = true
	return true
}

// Drag rotates by a pointer movement in pixels
func (c *Controller) Drag(dx, dy float64) {
	if !c.dragging {
		return
	}
	step := c.cfg.MoveSpeed * dragRadiansPerPixel
	pos := c.state.Position
	c.Rotate(geometry.Position{
		Longitude: pos.Longitude - dx*step,
		Latitude:  pos.Latitude + dy*step,
	})
}

// EndDrag ends manual rotation
func (c *Controller) EndDrag() {
	c.dragging = false
}

// IsDragging reports whether a manual drag is in progress
func (c *Controller) IsDragging() bool {
	return c.dragging
}

// Destroy stops every source. Afterwards all methods are no-ops.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.StopAll()
	c.dragging = false
	c.destroyed = true
}

func (c *Controller) setSource(s Source) {
	if c.state.Source == s {
		return
	}
	c.logger.Debug("motion source changed", "from", c.state.Source, "to", s)
	c.state.Source = s
}
