// Package viewer ties the motion controller, the load sequencer and a
// drawing surface into a panorama viewer.
//
// All methods except Do and Scheduler must run on the viewer's frame loop.
// Code on other goroutines hands work to the loop with Do.
package viewer

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/events"
	"github.com/philipparndt/gopano/pkg/frame"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/motion"
	"github.com/philipparndt/gopano/pkg/panorama"
	"github.com/philipparndt/gopano/pkg/raster"
)

const (
	nearPlane = 0.1
	farPlane  = 100
)

// Viewer is a panorama viewer
type Viewer struct {
	cfg        Config
	scheduler  frame.Scheduler
	bus        *events.Bus
	controller *motion.Controller
	sequencer  *panorama.Sequencer
	surface    Surface
	scene      panorama.Scene
	logger     *slog.Logger

	// owned resources released by Destroy
	loop       *frame.Loop
	fileLoader *panorama.FileLoader
	raster     *RasterSurface

	size      Size
	direction mgl64.Vec3
	ready     bool
	destroyed bool
}

// New creates a viewer. Nothing is loaded until Load or SetPanorama.
func New(cfg Config, opts ...Option) (*Viewer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	v := &Viewer{
		cfg:    cfg,
		bus:    events.NewBus(),
		logger: o.logger,
		size:   cfg.Size,
	}
	if v.logger == nil {
		v.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := v.setupSurface(o); err != nil {
		return nil, err
	}

	v.scheduler = o.scheduler
	if v.scheduler == nil {
		v.loop = frame.NewLoop(60)
		v.scheduler = v.loop
	}

	loader := o.loader
	if loader == nil {
		v.fileLoader = panorama.NewFileLoader(panorama.FileLoaderOptions{
			MaxTextureWidth: cfg.MaxTextureWidth,
			UseXMP:          cfg.UseXMPData,
		})
		loader = v.fileLoader
	}

	motionOpts := []motion.Option{motion.WithLogger(v.logger)}
	if o.sensor != nil {
		motionOpts = append(motionOpts, motion.WithSensor(o.sensor))
	}
	controller, err := motion.New(cfg.motionConfig(), v.scheduler, v.bus, motion.RendererFunc(v.render), motionOpts...)
	if err != nil {
		v.release()
		return nil, err
	}
	v.controller = controller
	v.direction = geometry.ToDirection(controller.Position().Longitude, controller.Position().Latitude)

	sequencer, err := panorama.NewSequencer(cfg.sequencerConfig(), panorama.Deps{
		Scheduler:  v.scheduler,
		Loader:     loader,
		Scene:      v.scene,
		Positioner: controller,
		Renderer:   motion.RendererFunc(v.render),
		Bus:        v.bus,
		Indicator:  o.indicator,
		Logger:     v.logger,
	})
	if err != nil {
		v.release()
		return nil, err
	}
	v.sequencer = sequencer

	v.bus.On(events.PanoramaLoaded, events.Func(func(...any) {
		v.onPanoramaLoaded()
	}))

	if v.loop != nil {
		v.loop.Start()
	}
	return v, nil
}

func (v *Viewer) setupSurface(o options) error {
	v.surface = o.surface
	v.scene = o.scene

	if v.surface == nil {
		scene, ok := v.scene.(*raster.Scene)
		if v.scene == nil {
			scene = raster.NewScene()
		} else if !ok {
			return errdefs.Configuration("a custom scene needs a custom surface")
		}
		v.scene = scene
		v.raster = NewRasterSurface(scene)
		v.surface = v.raster
	}
	if v.scene == nil {
		v.scene = raster.NewScene()
	}
	return nil
}

// Do runs fn on the frame loop. It is safe to call from any goroutine.
func (v *Viewer) Do(fn func()) {
	v.scheduler.Post(fn)
}

// Scheduler returns the frame scheduler driving the viewer
func (v *Viewer) Scheduler() frame.Scheduler {
	return v.scheduler
}

// Config returns the configuration the viewer was created with, with the
// panorama path following SetPanorama
func (v *Viewer) Config() Config {
	cfg := v.cfg
	cfg.Panorama = v.sequencer.Panorama()
	return cfg
}

// RasterSurface returns the built-in surface, or nil when WithSurface was
// used
func (v *Viewer) RasterSurface() *RasterSurface {
	return v.raster
}

// Load loads the configured panorama
func (v *Viewer) Load(ctx context.Context) (*panorama.Request, error) {
	if v.destroyed {
		return nil, errdefs.ErrDestroyed
	}
	return v.sequencer.Load(ctx)
}

// SetPanorama loads another panorama
func (v *Viewer) SetPanorama(ctx context.Context, path string, opts ...panorama.RequestOption) (*panorama.Request, error) {
	if v.destroyed {
		return nil, errdefs.ErrDestroyed
	}
	return v.sequencer.SetPanorama(ctx, path, opts...)
}

// Loading reports whether a panorama load is in flight
func (v *Viewer) Loading() bool {
	return v.sequencer.Loading()
}

func (v *Viewer) onPanoramaLoaded() {
	if v.ready {
		return
	}
	v.ready = true
	v.logger.Debug("viewer ready", "panorama", v.sequencer.Panorama())
	v.bus.Trigger(events.Ready)

	if v.cfg.TimeAnim > 0 && v.cfg.AnimSpeed != "" {
		v.controller.ScheduleAutorotate(time.Duration(v.cfg.TimeAnim))
	}
}

// IsReady reports whether a first panorama was shown
func (v *Viewer) IsReady() bool {
	return v.ready
}

// Render draws a frame. With updateDirection false the look direction last
// set by the gyroscope is kept instead of being derived from the position.
// The field of view always follows the zoom level.
func (v *Viewer) Render(updateDirection bool) {
	v.render(updateDirection)
}

func (v *Viewer) render(updateDirection bool) {
	if v.destroyed {
		return
	}

	state := v.controller.State()
	if updateDirection {
		v.direction = geometry.ToDirection(state.Position.Longitude, state.Position.Latitude)
	} else {
		v.direction = state.Direction
	}

	look := geometry.ToSpherical(v.direction)
	up := geometry.ToDirection(look.Longitude, look.Latitude+math.Pi/2)
	fov := v.cfg.FieldOfView(state.Zoom)
	aspect := float64(v.size.Width) / float64(v.size.Height)

	v.surface.Draw(View{
		Position:   state.Position,
		Direction:  v.direction,
		Zoom:       state.Zoom,
		FOV:        fov,
		Width:      v.size.Width,
		Height:     v.size.Height,
		ViewMatrix: mgl64.LookAtV(mgl64.Vec3{}, v.direction, up),
		Projection: mgl64.Perspective(fov, aspect, nearPlane, farPlane),
	})
	v.bus.Trigger(events.Render)
}

// Rotate moves the camera immediately
func (v *Viewer) Rotate(pos geometry.Position) {
	v.controller.Rotate(pos)
}

// Animate rotates to pos with the given timing, stopping other motion
func (v *Viewer) Animate(pos geometry.Position, timing motion.Timing) error {
	if v.destroyed {
		return errdefs.ErrDestroyed
	}
	return v.controller.AnimateTo(pos, timing)
}

// StopAnimation cancels an animated rotation
func (v *Viewer) StopAnimation() {
	v.controller.StopAnimation()
}

// StartAutorotate starts turning the camera
func (v *Viewer) StartAutorotate() {
	v.controller.StartAutorotate()
}

// StopAutorotate stops turning the camera and cancels a delayed start
func (v *Viewer) StopAutorotate() {
	v.controller.StopAutorotate()
}

// ToggleAutorotate toggles autorotate
func (v *Viewer) ToggleAutorotate() {
	v.controller.ToggleAutorotate()
}

// IsAutorotateEnabled reports whether autorotate is running
func (v *Viewer) IsAutorotateEnabled() bool {
	return v.controller.IsAutorotateEnabled()
}

// StartGyroscopeControl follows the orientation sensor
func (v *Viewer) StartGyroscopeControl() error {
	if v.destroyed {
		return errdefs.ErrDestroyed
	}
	return v.controller.StartGyroscopeControl()
}

// StopGyroscopeControl stops following the sensor
func (v *Viewer) StopGyroscopeControl() {
	v.controller.StopGyroscopeControl()
}

// ToggleGyroscopeControl toggles gyroscope control
func (v *Viewer) ToggleGyroscopeControl() error {
	if v.destroyed {
		return errdefs.ErrDestroyed
	}
	return v.controller.ToggleGyroscopeControl()
}

// IsGyroscopeEnabled reports whether the sensor drives the camera
func (v *Viewer) IsGyroscopeEnabled() bool {
	return v.controller.IsGyroscopeEnabled()
}

// StopAll stops every motion source
func (v *Viewer) StopAll() {
	v.controller.StopAll()
}

// Zoom sets the zoom level, rounded and clamped to [0, 100]
func (v *Viewer) Zoom(level float64) {
	v.controller.SetZoom(level)
}

// ZoomIn zooms in one step
func (v *Viewer) ZoomIn() {
	v.controller.ZoomIn()
}

// ZoomOut zooms out one step
func (v *Viewer) ZoomOut() {
	v.controller.ZoomOut()
}

// ZoomBy changes the zoom level by delta
func (v *Viewer) ZoomBy(delta float64) {
	v.controller.ZoomBy(delta)
}

// Wheel zooms by a scroll wheel movement, scaled by the mousewheel factor
func (v *Viewer) Wheel(steps float64) {
	v.controller.ZoomBy(steps * v.cfg.MousewheelFactor)
}

// StartDrag begins a manual rotation
func (v *Viewer) StartDrag() bool {
	return v.controller.StartDrag()
}

// Drag rotates by a pointer movement in pixels
func (v *Viewer) Drag(dx, dy float64) {
	v.controller.Drag(dx, dy)
}

// EndDrag ends a manual rotation
func (v *Viewer) EndDrag() {
	v.controller.EndDrag()
}

// Position returns the camera orientation
func (v *Viewer) Position() geometry.Position {
	return v.controller.Position()
}

// ZoomLevel returns the zoom level
func (v *Viewer) ZoomLevel() int {
	return v.controller.Zoom()
}

// FieldOfView returns the current vertical field of view in radians
func (v *Viewer) FieldOfView() float64 {
	return v.cfg.FieldOfView(v.controller.Zoom())
}

// Source returns the active motion source
func (v *Viewer) Source() motion.Source {
	return v.controller.Source()
}

// State returns the motion state
func (v *Viewer) State() motion.State {
	return v.controller.State()
}

// Size returns the output size
func (v *Viewer) Size() Size {
	return v.size
}

// Resize changes the output size, renders and triggers size-updated
func (v *Viewer) Resize(width, height int) error {
	if v.destroyed {
		return errdefs.ErrDestroyed
	}
	if width <= 0 || height <= 0 {
		return errdefs.InvalidArgument("size %dx%d", width, height)
	}
	if width == v.size.Width && height == v.size.Height {
		return nil
	}
	v.size = Size{Width: width, Height: height}
	v.render(true)
	v.bus.Trigger(events.SizeUpdated, v.size)
	return nil
}

// On registers a handler
func (v *Viewer) On(name string, h events.Handler) *Viewer {
	v.bus.On(name, h)
	return v
}

// Off removes a handler
func (v *Viewer) Off(name string, h events.Handler) *Viewer {
	v.bus.Off(name, h)
	return v
}

// Trigger emits an event to the registered handlers
func (v *Viewer) Trigger(name string, args ...any) {
	v.bus.Trigger(name, args...)
}

// Destroy stops all motion, cancels loads, removes every handler and
// releases owned resources. The viewer is unusable afterwards.
func (v *Viewer) Destroy() {
	if v.destroyed {
		return
	}
	v.controller.Destroy()
	v.sequencer.Destroy()
	v.bus.Clear()
	v.destroyed = true
	v.release()
}

func (v *Viewer) release() {
	if v.fileLoader != nil {
		v.fileLoader.Close()
	}
	if v.raster != nil {
		v.raster.Close()
	}
	if v.loop != nil {
		v.loop.Quit()
	}
}

// IsDestroyed reports whether Destroy was called
func (v *Viewer) IsDestroyed() bool {
	return v.destroyed
}
