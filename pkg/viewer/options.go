package viewer

import (
	"log/slog"

	"github.com/philipparndt/gopano/pkg/frame"
	"github.com/philipparndt/gopano/pkg/motion"
	"github.com/philipparndt/gopano/pkg/panorama"
)

// Option configures a Viewer
type Option func(*options)

type options struct {
	surface   Surface
	scene     panorama.Scene
	loader    panorama.Loader
	sensor    motion.Sensor
	scheduler frame.Scheduler
	indicator panorama.IndicatorFactory
	logger    *slog.Logger
}

// WithSurface draws frames on s instead of the built-in raster surface
func WithSurface(s Surface) Option {
	return func(o *options) {
		o.surface = s
	}
}

// WithScene replaces the raster scene receiving loaded textures. Use it
// together with WithSurface.
func WithScene(s panorama.Scene) Option {
	return func(o *options) {
		o.scene = s
	}
}

// WithLoader replaces the file loader
func WithLoader(l panorama.Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

// WithSensor enables gyroscope control
func WithSensor(s motion.Sensor) Option {
	return func(o *options) {
		o.sensor = s
	}
}

// WithScheduler runs the viewer on s. The default is a 60 fps frame.Loop
// that the viewer starts and stops itself.
func WithScheduler(s frame.Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithLoadingIndicator shows an indicator while panoramas load
func WithLoadingIndicator(f panorama.IndicatorFactory) Option {
	return func(o *options) {
		o.indicator = f
	}
}

// WithLogger sets the logger for the viewer and its components
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
