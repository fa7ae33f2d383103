package viewer

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/motion"
	"github.com/philipparndt/gopano/pkg/panorama"
)

// Angle is an angle in radians. In YAML it is either a number of radians or
// a string like "90deg".
type Angle float64

// UnmarshalYAML accepts numbers and angle strings
func (a *Angle) UnmarshalYAML(value *yaml.Node) error {
	if v, err := strconv.ParseFloat(value.Value, 64); err == nil {
		*a = Angle(v)
		return nil
	}
	v, err := geometry.ParseAngle(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*a = Angle(v)
	return nil
}

// Degrees converts to degrees
func (a Angle) Degrees() float64 {
	return mgl64.RadToDeg(float64(a))
}

// Duration is a time.Duration. In YAML it is either a number of
// milliseconds or a string like "1.5s".
type Duration time.Duration

// UnmarshalYAML accepts milliseconds and duration strings
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if ms, err := strconv.ParseFloat(value.Value, 64); err == nil {
		*d = Duration(ms * float64(time.Millisecond))
		return nil
	}
	v, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", value.Line, value.Value)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes durations as strings
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Size is the output size in pixels
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TransitionConfig configures the cross-fade between panoramas
type TransitionConfig struct {
	Duration         Duration `yaml:"duration"`
	Loader           bool     `yaml:"loader"`
	Easing           string   `yaml:"easing"`
	RotateDuringFade bool     `yaml:"rotate_during_fade"`
}

// Config is the viewer configuration
type Config struct {
	Panorama         string   `yaml:"panorama"`
	DefaultLongitude Angle    `yaml:"default_longitude"`
	DefaultLatitude  Angle    `yaml:"default_latitude"`
	LatitudeRange    [2]Angle `yaml:"latitude_range"`
	MinFOV           Angle    `yaml:"min_fov"`
	MaxFOV           Angle    `yaml:"max_fov"`
	// DefaultFOV sets the initial zoom; nil starts at zoom 50
	DefaultFOV *Angle `yaml:"default_fov"`
	AnimSpeed  string `yaml:"anim_speed"`
	// AnimLatitude is where autorotate settles; nil uses DefaultLatitude
	AnimLatitude *Angle `yaml:"anim_latitude"`
	// TimeAnim is the idle delay before autorotate starts; zero disables it
	TimeAnim            Duration          `yaml:"time_anim"`
	MoveSpeed           float64           `yaml:"move_speed"`
	MousewheelFactor    float64           `yaml:"mousewheel_factor"`
	UseXMPData          bool              `yaml:"use_xmp_data"`
	MaxTextureWidth     int               `yaml:"max_texture_width"`
	Easing              string            `yaml:"easing"`
	DropSupersededLoads bool              `yaml:"drop_superseded_loads"`
	Transition          *TransitionConfig `yaml:"transition"`
	Size                Size              `yaml:"size"`
}

// DefaultConfig returns the stock configuration
func DefaultConfig() Config {
	return Config{
		LatitudeRange:    [2]Angle{-math.Pi / 2, math.Pi / 2},
		MinFOV:           Angle(mgl64.DegToRad(30)),
		MaxFOV:           Angle(mgl64.DegToRad(90)),
		AnimSpeed:        "2rpm",
		TimeAnim:         Duration(2 * time.Second),
		MoveSpeed:        1,
		MousewheelFactor: 1,
		UseXMPData:       true,
		MaxTextureWidth:  panorama.DefaultMaxTextureWidth,
		Easing:           "inOutSine",
		Transition: &TransitionConfig{
			Duration: Duration(1500 * time.Millisecond),
			Loader:   true,
			Easing:   "outQuad",
		},
		Size: Size{Width: 800, Height: 600},
	}
}

// LoadConfig reads a YAML file over the defaults
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read viewer config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over the defaults and validates the result
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse viewer config: %v", errdefs.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.MinFOV <= 0 || c.MaxFOV >= math.Pi || c.MinFOV > c.MaxFOV {
		return errdefs.Configuration("field of view range [%.1f°, %.1f°] is invalid", c.MinFOV.Degrees(), c.MaxFOV.Degrees())
	}
	if c.Size.Width <= 0 || c.Size.Height <= 0 {
		return errdefs.Configuration("size %dx%d is invalid", c.Size.Width, c.Size.Height)
	}
	if c.MousewheelFactor < 0 {
		return errdefs.Configuration("mousewheel factor must not be negative")
	}
	if c.MaxTextureWidth < 0 {
		return errdefs.Configuration("max texture width must not be negative")
	}
	if c.TimeAnim < 0 {
		return errdefs.Configuration("time_anim must not be negative")
	}
	if _, err := c.autorotateSpeed(); err != nil {
		return err
	}
	if err := c.motionConfig().Validate(); err != nil {
		return err
	}
	return c.sequencerConfig().Validate()
}

func (c Config) autorotateSpeed() (float64, error) {
	if c.AnimSpeed == "" {
		return 0, nil
	}
	speed, err := geometry.ParseSpeed(c.AnimSpeed)
	if err != nil {
		return 0, fmt.Errorf("%w: anim_speed: %v", errdefs.ErrConfiguration, err)
	}
	return speed, nil
}

// InitialZoom is the zoom level DefaultFOV corresponds to
func (c Config) InitialZoom() int {
	if c.DefaultFOV == nil {
		return 50
	}
	return geometry.ZoomForFOV(float64(*c.DefaultFOV), float64(c.MinFOV), float64(c.MaxFOV))
}

func (c Config) motionConfig() motion.Config {
	speed, _ := c.autorotateSpeed()
	restLatitude := c.DefaultLatitude
	if c.AnimLatitude != nil {
		restLatitude = *c.AnimLatitude
	}
	return motion.Config{
		MinLatitude:        float64(c.LatitudeRange[0]),
		MaxLatitude:        float64(c.LatitudeRange[1]),
		AutorotateSpeed:    speed,
		AutorotateLatitude: float64(restLatitude),
		MoveSpeed:          c.MoveSpeed,
		Easing:             c.Easing,
		Initial:            geometry.NewPosition(float64(c.DefaultLongitude), float64(c.DefaultLatitude)),
		InitialZoom:        c.InitialZoom(),
	}
}

func (c Config) sequencerConfig() panorama.Config {
	cfg := panorama.Config{
		Panorama:       c.Panorama,
		DropSuperseded: c.DropSupersededLoads,
	}
	if c.Transition != nil {
		cfg.Transition = &panorama.TransitionConfig{
			Duration:         time.Duration(c.Transition.Duration),
			Loader:           c.Transition.Loader,
			Easing:           c.Transition.Easing,
			RotateDuringFade: c.Transition.RotateDuringFade,
		}
	}
	return cfg
}

// FieldOfView returns the vertical field of view for a zoom level
func (c Config) FieldOfView(zoom int) float64 {
	return geometry.FieldOfView(zoom, float64(c.MinFOV), float64(c.MaxFOV))
}
