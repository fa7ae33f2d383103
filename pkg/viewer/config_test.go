package viewer

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/philipparndt/gopano/pkg/errdefs"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.InitialZoom() != 50 {
		t.Errorf("initial zoom %d", cfg.InitialZoom())
	}
	speed, _ := cfg.autorotateSpeed()
	if math.Abs(speed-2*2*math.Pi/60) > 1e-12 {
		t.Errorf("autorotate speed %v", speed)
	}
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
panorama: sphere.jpg
default_longitude: 90deg
default_latitude: -0.2
latitude_range: [-45deg, 45deg]
min_fov: 20deg
max_fov: 100deg
default_fov: 60deg
anim_speed: 10dps
time_anim: 500
easing: outCubic
transition:
  duration: 2s
  loader: false
  rotate_during_fade: true
size:
  width: 320
  height: 240
`)

	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	if cfg.Panorama != "sphere.jpg" {
		t.Errorf("panorama %q", cfg.Panorama)
	}
	if math.Abs(float64(cfg.DefaultLongitude)-math.Pi/2) > 1e-12 || cfg.DefaultLatitude != -0.2 {
		t.Errorf("default position %v %v", cfg.DefaultLongitude, cfg.DefaultLatitude)
	}
	if math.Abs(float64(cfg.LatitudeRange[1])-math.Pi/4) > 1e-12 {
		t.Errorf("latitude range %v", cfg.LatitudeRange)
	}
	if time.Duration(cfg.TimeAnim) != 500*time.Millisecond {
		t.Errorf("time_anim %v", time.Duration(cfg.TimeAnim))
	}
	if cfg.Transition == nil || time.Duration(cfg.Transition.Duration) != 2*time.Second || cfg.Transition.Loader || !cfg.Transition.RotateDuringFade {
		t.Errorf("transition %+v", cfg.Transition)
	}
	// unset keys keep their defaults
	if cfg.Transition.Easing != "outQuad" || !cfg.UseXMPData || cfg.MoveSpeed != 1 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if zoom := cfg.InitialZoom(); zoom != 50 {
		t.Errorf("60° between 20° and 100° is zoom 50, got %d", zoom)
	}

	mc := cfg.motionConfig()
	if mc.AutorotateLatitude != -0.2 {
		t.Errorf("autorotate latitude falls back to the default latitude, got %v", mc.AutorotateLatitude)
	}
	if mc.Easing != "outCubic" {
		t.Errorf("easing %q", mc.Easing)
	}
}

func TestParseConfigDisablesTransition(t *testing.T) {
	cfg, err := ParseConfig([]byte("transition: null\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Transition != nil || cfg.sequencerConfig().Transition != nil {
		t.Error("null transition must disable cross-fades")
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad angle", "default_longitude: north\n"},
		{"bad duration", "time_anim: soon\n"},
		{"bad speed", "anim_speed: fast\n"},
		{"bad easing", "easing: wobbly\n"},
		{"inverted fov", "min_fov: 90deg\nmax_fov: 30deg\n"},
		{"inverted latitude", "latitude_range: [1, -1]\n"},
		{"zero transition", "transition:\n  duration: 0\n"},
		{"bad size", "size:\n  width: 0\n"},
		{"not yaml", "size: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.data)); !errors.Is(err, errdefs.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	if err := os.WriteFile(path, []byte("panorama: x.jpg\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Panorama != "x.jpg" {
		t.Errorf("panorama %q", cfg.Panorama)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not exist, got %v", err)
	}
}
