package motion

import (
	"math"
	"time"

	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/geometry"
)

// Timing selects how long an animated rotation takes. The zero value
// rotates immediately.
type Timing struct {
	Duration time.Duration
	Speed    float64 // radians per second along the great circle
}

// Immediate rotates without animation
var Immediate = Timing{}

// Over animates for a fixed duration
func Over(d time.Duration) Timing {
	return Timing{Duration: d}
}

// AtSpeed animates at an angular speed in radians per second
func AtSpeed(radiansPerSecond float64) Timing {
	return Timing{Speed: radiansPerSecond}
}

// ParseTiming accepts either a Go duration ("1.5s", "500ms") or a speed
// understood by geometry.ParseSpeed ("2rpm"). An empty string is Immediate.
func ParseTiming(s string) (Timing, error) {
	if s == "" {
		return Immediate, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return Over(d), nil
	}
	speed, err := geometry.ParseSpeed(s)
	if err != nil {
		return Timing{}, err
	}
	return AtSpeed(speed), nil
}

// IsImmediate reports whether no animation was requested
func (t Timing) IsImmediate() bool {
	return t.Duration == 0 && t.Speed == 0
}

func (t Timing) validate() error {
	switch {
	case t.Duration < 0:
		return errdefs.InvalidArgument("negative animation duration %v", t.Duration)
	case math.IsNaN(t.Speed) || math.IsInf(t.Speed, 0) || t.Speed < 0:
		return errdefs.InvalidArgument("invalid animation speed %v", t.Speed)
	case t.Duration > 0 && t.Speed > 0:
		return errdefs.InvalidArgument("animation takes either a duration or a speed, not both")
	}
	return nil
}

// durationFor resolves the animation length between two positions
func (t Timing) durationFor(from, to geometry.Position) time.Duration {
	if t.Duration > 0 {
		return t.Duration
	}
	angle := geometry.GreatCircleAngle(from, to)
	return time.Duration(angle / t.Speed * float64(time.Second))
}
