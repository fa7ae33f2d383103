package geometry

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/gopano/pkg/errdefs"
)

var (
	anglePattern = regexp.MustCompile(`^(-?[0-9]+(?:\.[0-9]+)?)\s*(deg|degs|degrees?|°|rad|rads|radians?)?$`)
	speedPattern = regexp.MustCompile(`^(-?[0-9]+(?:\.[0-9]+)?)\s*([a-z ]+)$`)
)

// ParseAngle parses an angle like "90deg", "45°", "1.5rad" or a bare number of
// radians.
func ParseAngle(s string) (float64, error) {
	match := anglePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if match == nil {
		return 0, errdefs.InvalidArgument("unknown angle %q", s)
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, errdefs.InvalidArgument("unknown angle %q", s)
	}

	switch match[2] {
	case "deg", "degs", "degree", "degrees", "°":
		return mgl64.DegToRad(value), nil
	default:
		return value, nil
	}
}

// ParseSpeed parses an angular speed like "2rpm", "10dps" or
// "0.5 radians per second" and returns it in radians per second.
func ParseSpeed(s string) (float64, error) {
	match := speedPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if match == nil {
		return 0, errdefs.InvalidArgument("unknown speed %q", s)
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, errdefs.InvalidArgument("unknown speed %q", s)
	}

	unit := strings.Join(strings.Fields(match[2]), " ")

	var perUnit float64
	switch unit {
	case "dpm", "degrees per minute", "dps", "degrees per second":
		perUnit = mgl64.DegToRad(value)
	case "radians per minute", "radians per second":
		perUnit = value
	case "rpm", "revolutions per minute", "rps", "revolutions per second":
		perUnit = value * TwoPi
	default:
		return 0, errdefs.InvalidArgument("unknown speed unit %q", match[2])
	}

	if strings.HasSuffix(unit, "pm") || strings.HasSuffix(unit, "per minute") {
		return perUnit / 60, nil
	}
	return perUnit, nil
}
