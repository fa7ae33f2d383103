package geometry

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TwoPi is a full turn in radians
const TwoPi = 2 * math.Pi

// Position is a camera orientation on the sphere, in radians
type Position struct {
	Longitude float64 `yaml:"longitude"`
	Latitude  float64 `yaml:"latitude"`
}

// NewPosition creates a new position
func NewPosition(longitude, latitude float64) Position {
	return Position{Longitude: longitude, Latitude: latitude}
}

// String returns a human-readable representation in degrees
func (p Position) String() string {
	return fmt.Sprintf("(lon %.2f°, lat %.2f°)", mgl64.RadToDeg(p.Longitude), mgl64.RadToDeg(p.Latitude))
}

// ToDirection converts spherical coordinates to a unit direction vector.
// Longitude 0 looks down +Z and grows clockwise when seen from above.
func ToDirection(longitude, latitude float64) mgl64.Vec3 {
	cosLat := math.Cos(latitude)
	return mgl64.Vec3{
		-cosLat * math.Sin(longitude),
		math.Sin(latitude),
		cosLat * math.Cos(longitude),
	}
}

// ToSpherical converts a direction vector to spherical coordinates.
// The vector does not need to be normalized. Longitude is in [0, 2π).
func ToSpherical(v mgl64.Vec3) Position {
	theta := math.Atan2(v.X(), v.Z())

	var longitude float64
	if theta < 0 {
		longitude = -theta
	} else {
		longitude = TwoPi - theta
	}
	if longitude >= TwoPi {
		longitude -= TwoPi
	}

	ratio := v.Y() / v.Len()
	// Rounding can push |ratio| slightly above 1
	ratio = math.Max(-1, math.Min(1, ratio))

	return Position{
		Longitude: longitude,
		Latitude:  math.Pi/2 - math.Acos(ratio),
	}
}

// ShortestLongitudeDelta returns the signed longitude change from one angle to
// another that never goes the long way around the sphere. The direct, +2π and
// -2π candidates are tried in that order and the first one with the smallest
// magnitude wins.
func ShortestLongitudeDelta(from, to float64) float64 {
	best := math.Inf(1)
	for _, offset := range [...]float64{0, TwoPi, -TwoPi} {
		candidate := to - from + offset
		if math.Abs(candidate) < math.Abs(best) {
			best = candidate
		}
	}
	if math.IsInf(best, 1) {
		// NaN input never beats +Inf
		return to - from
	}
	return best
}

// ClampLatitude limits a latitude to [min, max] without wrapping
func ClampLatitude(latitude, min, max float64) float64 {
	if latitude < min {
		return min
	}
	if latitude > max {
		return max
	}
	return latitude
}

// NormalizeLongitude wraps a longitude into [0, 2π)
func NormalizeLongitude(longitude float64) float64 {
	longitude = math.Mod(longitude, TwoPi)
	if longitude < 0 {
		longitude += TwoPi
	}
	// -tiny + 2π rounds to 2π
	if longitude >= TwoPi {
		longitude = 0
	}
	return longitude
}

// GreatCircleAngle returns the angle between two orientations using the
// spherical law of cosines.
func GreatCircleAngle(a, b Position) float64 {
	cos := math.Cos(a.Latitude)*math.Cos(b.Latitude)*math.Cos(a.Longitude-b.Longitude) +
		math.Sin(a.Latitude)*math.Sin(b.Latitude)
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}
