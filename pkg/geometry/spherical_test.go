package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const tolerance = 1e-10

func TestToDirectionIsUnit(t *testing.T) {
	for lon := 0.0; lon < TwoPi; lon += 0.37 {
		for lat := -math.Pi / 2; lat <= math.Pi/2; lat += 0.29 {
			v := ToDirection(lon, lat)
			if math.Abs(v.Len()-1) > tolerance {
				t.Errorf("ToDirection(%v, %v): expected unit length, got %v", lon, lat, v.Len())
			}
		}
	}
}

func TestToDirectionAxes(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		expected mgl64.Vec3
	}{
		{"front", 0, 0, mgl64.Vec3{0, 0, 1}},
		{"quarter turn", math.Pi / 2, 0, mgl64.Vec3{-1, 0, 0}},
		{"back", math.Pi, 0, mgl64.Vec3{0, 0, -1}},
		{"up", 0, math.Pi / 2, mgl64.Vec3{0, 1, 0}},
		{"down", 0, -math.Pi / 2, mgl64.Vec3{0, -1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDirection(tt.lon, tt.lat)
			if !got.ApproxEqualThreshold(tt.expected, tolerance) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSphericalRoundTrip(t *testing.T) {
	// Poles are excluded: longitude is undefined there
	for lon := 0.0; lon < TwoPi; lon += 0.05 {
		for lat := -math.Pi/2 + 0.01; lat < math.Pi/2; lat += 0.05 {
			got := ToSpherical(ToDirection(lon, lat))

			if math.Abs(ShortestLongitudeDelta(got.Longitude, lon)) > 1e-9 {
				t.Fatalf("longitude round trip: expected %v, got %v", lon, got.Longitude)
			}
			if math.Abs(got.Latitude-lat) > 1e-9 {
				t.Fatalf("latitude round trip: expected %v, got %v", lat, got.Latitude)
			}
			if got.Longitude < 0 || got.Longitude >= TwoPi {
				t.Fatalf("longitude %v out of [0, 2π)", got.Longitude)
			}
		}
	}
}

func TestToSphericalUnnormalized(t *testing.T) {
	got := ToSpherical(mgl64.Vec3{0, 10, 10})

	if math.Abs(got.Latitude-math.Pi/4) > tolerance {
		t.Errorf("expected latitude π/4, got %v", got.Latitude)
	}
	if got.Longitude != 0 {
		t.Errorf("expected longitude 0, got %v", got.Longitude)
	}
}

func TestShortestLongitudeDelta(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		expected float64
	}{
		{"direct", 1, 2, 1},
		{"across zero forward", 6.2, 0.1, 0.1 + TwoPi - 6.2},
		{"across zero backward", 0.1, 6.2, 6.2 - 0.1 - TwoPi},
		{"same", 3, 3, 0},
		{"tie keeps direct", 0, math.Pi, math.Pi},
		{"tie keeps direct negative", math.Pi, 0, -math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortestLongitudeDelta(tt.from, tt.to)
			if math.Abs(got-tt.expected) > tolerance {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestShortestLongitudeDeltaMagnitude(t *testing.T) {
	for a := 0.0; a < TwoPi; a += 0.1 {
		for b := 0.0; b < TwoPi; b += 0.13 {
			if d := ShortestLongitudeDelta(a, b); math.Abs(d) > math.Pi+tolerance {
				t.Fatalf("ShortestLongitudeDelta(%v, %v) = %v exceeds π", a, b, d)
			}
		}
	}
}

func TestNaNPropagates(t *testing.T) {
	if !math.IsNaN(ShortestLongitudeDelta(math.NaN(), 1)) {
		t.Errorf("ShortestLongitudeDelta: expected NaN")
	}
	if !math.IsNaN(ClampLatitude(math.NaN(), -1, 1)) {
		t.Errorf("ClampLatitude: expected NaN")
	}
	if !math.IsNaN(NormalizeLongitude(math.NaN())) {
		t.Errorf("NormalizeLongitude: expected NaN")
	}
	v := ToDirection(math.NaN(), 0)
	if !math.IsNaN(v.X()) {
		t.Errorf("ToDirection: expected NaN component, got %v", v)
	}
}

func TestClampLatitude(t *testing.T) {
	min, max := -math.Pi/4, math.Pi/3

	if got := ClampLatitude(1.5, min, max); got != max {
		t.Errorf("expected %v, got %v", max, got)
	}
	if got := ClampLatitude(-1.5, min, max); got != min {
		t.Errorf("expected %v, got %v", min, got)
	}
	if got := ClampLatitude(0.2, min, max); got != 0.2 {
		t.Errorf("expected 0.2, got %v", got)
	}

	once := ClampLatitude(2, min, max)
	if twice := ClampLatitude(once, min, max); twice != once {
		t.Errorf("clamping must be idempotent: %v != %v", twice, once)
	}
}

func TestNormalizeLongitude(t *testing.T) {
	tests := []struct {
		input, expected float64
	}{
		{0, 0},
		{TwoPi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{-1e-18, 0},
	}

	for _, tt := range tests {
		got := NormalizeLongitude(tt.input)
		if math.Abs(got-tt.expected) > tolerance {
			t.Errorf("NormalizeLongitude(%v): expected %v, got %v", tt.input, tt.expected, got)
		}
		if got < 0 || got >= TwoPi {
			t.Errorf("NormalizeLongitude(%v) = %v out of range", tt.input, got)
		}
	}
}

func TestGreatCircleAngleMatchesS2(t *testing.T) {
	points := []Position{
		{0, 0},
		{1, 0.5},
		{3, -1.2},
		{6.2, 0.1},
		{0.1, 0},
		{math.Pi, math.Pi / 2},
	}

	for _, a := range points {
		for _, b := range points {
			got := GreatCircleAngle(a, b)

			ll1 := s2.LatLng{Lat: s1.Angle(a.Latitude), Lng: s1.Angle(a.Longitude)}
			ll2 := s2.LatLng{Lat: s1.Angle(b.Latitude), Lng: s1.Angle(b.Longitude)}
			expected := ll1.Distance(ll2).Radians()

			if math.Abs(got-expected) > 1e-6 {
				t.Errorf("GreatCircleAngle(%v, %v): expected %v, got %v", a, b, expected, got)
			}
		}
	}
}

func TestGreatCircleAngleIdentical(t *testing.T) {
	p := Position{Longitude: 0.3, Latitude: 0.7}
	if got := GreatCircleAngle(p, p); math.IsNaN(got) || got > 1e-6 {
		t.Errorf("expected 0 for identical positions, got %v", got)
	}
}
