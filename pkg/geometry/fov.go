package geometry

import "math"

const (
	// MinZoom shows the widest field of view
	MinZoom = 0
	// MaxZoom shows the narrowest field of view
	MaxZoom = 100
)

// ClampZoom rounds a zoom level to the nearest integer in [MinZoom, MaxZoom].
// NaN maps to MinZoom.
func ClampZoom(level float64) int {
	if math.IsNaN(level) {
		return MinZoom
	}
	rounded := math.Round(level)
	if rounded < MinZoom {
		return MinZoom
	}
	if rounded > MaxZoom {
		return MaxZoom
	}
	return int(rounded)
}

// FieldOfView maps a zoom level to a vertical field of view. Zoom 0 gives
// maxFOV and zoom 100 gives minFOV; the unit follows the inputs.
func FieldOfView(zoom int, minFOV, maxFOV float64) float64 {
	return maxFOV + float64(zoom)/MaxZoom*(minFOV-maxFOV)
}

// ZoomForFOV is the inverse of FieldOfView, rounded and clamped
func ZoomForFOV(fov, minFOV, maxFOV float64) int {
	if maxFOV == minFOV {
		return MinZoom
	}
	return ClampZoom(MaxZoom - math.Round((fov-minFOV)/(maxFOV-minFOV)*MaxZoom))
}
