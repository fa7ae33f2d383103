package geometry

import "math"

// PanoData describes how an image maps onto the full sphere. Cropped
// panoramas only cover part of it, starting at the cropped offsets.
type PanoData struct {
	FullWidth     int `yaml:"full_width"`
	FullHeight    int `yaml:"full_height"`
	CroppedWidth  int `yaml:"cropped_width"`
	CroppedHeight int `yaml:"cropped_height"`
	CroppedX      int `yaml:"cropped_x"`
	CroppedY      int `yaml:"cropped_y"`
}

// FullPanoData describes an uncropped image of the given size
func FullPanoData(width, height int) PanoData {
	return PanoData{
		FullWidth:     width,
		FullHeight:    height,
		CroppedWidth:  width,
		CroppedHeight: height,
	}
}

// IsCropped reports whether the image covers less than the full sphere
func (p PanoData) IsCropped() bool {
	return p.CroppedWidth != p.FullWidth || p.CroppedHeight != p.FullHeight
}

// TextureToSpherical converts a pixel position of the cropped image to an
// orientation. The horizontal center of the full panorama faces longitude 0.
func (p PanoData) TextureToSpherical(x, y float64) Position {
	relX := (x + float64(p.CroppedX)) / float64(p.FullWidth) * TwoPi
	relY := (y + float64(p.CroppedY)) / float64(p.FullHeight) * math.Pi

	longitude := relX + math.Pi
	if relX >= math.Pi {
		longitude = relX - math.Pi
	}

	return Position{
		Longitude: longitude,
		Latitude:  math.Pi/2 - relY,
	}
}

// SphericalToTexture is the inverse of TextureToSpherical. It returns
// fractional pixel coordinates of the cropped image, which may lie outside
// of it.
func (p PanoData) SphericalToTexture(pos Position) (float64, float64) {
	relX := NormalizeLongitude(pos.Longitude+math.Pi) / TwoPi
	relY := (math.Pi/2 - pos.Latitude) / math.Pi

	return relX*float64(p.FullWidth) - float64(p.CroppedX),
		relY*float64(p.FullHeight) - float64(p.CroppedY)
}
