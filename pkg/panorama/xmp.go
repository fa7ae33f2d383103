package panorama

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/philipparndt/gopano/pkg/geometry"
)

var (
	xmpStart = []byte("<x:xmpmeta")
	xmpEnd   = []byte("</x:xmpmeta>")
)

// GPano fields either appear as attributes (GPano:Foo="1") or as elements
// (<GPano:Foo>1</GPano:Foo>)
func gpanoPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`GPano:` + name + `(?:="(\d+)"|>(\d+)<)`)
}

var gpanoFields = struct {
	fullWidth, fullHeight, croppedWidth, croppedHeight, croppedX, croppedY *regexp.Regexp
}{
	fullWidth:     gpanoPattern("FullPanoWidthPixels"),
	fullHeight:    gpanoPattern("FullPanoHeightPixels"),
	croppedWidth:  gpanoPattern("CroppedAreaImageWidthPixels"),
	croppedHeight: gpanoPattern("CroppedAreaImageHeightPixels"),
	croppedX:      gpanoPattern("CroppedAreaLeftPixels"),
	croppedY:      gpanoPattern("CroppedAreaTopPixels"),
}

// extractXMP returns the first XMP packet in data, or nil
func extractXMP(data []byte) []byte {
	start := bytes.Index(data, xmpStart)
	if start < 0 {
		return nil
	}
	end := bytes.Index(data[start:], xmpEnd)
	if end < 0 {
		return nil
	}
	return data[start : start+end+len(xmpEnd)]
}

// parsePanoData reads GPano cropping data from an XMP packet. Missing or
// inconsistent data yields ok == false and the caller falls back to treating
// the image as a full panorama.
func parsePanoData(xmp []byte) (geometry.PanoData, bool) {
	if len(xmp) == 0 {
		return geometry.PanoData{}, false
	}

	var pd geometry.PanoData
	fields := []struct {
		re  *regexp.Regexp
		dst *int
	}{
		{gpanoFields.fullWidth, &pd.FullWidth},
		{gpanoFields.fullHeight, &pd.FullHeight},
		{gpanoFields.croppedWidth, &pd.CroppedWidth},
		{gpanoFields.croppedHeight, &pd.CroppedHeight},
		{gpanoFields.croppedX, &pd.CroppedX},
		{gpanoFields.croppedY, &pd.CroppedY},
	}
	for _, f := range fields {
		v, ok := gpanoValue(f.re, xmp)
		if !ok {
			return geometry.PanoData{}, false
		}
		*f.dst = v
	}

	if pd.FullWidth <= 0 || pd.FullHeight <= 0 || pd.CroppedWidth <= 0 || pd.CroppedHeight <= 0 {
		return geometry.PanoData{}, false
	}
	if pd.CroppedX+pd.CroppedWidth > pd.FullWidth || pd.CroppedY+pd.CroppedHeight > pd.FullHeight {
		return geometry.PanoData{}, false
	}
	return pd, true
}

func gpanoValue(re *regexp.Regexp, xmp []byte) (int, bool) {
	m := re.FindSubmatch(xmp)
	if m == nil {
		return 0, false
	}
	raw := m[1]
	if len(raw) == 0 {
		raw = m[2]
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

// scalePanoData adapts pano data to a texture that was resized from the
// cropped image size to width x height
func scalePanoData(pd geometry.PanoData, width, height int) geometry.PanoData {
	if pd.CroppedWidth == width && pd.CroppedHeight == height {
		return pd
	}
	sx := float64(width) / float64(pd.CroppedWidth)
	sy := float64(height) / float64(pd.CroppedHeight)
	return geometry.PanoData{
		FullWidth:     int(float64(pd.FullWidth)*sx + 0.5),
		FullHeight:    int(float64(pd.FullHeight)*sy + 0.5),
		CroppedWidth:  width,
		CroppedHeight: height,
		CroppedX:      int(float64(pd.CroppedX)*sx + 0.5),
		CroppedY:      int(float64(pd.CroppedY)*sy + 0.5),
	}
}
