package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"

	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/panorama"
)

// Background fills directions a cropped panorama does not cover
var Background = color.RGBA{R: 30, G: 30, B: 30, A: 255}

// Texture is an equirectangular image prepared for sampling
type Texture struct {
	path     string
	pix      *image.RGBA
	panoData geometry.PanoData
}

// NewTexture converts a loaded panorama to RGBA
func NewTexture(tex *panorama.Texture) *Texture {
	b := tex.Image.Bounds()
	rgba, ok := tex.Image.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), tex.Image, b.Min, draw.Src)
	}

	pd := tex.PanoData
	if pd.CroppedWidth == 0 || pd.CroppedHeight == 0 {
		pd = geometry.FullPanoData(b.Dx(), b.Dy())
	}
	return &Texture{path: tex.Path, pix: rgba, panoData: pd}
}

// Path returns the source of the texture
func (t *Texture) Path() string {
	return t.path
}

// PanoData returns the sphere mapping of the texture
func (t *Texture) PanoData() geometry.PanoData {
	return t.panoData
}

// Sample returns the bilinearly filtered color seen in direction dir
func (t *Texture) Sample(dir mgl64.Vec3) color.RGBA {
	pos := geometry.ToSpherical(dir)
	x, y := t.panoData.SphericalToTexture(pos)
	return t.sampleAt(x-0.5, y-0.5)
}

func (t *Texture) sampleAt(x, y float64) color.RGBA {
	w := t.panoData.CroppedWidth
	h := t.panoData.CroppedHeight
	if x < -1 || y < -1 || x > float64(w) || y > float64(h) {
		return Background
	}

	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0

	c00 := t.texel(int(x0), int(y0))
	c10 := t.texel(int(x0)+1, int(y0))
	c01 := t.texel(int(x0), int(y0)+1)
	c11 := t.texel(int(x0)+1, int(y0)+1)

	return color.RGBA{
		R: bilinear(c00.R, c10.R, c01.R, c11.R, fx, fy),
		G: bilinear(c00.G, c10.G, c01.G, c11.G, fx, fy),
		B: bilinear(c00.B, c10.B, c01.B, c11.B, fx, fy),
		A: 255,
	}
}

// texel wraps horizontally on full panoramas and clamps otherwise
func (t *Texture) texel(x, y int) color.RGBA {
	w := t.pix.Rect.Dx()
	h := t.pix.Rect.Dy()

	if t.panoData.CroppedWidth == t.panoData.FullWidth {
		x = ((x % w) + w) % w
	} else {
		x = clampInt(x, 0, w-1)
	}
	y = clampInt(y, 0, h-1)

	i := t.pix.PixOffset(x, y)
	return color.RGBA{R: t.pix.Pix[i], G: t.pix.Pix[i+1], B: t.pix.Pix[i+2], A: t.pix.Pix[i+3]}
}

func bilinear(c00, c10, c01, c11 uint8, fx, fy float64) uint8 {
	top := float64(c00)*(1-fx) + float64(c10)*fx
	bottom := float64(c01)*(1-fx) + float64(c11)*fx
	return uint8(top*(1-fy) + bottom*fy + 0.5)
}

func blend(a, b color.RGBA, opacity float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x)*(1-opacity) + float64(y)*opacity + 0.5)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
