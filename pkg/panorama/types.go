// Package panorama sequences loading a panorama: metadata, then texture,
// then committing it to the scene directly or through a cross-fade.
package panorama

import (
	"context"
	"image"

	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/motion"
)

// Metadata is what is known about a panorama before its pixels are decoded
type Metadata struct {
	Width    int
	Height   int
	Format   string
	PanoData geometry.PanoData
	HasXMP   bool // PanoData came from embedded GPano XMP data
}

// Texture is a decoded panorama ready to be shown
type Texture struct {
	Path     string
	Image    image.Image
	PanoData geometry.PanoData
}

// Loader fetches metadata and textures. Both calls run off the frame loop
// and must honour ctx.
type Loader interface {
	LoadMetadata(ctx context.Context, path string) (Metadata, error)
	LoadTexture(ctx context.Context, path string, meta Metadata) (*Texture, error)
}

// Scene holds the displayed texture
type Scene interface {
	HasContent() bool
	SetTexture(tex *Texture)
	// BeginTransition shows tex on top of the current content, fully
	// transparent
	BeginTransition(tex *Texture)
	SetTransitionOpacity(opacity float64)
	// EndTransition makes the incoming texture the current content
	EndTransition()
}

// Positioner is the part of the motion controller the sequencer drives
type Positioner interface {
	StopAll()
	Rotate(pos geometry.Position)
	AnimateTo(pos geometry.Position, timing motion.Timing) error
}

// LoadingIndicator is shown while a load is in flight
type LoadingIndicator interface {
	Attach()
	Destroy()
}

// IndicatorFactory creates a fresh indicator for one load
type IndicatorFactory func() LoadingIndicator

// Stage is a step of the load pipeline
type Stage int

const (
	Idle Stage = iota
	LoadingMetadata
	LoadingTexture
	Committing
	Transitioning
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingMetadata:
		return "loading-metadata"
	case LoadingTexture:
		return "loading-texture"
	case Committing:
		return "committing"
	case Transitioning:
		return "transitioning"
	default:
		return "unknown"
	}
}
