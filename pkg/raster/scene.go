// Package raster draws equirectangular panoramas with a software renderer.
package raster

import (
	"image/color"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/philipparndt/gopano/pkg/panorama"
)

// Scene holds the shown texture and the one fading in. It is written on the
// frame loop and read by render workers, hence the lock.
type Scene struct {
	mu       sync.RWMutex
	current  *Texture
	incoming *Texture
	opacity  float64
}

// NewScene creates an empty scene
func NewScene() *Scene {
	return &Scene{}
}

// HasContent reports whether a panorama is shown
func (s *Scene) HasContent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Current returns the shown texture, or nil
func (s *Scene) Current() *Texture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Transitioning reports whether a texture is fading in
func (s *Scene) Transitioning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.incoming != nil
}

// SetTexture replaces the content and drops a pending transition
func (s *Scene) SetTexture(tex *panorama.Texture) {
	t := NewTexture(tex)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = t
	s.incoming = nil
	s.opacity = 0
}

// BeginTransition starts fading in tex
func (s *Scene) BeginTransition(tex *panorama.Texture) {
	t := NewTexture(tex)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.incoming = t
	s.opacity = 0
}

// SetTransitionOpacity sets the opacity of the incoming texture
func (s *Scene) SetTransitionOpacity(opacity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opacity = min(max(opacity, 0), 1)
}

// EndTransition promotes the incoming texture
func (s *Scene) EndTransition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incoming != nil {
		s.current = s.incoming
	}
	s.incoming = nil
	s.opacity = 0
}

// snapshot is an immutable view of the scene for one frame
type snapshot struct {
	current  *Texture
	incoming *Texture
	opacity  float64
}

func (s *Scene) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{current: s.current, incoming: s.incoming, opacity: s.opacity}
}

func (s snapshot) sample(dir mgl64.Vec3) color.RGBA {
	c := Background
	if s.current != nil {
		c = s.current.Sample(dir)
	}
	if s.incoming != nil && s.opacity > 0 {
		c = blend(c, s.incoming.Sample(dir), s.opacity)
	}
	return c
}

var _ panorama.Scene = (*Scene)(nil)
