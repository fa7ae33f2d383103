package panorama

import (
	"context"

	"github.com/philipparndt/gopano/pkg/geometry"
)

// Request tracks one SetPanorama call
type Request struct {
	path       string
	position   *geometry.Position
	transition bool

	// texturePosition is resolved into position once the metadata is known
	texturePosition *[2]float64

	generation        uint64
	useTransition     bool
	rotatedDuringFade bool
	indicator         LoadingIndicator
	cancel            context.CancelFunc

	// stage and err are only touched on the frame loop; done publishes err
	stage Stage
	err   error
	done  chan struct{}
}

// Path returns the requested panorama
func (r *Request) Path() string {
	return r.path
}

// Position returns the requested target position, if any. A target given
// in texture pixels is only known once the metadata was loaded.
func (r *Request) Position() (geometry.Position, bool) {
	if r.position == nil {
		return geometry.Position{}, false
	}
	return *r.position, true
}

// resolveTexturePosition converts a pixel target to an orientation using the
// panorama's projection. Call it on the frame loop.
func (r *Request) resolveTexturePosition(meta Metadata) {
	if r.texturePosition == nil {
		return
	}
	pano := meta.PanoData
	if pano.FullWidth <= 0 || pano.FullHeight <= 0 {
		pano = geometry.FullPanoData(meta.Width, meta.Height)
	}
	pos := pano.TextureToSpherical(r.texturePosition[0], r.texturePosition[1])
	r.position = &pos
	r.texturePosition = nil
}

// Transition reports whether the request cross-fades
func (r *Request) Transition() bool {
	return r.useTransition
}

// Stage returns the current stage. Call it on the frame loop.
func (r *Request) Stage() Stage {
	return r.stage
}

// Done is closed once the request completed
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Err returns the outcome once Done is closed
func (r *Request) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the request completed or ctx ends. It must not be called
// from the frame loop.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Request) finished() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *Request) releaseIndicator() {
	if r.indicator != nil {
		r.indicator.Destroy()
		r.indicator = nil
	}
}

func (r *Request) complete(err error) {
	if r.finished() {
		return
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.stage = Idle
	r.err = err
	close(r.done)
}
