package main

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/philipparndt/gopano/pkg/frame"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/panorama"
	"github.com/philipparndt/gopano/pkg/viewer"
)

// loadTimeout bounds decoding a panorama
const loadTimeout = 2 * time.Minute

// headless drives a viewer with a manual clock so every frame is
// deterministic and no window is needed
type headless struct {
	viewer *viewer.Viewer
	clock  *frame.Manual
	frame  time.Duration
}

func newHeadless(cfg viewer.Config, fps int) (*headless, error) {
	clock := frame.NewManual()
	v, err := viewer.New(cfg, viewer.WithScheduler(clock), viewer.WithLogger(newLogger()))
	if err != nil {
		return nil, err
	}
	if fps <= 0 {
		fps = 30
	}
	return &headless{viewer: v, clock: clock, frame: time.Second / time.Duration(fps)}, nil
}

// load shows path without a cross-fade and waits until it is committed
func (h *headless) load(path string, opts ...panorama.RequestOption) error {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	opts = append([]panorama.RequestOption{panorama.WithTransition(false)}, opts...)
	req, err := h.viewer.SetPanorama(ctx, path, opts...)
	if err != nil {
		return err
	}
	// Loader goroutines post their results to the clock, so keep running
	// posted tasks until the request is done
	for {
		h.clock.RunPosted()
		select {
		case <-req.Done():
			return req.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

// step advances one frame
func (h *headless) step() {
	h.clock.Step(h.frame)
}

// snapshot returns the last rendered frame
func (h *headless) snapshot() (*image.RGBA, error) {
	img := h.viewer.RasterSurface().Snapshot()
	if img == nil {
		return nil, fmt.Errorf("nothing was rendered")
	}
	return img, nil
}

func (h *headless) close() {
	h.viewer.Destroy()
}

// parsePosition parses "longitude,latitude" with angles as accepted by
// geometry.ParseAngle
func parsePosition(s string) (geometry.Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geometry.Position{}, fmt.Errorf("position %q: expected longitude,latitude", s)
	}
	lon, err := geometry.ParseAngle(strings.TrimSpace(parts[0]))
	if err != nil {
		return geometry.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	lat, err := geometry.ParseAngle(strings.TrimSpace(parts[1]))
	if err != nil {
		return geometry.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	return geometry.NewPosition(lon, lat), nil
}

// parseTarget parses a view direction for a load. Besides the forms of
// parsePosition it accepts "xpx,ypx", a pixel of the source image.
func parseTarget(s string) (panorama.RequestOption, error) {
	parts := strings.Split(s, ",")
	if len(parts) == 2 {
		x, xOK := strings.CutSuffix(strings.TrimSpace(parts[0]), "px")
		y, yOK := strings.CutSuffix(strings.TrimSpace(parts[1]), "px")
		if xOK && yOK {
			px, errX := strconv.ParseFloat(x, 64)
			py, errY := strconv.ParseFloat(y, 64)
			if errX != nil || errY != nil || px < 0 || py < 0 {
				return nil, fmt.Errorf("position %q: invalid pixel coordinates", s)
			}
			return panorama.WithTexturePosition(px, py), nil
		}
	}

	pos, err := parsePosition(s)
	if err != nil {
		return nil, err
	}
	return panorama.WithPosition(pos), nil
}

// saveImage writes img as PNG or, for .jpg and .jpeg, as JPEG
func saveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
