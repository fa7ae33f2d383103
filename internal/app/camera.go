package app

import (
	"math"
	"time"

	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/motion"
)

// presetDuration is how long jumping to a preset view takes
const presetDuration = 600 * time.Millisecond

// keyStep is how far one arrow key press turns, in radians
const keyStep = math.Pi / 36

// The functions below run on the frame loop.

// resetView returns to the configured start position and zoom
func (app *App) resetView() {
	app.animateTo(geometry.NewPosition(float64(app.cfg.DefaultLongitude), float64(app.cfg.DefaultLatitude)))
	app.viewer.Zoom(float64(app.cfg.InitialZoom()))
}

// setTopView looks straight up
func (app *App) setTopView() {
	app.animateTo(geometry.NewPosition(app.viewer.Position().Longitude, math.Pi/2))
}

// setBottomView looks straight down
func (app *App) setBottomView() {
	app.animateTo(geometry.NewPosition(app.viewer.Position().Longitude, -math.Pi/2))
}

// setFrontView looks at the center of the panorama
func (app *App) setFrontView() {
	app.animateTo(geometry.NewPosition(0, 0))
}

// setBackView looks at the seam of the panorama
func (app *App) setBackView() {
	app.animateTo(geometry.NewPosition(math.Pi, 0))
}

// setLeftView looks a quarter turn to the left
func (app *App) setLeftView() {
	app.animateTo(geometry.NewPosition(3*math.Pi/2, 0))
}

// setRightView looks a quarter turn to the right
func (app *App) setRightView() {
	app.animateTo(geometry.NewPosition(math.Pi/2, 0))
}

// turn rotates by a step immediately
func (app *App) turn(dLon, dLat float64) {
	pos := app.viewer.Position()
	app.viewer.Rotate(geometry.Position{
		Longitude: pos.Longitude + dLon,
		Latitude:  pos.Latitude + dLat,
	})
}

func (app *App) animateTo(pos geometry.Position) {
	if err := app.viewer.Animate(pos, motion.Over(presetDuration)); err != nil {
		app.logger.Warn("failed to animate", "error", err)
	}
}
