package app

import (
	"fyne.io/fyne/v2"
)

// handleKey processes keyboard shortcuts. fyne calls it on its own thread,
// so every action is posted to the frame loop.
func (app *App) handleKey(event *fyne.KeyEvent) {
	var action func()

	switch event.Name {
	case fyne.KeyHome:
		action = app.resetView
	case fyne.KeyT:
		action = app.setTopView
	case fyne.KeyB:
		action = app.setBottomView
	case fyne.Key1:
		action = app.setFrontView
	case fyne.Key2:
		action = app.setBackView
	case fyne.Key3:
		action = app.setLeftView
	case fyne.Key4:
		action = app.setRightView
	case fyne.KeyLeft:
		action = func() { app.turn(-keyStep, 0) }
	case fyne.KeyRight:
		action = func() { app.turn(keyStep, 0) }
	case fyne.KeyUp:
		action = func() { app.turn(0, keyStep) }
	case fyne.KeyDown:
		action = func() { app.turn(0, -keyStep) }
	case fyne.KeySpace:
		action = app.viewer.ToggleAutorotate
	case fyne.KeyG:
		action = func() {
			if err := app.viewer.ToggleGyroscopeControl(); err != nil {
				app.logger.Warn("gyroscope unavailable", "error", err)
			}
		}
	case fyne.KeyEscape:
		action = app.viewer.StopAll
	default:
		return
	}

	app.viewer.Do(action)
}

// handleRune handles zoom keys, which depend on the keyboard layout
func (app *App) handleRune(r rune) {
	switch r {
	case '+', '=':
		app.viewer.Do(app.viewer.ZoomIn)
	case '-':
		app.viewer.Do(app.viewer.ZoomOut)
	}
}
