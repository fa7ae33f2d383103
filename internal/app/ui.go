package app

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/philipparndt/gopano/pkg/events"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/version"
)

// buildPanel creates the info panel on the right of the panorama
func (app *App) buildPanel() fyne.CanvasObject {
	app.UI.file = widget.NewLabel("No panorama")
	app.UI.position = widget.NewLabel("")
	app.UI.zoom = widget.NewLabel("")
	app.UI.status = widget.NewLabel("")

	app.UI.autorotate = widget.NewCheck("Autorotate", func(checked bool) {
		if checked == app.View.autorotate {
			return
		}
		app.viewer.Do(func() {
			if checked {
				app.viewer.StartAutorotate()
			} else {
				app.viewer.StopAutorotate()
			}
		})
	})

	openButton := widget.NewButton("Open...", app.showOpenDialog)
	resetButton := widget.NewButton("Reset View", func() {
		app.viewer.Do(app.resetView)
	})
	zoomIn := widget.NewButton("Zoom In", func() {
		app.viewer.Do(app.viewer.ZoomIn)
	})
	zoomOut := widget.NewButton("Zoom Out", func() {
		app.viewer.Do(app.viewer.ZoomOut)
	})

	help := widget.NewLabel("Drag to look around\nWheel or +/- to zoom\nArrows turn, Space autorotates\nHome resets, 1-4 front/back/left/right\nT/B top/bottom")

	panel := container.NewVBox(
		widget.NewLabelWithStyle("Panorama", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		app.UI.file,
		app.UI.status,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("View", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		app.UI.position,
		app.UI.zoom,
		app.UI.autorotate,
		container.NewGridWithColumns(2, zoomIn, zoomOut),
		resetButton,
		openButton,
		widget.NewSeparator(),
		help,
		widget.NewLabel(fmt.Sprintf("v%s", version.GetVersion())),
	)

	scroll := container.NewVScroll(panel)
	scroll.SetMinSize(fyne.NewSize(260, 0))
	app.refreshPanel()
	return scroll
}

// subscribe mirrors viewer events into the panel. Handlers run on the frame
// loop and hand the values over to the fyne thread.
func (app *App) subscribe() {
	app.viewer.On(events.PositionUpdated, events.Func(func(args ...any) {
		pos := args[0].(geometry.Position)
		fyne.Do(func() {
			app.View.position = pos
			app.refreshPanel()
		})
	}))
	app.viewer.On(events.ZoomUpdated, events.Func(func(args ...any) {
		zoom := args[0].(int)
		fov := app.cfg.FieldOfView(zoom)
		fyne.Do(func() {
			app.View.zoom = zoom
			app.View.fov = fov
			app.refreshPanel()
		})
	}))
	app.viewer.On(events.Autorotate, events.Func(func(args ...any) {
		enabled := args[0].(bool)
		fyne.Do(func() {
			app.View.autorotate = enabled
			app.UI.autorotate.SetChecked(enabled)
		})
	}))
	app.viewer.On(events.GyroscopeUpdated, events.Func(func(args ...any) {
		enabled := args[0].(bool)
		fyne.Do(func() {
			app.View.gyroscope = enabled
			app.refreshPanel()
		})
	}))
	app.viewer.On(events.Ready, events.Func(func(...any) {
		fyne.Do(func() {
			app.View.ready = true
		})
	}))
}

func (app *App) refreshPanel() {
	pos := app.View.position
	app.UI.position.SetText(fmt.Sprintf("Longitude: %.1f°\nLatitude: %.1f°",
		mgl64.RadToDeg(pos.Longitude), mgl64.RadToDeg(pos.Latitude)))

	zoomText := fmt.Sprintf("Zoom: %d (FOV %.1f°)", app.View.zoom, mgl64.RadToDeg(app.View.fov))
	if app.View.gyroscope {
		zoomText += "\nGyroscope on"
	}
	app.UI.zoom.SetText(zoomText)
}

// showOpenDialog lets the user pick another panorama
func (app *App) showOpenDialog() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			app.showError(err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		app.openPanorama(path, false)
	}, app.UI.window)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".jpg", ".jpeg", ".png", ".webp", ".tif", ".tiff", ".bmp"}))
	open.Show()
}

// showError reports err in a dialog. Safe to call from any goroutine.
func (app *App) showError(err error) {
	app.logger.Error("panorama viewer error", "error", err)
	fyne.Do(func() {
		dialog.ShowError(err, app.UI.window)
	})
}
