// Package app is the desktop panorama viewer built on fyne.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/gopano/pkg/viewer"
)

// Options configures the desktop viewer
type Options struct {
	Config viewer.Config
	// Watch reloads the panorama when its file changes on disk
	Watch  bool
	Logger *slog.Logger
}

// Run opens the viewer window and blocks until it is closed
func Run(opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	app := &App{
		cfg:    opts.Config,
		watch:  opts.Watch,
		logger: logger,
	}
	app.View.zoom = opts.Config.InitialZoom()
	app.View.fov = opts.Config.FieldOfView(app.View.zoom)

	v, err := viewer.New(opts.Config,
		viewer.WithLogger(logger),
		viewer.WithLoadingIndicator(app.newLoadingIndicator),
	)
	if err != nil {
		return fmt.Errorf("failed to create viewer: %w", err)
	}
	app.viewer = v

	if app.watch {
		if err := app.setupFileWatcher(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to setup file watcher: %v\n", err)
		}
	}

	a := fyneapp.NewWithID("io.github.philipparndt.gopano")
	w := a.NewWindow("gopano")
	app.UI.window = w

	app.UI.panorama = newPanoramaWidget(v)
	app.UI.panorama.onResize = func(err error) {
		if err != nil {
			logger.Warn("failed to resize viewer", "error", err)
		}
	}
	v.RasterSurface().OnFrame(app.UI.panorama.present)

	app.UI.progress = widget.NewProgressBarInfinite()
	app.UI.progress.Stop()
	app.UI.progress.Hide()

	panel := app.buildPanel()
	app.subscribe()

	w.SetContent(container.NewBorder(nil, app.UI.progress, nil, panel, app.UI.panorama))
	w.Canvas().SetOnTypedKey(app.handleKey)
	w.Canvas().SetOnTypedRune(app.handleRune)
	w.SetOnClosed(app.close)
	w.Resize(fyne.NewSize(1200, 800))

	if opts.Config.Panorama != "" {
		app.openPanorama(opts.Config.Panorama, false)
	}

	w.ShowAndRun()
	return nil
}

// close releases the viewer and the file watcher
func (app *App) close() {
	if app.FileWatch.fileWatcher != nil {
		app.FileWatch.fileWatcher.Close()
	}
	done := make(chan struct{})
	app.viewer.Do(func() {
		app.viewer.Destroy()
		close(done)
	})
	<-done
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
