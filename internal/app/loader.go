package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"

	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/panorama"
	"github.com/philipparndt/gopano/pkg/watcher"
)

// openPanorama switches to path. keepView keeps the current orientation
// and autorotate, which reloads of an edited file want. Safe to call from
// any goroutine.
func (app *App) openPanorama(path string, keepView bool) {
	app.viewer.Do(func() {
		start := time.Now()
		req, resume, err := app.requestPanorama(path, keepView)
		if err != nil {
			app.showError(err)
			return
		}
		go app.awaitPanorama(req, start, resume)
	})
}

// requestPanorama starts the load on the frame loop. A target position stops
// all motion, so it also reports whether autorotate has to be resumed.
func (app *App) requestPanorama(path string, keepView bool) (*panorama.Request, bool, error) {
	var opts []panorama.RequestOption
	resume := false
	if keepView {
		opts = append(opts, panorama.WithPosition(app.viewer.Position()))
		resume = app.viewer.IsAutorotateEnabled()
	}

	req, err := app.viewer.SetPanorama(context.Background(), path, opts...)
	if err != nil {
		return nil, false, err
	}
	return req, resume, nil
}

// resumeAutorotate runs on the frame loop after a reload
func (app *App) resumeAutorotate() {
	if !app.viewer.IsAutorotateEnabled() {
		app.viewer.StartAutorotate()
	}
}

func (app *App) awaitPanorama(req *panorama.Request, start time.Time, resume bool) {
	err := req.Wait(context.Background())
	switch {
	case errors.Is(err, errdefs.ErrSuperseded), errors.Is(err, errdefs.ErrDestroyed):
		return
	case err != nil:
		app.showError(err)
		return
	}

	path := req.Path()
	app.logger.Info("panorama loaded", "path", path, "duration", time.Since(start))
	if resume {
		app.viewer.Do(app.resumeAutorotate)
	}
	fyne.Do(func() {
		app.FileWatch.sourceFile = path
		app.UI.file.SetText(filepath.Base(path))
		app.UI.window.SetTitle(fmt.Sprintf("gopano - %s", filepath.Base(path)))
	})
	if app.watch {
		app.watchFile(path)
	}
}

// setupFileWatcher creates the watcher used to reload edited panoramas
func (app *App) setupFileWatcher() error {
	fw, err := watcher.NewFileWatcher(500*time.Millisecond, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw.Start()
	app.FileWatch.fileWatcher = fw
	return nil
}

// watchFile makes path the only watched file
func (app *App) watchFile(path string) {
	fw := app.FileWatch.fileWatcher
	if fw == nil {
		return
	}
	if err := fw.RemoveAll(); err != nil {
		app.logger.Warn("failed to stop watching", "error", err)
	}

	callback := func(changedFile string) {
		app.logger.Info("file changed", "path", changedFile)
		fyne.Do(func() {
			app.FileWatch.reloads++
		})
		app.openPanorama(changedFile, true)
	}
	if err := fw.Watch([]string{path}, callback); err != nil {
		app.logger.Warn("failed to watch file", "path", path, "error", err)
		return
	}
	app.logger.Info("watching file for changes", "path", path)
}

// loadingIndicator shows the progress bar while a load is in flight.
// Attach and Destroy run on the frame loop.
type loadingIndicator struct {
	app *App
}

func (app *App) newLoadingIndicator() panorama.LoadingIndicator {
	return &loadingIndicator{app: app}
}

func (l *loadingIndicator) Attach() {
	fyne.Do(func() {
		l.app.UI.loading++
		l.app.UI.progress.Show()
		l.app.UI.progress.Start()
		l.app.UI.status.SetText("Loading...")
	})
}

func (l *loadingIndicator) Destroy() {
	fyne.Do(func() {
		l.app.UI.loading--
		if l.app.UI.loading > 0 {
			return
		}
		l.app.UI.progress.Stop()
		l.app.UI.progress.Hide()
		l.app.UI.status.SetText("")
	})
}
