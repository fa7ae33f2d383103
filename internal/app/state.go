package app

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/viewer"
	"github.com/philipparndt/gopano/pkg/watcher"
)

// ViewState mirrors the viewer state shown in the info panel. It is written
// on the fyne thread only.
type ViewState struct {
	position   geometry.Position
	zoom       int
	fov        float64
	autorotate bool
	gyroscope  bool
	ready      bool
}

// FileWatchState holds file watching state
type FileWatchState struct {
	fileWatcher *watcher.FileWatcher
	sourceFile  string
	reloads     int
}

// UIState holds the widgets the app updates
type UIState struct {
	window     fyne.Window
	panorama   *panoramaWidget
	progress   *widget.ProgressBarInfinite
	file       *widget.Label
	position   *widget.Label
	zoom       *widget.Label
	status     *widget.Label
	autorotate *widget.Check
	loading    int
}

// App is the desktop panorama viewer
type App struct {
	viewer *viewer.Viewer
	cfg    viewer.Config
	watch  bool
	logger *slog.Logger

	View      ViewState
	FileWatch FileWatchState
	UI        UIState
}
