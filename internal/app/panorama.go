package app

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/gopano/pkg/viewer"
)

// wheelStep is the scroll distance fyne reports for one wheel notch
const wheelStep = 10

// panoramaWidget shows the frames of a viewer's raster surface and turns
// pointer input into viewer calls
type panoramaWidget struct {
	widget.BaseWidget
	viewer     *viewer.Viewer
	image      *canvas.Image
	isDragging bool
	onResize   func(err error)
}

func newPanoramaWidget(v *viewer.Viewer) *panoramaWidget {
	w := &panoramaWidget{viewer: v}
	w.image = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	w.image.FillMode = canvas.ImageFillStretch
	w.image.ScaleMode = canvas.ImageScaleFastest
	w.ExtendBaseWidget(w)
	return w
}

// CreateRenderer creates the renderer for the widget
func (w *panoramaWidget) CreateRenderer() fyne.WidgetRenderer {
	return &panoramaWidgetRenderer{widget: w, objects: []fyne.CanvasObject{w.image}}
}

// present shows a finished frame. It is called on the frame loop; the
// frame is copied because the surface reuses its buffers.
func (w *panoramaWidget) present(frame *image.RGBA) {
	img := image.NewRGBA(frame.Rect)
	copy(img.Pix, frame.Pix)
	fyne.Do(func() {
		w.image.Image = img
		w.image.Refresh()
	})
}

// Dragged rotates the panorama with the pointer
func (w *panoramaWidget) Dragged(event *fyne.DragEvent) {
	dx, dy := float64(event.Dragged.DX), float64(event.Dragged.DY)
	start := !w.isDragging
	w.isDragging = true

	w.viewer.Do(func() {
		if start && !w.viewer.StartDrag() {
			return
		}
		w.viewer.Drag(dx, dy)
	})
}

// DragEnd handles the end of a drag event
func (w *panoramaWidget) DragEnd() {
	w.isDragging = false
	w.viewer.Do(w.viewer.EndDrag)
}

// Scrolled zooms with the mouse wheel
func (w *panoramaWidget) Scrolled(event *fyne.ScrollEvent) {
	steps := float64(event.Scrolled.DY) / wheelStep
	w.viewer.Do(func() {
		w.viewer.Wheel(steps)
	})
}

// panoramaWidgetRenderer implements fyne.WidgetRenderer
type panoramaWidgetRenderer struct {
	widget  *panoramaWidget
	objects []fyne.CanvasObject
}

func (r *panoramaWidgetRenderer) Layout(size fyne.Size) {
	r.widget.image.Resize(size)

	width, height := int(size.Width), int(size.Height)
	if width <= 0 || height <= 0 {
		return
	}
	v := r.widget.viewer
	onResize := r.widget.onResize
	v.Do(func() {
		err := v.Resize(width, height)
		if onResize != nil {
			onResize(err)
		}
	})
}

func (r *panoramaWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 200)
}

func (r *panoramaWidgetRenderer) Refresh() {
	canvas.Refresh(r.widget.image)
}

func (r *panoramaWidgetRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *panoramaWidgetRenderer) Destroy() {}
