package raster

import (
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// rowsPerBand is the unit of work handed to a render worker
const rowsPerBand = 32

// Renderer rasterizes a scene through a camera. Rows are split into bands
// that render in parallel on a worker pool.
type Renderer struct {
	scene *Scene
	pool  worker.DynamicWorkerPool
}

// NewRenderer creates a renderer for scene
func NewRenderer(scene *Scene) *Renderer {
	workers := runtime.NumCPU()
	return &Renderer{
		scene: scene,
		pool:  worker.NewDynamicWorkerPool(workers, workers*4, time.Second),
	}
}

// Scene returns the rendered scene
func (r *Renderer) Scene() *Scene {
	return r.scene
}

// Render draws one frame into dst, which must match the camera size
func (r *Renderer) Render(dst *image.RGBA, cam *Camera) {
	snap := r.scene.snapshot()
	bounds := dst.Bounds()

	// The pool has no per-frame barrier, so each band signals the group
	var wg sync.WaitGroup
	id := 0
	for y0 := bounds.Min.Y; y0 < bounds.Max.Y; y0 += rowsPerBand {
		y1 := min(y0+rowsPerBand, bounds.Max.Y)
		wg.Add(1)
		r.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				renderBand(dst, cam, snap, y0, y1)
				return nil, nil
			},
		})
		id++
	}
	wg.Wait()
}

// Close stops the render workers
func (r *Renderer) Close() {
	r.pool.Stop()
}

func renderBand(dst *image.RGBA, cam *Camera, snap snapshot, y0, y1 int) {
	bounds := dst.Bounds()
	for y := y0; y < y1; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dir := cam.Ray(float64(x-bounds.Min.X)+0.5, float64(y-bounds.Min.Y)+0.5)
			dst.SetRGBA(x, y, snap.sample(dir))
		}
	}
}
