package viewer

import (
	"context"
	"errors"
	"image"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/events"
	"github.com/philipparndt/gopano/pkg/frame"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/motion"
	"github.com/philipparndt/gopano/pkg/panorama"
)

const frameTime = 16 * time.Millisecond

type memoryLoader struct{}

func (memoryLoader) LoadMetadata(_ context.Context, path string) (panorama.Metadata, error) {
	if path == "missing.jpg" {
		return panorama.Metadata{}, errors.New("not found")
	}
	return panorama.Metadata{Width: 8, Height: 4, PanoData: geometry.FullPanoData(8, 4)}, nil
}

func (memoryLoader) LoadTexture(_ context.Context, path string, meta panorama.Metadata) (*panorama.Texture, error) {
	return &panorama.Texture{Path: path, Image: image.NewRGBA(image.Rect(0, 0, 8, 4)), PanoData: meta.PanoData}, nil
}

type harness struct {
	sched *frame.Manual
	views []View
	v     *Viewer
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()

	h := &harness{sched: frame.NewManual()}
	opts = append([]Option{
		WithScheduler(h.sched),
		WithLoader(memoryLoader{}),
		WithSurface(SurfaceFunc(func(v View) { h.views = append(h.views, v) })),
	}, opts...)

	v, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(v.Destroy)
	h.v = v
	return h
}

func (h *harness) wait(t *testing.T, req *panorama.Request) error {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.sched.Step(frameTime)
		select {
		case <-req.Done():
			return req.Err()
		default:
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("load of %s did not complete", req.Path())
	return nil
}

func (h *harness) lastView(t *testing.T) View {
	t.Helper()
	if len(h.views) == 0 {
		t.Fatal("nothing was drawn")
	}
	return h.views[len(h.views)-1]
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinFOV = cfg.MaxFOV + 1
	if _, err := New(cfg, WithScheduler(frame.NewManual())); !errors.Is(err, errdefs.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestLoadWithoutPanorama(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	if _, err := h.v.Load(context.Background()); !errors.Is(err, errdefs.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestFirstLoadIsReady(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Panorama = "a.jpg"
	cfg.TimeAnim = Duration(time.Second)
	h := newHarness(t, cfg)

	ready := 0
	h.v.On(events.Ready, events.Func(func(...any) { ready++ }))

	req, err := h.v.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := h.wait(t, req); err != nil {
		t.Fatal(err)
	}

	if ready != 1 || !h.v.IsReady() {
		t.Fatalf("ready triggered %d times", ready)
	}
	if !h.v.controller.AutorotatePending() {
		t.Fatal("autorotate must be scheduled after the first load")
	}
	if len(h.views) == 0 {
		t.Error("the loaded panorama was not drawn")
	}

	// a second load does not trigger ready again
	req, _ = h.v.SetPanorama(context.Background(), "b.jpg")
	if err := h.wait(t, req); err != nil {
		t.Fatal(err)
	}
	if ready != 1 {
		t.Errorf("ready triggered %d times", ready)
	}
	if h.v.Config().Panorama != "b.jpg" {
		t.Errorf("config panorama %q", h.v.Config().Panorama)
	}

	h.sched.RunUntil(h.v.IsAutorotateEnabled, frameTime, 100)
	if !h.v.IsAutorotateEnabled() {
		t.Error("autorotate did not start after the idle delay")
	}
}

func TestDragCancelsDelayedAutorotate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Panorama = "a.jpg"
	h := newHarness(t, cfg)

	req, _ := h.v.Load(context.Background())
	if err := h.wait(t, req); err != nil {
		t.Fatal(err)
	}
	if !h.v.StartDrag() {
		t.Fatal("drag refused")
	}
	h.v.Drag(10, 0)
	h.v.EndDrag()

	for i := 0; i < 200; i++ {
		h.sched.Step(frameTime)
	}
	if h.v.IsAutorotateEnabled() {
		t.Error("autorotate started although the user dragged")
	}
}

func TestSetPanoramaWithPositionStopsAutorotate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeAnim = 0
	h := newHarness(t, cfg)

	first, _ := h.v.SetPanorama(context.Background(), "a.jpg")
	if err := h.wait(t, first); err != nil {
		t.Fatal(err)
	}

	h.v.StartAutorotate()
	for i := 0; i < 5; i++ {
		h.sched.Step(frameTime)
	}

	req, err := h.v.SetPanorama(context.Background(), "b.jpg", panorama.WithPosition(geometry.NewPosition(1, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if h.v.IsAutorotateEnabled() {
		t.Fatal("autorotate must stop when the panorama switch is requested")
	}
	if err := h.wait(t, req); err != nil {
		t.Fatal(err)
	}

	if pos := h.v.Position(); pos != geometry.NewPosition(1, 0) {
		t.Errorf("position %v", pos)
	}
	if h.v.Source() != motion.None {
		t.Errorf("source %v", h.v.Source())
	}
}

func TestRenderDerivesViewFromState(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(t, cfg)

	h.v.Rotate(geometry.NewPosition(math.Pi/2, 0.25))
	view := h.lastView(t)

	want := geometry.ToDirection(math.Pi/2, 0.25)
	if !view.Direction.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("direction %v, want %v", view.Direction, want)
	}
	if math.Abs(view.FOV-cfg.FieldOfView(50)) > 1e-12 {
		t.Errorf("fov %v", view.FOV)
	}

	// the view matrix maps the look direction onto -Z
	eye := view.ViewMatrix.Mul4x1(view.Direction.Vec4(0)).Vec3()
	if !eye.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-9) {
		t.Errorf("view matrix maps direction to %v", eye)
	}

	h.v.Zoom(100)
	if view := h.lastView(t); math.Abs(view.FOV-float64(cfg.MinFOV)) > 1e-12 || view.Zoom != 100 {
		t.Errorf("zoom 100 gives fov %v", view.FOV)
	}
}

func TestGyroscopeRenderKeepsSensorDirection(t *testing.T) {
	tilted := mgl64.Vec3{0.3, 0.5, 0.8}.Normalize()
	h := newHarness(t, DefaultConfig(), WithSensor(motion.SensorFunc(func() mgl64.Vec3 { return tilted })))

	if err := h.v.StartGyroscopeControl(); err != nil {
		t.Fatal(err)
	}
	view := h.lastView(t)
	if view.Direction != tilted {
		t.Errorf("direction %v, want the sensor reading %v", view.Direction, tilted)
	}

	h.v.StopGyroscopeControl()
	view = h.lastView(t)
	pos := h.v.Position()
	if !view.Direction.ApproxEqualThreshold(geometry.ToDirection(pos.Longitude, pos.Latitude), 1e-12) {
		t.Error("stopping the gyroscope must re-derive the direction")
	}
}

func TestGyroscopeWithoutSensor(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	if err := h.v.StartGyroscopeControl(); !errors.Is(err, errdefs.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestResize(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	var sizes []Size
	h.v.On(events.SizeUpdated, events.Func(func(args ...any) {
		sizes = append(sizes, args[0].(Size))
	}))

	if err := h.v.Resize(0, 10); !errors.Is(err, errdefs.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
	if err := h.v.Resize(320, 200); err != nil {
		t.Fatal(err)
	}
	if err := h.v.Resize(320, 200); err != nil {
		t.Fatal(err)
	}

	if len(sizes) != 1 || sizes[0] != (Size{Width: 320, Height: 200}) {
		t.Errorf("size events %v", sizes)
	}
	if view := h.lastView(t); view.Width != 320 || view.Height != 200 {
		t.Errorf("view size %dx%d", view.Width, view.Height)
	}
}

func TestWheelUsesFactor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MousewheelFactor = 3
	h := newHarness(t, cfg)

	h.v.Wheel(2)
	if h.v.ZoomLevel() != 56 {
		t.Errorf("zoom %d", h.v.ZoomLevel())
	}
}

func TestLoadFailureKeepsViewer(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	req, _ := h.v.SetPanorama(context.Background(), "missing.jpg")
	if err := h.wait(t, req); !errors.Is(err, errdefs.ErrLoad) {
		t.Fatalf("expected load error, got %v", err)
	}
	if h.v.IsReady() {
		t.Error("a failed load must not make the viewer ready")
	}
}

func TestDestroy(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	renders := 0
	h.v.On(events.Render, events.Func(func(...any) { renders++ }))

	h.v.StartAutorotate()
	h.v.Destroy()
	h.v.Destroy()

	if !h.v.IsDestroyed() || h.v.IsAutorotateEnabled() {
		t.Fatal("destroy must stop all motion")
	}
	if h.sched.Pending() != 0 {
		t.Errorf("%d frame callbacks left", h.sched.Pending())
	}

	if _, err := h.v.SetPanorama(context.Background(), "a.jpg"); !errors.Is(err, errdefs.ErrDestroyed) {
		t.Errorf("SetPanorama: %v", err)
	}
	if err := h.v.Animate(geometry.Position{}, motion.Over(time.Second)); !errors.Is(err, errdefs.ErrDestroyed) {
		t.Errorf("Animate: %v", err)
	}

	before := len(h.views)
	h.v.Rotate(geometry.NewPosition(1, 0))
	h.v.Zoom(10)
	if len(h.views) != before || renders != 0 {
		t.Error("a destroyed viewer must not draw")
	}
}
