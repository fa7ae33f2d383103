package panorama

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/philipparndt/gopano/pkg/animation"
	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/events"
	"github.com/philipparndt/gopano/pkg/frame"
	"github.com/philipparndt/gopano/pkg/geometry"
	"github.com/philipparndt/gopano/pkg/motion"
)

// TransitionConfig configures the cross-fade between panoramas
type TransitionConfig struct {
	Duration time.Duration `yaml:"duration"`
	// Loader shows the loading indicator during transition loads
	Loader bool   `yaml:"loader"`
	Easing string `yaml:"easing"`
	// RotateDuringFade animates to the target position while fading
	// instead of rotating once the fade is done
	RotateDuringFade bool `yaml:"rotate_during_fade"`
}

// DefaultTransition returns the stock transition settings
func DefaultTransition() *TransitionConfig {
	return &TransitionConfig{
		Duration: 1500 * time.Millisecond,
		Loader:   true,
		Easing:   "outQuad",
	}
}

// Config configures a Sequencer
type Config struct {
	// Panorama is the path used by Load
	Panorama string
	// Transition enables cross-fades when set
	Transition *TransitionConfig
	// DropSuperseded discards loads that complete after a newer one was
	// requested. When false every load commits and the last one wins.
	DropSuperseded bool
}

// Validate checks the transition settings
func (c Config) Validate() error {
	if c.Transition == nil {
		return nil
	}
	if c.Transition.Duration <= 0 {
		return errdefs.Configuration("transition duration must be positive, got %v", c.Transition.Duration)
	}
	if c.Transition.Easing != "" && !animation.IsEasing(c.Transition.Easing) {
		return errdefs.Configuration("unknown transition easing %q", c.Transition.Easing)
	}
	return nil
}

// RequestOption configures one SetPanorama call
type RequestOption func(*Request)

// WithPosition rotates to pos once the panorama is shown. Ongoing motion is
// stopped when the request is made.
func WithPosition(pos geometry.Position) RequestOption {
	return func(r *Request) {
		r.position = &pos
		r.texturePosition = nil
	}
}

// WithTexturePosition rotates to the pixel (x, y) of the source image once
// the panorama is shown. Cropped panoramas are resolved through their GPano
// data. Ongoing motion is stopped when the request is made.
func WithTexturePosition(x, y float64) RequestOption {
	return func(r *Request) {
		r.texturePosition = &[2]float64{x, y}
		r.position = nil
	}
}

// WithTransition asks for a cross-fade when one is configured and there is
// content to fade from
func WithTransition(enabled bool) RequestOption {
	return func(r *Request) {
		r.transition = enabled
	}
}

// Sequencer runs panorama loads. Its methods must be called on the frame
// loop; the loader runs on its own goroutine and reports back through
// Scheduler.Post.
type Sequencer struct {
	cfg          Config
	scheduler    frame.Scheduler
	animator     *animation.Animator
	loader       Loader
	scene        Scene
	positioner   Positioner
	renderer     motion.Renderer
	bus          *events.Bus
	newIndicator IndicatorFactory
	logger       *slog.Logger

	generation uint64
	latest     *Request
	inflight   map[*Request]struct{}
	fade       *fade
	destroyed  bool
}

type fade struct {
	handle  *animation.Handle
	request *Request
}

// Deps are the collaborators of a Sequencer
type Deps struct {
	Scheduler  frame.Scheduler
	Loader     Loader
	Scene      Scene
	Positioner Positioner
	Renderer   motion.Renderer
	Bus        *events.Bus
	// Indicator is optional
	Indicator IndicatorFactory
	// Logger is optional
	Logger *slog.Logger
}

// NewSequencer creates a sequencer
func NewSequencer(cfg Config, deps Deps) (*Sequencer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Loader == nil || deps.Scene == nil {
		return nil, errdefs.Configuration("a loader and a scene are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Sequencer{
		cfg:          cfg,
		scheduler:    deps.Scheduler,
		animator:     animation.New(deps.Scheduler),
		loader:       deps.Loader,
		scene:        deps.Scene,
		positioner:   deps.Positioner,
		renderer:     deps.Renderer,
		bus:          deps.Bus,
		newIndicator: deps.Indicator,
		logger:       logger,
		inflight:     make(map[*Request]struct{}),
	}, nil
}

// Panorama returns the path of the most recently requested panorama
func (s *Sequencer) Panorama() string {
	return s.cfg.Panorama
}

// Stage returns the stage of the most recent request
func (s *Sequencer) Stage() Stage {
	if s.latest == nil {
		return Idle
	}
	return s.latest.stage
}

// Loading reports whether any request is still in flight
func (s *Sequencer) Loading() bool {
	return len(s.inflight) > 0
}

// Load loads the configured panorama
func (s *Sequencer) Load(ctx context.Context) (*Request, error) {
	if s.cfg.Panorama == "" {
		return nil, errdefs.Configuration("no panorama configured")
	}
	return s.SetPanorama(ctx, s.cfg.Panorama)
}

// SetPanorama starts loading path. The returned request completes once the
// panorama is shown or the load failed.
func (s *Sequencer) SetPanorama(ctx context.Context, path string, opts ...RequestOption) (*Request, error) {
	if s.destroyed {
		return nil, errdefs.ErrDestroyed
	}
	if path == "" {
		return nil, errdefs.Configuration("no panorama path given")
	}

	req := &Request{path: path, done: make(chan struct{})}
	for _, opt := range opts {
		opt(req)
	}

	if (req.position != nil || req.texturePosition != nil) && s.positioner != nil {
		s.positioner.StopAll()
	}

	s.cfg.Panorama = path
	s.generation++
	req.generation = s.generation
	req.useTransition = req.transition && s.cfg.Transition != nil && s.scene.HasContent()
	s.latest = req
	s.inflight[req] = struct{}{}

	if s.newIndicator != nil && (!req.useTransition || s.cfg.Transition.Loader) {
		req.indicator = s.newIndicator()
		req.indicator.Attach()
	}

	ctx, req.cancel = context.WithCancel(ctx)
	req.stage = LoadingMetadata
	s.logger.Debug("loading panorama", "path", path, "generation", req.generation, "transition", req.useTransition)

	go s.fetch(ctx, req)
	return req, nil
}

// fetch runs the loader stages off the loop
func (s *Sequencer) fetch(ctx context.Context, req *Request) {
	meta, err := s.loader.LoadMetadata(ctx, req.path)
	if err != nil {
		s.scheduler.Post(func() { s.fail(req, asLoadError(errdefs.StageMetadata, req.path, err)) })
		return
	}

	s.scheduler.Post(func() {
		if !req.finished() {
			req.stage = LoadingTexture
			req.resolveTexturePosition(meta)
		}
	})

	tex, err := s.loader.LoadTexture(ctx, req.path, meta)
	if err == nil && tex == nil {
		err = errors.New("loader returned no texture")
	}
	if err != nil {
		s.scheduler.Post(func() { s.fail(req, asLoadError(errdefs.StageTexture, req.path, err)) })
		return
	}

	s.scheduler.Post(func() { s.commit(req, tex) })
}

func (s *Sequencer) fail(req *Request, err error) {
	if req.finished() {
		return
	}
	s.logger.Warn("panorama load failed", "path", req.path, "error", err)
	s.finish(req, err)
}

func (s *Sequencer) commit(req *Request, tex *Texture) {
	if req.finished() {
		return
	}
	if s.cfg.DropSuperseded && req.generation != s.generation {
		s.logger.Debug("dropping superseded panorama", "path", req.path, "generation", req.generation)
		s.finish(req, errdefs.ErrSuperseded)
		return
	}

	req.releaseIndicator()

	if req.useTransition {
		s.startFade(req, tex)
		return
	}

	req.stage = Committing
	s.completeFade()
	s.scene.SetTexture(tex)
	s.reposition(req)
	s.bus.Trigger(events.PanoramaLoaded, req.path)
	s.finish(req, nil)
}

func (s *Sequencer) startFade(req *Request, tex *Texture) {
	// A fade still running from an older request is committed at once
	s.completeFade()

	req.stage = Transitioning
	s.scene.BeginTransition(tex)

	transition := s.cfg.Transition
	if req.position != nil && transition.RotateDuringFade && s.positioner != nil {
		if err := s.positioner.AnimateTo(*req.position, motion.Over(transition.Duration)); err != nil {
			s.logger.Warn("rotation during transition failed", "error", err)
		} else {
			req.rotatedDuringFade = true
		}
	}

	handle, err := s.animator.Start(animation.Config{
		Properties: map[string]animation.Property{"opacity": {Start: 0, End: 1}},
		Duration:   transition.Duration,
		Easing:     transition.Easing,
		OnTick: func(v animation.Values) {
			s.scene.SetTransitionOpacity(v["opacity"])
			s.render()
		},
		OnDone: func() {
			s.fade = nil
			s.endFade(req)
		},
	})
	if err != nil {
		// Config was validated, so this only happens for a broken easing
		s.scene.EndTransition()
		s.finish(req, err)
		return
	}
	s.fade = &fade{handle: handle, request: req}
}

func (s *Sequencer) endFade(req *Request) {
	s.scene.EndTransition()
	if req.rotatedDuringFade {
		s.render()
	} else {
		s.reposition(req)
	}
	s.bus.Trigger(events.PanoramaLoaded, req.path)
	s.finish(req, nil)
}

// completeFade jumps a running fade to its end
func (s *Sequencer) completeFade() {
	if s.fade == nil {
		return
	}
	f := s.fade
	s.fade = nil
	f.handle.Cancel()
	s.scene.SetTransitionOpacity(1)
	s.endFade(f.request)
}

func (s *Sequencer) reposition(req *Request) {
	if req.position != nil && s.positioner != nil {
		s.positioner.Rotate(*req.position)
		return
	}
	s.render()
}

func (s *Sequencer) render() {
	if s.renderer != nil {
		s.renderer.Render(true)
	}
}

func (s *Sequencer) finish(req *Request, err error) {
	req.releaseIndicator()
	req.complete(err)
	delete(s.inflight, req)
}

// Destroy cancels every load and fade and releases the loading indicators.
// Pending requests complete with ErrDestroyed.
func (s *Sequencer) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	if s.fade != nil {
		s.fade.handle.Cancel()
		s.fade = nil
	}
	for req := range s.inflight {
		s.finish(req, errdefs.ErrDestroyed)
	}
}

func asLoadError(stage errdefs.Stage, path string, err error) error {
	var loadErr *errdefs.LoadError
	if errors.As(err, &loadErr) {
		return err
	}
	return &errdefs.LoadError{Stage: stage, Path: path, Err: err}
}
