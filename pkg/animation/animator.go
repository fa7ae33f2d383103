// Package animation interpolates named float properties over time with an
// easing curve, one frame at a time.
package animation

import (
	"time"

	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/frame"
	"github.com/tanema/gween"
)

// Property is the start and end value of one animated property
type Property struct {
	Start float64
	End   float64
}

// Values maps property names to their current values
type Values map[string]float64

// Config describes one animation
type Config struct {
	Properties map[string]Property
	Duration   time.Duration
	Easing     string       // registered easing name, linear when empty
	OnTick     func(Values) // called every frame with interpolated values
	OnDone     func()       // optional, called once after the final tick
}

// Animator starts animations on a frame scheduler
type Animator struct {
	scheduler frame.Scheduler
}

// New creates an animator bound to a scheduler
func New(s frame.Scheduler) *Animator {
	return &Animator{scheduler: s}
}

// Start validates cfg and schedules its first frame. Nothing is scheduled
// when an error is returned.
func (a *Animator) Start(cfg Config) (*Handle, error) {
	if cfg.Duration <= 0 {
		return nil, errdefs.InvalidArgument("animation duration must be positive, got %v", cfg.Duration)
	}
	if cfg.OnTick == nil {
		return nil, errdefs.InvalidArgument("animation needs an OnTick callback")
	}
	easing, ok := lookupEasing(cfg.Easing)
	if !ok {
		return nil, errdefs.InvalidArgument("unknown easing %q", cfg.Easing)
	}

	props := make(map[string]Property, len(cfg.Properties))
	for name, p := range cfg.Properties {
		props[name] = p
	}

	h := &Handle{
		scheduler:  a.scheduler,
		properties: props,
		progress:   gween.New(0, 1, float32(milliseconds(cfg.Duration)), easing),
		onTick:     cfg.OnTick,
		onDone:     cfg.OnDone,
		done:       make(chan struct{}),
	}
	h.frameID = a.scheduler.RequestFrame(h.tick)
	return h, nil
}

type state int

const (
	running state = iota
	finished
	cancelled
)

// Handle is one running animation
type Handle struct {
	scheduler  frame.Scheduler
	properties map[string]Property
	progress   *gween.Tween
	onTick     func(Values)
	onDone     func()

	frameID frame.ID
	started bool
	start   time.Duration
	state   state
	done    chan struct{}
}

func (h *Handle) tick(now time.Duration) {
	// Cancel cannot retract a callback already taken for this frame
	if h.state != running {
		return
	}

	if !h.started {
		h.started = true
		h.start = now
	}

	eased, isFinished := h.progress.Set(float32(milliseconds(now - h.start)))
	if !isFinished {
		values := make(Values, len(h.properties))
		for name, p := range h.properties {
			values[name] = p.Start + (p.End-p.Start)*float64(eased)
		}
		h.onTick(values)

		if h.state == running {
			h.frameID = h.scheduler.RequestFrame(h.tick)
		}
		return
	}

	h.state = finished
	values := make(Values, len(h.properties))
	for name, p := range h.properties {
		values[name] = p.End
	}
	h.onTick(values)
	close(h.done)
	if h.onDone != nil {
		h.onDone()
	}
}

// Cancel stops the animation without calling OnDone. It does nothing after
// completion or a previous Cancel.
func (h *Handle) Cancel() {
	if h == nil || h.state != running {
		return
	}
	h.state = cancelled
	h.scheduler.CancelFrame(h.frameID)
	close(h.done)
}

// Done is closed when the animation finishes or is cancelled
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Running reports whether more ticks will follow
func (h *Handle) Running() bool {
	return h != nil && h.state == running
}

// Finished reports whether the final tick was delivered
func (h *Handle) Finished() bool {
	return h != nil && h.state == finished
}

// Cancelled reports whether the animation was cancelled
func (h *Handle) Cancelled() bool {
	return h != nil && h.state == cancelled
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
