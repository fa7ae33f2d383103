package animation

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/philipparndt/gopano/pkg/errdefs"
	"github.com/philipparndt/gopano/pkg/frame"
)

func TestAnimatorEndpoints(t *testing.T) {
	sched := frame.NewManual()
	var ticks []float64
	done := 0

	h, err := New(sched).Start(Config{
		Properties: map[string]Property{"v": {Start: 0, End: 100}},
		Duration:   1000 * time.Millisecond,
		Easing:     "inOutSine",
		OnTick:     func(v Values) { ticks = append(ticks, v["v"]) },
		OnDone: func() {
			if len(ticks) == 0 || ticks[len(ticks)-1] != 100 {
				t.Errorf("OnDone must run after the final tick")
			}
			done++
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// First frame fixes the start time: elapsed 0
	sched.Step(16 * time.Millisecond)
	if len(ticks) != 1 || ticks[0] != 0 {
		t.Fatalf("expected first tick value 0, got %v", ticks)
	}

	sched.Step(500 * time.Millisecond)
	sched.Step(500 * time.Millisecond)

	if last := ticks[len(ticks)-1]; last != 100 {
		t.Errorf("expected exact end value 100, got %v", last)
	}
	if done != 1 {
		t.Errorf("expected OnDone once, got %d", done)
	}
	if !h.Finished() || h.Running() {
		t.Errorf("expected finished handle")
	}

	sched.Step(500 * time.Millisecond)
	if done != 1 {
		t.Errorf("OnDone ran again")
	}
	if sched.Pending() != 0 {
		t.Errorf("expected no frames after completion, got %d", sched.Pending())
	}

	select {
	case <-h.Done():
	default:
		t.Errorf("expected Done to be closed")
	}
}

func TestAnimatorLinearMidpoint(t *testing.T) {
	sched := frame.NewManual()
	var values []Values

	_, err := New(sched).Start(Config{
		Properties: map[string]Property{
			"a": {Start: 10, End: 20},
			"b": {Start: 0, End: -4},
		},
		Duration: 200 * time.Millisecond,
		OnTick:   func(v Values) { values = append(values, v) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sched.Step(0)
	sched.Step(100 * time.Millisecond)

	mid := values[1]
	if math.Abs(mid["a"]-15) > 1e-4 || math.Abs(mid["b"]+2) > 1e-4 {
		t.Errorf("expected midpoint (15, -2), got %v", mid)
	}
}

func TestAnimatorSkippedFrames(t *testing.T) {
	sched := frame.NewManual()
	var last float64
	count := 0

	_, err := New(sched).Start(Config{
		Properties: map[string]Property{"v": {Start: 5, End: 9}},
		Duration:   300 * time.Millisecond,
		Easing:     "outQuad",
		OnTick:     func(v Values) { last = v["v"]; count++ },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sched.Step(0)
	// One late frame jumps straight past the end
	sched.Step(2 * time.Second)

	if count != 2 || last != 9 {
		t.Errorf("expected 2 ticks ending at 9, got %d ticks ending at %v", count, last)
	}
}

func TestAnimatorCancel(t *testing.T) {
	sched := frame.NewManual()
	ticks := 0
	doneCalled := false

	h, err := New(sched).Start(Config{
		Properties: map[string]Property{"v": {Start: 0, End: 1}},
		Duration:   time.Second,
		OnTick:     func(Values) { ticks++ },
		OnDone:     func() { doneCalled = true },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sched.Step(10 * time.Millisecond)
	h.Cancel()
	h.Cancel()

	for i := 0; i < 200; i++ {
		sched.Step(10 * time.Millisecond)
	}

	if ticks != 1 {
		t.Errorf("expected no ticks after cancel, got %d", ticks)
	}
	if doneCalled {
		t.Errorf("OnDone must not run after cancel")
	}
	if !h.Cancelled() {
		t.Errorf("expected cancelled handle")
	}
	if sched.Pending() != 0 {
		t.Errorf("expected no pending frames, got %d", sched.Pending())
	}
}

func TestAnimatorCancelAfterCompletion(t *testing.T) {
	sched := frame.NewManual()

	h, _ := New(sched).Start(Config{
		Properties: map[string]Property{"v": {Start: 0, End: 1}},
		Duration:   10 * time.Millisecond,
		OnTick:     func(Values) {},
	})
	sched.Step(0)
	sched.Step(20 * time.Millisecond)

	h.Cancel()
	if !h.Finished() || h.Cancelled() {
		t.Errorf("Cancel after completion must be a no-op")
	}
}

func TestAnimatorCancelFromTick(t *testing.T) {
	sched := frame.NewManual()
	ticks := 0

	var h *Handle
	h, _ = New(sched).Start(Config{
		Properties: map[string]Property{"v": {Start: 0, End: 1}},
		Duration:   time.Second,
		OnTick: func(Values) {
			ticks++
			h.Cancel()
		},
	})

	sched.Step(0)
	sched.Step(10 * time.Millisecond)

	if ticks != 1 {
		t.Errorf("expected 1 tick, got %d", ticks)
	}
	if sched.Pending() != 0 {
		t.Errorf("expected no frame requested after cancel from tick")
	}
}

func TestAnimatorIndependentHandles(t *testing.T) {
	sched := frame.NewManual()
	a := New(sched)
	var first, second float64

	h1, _ := a.Start(Config{
		Properties: map[string]Property{"v": {Start: 0, End: 1}},
		Duration:   100 * time.Millisecond,
		OnTick:     func(v Values) { first = v["v"] },
	})
	_, _ = a.Start(Config{
		Properties: map[string]Property{"v": {Start: 0, End: 2}},
		Duration:   100 * time.Millisecond,
		OnTick:     func(v Values) { second = v["v"] },
	})

	sched.Step(0)
	h1.Cancel()
	sched.Step(200 * time.Millisecond)

	if first != 0 {
		t.Errorf("cancelled animation moved: %v", first)
	}
	if second != 2 {
		t.Errorf("expected the other animation to finish at 2, got %v", second)
	}
}

func TestAnimatorInvalidConfig(t *testing.T) {
	sched := frame.NewManual()
	a := New(sched)
	onTick := func(Values) {}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero duration", Config{Duration: 0, OnTick: onTick}},
		{"negative duration", Config{Duration: -time.Second, OnTick: onTick}},
		{"unknown easing", Config{Duration: time.Second, Easing: "wobbly", OnTick: onTick}},
		{"missing tick", Config{Duration: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := a.Start(tt.cfg)
			if !errors.Is(err, errdefs.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if h != nil {
				t.Errorf("expected nil handle")
			}
		})
	}

	if sched.Pending() != 0 {
		t.Errorf("rejected configs must not schedule frames")
	}
}

func TestEasingsRegistered(t *testing.T) {
	for _, name := range []string{"linear", "inQuad", "outQuad", "inOutQuad", "inSine", "outSine", "inOutSine"} {
		if !IsEasing(name) {
			t.Errorf("expected easing %q to be registered", name)
		}
	}
	if len(Easings()) != len(easings) {
		t.Errorf("Easings must list every registered easing")
	}
}

func TestEasingsMonotonic(t *testing.T) {
	for _, name := range Easings() {
		fn, _ := lookupEasing(name)
		prev := fn(0, 0, 1, 1)
		for i := 1; i <= 100; i++ {
			v := fn(float32(i)/100, 0, 1, 1)
			if v < prev-1e-5 {
				t.Errorf("%s decreases at %d: %v < %v", name, i, v, prev)
				break
			}
			prev = v
		}
	}
}
