package frame

import "time"

// Task is a repeating per-frame callback. It keeps requesting frames until
// Stop is called, either from outside or from within the callback.
type Task struct {
	scheduler Scheduler
	fn        Callback
	id        ID
	active    bool
}

// Repeat starts calling fn once per frame, beginning with the next frame
func Repeat(s Scheduler, fn Callback) *Task {
	t := &Task{scheduler: s, fn: fn, active: true}
	t.id = s.RequestFrame(t.tick)
	return t
}

func (t *Task) tick(now time.Duration) {
	// A callback taken for the current frame can outlive Stop
	if !t.active {
		return
	}
	t.fn(now)
	if t.active {
		t.id = t.scheduler.RequestFrame(t.tick)
	}
}

// Stop cancels the pending frame and prevents further calls. Safe to call
// more than once.
func (t *Task) Stop() {
	if t == nil || !t.active {
		return
	}
	t.active = false
	t.scheduler.CancelFrame(t.id)
}

// Active reports whether the task is still repeating
func (t *Task) Active() bool {
	return t != nil && t.active
}
