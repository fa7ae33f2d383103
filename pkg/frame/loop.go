package frame

import (
	"sync"
	"time"
)

// Loop is a real-time Scheduler driven by a ticker
type Loop struct {
	queue
	interval time.Duration
	start    time.Time
	quit     chan struct{}
	quitOnce sync.Once // Ensures quit is only closed once
	done     chan struct{}
}

// NewLoop creates a loop running frames at the given rate
func NewLoop(fps float64) *Loop {
	if fps <= 0 {
		fps = 60
	}
	return &Loop{
		queue:    newQueue(),
		interval: time.Duration(float64(time.Second) / fps),
		start:    time.Now(),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Now returns the wall-clock time since the loop was created
func (l *Loop) Now() time.Duration {
	return time.Since(l.start)
}

// AfterFunc runs fn on the loop after d
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.fire() {
				fn()
			}
		})
	})
	return t
}

// Run processes frames and posted tasks until Quit is called
func (l *Loop) Run() {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.quit:
			return
		case <-l.wake:
			l.runPosted()
		case <-ticker.C:
			l.runPosted()
			l.runFrame(l.Now())
		}
	}
}

// Start runs the loop on its own goroutine
func (l *Loop) Start() {
	go l.Run()
}

// Quit stops the loop. Safe to call more than once.
func (l *Loop) Quit() {
	l.quitOnce.Do(func() {
		close(l.quit)
	})
}

// Done is closed once Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

type loopTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fired   bool
}

// fire marks the timer as fired and reports whether the callback may run
func (t *loopTimer) fire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.fired = true
	return true
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}
