// Package frame provides the per-frame scheduling the viewer runs on.
//
// All viewer state lives on a single logical loop. Frame callbacks, posted
// tasks and timer callbacks are always executed on that loop, one at a time.
// Other goroutines hand work to the loop with Post.
package frame

import (
	"sync"
	"time"
)

// Callback is invoked once for a requested frame with the scheduler time
type Callback func(now time.Duration)

// ID identifies a requested frame
type ID uint64

// Timer is a cancellable delayed callback
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Scheduler hands out frames, posted tasks and timers on one loop
type Scheduler interface {
	// RequestFrame schedules cb for the next frame. Callbacks requested
	// while a frame is running are deferred to the following frame.
	RequestFrame(cb Callback) ID

	// CancelFrame removes a pending frame request. A callback that was
	// already taken for the running frame still runs.
	CancelFrame(id ID)

	// Post runs fn on the loop as soon as possible. Safe to call from any
	// goroutine.
	Post(fn func())

	// AfterFunc runs fn on the loop once d has elapsed
	AfterFunc(d time.Duration, fn func()) Timer

	// Now returns the time elapsed since the scheduler was created
	Now() time.Duration
}

type frameEntry struct {
	id ID
	cb Callback
}

// queue holds the pending frames and posted tasks shared by both schedulers
type queue struct {
	mu     sync.Mutex
	nextID ID
	frames []frameEntry
	posted []func()
	wake   chan struct{}
}

func newQueue() queue {
	return queue{wake: make(chan struct{}, 1)}
}

func (q *queue) RequestFrame(cb Callback) ID {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	q.frames = append(q.frames, frameEntry{id: q.nextID, cb: cb})
	return q.nextID
}

func (q *queue) CancelFrame(id ID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, entry := range q.frames {
		if entry.id == id {
			q.frames = append(q.frames[:i], q.frames[i+1:]...)
			return
		}
	}
}

func (q *queue) Post(fn func()) {
	q.mu.Lock()
	q.posted = append(q.posted, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pendingFrames returns the number of outstanding frame requests
func (q *queue) pendingFrames() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}

// runPosted drains posted tasks, including tasks posted by the tasks
// themselves. It returns the number of tasks run.
func (q *queue) runPosted() int {
	count := 0
	for {
		q.mu.Lock()
		tasks := q.posted
		q.posted = nil
		q.mu.Unlock()

		if len(tasks) == 0 {
			return count
		}
		for _, task := range tasks {
			task()
			count++
		}
	}
}

// runFrame invokes the callbacks requested before this call
func (q *queue) runFrame(now time.Duration) int {
	q.mu.Lock()
	batch := q.frames
	q.frames = nil
	q.mu.Unlock()

	for _, entry := range batch {
		entry.cb(now)
	}
	return len(batch)
}
