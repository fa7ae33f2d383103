package frame

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler with a simulated clock. Time only advances through
// Step, which makes animations reproducible in tests and headless renders.
type Manual struct {
	queue
	clockMu sync.Mutex
	now     time.Duration
	timers  []*manualTimer
	seq     uint64
}

// NewManual creates a manual scheduler at time zero
func NewManual() *Manual {
	return &Manual{queue: newQueue()}
}

// Now returns the simulated time
func (m *Manual) Now() time.Duration {
	m.clockMu.Lock()
	defer m.clockMu.Unlock()
	return m.now
}

// AfterFunc registers fn to run once the simulated clock passes d
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.clockMu.Lock()
	defer m.clockMu.Unlock()

	m.seq++
	t := &manualTimer{owner: m, due: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Step advances the clock by dt, then runs due timers, posted tasks and
// one frame. It returns the number of frame callbacks invoked.
func (m *Manual) Step(dt time.Duration) int {
	m.clockMu.Lock()
	m.now += dt
	now := m.now
	m.clockMu.Unlock()

	m.runTimers(now)
	m.runPosted()
	return m.runFrame(now)
}

// RunPosted runs posted tasks without advancing the clock
func (m *Manual) RunPosted() int {
	return m.runPosted()
}

// RunUntil steps the clock until done reports true or maxFrames steps have
// run. It reports whether done was reached.
func (m *Manual) RunUntil(done func() bool, dt time.Duration, maxFrames int) bool {
	m.runPosted()
	for i := 0; i < maxFrames; i++ {
		if done() {
			return true
		}
		m.Step(dt)
	}
	return done()
}

// Pending returns the number of outstanding frame requests
func (m *Manual) Pending() int {
	return m.pendingFrames()
}

// PendingTimers returns the number of timers that have neither fired nor
// been stopped
func (m *Manual) PendingTimers() int {
	m.clockMu.Lock()
	defer m.clockMu.Unlock()
	return len(m.timers)
}

func (m *Manual) runTimers(now time.Duration) {
	m.clockMu.Lock()
	var due, rest []*manualTimer
	for _, t := range m.timers {
		if t.due <= now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	m.timers = rest
	m.clockMu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	// an earlier callback may stop a later timer of the same batch
	for _, t := range due {
		m.clockMu.Lock()
		stopped := t.stopped
		t.fired = !stopped
		m.clockMu.Unlock()

		if !stopped {
			t.fn()
		}
	}
}

func (m *Manual) stop(t *manualTimer) bool {
	m.clockMu.Lock()
	defer m.clockMu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			break
		}
	}
	return true
}

type manualTimer struct {
	owner *Manual
	due   time.Duration
	seq   uint64
	fn    func()

	// guarded by owner.clockMu
	fired   bool
	stopped bool
}

func (t *manualTimer) Stop() bool {
	return t.owner.stop(t)
}
