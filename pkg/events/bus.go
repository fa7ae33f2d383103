// Package events implements the synchronous publish/subscribe bus the viewer
// uses to notify observers of state changes.
package events

import "sync"

// Namespace prefixes event names delivered to dispatch-object handlers
const Namespace = "pano:"

// Event names emitted by the viewer
const (
	Render           = "render"
	PositionUpdated  = "position-updated"
	ZoomUpdated      = "zoom-updated"
	Autorotate       = "autorotate"
	GyroscopeUpdated = "gyroscope-updated"
	PanoramaLoaded   = "panorama-loaded"
	Ready            = "ready"
	SizeUpdated      = "size-updated"
)

// Event is what a dispatch-object handler receives
type Event struct {
	Type string
	Args []any
}

// Name returns the event name without the namespace
func (e Event) Name() string {
	if len(e.Type) >= len(Namespace) && e.Type[:len(Namespace)] == Namespace {
		return e.Type[len(Namespace):]
	}
	return e.Type
}

// Handler is either a *CallableHandler or a *DispatchObjectHandler
type Handler interface {
	invoke(name string, args []any)
}

// CallableHandler invokes a function with the trigger arguments
type CallableHandler struct {
	fn func(args ...any)
}

// Func wraps a function as a handler. Keep the returned handler to remove
// it later; functions cannot be compared.
func Func(fn func(args ...any)) *CallableHandler {
	return &CallableHandler{fn: fn}
}

func (h *CallableHandler) invoke(_ string, args []any) {
	h.fn(args...)
}

// Dispatcher is implemented by observers that handle all events in one place
type Dispatcher interface {
	HandleEvent(e Event)
}

// DispatchObjectHandler delivers events to a Dispatcher
type DispatchObjectHandler struct {
	target Dispatcher
}

// Object wraps a Dispatcher as a handler
func Object(d Dispatcher) *DispatchObjectHandler {
	return &DispatchObjectHandler{target: d}
}

func (h *DispatchObjectHandler) invoke(name string, args []any) {
	h.target.HandleEvent(Event{Type: Namespace + name, Args: args})
}

// Bus maps event names to ordered handler lists
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// On appends a handler for name. Registering the same handler twice makes
// it run twice.
func (b *Bus) On(name string, h Handler) *Bus {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[name] = append(b.handlers[name], h)
	return b
}

// Off removes the first registration of h for name. Dispatch-object
// handlers also match another wrapper of the same target.
func (b *Bus) Off(name string, h Handler) *Bus {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[name]
	for i, registered := range list {
		if sameHandler(registered, h) {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}

	if len(list) == 0 {
		delete(b.handlers, name)
	} else {
		b.handlers[name] = list
	}
	return b
}

// Trigger calls every handler registered for name, in registration order,
// before returning. Handlers added or removed during the call take effect
// from the next trigger. Panics in handlers are not recovered.
func (b *Bus) Trigger(name string, args ...any) {
	b.mu.Lock()
	list := b.handlers[name]
	b.mu.Unlock()

	// Off copies before removing, so list is a stable snapshot
	for _, h := range list {
		h.invoke(name, args)
	}
}

// Count returns the number of handlers registered for name
func (b *Bus) Count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[name])
}

// Clear removes every handler
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string][]Handler)
}

func sameHandler(a, b Handler) bool {
	if a == b {
		return true
	}
	da, ok := a.(*DispatchObjectHandler)
	if !ok {
		return false
	}
	db, ok := b.(*DispatchObjectHandler)
	return ok && da.target == db.target
}
