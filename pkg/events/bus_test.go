package events

import (
	"testing"
)

type recorder struct {
	events []Event
}

func (r *recorder) HandleEvent(e Event) {
	r.events = append(r.events, e)
}

func TestOnTriggerOrder(t *testing.T) {
	bus := NewBus()
	var order []string

	bus.On("x", Func(func(args ...any) { order = append(order, "a") })).
		On("x", Func(func(args ...any) { order = append(order, "b") }))

	bus.Trigger("x")

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("expected [a b], got %v", order)
	}
}

func TestTriggerPassesArgs(t *testing.T) {
	bus := NewBus()
	var got []any

	bus.On(ZoomUpdated, Func(func(args ...any) { got = args }))
	bus.Trigger(ZoomUpdated, 42, "extra")

	if len(got) != 2 || got[0] != 42 || got[1] != "extra" {
		t.Errorf("expected [42 extra], got %v", got)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	bus := NewBus()
	count := 0
	h := Func(func(args ...any) { count++ })

	bus.On("x", h).On("x", h)
	bus.Trigger("x")
	if count != 2 {
		t.Errorf("expected handler to run twice, got %d", count)
	}

	bus.Off("x", h)
	count = 0
	bus.Trigger("x")
	if count != 1 {
		t.Errorf("expected Off to remove one registration, got %d calls", count)
	}
}

func TestOffRemovesAll(t *testing.T) {
	bus := NewBus()
	called := false
	h := Func(func(args ...any) { called = true })

	bus.On(Render, h)
	bus.Off(Render, h)

	if n := bus.Count(Render); n != 0 {
		t.Errorf("expected 0 handlers, got %d", n)
	}
	bus.Trigger(Render)
	if called {
		t.Errorf("removed handler was invoked")
	}
}

func TestOffUnknown(t *testing.T) {
	bus := NewBus()
	h := Func(func(args ...any) {})

	// Neither may panic
	bus.Off("missing", h)
	bus.On("x", Func(func(args ...any) {}))
	bus.Off("x", h)

	if bus.Count("x") != 1 {
		t.Errorf("expected the unrelated handler to stay registered")
	}
}

func TestDispatchObjectHandler(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}

	bus.On(PositionUpdated, Object(rec))
	bus.Trigger(PositionUpdated, 1.5)

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	e := rec.events[0]
	if e.Type != "pano:position-updated" {
		t.Errorf("expected namespaced type, got %q", e.Type)
	}
	if e.Name() != PositionUpdated {
		t.Errorf("expected name %q, got %q", PositionUpdated, e.Name())
	}
	if len(e.Args) != 1 || e.Args[0] != 1.5 {
		t.Errorf("unexpected args %v", e.Args)
	}

	// A different wrapper of the same target removes the registration
	bus.Off(PositionUpdated, Object(rec))
	if bus.Count(PositionUpdated) != 0 {
		t.Errorf("expected dispatch object to be removed")
	}
}

func TestMixedHandlers(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}
	var order []string

	bus.On("x", Func(func(args ...any) { order = append(order, "func") }))
	bus.On("x", Object(dispatcherFunc(func(e Event) { order = append(order, "object") })))
	bus.On("x", Object(rec))
	bus.Trigger("x")

	if len(order) != 2 || order[0] != "func" || order[1] != "object" {
		t.Errorf("unexpected order %v", order)
	}
	if len(rec.events) != 1 {
		t.Errorf("expected recorder to receive the event")
	}
}

type dispatcherFunc func(e Event)

func (f dispatcherFunc) HandleEvent(e Event) { f(e) }

func TestTriggerUsesSnapshot(t *testing.T) {
	bus := NewBus()
	count := 0
	late := Func(func(args ...any) { count += 10 })

	var first *CallableHandler
	first = Func(func(args ...any) {
		count++
		bus.Off("x", first)
		bus.On("x", late)
	})
	bus.On("x", first)

	bus.Trigger("x")
	if count != 1 {
		t.Errorf("expected changes during trigger to apply next time, got %d", count)
	}

	bus.Trigger("x")
	if count != 11 {
		t.Errorf("expected the late handler on the second trigger, got %d", count)
	}
}

func TestHandlerPanicPropagates(t *testing.T) {
	bus := NewBus()
	bus.On("x", Func(func(args ...any) { panic("boom") }))

	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("expected panic to reach the caller, got %v", r)
		}
	}()
	bus.Trigger("x")
	t.Errorf("Trigger returned normally")
}

func TestClear(t *testing.T) {
	bus := NewBus()
	bus.On("a", Func(func(args ...any) {})).On("b", Object(&recorder{}))
	bus.Clear()

	if bus.Count("a") != 0 || bus.Count("b") != 0 {
		t.Errorf("expected all handlers removed")
	}
}
