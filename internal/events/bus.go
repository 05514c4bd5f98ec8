// Package events provides a small synchronous event dispatcher with cancellable payloads.
//
// Listeners for a name run in registration order and receive the same mutable payload.
// After each listener the dispatcher checks the payload's cancellation signal; once set,
// the remaining listeners are skipped and Dispatch returns nil. Listener errors are not
// swallowed: they stop the chain and surface to the caller as a *ListenerError.
package events

import (
	"context"
	"fmt"
	"sync"
)

// Name identifies an event within a Dispatcher.
type Name string

// Cancellable is the contract every dispatched payload satisfies.
type Cancellable interface {
	Cancel()
	Cancelled() bool
}

// Cancellation is embedded in payload structs to satisfy Cancellable.
type Cancellation struct {
	cancelled bool
}

// Cancel marks the payload cancelled for the scope it was dispatched in.
func (c *Cancellation) Cancel() { c.cancelled = true }

// Cancelled reports whether a listener cancelled the payload.
func (c *Cancellation) Cancelled() bool { return c.cancelled }

// Listener handles one dispatched payload.
type Listener[E Cancellable] func(ctx context.Context, evt E) error

// ListenerError reports which listener failed for which event.
type ListenerError struct {
	Event Name
	Index int
	Err   error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %d for %s failed: %v", e.Index, e.Event, e.Err)
}

func (e *ListenerError) Unwrap() error { return e.Err }

type registration[E Cancellable] struct {
	id uint64
	fn Listener[E]
}

// Dispatcher delivers payloads of type E to listeners registered per event name.
type Dispatcher[E Cancellable] struct {
	mu        sync.RWMutex
	listeners map[Name][]registration[E]
	nextID    uint64
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher[E Cancellable]() *Dispatcher[E] {
	return &Dispatcher[E]{listeners: make(map[Name][]registration[E])}
}

// On registers fn for name and returns a function that removes it again.
func (d *Dispatcher[E]) On(name Name, fn Listener[E]) func() {
	if fn == nil {
		return func() {}
	}

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[name] = append(d.listeners[name], registration[E]{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.off(name, id) })
	}
}

func (d *Dispatcher[E]) off(name Name, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	regs := d.listeners[name]
	for i, r := range regs {
		if r.id == id {
			d.listeners[name] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(d.listeners[name]) == 0 {
		delete(d.listeners, name)
	}
}

// Count returns the number of listeners registered for name.
func (d *Dispatcher[E]) Count(name Name) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[name])
}

// Dispatch runs every listener registered for name against evt.
//
// The listener set is snapshotted before the first call, so listeners registered while
// dispatching only see later events.
func (d *Dispatcher[E]) Dispatch(ctx context.Context, name Name, evt E) error {
	d.mu.RLock()
	regs := make([]registration[E], len(d.listeners[name]))
	copy(regs, d.listeners[name])
	d.mu.RUnlock()

	for i, r := range regs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.fn(ctx, evt); err != nil {
			return &ListenerError{Event: name, Index: i, Err: err}
		}
		if evt.Cancelled() {
			return nil
		}
	}
	return nil
}
