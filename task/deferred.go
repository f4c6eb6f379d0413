package task

import "sync/atomic"

// deferredState mirrors the settle/await lifecycle of a one-shot value:
// pending until exactly one of Resolve/Reject is called, then fixed.
type deferredState int32

const (
	deferredPending deferredState = iota
	deferredSettled
)

// Deferred is a one-shot producer/consumer of a settled result (§2:
// "Deferred ... one-shot producer/consumer of a settled result"). Exactly
// one of Resolve or Reject may succeed; later calls are no-ops and return
// false. Done returns a channel closed on settlement, after which Value
// reports the outcome; CallDeferred suspends a task body until then.
//
// Grounded on the settle-once CAS pattern used by the teacher pack's
// lock-free Promise (other_examples: joeycumines-go-utilpkg eventloop
// promisealttwo), with the Treiber handler stack in that example collapsed
// to a single close(chan) signal that any number of waiters can observe.
type Deferred[T any] struct {
	state  atomic.Int32
	value  T
	err    error
	done   chan struct{}
}

// NewDeferred creates a pending Deferred[T].
func NewDeferred[T any]() *Deferred[T] {
	return &Deferred[T]{done: make(chan struct{})}
}

// Resolve settles the Deferred with a value. Returns false if it was
// already settled.
func (d *Deferred[T]) Resolve(value T) bool {
	if !d.state.CompareAndSwap(int32(deferredPending), int32(deferredSettled)) {
		return false
	}
	d.value = value
	close(d.done)
	return true
}

// Reject settles the Deferred with an error. Returns false if it was
// already settled.
func (d *Deferred[T]) Reject(err error) bool {
	if !d.state.CompareAndSwap(int32(deferredPending), int32(deferredSettled)) {
		return false
	}
	d.err = err
	close(d.done)
	return true
}

// Settled reports whether Resolve or Reject has already won.
func (d *Deferred[T]) Settled() bool {
	return deferredState(d.state.Load()) == deferredSettled
}

// Done returns a channel closed once the Deferred settles, usable directly
// in a select alongside ctx.Done() by callers that need to observe
// cancellation concurrently with settlement.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Value returns the settled value and error. Callers must only call Value
// after observing Done() closed (or Settled() true); calling it earlier
// returns the zero value and a nil error regardless of what eventually
// settles.
func (d *Deferred[T]) Value() (T, error) {
	return d.value, d.err
}
