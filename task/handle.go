package task

import (
	"context"
	"errors"
)

// Handle is a typed reference to a Task, returned by Run and Spawn. It is
// the only way callers observe a task's outcome; the underlying Task is
// reachable via Task() for supervision-level operations (Halt, Ensure,
// OnStateChange) that don't need the result type.
type Handle[T any] struct {
	t *Task
}

// Task returns the untyped Task backing this Handle.
func (h *Handle[T]) Task() *Task { return h.t }

// Await blocks until the task completes, errors, or halts, suspending the
// calling task (if any) the same way any other instruction does. Awaiting
// a halted task returns an error satisfying errors.Is(err, ErrHalted); use
// CatchHalt to treat that case as a non-error empty result instead.
func (h *Handle[T]) Await(ctx context.Context) (T, error) {
	self, _ := taskFromContext(ctx)
	raw, err := suspend(ctx, self, func(ictx context.Context) (any, error) {
		select {
		case <-h.t.termCh:
			return h.outcome()
		case <-ictx.Done():
			return nil, ictx.Err()
		}
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if raw == nil {
		var zero T
		return zero, nil
	}
	return raw.(T), nil
}

func (h *Handle[T]) outcome() (any, error) {
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	switch h.t.state {
	case StateCompleted:
		return h.t.result, nil
	case StateErrored:
		return nil, h.t.err
	case StateHalted:
		return nil, &HaltError{TaskID: h.t.id}
	default:
		return nil, newProgrammerError("task %d outcome read before terminal", h.t.id)
	}
}

// CatchHalt is Await, except a halted task reports (zero, true, nil)
// instead of (zero, false, ErrHalted) — useful when a caller deliberately
// halts its own children and doesn't want that to read as failure.
func (h *Handle[T]) CatchHalt(ctx context.Context) (value T, halted bool, err error) {
	value, err = h.Await(ctx)
	if errors.Is(err, ErrHalted) {
		var zero T
		return zero, true, nil
	}
	return value, false, err
}

// Halt requests cooperative cancellation of the underlying task and blocks
// until it reaches a terminal state.
func (h *Handle[T]) Halt(ctx context.Context) error {
	return h.t.Halt(ctx)
}

// ID returns the underlying task's identifier.
func (h *Handle[T]) ID() int64 { return h.t.ID() }

// State returns the underlying task's current lifecycle state.
func (h *Handle[T]) State() State { return h.t.State() }
