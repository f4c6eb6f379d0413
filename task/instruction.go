package task

import "context"

// box adapts a typed Operation[T] into the type-erased body signature a
// frame's goroutine drives (§9: dynamic dispatch over a closed instruction
// set, rather than an open interface, keeps the evaluator itself
// non-generic while every public entry point stays statically typed).
func box[T any](op Operation[T]) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return op(ctx)
	}
}

// Run creates and starts a root task under rt: a task with no parent,
// independent of any enclosing supervision tree. Use Spawn instead when
// called from inside a running task's body.
func Run[T any](rt *Runtime, ctx context.Context, op Operation[T], opts ...Option) (*Handle[T], error) {
	o := rt.cfg.baseOptions()
	for _, apply := range opts {
		apply(&o)
	}
	t := newTask(rt, nil, o)
	if err := t.start(ctx, box(op)); err != nil {
		return nil, err
	}
	return &Handle[T]{t: t}, nil
}

// RunDefault is Run against the package-level default Runtime, for programs
// that don't need more than one independent supervision tree.
func RunDefault[T any](ctx context.Context, op Operation[T], opts ...Option) (*Handle[T], error) {
	return Run(defaultRuntime, ctx, op, opts...)
}

// Spawn creates a child of the task currently running on ctx's goroutine
// and starts it immediately (§4.6: spawn is synchronous — it returns a
// Handle without waiting for the child to do anything). It returns
// ErrNotRunning if ctx carries no task (Spawn called outside any task body)
// or if the task it carries is no longer in the running state.
func Spawn[T any](ctx context.Context, op Operation[T], opts ...Option) (*Handle[T], error) {
	parent, ok := taskFromContext(ctx)
	if !ok || parent.State() != StateRunning {
		return nil, ErrNotRunning
	}

	o := parent.rt.cfg.baseOptions()
	for _, apply := range opts {
		apply(&o)
	}
	child := newTask(parent.rt, parent, o)
	parent.link(child)
	if err := child.start(ctx, box(op)); err != nil {
		return nil, err
	}
	return &Handle[T]{t: child}, nil
}

// Ensure registers fn to run once the calling task reaches a terminal
// state, before its parent is notified (§3 invariant 5). It is a thin
// wrapper over Task.Ensure that resolves "self" from ctx, matching the
// calling convention of Spawn/UseResource/Call.
func Ensure(ctx context.Context, fn func()) error {
	self, ok := taskFromContext(ctx)
	if !ok {
		return ErrNotRunning
	}
	self.Ensure(fn)
	return nil
}

// Call adapts a foreign asynchronous value into the calling task's
// suspension model: it blocks until done fires or the calling task is
// interrupted, in which case it best-effort invokes cancel (if non-nil) and
// returns ctx.Err(). This is the bridge for callback- or channel-based APIs
// that were not themselves written against this package (§9 design note:
// "promise adaptation via Call's best-effort cancel").
func Call[T any](ctx context.Context, done <-chan struct{}, result func() (T, error), cancel func()) (T, error) {
	self, _ := taskFromContext(ctx)
	return suspend(ctx, self, func(ictx context.Context) (T, error) {
		select {
		case <-done:
			return result()
		case <-ictx.Done():
			if cancel != nil {
				cancel()
			}
			var zero T
			return zero, ictx.Err()
		}
	})
}

// CallDeferred suspends the calling task until d settles, adapting the
// common shape of a foreign callback API that hands back exactly one
// Deferred rather than a raw done channel plus accessor (the two are
// otherwise identical: Deferred.Done() is the done channel, Deferred.Value
// is the accessor). cancel is invoked, best-effort, if the calling task is
// interrupted before d settles.
func CallDeferred[T any](ctx context.Context, d *Deferred[T], cancel func()) (T, error) {
	return Call(ctx, d.Done(), d.Value, cancel)
}
