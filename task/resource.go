package task

import "context"

// Resource produces a scoped value of type T. Init runs once, at the point
// UseResource is called, and is handed scope — the task whose terminal
// transition bounds the resource's lifetime. A Resource that needs teardown
// registers it itself, via scope.Ensure, rather than returning a separate
// cleanup value: this keeps "how do I clean up" in exactly one place
// (Ensure) instead of duplicating it as a second mechanism (§4.5).
type Resource[T any] interface {
	Init(ctx context.Context, scope *Task) (T, error)
}

// ResourceFunc adapts a plain function to Resource, for resources simple
// enough not to need their own named type.
type ResourceFunc[T any] func(ctx context.Context, scope *Task) (T, error)

func (f ResourceFunc[T]) Init(ctx context.Context, scope *Task) (T, error) { return f(ctx, scope) }

// UseResource initializes res, scoped to the calling task's resource scope
// (Options.ResourceScope, defaulting to the task itself). Init runs inside
// a new frame rooted at scope's own context, not the calling task's: scope
// is what bounds the resource's lifetime (§4.5), so a short-lived caller
// halting while Init is still in flight must not abort it — only scope's
// own destruction, or the caller-supplied ctx argument, may interrupt Init.
func UseResource[T any](ctx context.Context, res Resource[T]) (T, error) {
	self, ok := taskFromContext(ctx)
	if !ok {
		var zero T
		return zero, ErrNotRunning
	}
	scope := self.opts.ResourceScope
	if scope == nil {
		scope = self
	}

	initFrame := newFrame(scope.fr.ctx)
	ictx, cancel := initFrame.installInterrupt(ctx)
	defer func() {
		cancel()
		initFrame.clearInterrupt()
		initFrame.destroy(nil)
	}()
	return res.Init(ictx, scope)
}
