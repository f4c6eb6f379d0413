package task

import (
	"context"
	"sync"
)

// frame is the evaluator state bound to a single Task: the context its body
// and instructions run under, and the single replaceable "interrupt" that a
// currently-suspended instruction installs so that destroying the frame
// wakes it immediately (§4.1).
//
// Grounded on kernel/kernel.go's Run loop (observer events bracketing every
// phase of execution) and orchestrate/hub/hub.go's messageLoop/cancel/done
// shutdown pattern, generalized from a single goroutine to a tree of frames.
type frame struct {
	ctx    context.Context
	cancel context.CancelFunc

	interruptMu sync.Mutex
	interrupt   context.CancelFunc

	destroyOnce sync.Once
}

func newFrame(base context.Context) *frame {
	ctx, cancel := context.WithCancel(base)
	return &frame{ctx: ctx, cancel: cancel}
}

// destroy cancels the frame's context exactly once. reason is currently
// unused beyond documentation intent (cancellation itself carries no
// payload in context.Context); it exists so call sites read clearly.
func (f *frame) destroy(reason error) {
	f.destroyOnce.Do(f.cancel)
}

// installInterrupt derives a child context from the frame's own context,
// additionally watched against external (the caller-supplied ctx argument
// to the suspending call), and records it as the frame's single active
// interrupt. Only one instruction may be suspended on a given frame at a
// time, which holds by construction: a task's body runs on one goroutine
// and therefore issues one suspending call at a time.
func (f *frame) installInterrupt(external context.Context) (context.Context, context.CancelFunc) {
	f.interruptMu.Lock()
	defer f.interruptMu.Unlock()

	ictx, cancel := context.WithCancel(f.ctx)
	f.interrupt = cancel

	if external != nil && external != f.ctx {
		stop := make(chan struct{})
		wrapped := cancel
		go func() {
			select {
			case <-external.Done():
				wrapped()
			case <-stop:
			}
		}()
		cancel = func() {
			close(stop)
			wrapped()
		}
	}
	return ictx, cancel
}

func (f *frame) clearInterrupt() {
	f.interruptMu.Lock()
	f.interrupt = nil
	f.interruptMu.Unlock()
}

// suspend runs fn with a freshly installed interrupt context derived from
// self's frame, blocking the calling goroutine until fn returns. If self is
// nil (the caller is not itself a running task — e.g. a top-level Await
// from outside any task body) fn runs directly against the supplied ctx,
// since there is no frame to own the interrupt.
func suspend[T any](ctx context.Context, self *Task, fn func(ictx context.Context) (T, error)) (T, error) {
	if self == nil {
		return fn(ctx)
	}
	ictx, cancel := self.fr.installInterrupt(ctx)
	defer func() {
		cancel()
		self.fr.clearInterrupt()
	}()
	return fn(ictx)
}
