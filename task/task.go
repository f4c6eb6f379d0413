package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tailored-agentic-units/tau-core/observability"
)

// Operation is a suspendable task body. It is an ordinary Go function; it
// "suspends" wherever it blocks — on a channel, on ctx.Done(), or inside a
// call to Spawn, Ensure, UseResource, or Call. See the package doc and
// SPEC_FULL.md §1 for the generator-to-goroutine translation this embodies.
type Operation[T any] func(ctx context.Context) (T, error)

// Options configures a task's supervision behavior (§3 "options").
type Options struct {
	// BlockParent, when true, means this task's non-termination blocks its
	// parent's *normal* completion but not a forced halt (§4.3, §8
	// property 7).
	BlockParent bool

	// IgnoreError suppresses this task's error from propagating to its
	// parent (§4.3 trap step 1).
	IgnoreError bool

	// IgnoreChildErrors suppresses propagation of any child's error into
	// this task (§4.3 trap step 1, evaluated on the parent side).
	IgnoreChildErrors bool

	// ResourceScope overrides the scope a Resource's cleanup is bound to
	// when this task calls UseResource. Defaults to the task itself.
	ResourceScope *Task
}

// Option mutates Options; see With* constructors below.
type Option func(*Options)

func WithBlockParent(v bool) Option          { return func(o *Options) { o.BlockParent = v } }
func WithIgnoreError(v bool) Option          { return func(o *Options) { o.IgnoreError = v } }
func WithIgnoreChildErrors(v bool) Option    { return func(o *Options) { o.IgnoreChildErrors = v } }
func WithResourceScope(scope *Task) Option   { return func(o *Options) { o.ResourceScope = scope } }

// Runtime owns a supervision forest's id allocator and default observer. A
// Runtime has no other state; Tasks are independent of one another once
// spawned except through their own parent/child links.
//
// Scoping the id counter to a Runtime instance (rather than a package-level
// global) resolves SPEC_FULL.md §9's design note against process-wide
// static state in library builds: a process may host more than one
// independent supervision tree.
type Runtime struct {
	ids      atomic.Int64
	observer observability.Observer
	cfg      Config
}

// RuntimeOption configures a Runtime at construction.
type RuntimeOption func(*Runtime)

// WithObserver installs a non-default observability.Observer on a Runtime.
// Defaults to observability.NoOpObserver{}.
func WithObserver(o observability.Observer) RuntimeOption {
	return func(rt *Runtime) { rt.observer = o }
}

// WithConfig seeds a Runtime's per-task defaults from cfg (§ ambient
// config stack; see config.go).
func WithConfig(cfg Config) RuntimeOption {
	return func(rt *Runtime) { rt.cfg = cfg }
}

// NewRuntime creates a Runtime with its own task-id sequence.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{observer: observability.NoOpObserver{}, cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var defaultRuntime = NewRuntime()

// DefaultRuntime returns the package-level Runtime backing the top-level
// Run convenience function.
func DefaultRuntime() *Runtime { return defaultRuntime }

// Task is a supervised unit of work: identity, state, children, and a
// terminal outcome (§3). It is the node type of the supervision tree.
type Task struct {
	id     int64
	rt     *Runtime
	parent *Task
	opts   Options

	mu             sync.Mutex
	state          State
	children       []*Task
	ensureHandlers []func()
	result         any
	err            error

	termCh chan struct{}
	fr     *frame

	stateListeners []func(State)
	linkListeners  []func(*Task)
	unlinkListeners []func(*Task)
}

// ID returns the task's process-unique (within its Runtime) identifier.
func (t *Task) ID() int64 { return t.id }

// State returns the task's current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Task) String() string {
	return fmt.Sprintf("task(%d, %s)", t.id, t.State())
}

// OnStateChange registers a callback invoked synchronously every time this
// task's state changes, including finishing-substate entry (§9's resolved
// open question: both finishing and terminal entries are observable).
func (t *Task) OnStateChange(fn func(State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stateListeners = append(t.stateListeners, fn)
}

// OnLink registers a callback invoked whenever a child joins this task's
// children set.
func (t *Task) OnLink(fn func(child *Task)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.linkListeners = append(t.linkListeners, fn)
}

// OnUnlink registers a callback invoked whenever a child leaves this task's
// children set.
func (t *Task) OnUnlink(fn func(child *Task)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unlinkListeners = append(t.unlinkListeners, fn)
}

func (t *Task) emitState() {
	state := t.State()
	t.mu.Lock()
	var listeners []func(State)
	listeners = append(listeners, t.stateListeners...)
	t.mu.Unlock()
	for _, fn := range listeners {
		fn(state)
	}
	t.rt.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventStateChange,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "task",
		Data: map[string]any{
			"task_id": t.id,
			"state":   state.String(),
		},
	})
}

func (t *Task) emitLink(child *Task) {
	t.mu.Lock()
	var listeners []func(*Task)
	listeners = append(listeners, t.linkListeners...)
	t.mu.Unlock()
	for _, fn := range listeners {
		fn(child)
	}
	t.rt.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventLink,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "task",
		Data:      map[string]any{"parent_id": t.id, "child_id": child.id},
	})
}

func (t *Task) emitUnlink(child *Task) {
	t.mu.Lock()
	var listeners []func(*Task)
	listeners = append(listeners, t.unlinkListeners...)
	t.mu.Unlock()
	for _, fn := range listeners {
		fn(child)
	}
	t.rt.observer.OnEvent(context.Background(), observability.Event{
		Type:      EventUnlink,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "task",
		Data:      map[string]any{"parent_id": t.id, "child_id": child.id},
	})
}

// newTask allocates a Task in the pending state. It is not yet linked to a
// parent and its frame has not started.
func newTask(rt *Runtime, parent *Task, opts Options) *Task {
	t := &Task{
		id:     rt.ids.Add(1),
		rt:     rt,
		parent: parent,
		opts:   opts,
		state:  StatePending,
		termCh: make(chan struct{}),
	}
	if t.opts.ResourceScope == nil {
		t.opts.ResourceScope = t
	}
	return t
}

// start transitions pending -> running and launches the body goroutine.
// raw is the type-erased Operation; its result is boxed into t.result.
func (t *Task) start(ctx context.Context, raw func(ctx context.Context) (any, error)) error {
	t.mu.Lock()
	to, ok := nextState(t.state, triggerStart)
	if !ok {
		t.mu.Unlock()
		return newProgrammerError("start called on task %d in state %s", t.id, t.state)
	}
	t.state = to
	t.mu.Unlock()

	// A child's frame is rooted in its own independent context, not one
	// derived from the parent's fr.ctx: derivation would let Go's native
	// context cancellation race ahead of drainChildren's serialized
	// Halt() calls the moment the parent's own frame is destroyed (§4.3,
	// §5 — halts proceed one child at a time). Only this task's own
	// Halt()/reject() may destroy its frame; a parent's destruction
	// reaches its children exclusively through drainChildren.
	var base context.Context
	if t.parent != nil {
		base = context.Background()
	} else {
		base = ctx
	}
	t.fr = newFrame(base)
	t.emitState()

	fctx := context.WithValue(t.fr.ctx, currentTaskKey{}, t)
	go func() {
		value, err := t.runBodySafely(fctx, raw)
		t.onBodyDone(value, err)
	}()
	return nil
}

func (t *Task) runBodySafely(ctx context.Context, raw func(ctx context.Context) (any, error)) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %d: panic: %v", t.id, r)
		}
	}()
	return raw(ctx)
}

// onBodyDone runs once the body goroutine returns, regardless of whether it
// returned because it settled normally or because the frame was cancelled
// out from under it. It then drains children and transitions to terminal.
// See DESIGN.md for the reasoning behind unifying all three "finishing"
// paths (resolve, reject, halt) through this single function.
func (t *Task) onBodyDone(value any, err error) {
	t.mu.Lock()
	running := t.state == StateRunning
	t.mu.Unlock()

	if running {
		if err != nil {
			t.reject(err)
		} else {
			t.resolveBody(value)
		}
	}
	// Else: the state was already pushed to erroring/halting by a trap or
	// an explicit Halt while the body was still executing. The body's
	// return value is abort output, not a settled result, and is
	// discarded.

	t.drainChildren()

	t.mu.Lock()
	finishingState := t.state
	t.mu.Unlock()

	t.finish(finishingState)
}

func (t *Task) resolveBody(value any) {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return
	}
	t.state = StateCompleting
	t.result = value
	t.mu.Unlock()
	t.emitState()
}

// reject moves a running or completing task into erroring. It is the only
// path into erroring: a body's own failure, a panic, or a propagated child
// error delivered through onChildTerminal (§4.3 trap step 1). The first
// error recorded wins.
func (t *Task) reject(err error) {
	t.mu.Lock()
	if t.state != StateRunning && t.state != StateCompleting {
		t.mu.Unlock()
		return
	}
	t.state = StateErroring
	if t.err == nil {
		t.err = &OperationError{TaskID: t.id, Err: err}
	}
	t.mu.Unlock()
	t.emitState()
	t.fr.destroy(err)
}

// Halt requests cooperative cancellation of t and blocks until t reaches a
// terminal state. Idempotent: concurrent or repeated calls all observe the
// same terminal outcome (§8 property 4).
func (t *Task) Halt(ctx context.Context) error {
	t.mu.Lock()
	switch t.state {
	case StateRunning, StateCompleting, StateErroring:
		to, ok := nextState(t.state, triggerHalt)
		if !ok {
			t.mu.Unlock()
			return newProgrammerError("halt called on task %d in state %s", t.id, t.state)
		}
		t.state = to
		t.mu.Unlock()
		t.emitState()
		t.fr.destroy(nil)
	default:
		t.mu.Unlock()
	}
	t.awaitTerminal(ctx)
	if ctx != nil {
		select {
		case <-t.termCh:
		default:
			return ctx.Err()
		}
	}
	return t.terminalErrForAwaiter()
}

// drainChildren halts or awaits every child in reverse spawn order,
// serially, per §4.3/§5. Whether a given child is forced depends on the
// *current* state of t, re-read on each iteration: a child error arriving
// mid-drain (via onChildTerminal -> reject) can escalate force for children
// not yet processed, which is the Go translation of the distilled spec's
// "haltChildren re-invoked after each child terminates" continuation chain
// — see DESIGN.md.
//
// A child's own terminal error is deliberately not collected here: it has
// already been delivered (or masked, per IgnoreError/IgnoreChildErrors) to
// t through the trap protocol in onChildTerminal. Treating Halt's return
// value as a second, parallel error channel would re-surface an error the
// trap had correctly suppressed.
func (t *Task) drainChildren() {
	t.mu.Lock()
	snapshot := append([]*Task(nil), t.children...)
	t.mu.Unlock()

	for i := len(snapshot) - 1; i >= 0; i-- {
		c := snapshot[i]

		t.mu.Lock()
		force := t.state != StateCompleting
		t.mu.Unlock()

		if force || !c.opts.BlockParent {
			c.Halt(context.Background())
		} else {
			c.awaitTerminal(context.Background())
		}
	}
}

// finish performs the final finishing -> terminal transition (§4.2's
// "all children done" trigger), emits the terminal-entry event, runs
// ensure hooks then notifies the parent (§3 invariant 5), and unblocks
// every Await/Halt waiter.
func (t *Task) finish(finishingState State) {
	to, ok := nextState(finishingState, triggerChildrenDone)
	if !ok {
		panic(newProgrammerError("finish called on task %d in state %s", t.id, finishingState))
	}

	t.mu.Lock()
	t.state = to
	t.mu.Unlock()

	t.emitState()
	t.runHooks()
	close(t.termCh)
}

// runHooks runs every ensure handler, in registration order, before
// notifying the parent (§3 invariant 5, §4.3). A handler that panics does
// not stop its successors or corrupt t's already-committed terminal
// result/error (§3 invariant 3); the panics are aggregated into a
// TeardownError (§7) and reported through the observer as a warning, the
// same channel used for diagnostics elsewhere in this package.
func (t *Task) runHooks() {
	t.mu.Lock()
	var handlers []func()
	handlers = append(handlers, t.ensureHandlers...)
	t.mu.Unlock()

	var panics []error
	for _, fn := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics = append(panics, fmt.Errorf("ensure hook panicked: %v", r))
				}
			}()
			fn()
		}()
	}
	if len(panics) > 0 {
		t.rt.observer.OnEvent(context.Background(), observability.Event{
			Type:      EventError,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "task",
			Data: map[string]any{
				"task_id": t.id,
				"error":   (&TeardownError{Errs: panics}).Error(),
			},
		})
	}

	if t.parent != nil {
		t.parent.onChildTerminal(t)
	}
}

// onChildTerminal is the parent-side half of §4.3's trap protocol. Because
// this runtime gives every task exactly one parent, the spec's generic
// "trappers set" collapses to this single, always-installed callback.
func (t *Task) onChildTerminal(child *Task) {
	if child.State() == StateErrored && !child.opts.IgnoreError && !t.opts.IgnoreChildErrors {
		t.reject(child.err)
	}

	t.mu.Lock()
	for i, c := range t.children {
		if c == child {
			t.children = append(t.children[:i], t.children[i+1:]...)
			break
		}
	}
	t.mu.Unlock()
	t.emitUnlink(child)
}

// link adds child to t's children set and installs t as child's implicit
// trapper (§4.3).
func (t *Task) link(child *Task) {
	t.mu.Lock()
	t.children = append(t.children, child)
	t.mu.Unlock()
	t.emitLink(child)
}

// Ensure registers fn to run once, after t reaches a terminal state, before
// any trapper notification (§3 invariant 5, §4.3).
func (t *Task) Ensure(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureHandlers = append(t.ensureHandlers, fn)
}

func (t *Task) awaitTerminal(ctx context.Context) {
	if ctx == nil {
		<-t.termCh
		return
	}
	select {
	case <-t.termCh:
	case <-ctx.Done():
		// The caller's ctx died before t reached terminal; t itself keeps
		// running/halting independently. Callers needing t to actually
		// stop must call Halt, not merely abandon the wait.
	}
}

func (t *Task) terminalErrForAwaiter() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StateCompleted:
		return nil
	case StateErrored:
		return t.err
	case StateHalted:
		return &HaltError{TaskID: t.id}
	default:
		return newProgrammerError("task %d awaited before reaching a terminal state", t.id)
	}
}

// currentTaskKey is the private context key a running task's frame installs
// so that Spawn/Ensure/UseResource/Call can recover "self" from ctx.
type currentTaskKey struct{}

func taskFromContext(ctx context.Context) (*Task, bool) {
	t, ok := ctx.Value(currentTaskKey{}).(*Task)
	return t, ok
}
