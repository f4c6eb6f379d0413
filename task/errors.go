package task

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHalted is the sentinel a Handle's Await returns when the task it
// refers to reached the halted terminal state rather than completed or
// errored. Use errors.Is(err, ErrHalted), or CatchHalt to treat halt as a
// normal (empty) outcome instead of an error.
var ErrHalted = errors.New("task: halted")

// ErrNotRunning is returned by Spawn when called against a task that is not
// in the running state (§4.6: "Throws if self is not running").
var ErrNotRunning = errors.New("task: spawn called on a task that is not running")

// OperationError wraps an error returned by a task body. It terminates the
// task as errored and propagates to the parent unless suppressed by
// options (ignoreError / ignoreChildErrors).
type OperationError struct {
	TaskID int64
	Err    error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("task %d: %v", e.TaskID, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// HaltError is the concrete error type behind ErrHalted, carrying the id of
// the task that halted for diagnostics.
type HaltError struct {
	TaskID int64
}

func (e *HaltError) Error() string { return fmt.Sprintf("task %d: halted", e.TaskID) }

func (e *HaltError) Is(target error) bool { return target == ErrHalted }

// TeardownError aggregates failures that occur while tearing down a task
// itself, as opposed to failures of its body: currently, a panicking ensure
// hook (§7). A single misbehaving hook does not stop its successors from
// running; every panic is collected and reported together.
type TeardownError struct {
	Errs []error
}

func (e *TeardownError) Error() string {
	if len(e.Errs) == 1 {
		return fmt.Sprintf("teardown failed: %v", e.Errs[0])
	}
	parts := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("teardown failed: %d errors: %s", len(e.Errs), strings.Join(parts, "; "))
}

func (e *TeardownError) Unwrap() []error { return e.Errs }

// ProgrammerError reports an illegal state transition: starting a task that
// is not pending, halting from a state the transition table does not allow,
// or reading a task's outcome before it is terminal. Unlike OperationError,
// it indicates a bug rather than a failure of the operation itself. It
// surfaces through the ordinary error-return path, with one exception:
// finish panics with a ProgrammerError when the runtime itself reaches an
// illegal finishing transition. Spawn, Ensure and UseResource called without
// a running task return ErrNotRunning, not a ProgrammerError.
type ProgrammerError struct {
	Msg string
}

func (e *ProgrammerError) Error() string { return "task: programmer error: " + e.Msg }

func newProgrammerError(format string, args ...any) *ProgrammerError {
	return &ProgrammerError{Msg: fmt.Sprintf(format, args...)}
}
