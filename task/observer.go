package task

import "github.com/tailored-agentic-units/tau-core/observability"

// Event types emitted by this package, following the teacher's
// "subsystem.action" naming (kernel.run.start, graph.complete, ...).
const (
	EventStateChange observability.EventType = "task.state.change"
	EventLink        observability.EventType = "task.link"
	EventUnlink      observability.EventType = "task.unlink"
	EventError       observability.EventType = "task.error"
)
