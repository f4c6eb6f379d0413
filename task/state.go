package task

// State is one of the legal task lifecycle states (§4.2). The zero value is
// not a valid State; a freshly constructed Task starts at StatePending.
type State int

const (
	_ State = iota
	StatePending
	StateRunning
	StateCompleting
	StateCompleted
	StateErroring
	StateErrored
	StateHalting
	StateHalted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleting:
		return "completing"
	case StateCompleted:
		return "completed"
	case StateErroring:
		return "erroring"
	case StateErrored:
		return "errored"
	case StateHalting:
		return "halting"
	case StateHalted:
		return "halted"
	default:
		return "invalid"
	}
}

// Terminal reports whether s is one of the three terminal states (completed,
// errored, halted). A task may only be destroyed once it reaches a terminal
// state, and only after its children set is empty (invariant 4, §3).
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateErrored, StateHalted:
		return true
	default:
		return false
	}
}

// Finishing reports whether s is one of the finishing substates (completing,
// erroring, halting): no new instructions are accepted and the halt-cascade
// is in progress (§4.2).
func (s State) Finishing() bool {
	switch s {
	case StateCompleting, StateErroring, StateHalting:
		return true
	default:
		return false
	}
}

// trigger identifies what drove a transition, purely for documentation and
// the legality table below; it is not part of the exported API.
type trigger int

const (
	triggerStart trigger = iota
	triggerResolve
	triggerReject
	triggerHalt
	triggerChildrenDone
)

// legalTransitions is the state machine of §4.2, encoded exhaustively so
// that every observed transition can be checked against an edge in this
// table. Any trigger not present for the current state is a programmer
// error — calling code asked for a transition the spec does not allow.
var legalTransitions = map[State]map[trigger]State{
	StatePending: {
		triggerStart: StateRunning,
	},
	StateRunning: {
		triggerResolve: StateCompleting,
		triggerReject:  StateErroring,
		triggerHalt:    StateHalting,
	},
	StateCompleting: {
		triggerHalt:         StateHalting,
		triggerChildrenDone: StateCompleted,
	},
	StateErroring: {
		triggerHalt:         StateHalting,
		triggerChildrenDone: StateErrored,
	},
	StateHalting: {
		triggerChildrenDone: StateHalted,
	},
}

// nextState returns the State reached by applying trigger to from, and
// whether that transition is legal. An illegal transition is always a bug
// in the runtime itself (the public API never exposes raw triggers), so
// callers of nextState treat a false ok as a ProgrammerError.
func nextState(from State, trig trigger) (State, bool) {
	triggers, ok := legalTransitions[from]
	if !ok {
		return from, false
	}
	to, ok := triggers[trig]
	return to, ok
}
