package lifecycle

// State represents the state of a custom domain in the state-machine.
type State string

func (s State) String() string {
	return string(s)
}

// Transition represents the transition of a custom domain in the state-machine.
type Transition string

func (t Transition) String() string {
	return string(t)
}

const (
	StatePending State = "PENDING"
	StateActive  State = "ACTIVE"
	StateError   State = "ERROR"

	TransitionActivate Transition = "ACTIVATE"
	TransitionFail     Transition = "FAIL"
)

var States = []State{StatePending, StateActive, StateError}

var Transitions = []Transition{TransitionActivate, TransitionFail}

// TerminalStates are states with no outgoing transitions. An ACTIVE domain
// never leaves ACTIVE on its own, failed re-verification is only recorded
// in diagnostics.
var TerminalStates = []string{
	StateActive.String(),
}
