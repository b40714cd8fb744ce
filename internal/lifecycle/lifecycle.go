package lifecycle

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"github.com/faithinsite/core/internal/errs"
	"github.com/faithinsite/core/internal/model"
)

// Lifecycle drives the verification state of a single custom domain.
// The state machine is seeded from the persisted status, transitions mutate
// the domain in memory and the caller persists the result.
type Lifecycle struct {
	Domain       *model.CustomDomain
	StateMachine *fsm.FSM
}

// convertEvent converts Transition and State types to string
// and creates an EventDesc object for the state machine.
func convertEvent(
	transition Transition,
	sourceStates []State,
	destinationState State,
) fsm.EventDesc {
	src := make([]string, len(sourceStates))
	for i, state := range sourceStates {
		src[i] = state.String()
	}

	return fsm.EventDesc{
		Name: transition.String(),
		Src:  src,
		Dst:  destinationState.String(),
	}
}

// NewLifecycle creates a new Lifecycle object for the given domain
// with a state machine that defines the possible transitions.
func NewLifecycle(domain *model.CustomDomain) *Lifecycle {
	stateMachine := fsm.NewFSM(
		string(domain.Status),
		fsm.Events{
			convertEvent(
				TransitionActivate,
				[]State{StatePending, StateError},
				StateActive,
			),
			convertEvent(
				TransitionFail,
				[]State{StatePending, StateError},
				StateError,
			),
		},
		fsm.Callbacks{},
	)

	return &Lifecycle{
		Domain:       domain,
		StateMachine: stateMachine,
	}
}

// CanTransition checks if the domain can transition with the given event.
func (l *Lifecycle) CanTransition(transition Transition) bool {
	return l.StateMachine.Can(transition.String())
}

// ApplyTransition executes a transition in the state machine and reflects
// the resulting state onto the domain model. A transition that lands on the
// current state, such as a repeated FAIL, is not an error.
func (l *Lifecycle) ApplyTransition(ctx context.Context, transition Transition) error {
	transitionErr := l.StateMachine.Event(ctx, transition.String())
	if transitionErr != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(transitionErr, &noTransition) {
			return errs.Wrap(NewTransitionError(transition), transitionErr)
		}
	}

	l.Domain.Status = model.DomainStatus(l.StateMachine.Current())

	return nil
}
