package lifecycle

import (
	"errors"
	"fmt"
)

var ErrTransitionExecution = errors.New("failed to execute transition")

// NewTransitionError creates an error when a transition fails.
func NewTransitionError(transition Transition) error {
	return fmt.Errorf("%w %s", ErrTransitionExecution, transition)
}
