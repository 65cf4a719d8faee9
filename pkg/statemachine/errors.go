package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrNoTransition       = errors.New("statemachine.no_transition")
	ErrTransitionRejected = errors.New("statemachine.transition_rejected")
	ErrActionFailed       = errors.New("statemachine.action_failed")
)

// TransitionError describes a Fire call that did not change state.
type TransitionError struct {
	State string
	Event string
	Err   error // one of the sentinels above
	Cause error // action error, if any
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%v: state %q, event %q", e.Err, e.State, e.Event)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TransitionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}
