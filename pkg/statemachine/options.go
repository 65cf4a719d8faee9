package statemachine

// Option configures a Machine during construction.
type Option[S, E comparable] func(*Machine[S, E]) error

// TransitionOption attaches guards and actions to a transition.
type TransitionOption[S, E comparable] func(*transition[S, E])

// WithTransition declares from --event--> to. Several transitions may share a
// from/event pair; they are tried in declaration order.
func WithTransition[S, E comparable](from, to S, event E, opts ...TransitionOption[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		t := transition[S, E]{to: to}
		for _, opt := range opts {
			opt(&t)
		}
		k := key[S, E]{from: from, event: event}
		m.transitions[k] = append(m.transitions[k], t)
		return nil
	}
}

// WithGuard rejects the transition when guard returns false.
func WithGuard[S, E comparable](guard Guard[S, E]) TransitionOption[S, E] {
	return func(t *transition[S, E]) {
		if guard != nil {
			t.guards = append(t.guards, guard)
		}
	}
}

// WithAction runs action when the transition fires. An error keeps the current state.
func WithAction[S, E comparable](action Action[S, E]) TransitionOption[S, E] {
	return func(t *transition[S, E]) {
		if action != nil {
			t.actions = append(t.actions, action)
		}
	}
}
