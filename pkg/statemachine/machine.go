package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Step is passed to guards and actions.
type Step[S, E comparable] struct {
	From  S
	To    S
	Event E
}

// Guard vetoes a transition when it returns false.
type Guard[S, E comparable] func(ctx context.Context, step Step[S, E]) bool

// Action runs a side effect during a transition. An error aborts the transition.
type Action[S, E comparable] func(ctx context.Context, step Step[S, E]) error

type transition[S, E comparable] struct {
	to      S
	guards  []Guard[S, E]
	actions []Action[S, E]
}

type key[S, E comparable] struct {
	from  S
	event E
}

// Machine is safe for concurrent use.
type Machine[S, E comparable] struct {
	mu          sync.Mutex
	initial     S
	current     S
	transitions map[key[S, E]][]transition[S, E]
}

// New builds a machine in initial state.
func New[S, E comparable](initial S, opts ...Option[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{
		initial:     initial,
		current:     initial,
		transitions: make(map[key[S, E]][]transition[S, E]),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New that panics on a configuration error.
func MustNew[S, E comparable](initial S, opts ...Option[S, E]) *Machine[S, E] {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return m
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Reset returns the machine to its initial state.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

// Fire applies event to the current state.
func (m *Machine[S, E]) Fire(ctx context.Context, event E) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.pick(ctx, event)
	if err != nil {
		return err
	}

	step := Step[S, E]{From: m.current, To: t.to, Event: event}
	for _, action := range t.actions {
		if err := action(ctx, step); err != nil {
			return m.fail(event, ErrActionFailed, err)
		}
	}

	m.current = t.to
	return nil
}

// CanFire reports whether Fire(event) would find a transition whose guards pass.
func (m *Machine[S, E]) CanFire(ctx context.Context, event E) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.pick(ctx, event)
	return err == nil
}

func (m *Machine[S, E]) pick(ctx context.Context, event E) (transition[S, E], error) {
	candidates := m.transitions[key[S, E]{from: m.current, event: event}]
	if len(candidates) == 0 {
		return transition[S, E]{}, m.fail(event, ErrNoTransition, nil)
	}

	// First candidate whose guards all pass wins.
	for _, t := range candidates {
		step := Step[S, E]{From: m.current, To: t.to, Event: event}
		passed := true
		for _, guard := range t.guards {
			if !guard(ctx, step) {
				passed = false
				break
			}
		}
		if passed {
			return t, nil
		}
	}
	return transition[S, E]{}, m.fail(event, ErrTransitionRejected, nil)
}

func (m *Machine[S, E]) fail(event E, sentinel, cause error) error {
	return &TransitionError{
		State: fmt.Sprint(m.current),
		Event: fmt.Sprint(event),
		Err:   sentinel,
		Cause: cause,
	}
}
