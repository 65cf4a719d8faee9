// Package statemachine is a small finite state machine over comparable state
// and event types.
//
// Transitions are declared up front with functional options. Fire looks up the
// transitions for the current state and event, takes the first whose guards
// all pass, runs its actions in order and only then moves to the target
// state. A failing action leaves the machine where it was.
//
//	const (
//		Idle    = "idle"
//		Running = "running"
//		Start   = "start"
//	)
//
//	m := statemachine.MustNew(Idle,
//		statemachine.WithTransition(Idle, Running, Start,
//			statemachine.WithAction(func(ctx context.Context, t statemachine.Step[string, string]) error {
//				return launch(ctx)
//			}),
//		),
//	)
//	err := m.Fire(ctx, Start)
//
// Fire holds the machine lock while actions run, so transitions on one
// machine never interleave.
package statemachine
