package quota

import (
	"context"
	"sync"

	"github.com/dmitrymomot/detectkit/pkg/session"
)

// DefaultLimit is the highest usage count at which an anonymous call still passes.
const DefaultLimit = 5

// Allow is the pure decision: authenticated callers always pass, anonymous
// callers pass while count <= limit.
func Allow(authenticated bool, count, limit int) bool {
	return authenticated || count <= limit
}

// State is the slice of session state the guard reads and charges.
type State interface {
	Mode(ctx context.Context) (session.Mode, error)
	UsageCount(ctx context.Context) (int, error)
	IncrementUsage(ctx context.Context) (int, error)
}

// Guard evaluates Allow against the current session state.
type Guard struct {
	state State
	limit int

	// mu makes check and charge one step. pending counts reservations that
	// are neither committed nor canceled.
	mu      sync.Mutex
	pending int
}

// Option configures a Guard.
type Option func(*Guard)

// WithLimit overrides DefaultLimit. Negative values block every anonymous call.
func WithLimit(limit int) Option {
	return func(g *Guard) {
		g.limit = limit
	}
}

// NewGuard returns a Guard over state with DefaultLimit.
func NewGuard(state State, opts ...Option) *Guard {
	g := &Guard{state: state, limit: DefaultLimit}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Limit returns the configured limit.
func (g *Guard) Limit() int { return g.limit }

// MayProceed reports whether another call is permitted. It has no side effects.
func (g *Guard) MayProceed(ctx context.Context) (bool, error) {
	mode, err := g.state.Mode(ctx)
	if err != nil {
		return false, err
	}
	if mode == session.Authenticated {
		return true, nil
	}
	count, err := g.state.UsageCount(ctx)
	if err != nil {
		return false, err
	}
	return Allow(false, count, g.limit), nil
}

// Remaining returns how many anonymous calls are still permitted. Authenticated
// callers get -1.
func (g *Guard) Remaining(ctx context.Context) (int, error) {
	mode, err := g.state.Mode(ctx)
	if err != nil {
		return 0, err
	}
	if mode == session.Authenticated {
		return -1, nil
	}
	count, err := g.state.UsageCount(ctx)
	if err != nil {
		return 0, err
	}
	return max(g.limit-count+1, 0), nil
}
