package quota

import "context"

// Reservation holds one anonymous call slot between the quota check and the
// charge. Exactly one of Commit or Cancel takes effect; later calls are no-ops.
type Reservation struct {
	g    *Guard
	done bool
}

// Reserve takes a slot for an anonymous call. ok is false when the counter
// plus the slots already held is over the limit. The caller must Commit or
// Cancel the reservation.
func (g *Guard) Reserve(ctx context.Context) (r *Reservation, ok bool, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	count, err := g.state.UsageCount(ctx)
	if err != nil {
		return nil, false, err
	}
	if !Allow(false, count+g.pending, g.limit) {
		return nil, false, nil
	}
	g.pending++
	return &Reservation{g: g}, true, nil
}

// Commit charges the usage counter and releases the slot. It returns the new
// count.
func (r *Reservation) Commit(ctx context.Context) (int, error) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()

	if r.done {
		return 0, nil
	}
	r.done = true
	r.g.pending--
	return r.g.state.IncrementUsage(ctx)
}

// Cancel releases the slot without charging.
func (r *Reservation) Cancel() {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()

	if r.done {
		return
	}
	r.done = true
	r.g.pending--
}
