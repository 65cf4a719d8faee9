package statemachine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/detectkit/pkg/statemachine"
)

type state string

type event string

const (
	draft     state = "draft"
	review    state = "review"
	published state = "published"
	rejected  state = "rejected"

	submit  event = "submit"
	approve event = "approve"
)

type (
	step   = statemachine.Step[state, event]
	option = statemachine.Option[state, event]
)

func TestMachine_Fire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := statemachine.MustNew(draft,
		statemachine.WithTransition[state, event](draft, review, submit),
		statemachine.WithTransition[state, event](review, published, approve),
	)
	assert.Equal(t, draft, m.Current())
	assert.True(t, m.CanFire(ctx, submit))
	assert.False(t, m.CanFire(ctx, approve))

	require.NoError(t, m.Fire(ctx, submit))
	require.NoError(t, m.Fire(ctx, approve))
	assert.Equal(t, published, m.Current())

	m.Reset()
	assert.Equal(t, draft, m.Current())
}

func TestMachine_NoTransition(t *testing.T) {
	t.Parallel()

	m := statemachine.MustNew[state, event](draft)
	err := m.Fire(context.Background(), approve)
	require.ErrorIs(t, err, statemachine.ErrNoTransition)

	var te *statemachine.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "draft", te.State)
	assert.Equal(t, "approve", te.Event)
	assert.Equal(t, draft, m.Current())
}

func TestMachine_Guards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	allowed := false
	opts := []option{
		statemachine.WithTransition(review, published, approve,
			statemachine.WithGuard(func(context.Context, step) bool { return allowed }),
		),
	}

	m := statemachine.MustNew(review, opts...)
	assert.False(t, m.CanFire(ctx, approve))
	assert.ErrorIs(t, m.Fire(ctx, approve), statemachine.ErrTransitionRejected)
	assert.Equal(t, review, m.Current())

	allowed = true
	require.NoError(t, m.Fire(ctx, approve))
	assert.Equal(t, published, m.Current())
}

func TestMachine_FirstPassingTransitionWins(t *testing.T) {
	t.Parallel()

	opts := []option{
		statemachine.WithTransition(review, rejected, approve,
			statemachine.WithGuard(func(context.Context, step) bool { return false }),
		),
		statemachine.WithTransition[state, event](review, published, approve),
		statemachine.WithTransition[state, event](review, draft, approve),
	}
	m := statemachine.MustNew(review, opts...)

	require.NoError(t, m.Fire(context.Background(), approve))
	assert.Equal(t, published, m.Current())
}

func TestMachine_Actions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("run in order with step", func(t *testing.T) {
		t.Parallel()
		var calls []string
		record := func(name string) statemachine.Action[state, event] {
			return func(_ context.Context, s step) error {
				calls = append(calls, name+":"+string(s.From)+"->"+string(s.To)+"/"+string(s.Event))
				return nil
			}
		}

		m := statemachine.MustNew(draft,
			statemachine.WithTransition(draft, review, submit,
				statemachine.WithAction(record("a")),
				statemachine.WithAction(record("b")),
			),
		)
		require.NoError(t, m.Fire(ctx, submit))
		assert.Equal(t, []string{"a:draft->review/submit", "b:draft->review/submit"}, calls)
	})

	t.Run("failure keeps state", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		secondRan := false

		m := statemachine.MustNew(draft,
			statemachine.WithTransition(draft, review, submit,
				statemachine.WithAction(func(context.Context, step) error { return boom }),
				statemachine.WithAction(func(context.Context, step) error { secondRan = true; return nil }),
			),
		)

		err := m.Fire(ctx, submit)
		assert.ErrorIs(t, err, statemachine.ErrActionFailed)
		assert.ErrorIs(t, err, boom)
		assert.False(t, secondRan)
		assert.Equal(t, draft, m.Current())
	})
}

func TestMachine_ConcurrentFire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := statemachine.MustNew(draft,
		statemachine.WithTransition[state, event](draft, review, submit),
	)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Fire(ctx, submit) == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, review, m.Current())
}
