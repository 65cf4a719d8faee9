package async_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/detectkit/pkg/async"
)

func TestAsync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := async.Async(ctx, 21, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, f.Done())
}

func TestAsync_CanceledContextSkipsCall(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Bool
	_, err := async.Async(ctx, 1, func(context.Context, int) (int, error) {
		called.Store(true)
		return 0, nil
	}).Await()

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called.Load())
}

func TestFuture_AwaitWithTimeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	defer close(release)

	f := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		<-release
		return 1, nil
	})
	_, err := f.AwaitWithTimeout(20 * time.Millisecond)
	assert.ErrorIs(t, err, async.ErrTimeout)
	assert.False(t, f.Done())
}

func TestWaitAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("boom")

	fn := func(_ context.Context, n int) (string, error) {
		if n == 2 {
			return "", boom
		}
		return fmt.Sprint(n), nil
	}
	results, err := async.WaitAll(
		async.Async(ctx, 1, fn),
		async.Async(ctx, 2, fn),
		async.Async(ctx, 3, fn),
	)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"1", "", "3"}, results)
}

func TestMap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var inFlight, peak atomic.Int32
	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out := async.Map(ctx, inputs, 3, func(_ context.Context, n int) (int, error) {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		if n%4 == 0 {
			return 0, fmt.Errorf("item %d", n)
		}
		return n * n, nil
	})

	require.Len(t, out, len(inputs))
	for i, o := range out {
		assert.Equal(t, inputs[i], o.Input)
		if o.Input%4 == 0 {
			assert.Error(t, o.Err)
			continue
		}
		assert.NoError(t, o.Err)
		assert.Equal(t, o.Input*o.Input, o.Value)
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestMap_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := async.Map(ctx, []string{"a", "b"}, 0, func(context.Context, string) (int, error) {
		return 1, nil
	})
	for _, o := range out {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.Empty(t, async.Map(ctx, []string(nil), 2, func(context.Context, string) (int, error) { return 0, nil }))
}
