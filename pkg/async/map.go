package async

import (
	"context"
	"sync"
)

// Outcome is the result of one Map item.
type Outcome[T, U any] struct {
	Input T
	Value U
	Err   error
}

// Map calls fn for every input using at most limit goroutines (limit <= 0
// means one per input) and returns outcomes in input order.
func Map[T, U any](ctx context.Context, inputs []T, limit int, fn func(context.Context, T) (U, error)) []Outcome[T, U] {
	out := make([]Outcome[T, U], len(inputs))
	if len(inputs) == 0 {
		return out
	}
	if limit <= 0 || limit > len(inputs) {
		limit = len(inputs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range limit {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i].Input = inputs[i]
				if err := ctx.Err(); err != nil {
					out[i].Err = err
					continue
				}
				out[i].Value, out[i].Err = fn(ctx, inputs[i])
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}
