// Package async runs independent calls concurrently and collects their
// outcomes.
//
// Async starts one function in its own goroutine and returns a Future. Map
// fans a slice of inputs out over a bounded number of workers and returns one
// Outcome per input, in input order, so a failed item never hides the results
// of the others:
//
//	outcomes := async.Map(ctx, urls, 4, func(ctx context.Context, u string) (detector.Result, error) {
//		return router.SubmitByURL(ctx, u, visitorID)
//	})
//	for _, o := range outcomes {
//		if o.Err != nil {
//			...
//		}
//	}
//
// Work not yet started when ctx is canceled is skipped and reported with the
// context error.
package async
