package worker

import (
	"context"
	"sync"
)

// Map applies fn to every input on a bounded set of workers and returns the
// outputs in input order. The first error cancels the remaining work and is
// returned; outputs are discarded in that case.
func Map[In, Out any](ctx context.Context, workers int, inputs []In, fn func(ctx context.Context, in In) (Out, error)) ([]Out, error) {
	outputs := make([]Out, len(inputs))
	if len(inputs) == 0 {
		return outputs, nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	jobs := make(chan int, workers*2) // Buffered to prevent blocking

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if runCtx.Err() != nil {
					continue // Drain the queue after cancellation
				}
				out, err := fn(runCtx, inputs[idx])
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}
				outputs[idx] = out
			}
		}()
	}

submit:
	for idx := range inputs {
		select {
		case <-runCtx.Done():
			break submit
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outputs, nil
}
