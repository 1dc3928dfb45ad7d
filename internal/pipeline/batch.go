package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/banshee-data/trackfinder/internal/event"
)

// PredictBatch runs Predict over events on a fixed pool of workers.
// Results are returned in event order. The first error, or cancellation
// of ctx, stops the remaining work.
func (p *Pipeline) PredictBatch(ctx context.Context, events []event.Event, workers int) ([][]int, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(events) {
		workers = len(events)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]int, len(events))
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				labels, err := p.Predict(events[i])
				if err != nil {
					fail(fmt.Errorf("event %d: %w", i, err))
					continue
				}
				results[i] = labels
			}
		}()
	}

feed:
	for i := range events {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
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
	return results, nil
}
