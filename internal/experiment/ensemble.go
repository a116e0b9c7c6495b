package experiment

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/buoysim/internal/config"
)

// RunBatch runs one experiment per configuration on up to workers goroutines.
// Results keep the input order; the first error is returned after every run
// has finished.
func RunBatch(ctx context.Context, cfgs []config.Config, workers int) ([]*Result, error) {
	results, errs := RunAll(ctx, cfgs, workers)
	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// RunAll is RunBatch with one error slot per configuration. A result is nil
// only when its engine could not be built.
func RunAll(ctx context.Context, cfgs []config.Config, workers int) ([]*Result, []error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	// each engine is owned by the goroutine that built it
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				exp, err := New(cfgs[idx])
				if err != nil {
					errs[idx] = err
					continue
				}
				results[idx], errs[idx] = exp.Run(ctx)
			}
		}()
	}

	for i := range cfgs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results, errs
}
