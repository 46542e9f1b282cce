// Package utils contains small shared helpers.
package utils

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// SimpleFunc is for RunInParallel.
type SimpleFunc func(ctx context.Context) error

// RunInParallel runs all functions in parallel and waits for every one to
// finish. The first failure cancels the shared context so the others can bail
// out early; all collected errors come back combined. Panics inside a
// function are captured and reported as errors rather than taking down the
// caller. The returned duration is the wall time of the whole batch.
func RunInParallel(ctx context.Context, fs []SimpleFunc) (time.Duration, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	var combined error
	var combinedMu sync.Mutex
	storeErr := func(err error) {
		combinedMu.Lock()
		defer combinedMu.Unlock()
		if combined == nil || !errors.Is(err, context.Canceled) {
			combined = multierr.Combine(combined, err)
		}
	}

	run := func(f SimpleFunc) {
		defer func() {
			if thePanic := recover(); thePanic != nil {
				storeErr(errors.Errorf("got panic running something in parallel: %v", thePanic))
				cancel()
			}
			wg.Done()
		}()
		if err := f(ctx); err != nil {
			storeErr(err)
			cancel()
		}
	}

	for _, f := range fs {
		wg.Add(1)
		go run(f)
	}

	wg.Wait()
	return time.Since(start), combined
}
