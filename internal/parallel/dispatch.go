// Package parallel runs row-partitioned work on a bounded set of goroutines.
//
// Every call to For spawns a fresh worker group sized to the clamped thread
// count, hands each worker one contiguous row range and joins all of them
// before returning. Ranges are disjoint, so workers may write their rows of
// shared output tensors without further coordination. There is no partial
// success: if any worker fails, or a worker could not be started, the whole
// call fails.
package parallel

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type group interface {
	TryGo(fn func() error) bool
	Wait() error
}

// newGroup is swapped out in tests to simulate workers that cannot be
// started.
var newGroup = func(limit int) group {
	g := new(errgroup.Group)
	g.SetLimit(limit)
	return g
}

// For partitions [0, n) across up to threads workers and calls fn once per
// range, concurrently. It returns after every started worker has finished.
//
// A worker that returns an error or panics yields a KindThreadJoin error. If
// a worker cannot be started, the workers already running are still joined
// and a KindThreadCreation error is returned; rows of unstarted ranges are
// left untouched.
func For(n, threads int, fn func(r Range) error) error {
	if n <= 0 {
		return nil
	}

	ranges, err := allocate(n, threads)
	if err != nil {
		return &Error{Kind: KindAllocation, Worker: -1, Err: err}
	}

	if len(ranges) == 1 {
		if err := runWorker(0, ranges[0], fn); err != nil {
			return &Error{Kind: KindThreadJoin, Worker: 0, Err: err}
		}
		return nil
	}

	g := newGroup(len(ranges))
	started := 0
	for w, r := range ranges {
		if !g.TryGo(func() error { return runWorker(w, r, fn) }) {
			break
		}
		started++
	}

	joinErr := g.Wait()
	if started < len(ranges) {
		return &Error{
			Kind:   KindThreadCreation,
			Worker: started,
			Err:    fmt.Errorf("started %d of %d workers", started, len(ranges)),
		}
	}
	if joinErr != nil {
		worker := -1
		var we workerError
		if errors.As(joinErr, &we) {
			worker = we.worker
		}
		return &Error{Kind: KindThreadJoin, Worker: worker, Err: joinErr}
	}
	return nil
}

func runWorker(w int, r Range, fn func(Range) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = workerError{worker: w, err: panicError(rec)}
		}
	}()
	if err := fn(r); err != nil {
		return workerError{worker: w, err: err}
	}
	return nil
}

func allocate(n, threads int) (ranges []Range, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ranges = nil
			err = fmt.Errorf("range bookkeeping: %v", rec)
		}
	}()
	ranges = Partition(n, threads)
	if len(ranges) == 0 {
		return nil, errors.New("no row ranges produced")
	}
	return ranges, nil
}
