/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gc

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"jacobin/trace"
)

// pollInterval and growthThreshold are original_source's GCThread
// policy constants: wake every 250ms, but only actually run a cycle once
// the heap has grown by more than 100 objects since the last one.
const (
	pollInterval    = 250 * time.Millisecond
	growthThreshold = 100
	finalizerPoll   = 10 * time.Millisecond
)

// RootFunc supplies the current GC roots (handles reachable from frame
// locals, operand stacks, and static fields) at collection time. Supplied
// by src/vm, which is the only package that can see every live thread's
// frames.
type RootFunc func() []uint64

// StartServices launches the collector and finalizer as two goroutines
// coordinated by an errgroup.Group, grouping the service's background
// goroutines under one cancelable group rather than hand-rolling a
// WaitGroup plus a stop channel per goroutine. Returns a stop function
// that cancels both loops, waits for them to return, and then itself runs
// one exit-time collection (CollectForExit) and one finalizer drain.
func StartServices(ctx context.Context, roots RootFunc) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return collectorLoop(gctx, roots) })
	g.Go(func() error { return finalizerLoop(gctx) })

	return func() {
		cancel()
		_ = g.Wait()
		CollectForExit()
		Finalizer.Drain()
	}
}

// collectorLoop is a direct port of original_source's GCThread::run: wake
// every pollInterval, but only break out to actually collect once the
// heap has grown past growthThreshold since the last cycle (or the
// context is done, in which case the caller's stop function runs the
// exit-time collection instead).
func collectorLoop(ctx context.Context, roots RootFunc) error {
	lastSize := Size()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if Size()-lastSize <= growthThreshold {
				continue
			}
		}

		start := time.Now()
		Collect(roots())
		lastSize = Size()
		trace.Fields(map[string]interface{}{
			"needed_ms": time.Since(start).Milliseconds(),
		}, "gc: cycle needed")
	}
}

// finalizerLoop drains the finalization pipeline on a short, fixed
// interval -- original_source runs SimpleFinalizer on its own dedicated
// thread rather than folding it into the collector's cycle, since
// finalize() methods may run arbitrary (and slow) user code.
func finalizerLoop(ctx context.Context) error {
	ticker := time.NewTicker(finalizerPoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			Finalizer.Drain()
		}
	}
}
