/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gc

import (
	"sync"
	"time"

	"jacobin/object"
	"jacobin/trace"
)

// finalizeFunc runs one object's finalize() method, if its type declares
// one. Supplied by src/vm at startup, since gc cannot import the
// interpreter (which in turn depends on classloader and gc both).
type finalizeFunc func(obj *object.Object)

// finalizerQueue is the three-stage in/current/out pipeline of
// original_source's SimpleFinalizer: objects swept by the collector land
// in "in", get moved to "current" for the duration of one finalize pass
// (so incoming objects don't race with the pass that's already running),
// then move to "out" once finalized.
type finalizerQueue struct {
	mu       sync.Mutex
	in       []*object.Object
	current  []*object.Object
	out      []*object.Object
	runFunc  finalizeFunc
	pollOnce sync.Once
}

// Finalizer is the process-wide finalization pipeline, started by
// StartServices alongside the collector thread.
var Finalizer = &finalizerQueue{}

// SetFinalizeFunc installs the callback used to actually run an object's
// finalize() method. Must be called before StartServices.
func SetFinalizeFunc(f finalizeFunc) { Finalizer.runFunc = f }

// hasFinalizerFunc reports whether obj's type declares a finalize()
// override rather than inheriting the root's default (spec §4.5: "objects
// whose type declares a non-default finalizer"). Supplied by src/vm, same
// reason as finalizeFunc -- gc cannot import the class model.
var hasFinalizerFunc func(obj *object.Object) bool

// SetHasFinalizerFunc installs the predicate Collect uses to decide
// whether a just-swept object goes to the finalizer queue at all. Must be
// called before the first Collect.
func SetHasFinalizerFunc(f func(obj *object.Object) bool) { hasFinalizerFunc = f }

func (fq *finalizerQueue) enqueue(obj *object.Object) {
	fq.mu.Lock()
	fq.in = append(fq.in, obj)
	fq.mu.Unlock()
}

// Drain moves every pending "in" object to "current", finalizes each
// (wall-clock logged at debug level like the original), and moves them to
// "out". Mirrors original_source's SimpleFinalizer::finalize.
func (fq *finalizerQueue) Drain() int {
	fq.mu.Lock()
	fq.current, fq.in = fq.in, nil
	fq.mu.Unlock()

	if len(fq.current) == 0 {
		return 0
	}

	start := time.Now()
	for _, obj := range fq.current {
		if fq.runFunc != nil {
			fq.runFunc(obj)
		}
	}
	n := len(fq.current)
	trace.Fields(map[string]interface{}{
		"count": n, "elapsed_ms": time.Since(start).Milliseconds(),
	}, "gc: finalized objects")

	fq.mu.Lock()
	fq.out = append(fq.out, fq.current...)
	fq.current = nil
	fq.mu.Unlock()

	return n
}

// Pending reports how many objects are waiting to be finalized (queued or
// mid-pass), used by the exit path to decide whether one more drain is
// worth running before the process tears down.
func (fq *finalizerQueue) Pending() int {
	fq.mu.Lock()
	defer fq.mu.Unlock()
	return len(fq.in) + len(fq.current)
}
