/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gc

import (
	"jacobin/trace"
)

// Stats summarizes one completed collection cycle, reported for tracing
// and for tests that want to assert on sweep counts without reaching into
// the heap registry directly.
type Stats struct {
	Live      int
	Collected int
}

// Collect runs one full mark-sweep cycle: unmark everything, mark
// everything reachable from roots, sweep (hand over, to the finalizer,
// and deregister) everything left unmarked. roots are handles into live
// locals, operand stack slots, and static fields across every loaded
// type -- supplied by the caller (src/vm), since gc deliberately doesn't
// know about frames or the method area.
func Collect(roots []uint64) Stats {
	objs := snapshot()
	markUnused(objs)

	for _, r := range roots {
		markUsed(r)
	}

	collected := 0
	for handle, obj := range objs {
		if obj.Mark.Used() {
			continue
		}
		remove(handle)
		if !obj.Finalized && hasFinalizerFunc != nil && hasFinalizerFunc(obj) {
			obj.Finalized = true
			Finalizer.enqueue(obj)
		}
		collected++
	}

	stats := Stats{Live: len(objs) - collected, Collected: collected}
	trace.Fields(map[string]interface{}{
		"live": stats.Live, "collected": stats.Collected,
	}, "gc: cycle complete")
	return stats
}

// CollectForExit runs a final, unconditional sweep with no roots at all
// -- everything still on the heap is, by definition, unreachable once the
// VM is shutting down -- matching
// original_source's GCThread::run calling collectGarbageForExit() once
// its run loop exits.
func CollectForExit() Stats {
	return Collect(nil)
}
