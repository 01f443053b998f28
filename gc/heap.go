/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package gc implements the heap registry, mark-sweep collector, and
// finalizer thread of spec §4.5. Objects never hold direct Go pointers to
// other objects in their field area (src/object stores reference fields
// as opaque 8-byte handles); this package is what turns a handle back
// into an *object.Object, and is therefore also where "is this object
// still reachable" has to be decided.
package gc

import (
	"sync"

	"jacobin/object"
)

// heap is the registry of every live object/array this VM has allocated,
// keyed by a monotonically increasing handle -- the same value stored in
// a reference field's 8-byte slot. 0 is reserved for null.
var (
	heapMu   sync.Mutex
	heap     = make(map[uint64]*object.Object)
	arrays   = make(map[uint64]*object.Array)
	nextID   uint64 = 1
)

// Register assigns a fresh handle to obj and adds it to the heap. Called
// by the allocator immediately after construction, before the handle can
// be stored into any field or local.
func Register(obj *object.Object) uint64 {
	heapMu.Lock()
	defer heapMu.Unlock()
	id := nextID
	nextID++
	heap[id] = obj
	return id
}

// RegisterArray is Register's counterpart for array objects, tracked
// separately since an Array embeds Object but needs its own reachability
// walk (element area, not field area).
func RegisterArray(arr *object.Array) uint64 {
	heapMu.Lock()
	defer heapMu.Unlock()
	id := nextID
	nextID++
	arrays[id] = arr
	heap[id] = &arr.Object
	return id
}

// Resolve turns a handle back into its *object.Object, or nil for the
// null handle or one already collected.
func Resolve(handle uint64) *object.Object {
	if handle == 0 {
		return nil
	}
	heapMu.Lock()
	defer heapMu.Unlock()
	return heap[handle]
}

// ResolveArray is Resolve's array-aware counterpart, needed by the mark
// phase to walk element slots rather than field slots.
func ResolveArray(handle uint64) *object.Array {
	if handle == 0 {
		return nil
	}
	heapMu.Lock()
	defer heapMu.Unlock()
	return arrays[handle]
}

// Size reports how many handles are currently live, used by the
// collector-thread policy to decide whether a cycle is worth running.
func Size() int {
	heapMu.Lock()
	defer heapMu.Unlock()
	return len(heap)
}

// snapshot copies the current handle set out from under the lock, so the
// mark/sweep pass doesn't hold heapMu for its whole duration -- allocation
// must keep working concurrently with a collection cycle.
func snapshot() map[uint64]*object.Object {
	heapMu.Lock()
	defer heapMu.Unlock()
	out := make(map[uint64]*object.Object, len(heap))
	for id, o := range heap {
		out[id] = o
	}
	return out
}

// remove deletes handle from both tables; called during sweep for every
// object found unreachable, before any hand-off to the finalizer.
func remove(handle uint64) {
	heapMu.Lock()
	delete(heap, handle)
	delete(arrays, handle)
	heapMu.Unlock()
}

// Deregister is remove's exported counterpart, used by the finalizer
// caller (src/vm) to drop the temporary handle it registers so an
// unreachable object's finalize() method has a valid "this" to resolve
// field accesses through -- once the call returns, the object has no
// other path back into the heap and the handle is retired immediately
// rather than lingering until the next sweep finds it unmarked again.
func Deregister(handle uint64) {
	remove(handle)
}
