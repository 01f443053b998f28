/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package stringPool is the interned-string pool of spec §3: a mapping
// from a Go string (by value) to a single pool index, protected by its
// own mutex per spec §5(d).
package stringPool

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// pool holds every interned string ever seen, indexed by StringIndex.
// lookup is the reverse map (value -> index) consulted on every intern
// call; it is backed by a bounded LRU so that long-running programs that
// churn through many distinct literals don't grow this reverse index
// without bound, while classes and names -- which are re-interned
// constantly during loading -- stay hot in cache.
var (
	mutex  sync.Mutex
	pool   []string
	lookup *lru.Cache[string, uint32]
)

func init() {
	Reset()
}

// Reset clears the pool. Used at VM startup and by tests.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	pool = make([]string, 0, 1024)
	lookup, _ = lru.New[string, uint32](8192)
	// index 0 is reserved as "invalid"; 1 is java/lang/Object, 2 is
	// java/lang/String, matching types.ObjectPoolStringIndex/StringPoolStringIndex.
	pool = append(pool, "", "java/lang/Object", "java/lang/String")
	lookup.Add("", 0)
	lookup.Add("java/lang/Object", 1)
	lookup.Add("java/lang/String", 2)
}

// GetStringIndex interns s if it is not already present, and returns its
// pool index either way. Two calls with equal s always return the same
// index (round-trip/idempotency property of spec §8).
func GetStringIndex(s string) uint32 {
	mutex.Lock()
	defer mutex.Unlock()
	if idx, ok := lookup.Get(s); ok {
		return idx
	}
	for i, p := range pool {
		if p == s {
			lookup.Add(s, uint32(i))
			return uint32(i)
		}
	}
	idx := uint32(len(pool))
	pool = append(pool, s)
	lookup.Add(s, idx)
	return idx
}

// GetStringPointer returns a pointer to the pooled string at idx, or nil
// if idx is out of range.
func GetStringPointer(idx uint32) *string {
	mutex.Lock()
	defer mutex.Unlock()
	if int(idx) >= len(pool) {
		return nil
	}
	return &pool[idx]
}

// GetStringPoolSize reports how many strings have been interned so far.
func GetStringPoolSize() uint32 {
	mutex.Lock()
	defer mutex.Unlock()
	return uint32(len(pool))
}
