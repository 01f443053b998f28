/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MethArea is the JVM-wide table of loaded types, keyed by name. It is
// the "cache by name" step of the lookup order in spec §4.2. Hot names
// (the ones actually re-referenced during a run) are additionally kept
// in a bounded LRU so that long-running lookups don't have to retake the
// map's lock in the common case of "we've resolved this a thousand
// times already".
var (
	methAreaMu sync.RWMutex
	methArea   = make(map[string]*Klass)
	hotCache   *lru.Cache[string, *Klass]
)

func init() {
	hotCache, _ = lru.New[string, *Klass](2048)
}

// MethAreaFetch returns the Klass registered under name, or nil if none
// has been loaded yet.
func MethAreaFetch(name string) *Klass {
	if k, ok := hotCache.Get(name); ok {
		return k
	}
	methAreaMu.RLock()
	k := methArea[name]
	methAreaMu.RUnlock()
	if k != nil {
		hotCache.Add(name, k)
	}
	return k
}

// MethAreaInsert registers k under name, overwriting any prior entry
// (used both for Load's "loading" placeholder and the final
// fully-linked type).
func MethAreaInsert(name string, k *Klass) {
	methAreaMu.Lock()
	methArea[name] = k
	methAreaMu.Unlock()
	hotCache.Add(name, k)
}

// MethAreaDelete removes name's entry, used by Load to undo the
// "loading" placeholder it installs before parsing when parsing or
// linking subsequently fails -- otherwise the failed name would be
// mistaken for a successfully loaded (but empty) type on retry.
func MethAreaDelete(name string) {
	methAreaMu.Lock()
	delete(methArea, name)
	methAreaMu.Unlock()
	hotCache.Remove(name)
}

// MethAreaSize reports how many types have been registered, loaded or
// still-initializing.
func MethAreaSize() int {
	methAreaMu.RLock()
	defer methAreaMu.RUnlock()
	return len(methArea)
}

// MethAreaSnapshot returns every Klass currently registered, loaded or
// still-initializing. Callers that need to visit every loaded type's
// static storage (the GC root walk's "static field cells" category, spec
// §4.5) take this copy rather than holding methAreaMu for the duration
// of their own walk.
func MethAreaSnapshot() []*Klass {
	methAreaMu.RLock()
	defer methAreaMu.RUnlock()
	snap := make([]*Klass, 0, len(methArea))
	for _, k := range methArea {
		snap = append(snap, k)
	}
	return snap
}

// ResetMethArea clears the method area. Used by tests and VM restart.
func ResetMethArea() {
	methAreaMu.Lock()
	methArea = make(map[string]*Klass)
	methAreaMu.Unlock()
	hotCache.Purge()
}
