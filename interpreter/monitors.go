/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"sync"

	"jacobin/thread"
)

// monitorTable lazily associates a thread.Monitor with an object's GC
// handle the first time anything synchronizes on it -- every object is a
// potential monitor in the JVM model (spec §5 "Monitor"), so the cost of
// one is paid only for objects actually used as locks rather than
// embedding a Monitor in every allocated Object.
var (
	monitorMu sync.Mutex
	monitors  = make(map[uint64]*thread.Monitor)
)

func monitorFor(handle uint64) *thread.Monitor {
	monitorMu.Lock()
	defer monitorMu.Unlock()
	m, ok := monitors[handle]
	if !ok {
		m = thread.NewMonitor()
		monitors[handle] = m
	}
	return m
}
