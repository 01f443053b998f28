/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package thread

import (
	"sync"
	"time"
)

// condition is a thin wrapper over sync.Cond bound to a monitor's guard
// lock, split out from Monitor the way original_source keeps Condition
// separate from Mutex.
//
// Timeout handling differs from original_source, whose Condition::wait
// accepts a timeout parameter but whose non-Ghost branch always calls the
// untimed pthread_cond_wait ("// TODO" left in place of a timed variant).
// Here wait(ms>0) uses a timer goroutine that broadcasts on expiry, so the
// waiter wakes after roughly ms milliseconds; ms<=0 waits indefinitely.
// Callers should not rely on sub-millisecond wake accuracy.
type condition struct {
	cond *sync.Cond
}

func newCondition(l sync.Locker) *condition {
	return &condition{cond: sync.NewCond(l)}
}

func (c *condition) signal()    { c.cond.Signal() }
func (c *condition) broadcast() { c.cond.Broadcast() }

// wait blocks on the condition, releasing the associated lock for the
// duration, until notify/notifyAll wakes it or (for ms > 0) the timeout
// elapses. The caller must already hold the associated lock.
func (c *condition) wait(ms int64) {
	if ms <= 0 {
		c.cond.Wait()
		return
	}

	timer := time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
		c.cond.Broadcast()
	})
	defer timer.Stop()
	c.cond.Wait()
}
