/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package thread

import "github.com/pkg/errors"

// ErrIllegalMonitorState is raised whenever a caller exits, notifies, or
// waits on a monitor it does not currently own, matching spec §4.6 and
// original_source's CLASSNAME_ILLEGALMONITORSTATEEXCEPTION checks on
// every one of Monitor::exit/notify/notify_all/wait.
var ErrIllegalMonitorState = errors.New("java.lang.IllegalMonitorStateException")

// ErrIllegalArgument is raised by Wait for a negative timeout.
var ErrIllegalArgument = errors.New("java.lang.IllegalArgumentException")

// Monitor is the recursive-mutex-plus-condition-variable pair of spec
// §4.6/§3 Glossary, attached by identity to one object or type mirror.
// Every user-visible lock in this runtime (monitorenter/monitorexit,
// synchronized method entry, Object.wait/notify) goes through one of
// these.
type Monitor struct {
	mu   *recursiveMutex
	wait *condition
}

// NewMonitor allocates an unowned monitor.
func NewMonitor() *Monitor {
	m := &Monitor{mu: newRecursiveMutex()}
	m.wait = newCondition(&m.mu.guard)
	return m
}

// Enter blocks until the monitor is free or already held by t, then
// increments its recursion depth. Matches Monitor::enter.
func (m *Monitor) Enter(t *Thread) {
	t.setState(StateBlocked)
	wasUnowned := !m.mu.heldBy(t)
	m.mu.lock(t)
	t.setState(StateRunnable)
	if wasUnowned {
		t.recordMonitorAcquired(m)
	}
}

// TryEnter is Enter's non-blocking counterpart. Matches Monitor::try_enter.
func (m *Monitor) TryEnter(t *Thread) bool {
	wasUnowned := !m.mu.heldBy(t)
	ok := m.mu.tryLock(t)
	if ok && wasUnowned {
		t.recordMonitorAcquired(m)
	}
	return ok
}

// Exit releases one level of recursion, fully releasing the monitor once
// depth reaches zero and waking one thread blocked in Enter. Matches
// Monitor::exit.
func (m *Monitor) Exit(t *Thread) error {
	if !m.mu.unlock(t) {
		return ErrIllegalMonitorState
	}
	if !m.mu.heldBy(t) {
		t.recordMonitorReleased(m)
	}
	return nil
}

// Notify wakes one thread parked in Wait on this monitor. Matches
// Monitor::notify.
func (m *Monitor) Notify(t *Thread) error {
	if !m.mu.heldBy(t) {
		return ErrIllegalMonitorState
	}
	m.wait.signal()
	return nil
}

// NotifyAll wakes every thread parked in Wait on this monitor. Matches
// Monitor::notify_all.
func (m *Monitor) NotifyAll(t *Thread) error {
	if !m.mu.heldBy(t) {
		return ErrIllegalMonitorState
	}
	m.wait.broadcast()
	return nil
}

// Wait releases the monitor (recording its recursion depth), blocks on
// the condition variable for up to ms milliseconds (0 means indefinite),
// then re-acquires the monitor at the same recursion depth before
// returning -- spec §4.6's "caller owns m at return with the same
// recursion depth as before" law. Matches Monitor::wait.
func (m *Monitor) Wait(t *Thread, ms int64) error {
	m.mu.guard.Lock()
	if m.mu.owner != t {
		m.mu.guard.Unlock()
		return ErrIllegalMonitorState
	}
	if ms < 0 {
		m.mu.guard.Unlock()
		return ErrIllegalArgument
	}

	savedDepth := m.mu.depth
	m.mu.owner = nil
	m.mu.depth = 0
	m.mu.cond.Signal() // let a blocked Enter proceed while we wait
	t.recordMonitorReleased(m)

	t.setState(StateWaiting)
	m.wait.wait(ms)

	for m.mu.owner != nil && m.mu.owner != t {
		m.mu.cond.Wait()
	}
	m.mu.owner = t
	m.mu.depth = savedDepth
	t.recordMonitorAcquired(m)
	t.setState(StateRunnable)

	m.mu.guard.Unlock()
	return nil
}

// OwnedBy reports whether t currently holds the monitor. The interpreter's
// monitorexit does not call it; it calls Exit, which makes its own
// ownership check.
func (m *Monitor) OwnedBy(t *Thread) bool {
	return m.mu.heldBy(t)
}
