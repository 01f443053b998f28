/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package thread

import (
	"testing"
	"time"
)

func TestMonitorEnterExitIsRecursive(t *testing.T) {
	m := NewMonitor()
	owner := New("owner", false)

	m.Enter(owner)
	m.Enter(owner) // re-entrant: same thread, must not deadlock
	m.Enter(owner)

	if err := m.Exit(owner); err != nil {
		t.Fatalf("Exit (1/3): %v", err)
	}
	if err := m.Exit(owner); err != nil {
		t.Fatalf("Exit (2/3): %v", err)
	}
	if !m.OwnedBy(owner) {
		t.Fatalf("expected owner to still hold the monitor after 2 of 3 exits")
	}
	if err := m.Exit(owner); err != nil {
		t.Fatalf("Exit (3/3): %v", err)
	}
	if m.OwnedBy(owner) {
		t.Fatalf("expected monitor to be free after matching exits")
	}
}

func TestMonitorExitByNonOwnerIsIllegalState(t *testing.T) {
	m := NewMonitor()
	owner := New("owner", false)
	other := New("other", false)

	m.Enter(owner)
	if err := m.Exit(other); err != ErrIllegalMonitorState {
		t.Fatalf("expected ErrIllegalMonitorState, got %v", err)
	}
}

func TestMonitorBlocksSecondThreadUntilReleased(t *testing.T) {
	m := NewMonitor()
	t1 := New("t1", false)
	t2 := New("t2", false)

	m.Enter(t1)

	acquired := make(chan struct{})
	go func() {
		m.Enter(t2)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatalf("second thread acquired the monitor while the first still held it")
	case <-time.After(30 * time.Millisecond):
	}

	_ = m.Exit(t1)

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("second thread never acquired the monitor after release")
	}
	_ = m.Exit(t2)
}

func TestMonitorWaitNotify(t *testing.T) {
	m := NewMonitor()
	waiter := New("waiter", false)
	notifier := New("notifier", false)

	ready := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		m.Enter(waiter)
		close(ready)
		err := m.Wait(waiter, 0)
		_ = m.Exit(waiter)
		done <- err
	}()

	<-ready
	time.Sleep(20 * time.Millisecond) // give the waiter time to actually call Wait

	m.Enter(notifier)
	if err := m.Notify(notifier); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	_ = m.Exit(notifier)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("waiter never woke up")
	}
}

func TestMonitorWaitNegativeTimeoutIsIllegalArgument(t *testing.T) {
	m := NewMonitor()
	owner := New("owner", false)
	m.Enter(owner)
	defer func() { _ = m.Exit(owner) }()

	if err := m.Wait(owner, -1); err != ErrIllegalArgument {
		t.Fatalf("expected ErrIllegalArgument, got %v", err)
	}
}

func TestThreadStartAndJoin(t *testing.T) {
	th := New("worker", false)
	ran := false
	th.Start(func() { ran = true })
	th.Join()
	if !ran {
		t.Fatalf("expected thread body to run before Join returned")
	}
	if th.GetState() != StateTerminated {
		t.Fatalf("expected StateTerminated after Join, got %v", th.GetState())
	}
}
