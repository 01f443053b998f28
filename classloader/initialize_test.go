/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"sync"
	"testing"
	"time"

	"jacobin/types"
)

func TestEnsureInitializedRunsClinitOnce(t *testing.T) {
	var runs int
	k := &Klass{
		Name:   "test/Once",
		Status: types.Loaded,
		ClInit: types.ClInitNotRun,
		DeclaredMethods: []*Method{
			{Name: "<clinit>", Descriptor: "()V"},
		},
	}
	invoke := func(m *Method) error { runs++; return nil }

	if err := EnsureInitialized(nil, k, invoke, 1); err != nil {
		t.Fatalf("first EnsureInitialized: %v", err)
	}
	if k.Status != types.Initialized {
		t.Fatalf("expected Initialized, got %v", k.Status)
	}
	if err := EnsureInitialized(nil, k, invoke, 2); err != nil {
		t.Fatalf("second EnsureInitialized (different thread): %v", err)
	}
	if runs != 1 {
		t.Fatalf("expected <clinit> to run exactly once, ran %d times", runs)
	}
}

func TestEnsureInitializedFailureIsCached(t *testing.T) {
	k := &Klass{
		Name:   "test/Failing",
		Status: types.Loaded,
		ClInit: types.ClInitNotRun,
		DeclaredMethods: []*Method{
			{Name: "<clinit>", Descriptor: "()V"},
		},
	}
	calls := 0
	invoke := func(m *Method) error { calls++; return errBoom }

	if err := EnsureInitialized(nil, k, invoke, 1); err == nil {
		t.Fatalf("expected first initialization to fail")
	}
	if k.Status != types.Failed {
		t.Fatalf("expected Failed, got %v", k.Status)
	}
	if err := EnsureInitialized(nil, k, invoke, 1); err == nil {
		t.Fatalf("expected second call on a Failed type to re-raise")
	}
	if calls != 1 {
		t.Fatalf("expected <clinit> to be attempted exactly once, attempted %d times", calls)
	}
}

func TestEnsureInitializedSameThreadReentryIsNoop(t *testing.T) {
	k := &Klass{
		Name:   "test/Reentrant",
		Status: types.Loaded,
		ClInit: types.ClInitNotRun,
		DeclaredMethods: []*Method{
			{Name: "<clinit>", Descriptor: "()V"},
		},
	}
	var invoke Invoker
	invoke = func(m *Method) error {
		// Simulate <clinit> itself touching one of its own static fields,
		// which re-enters EnsureInitialized from the same thread before
		// Status has reached Initialized.
		return EnsureInitialized(nil, k, invoke, 7)
	}

	if err := EnsureInitialized(nil, k, invoke, 7); err != nil {
		t.Fatalf("reentrant same-thread initialization should succeed, got %v", err)
	}
	if k.Status != types.Initialized {
		t.Fatalf("expected Initialized, got %v", k.Status)
	}
}

func TestEnsureInitializedOtherThreadBlocksUntilComplete(t *testing.T) {
	k := &Klass{
		Name:   "test/Concurrent",
		Status: types.Loaded,
		ClInit: types.ClInitNotRun,
		DeclaredMethods: []*Method{
			{Name: "<clinit>", Descriptor: "()V"},
		},
	}

	release := make(chan struct{})
	var driverStarted sync.WaitGroup
	driverStarted.Add(1)
	invoke := func(m *Method) error {
		driverStarted.Done()
		<-release
		return nil
	}

	go func() {
		_ = EnsureInitialized(nil, k, invoke, 100)
	}()
	driverStarted.Wait()

	// A second thread calling in while <clinit> is running must observe
	// Initializing, not short-circuit as a no-op -- it should block on
	// the type's lock until the driving thread finishes.
	done := make(chan error, 1)
	go func() {
		done <- EnsureInitialized(nil, k, invoke, 200)
	}()

	select {
	case <-done:
		t.Fatalf("second thread returned before the driving thread finished <clinit>")
	case <-time.After(50 * time.Millisecond):
		// expected: still blocked
	}

	close(release)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("second thread's EnsureInitialized failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("second thread never observed initialization complete")
	}
	if k.Status != types.Initialized {
		t.Fatalf("expected Initialized after both threads return, got %v", k.Status)
	}
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
