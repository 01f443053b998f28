/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"testing"

	"jacobin/gc"
	"jacobin/stringPool"
)

// TestInternedStringHandleIsStableAndRootable exercises spec §4.5's
// "interned strings" root category: repeated resolution of the same pool
// index must yield the same gc handle (shared mirror identity), and that
// handle must be a real heap-registered object visible to
// InternedStringHandles, not a bare pool index.
func TestInternedStringHandleIsStableAndRootable(t *testing.T) {
	si := stringPool.GetStringIndex("roots-test-literal-for-interning")

	h1 := internedStringHandle(si)
	h2 := internedStringHandle(si)
	if h1 != h2 {
		t.Fatalf("expected stable handle across repeated resolution, got %d and %d", h1, h2)
	}
	if h1 == 0 {
		t.Fatalf("expected non-zero gc handle")
	}
	if gc.Resolve(h1) == nil {
		t.Fatalf("interned mirror handle should resolve to a real heap object")
	}

	found := false
	for _, h := range InternedStringHandles() {
		if h == h1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %d in InternedStringHandles()", h1)
	}
}
