/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frames

import (
	"testing"

	"jacobin/classloader"
)

func TestFillParametersAdvancesTwoSlotsForWideArgs(t *testing.T) {
	m := &classloader.Method{MaxLocals: 5, MaxStack: 2}
	f := New(m, nil)

	f.FillParameters(1, []Slot{LongSlot(42), IntSlot(7)})

	if got := f.GetLocal(1); got.Kind != KindLong || got.I64 != 42 {
		t.Fatalf("expected long 42 at local 1, got %+v", got)
	}
	if got := f.GetLocal(3); got.Kind != KindInt || got.I32 != 7 {
		t.Fatalf("expected int 7 at local 3 (after the wide long), got %+v", got)
	}
}

func TestOperandStackPushPop(t *testing.T) {
	m := &classloader.Method{MaxLocals: 0, MaxStack: 2}
	f := New(m, nil)

	if err := f.Operand.Push(IntSlot(1)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := f.Operand.Push(IntSlot(2)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := f.Operand.Push(IntSlot(3)); err == nil {
		t.Fatalf("expected overflow error pushing beyond max-stack")
	}

	v, err := f.Operand.Pop()
	if err != nil || v.I32 != 2 {
		t.Fatalf("expected top-of-stack 2, got %+v err=%v", v, err)
	}
}

func TestFrameStackPushPopOrder(t *testing.T) {
	fs := CreateFrameStack()
	m := &classloader.Method{}
	f1 := New(m, nil)
	f2 := New(m, nil)

	_ = PushFrame(fs, f1)
	_ = PushFrame(fs, f2)

	if Depth(fs) != 2 {
		t.Fatalf("expected depth 2, got %d", Depth(fs))
	}

	top, err := PopFrame(fs)
	if err != nil || top != f2 {
		t.Fatalf("expected f2 popped first (LIFO), got %v err=%v", top, err)
	}
}
