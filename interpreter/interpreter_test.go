/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"testing"

	"jacobin/classloader"
	"jacobin/frames"
	"jacobin/thread"
)

// runMethod drives a synthetic method's bytecode to completion on a
// fresh thread/context, returning its return slot. Tests in this file
// stick to opcodes that need no constant pool (no getstatic/invoke/ldc),
// so a bare Method with just Code/MaxStack/MaxLocals is enough.
func runMethod(t *testing.T, code []byte, maxStack, maxLocals int) frames.Slot {
	t.Helper()
	m := &classloader.Method{Code: code, MaxStack: maxStack, MaxLocals: maxLocals}
	ctx := NewContext(&classloader.AppCL, thread.New("test", false), nil)
	f := frames.New(m, ctx.Thread)
	v, _, err := Execute(ctx, f)
	if err != nil {
		t.Fatalf("unexpected error executing method: %v", err)
	}
	return v
}

// TestIaddReturnsSum exercises spec §8's "iconst_5; iconst_3; iadd;
// ireturn = 8" vector.
func TestIaddReturnsSum(t *testing.T) {
	code := []byte{opIconst5, opIconst3, opIadd, opIreturn}
	v := runMethod(t, code, 2, 0)
	if v.I32 != 8 {
		t.Fatalf("expected 8, got %d", v.I32)
	}
}

// TestIshlShiftsByLow5BitsOfShiftAmount exercises spec §8's
// "ishl 255 << 24 == -16777216" vector, and the shift distance masking
// (JLS 15.19): only the low 5 bits of the shift amount apply to an int
// shift, so a shift amount of 56 (56 & 31 == 24) gives the same result.
func TestIshlShiftsByLow5BitsOfShiftAmount(t *testing.T) {
	code := []byte{
		opSipush, 0x00, 0xff, // 255
		opBipush, 56,
		opIshl,
		opIreturn,
	}
	v := runMethod(t, code, 2, 0)
	if v.I32 != -16777216 {
		t.Fatalf("expected -16777216, got %d", v.I32)
	}
}

// TestLshlShiftsByLow6BitsOfShiftAmount exercises spec §8's
// "lshl 4026531840 << 4 == 64424509440" vector, loading the wide
// constant through a local rather than ldc2_w (no constant pool wired
// up in this unit test). Only the low 6 bits of the shift amount apply
// to a long shift, so the shift amount 68 (68 & 63 == 4) is used.
func TestLshlShiftsByLow6BitsOfShiftAmount(t *testing.T) {
	m := &classloader.Method{MaxStack: 2, MaxLocals: 2}
	ctx := NewContext(&classloader.AppCL, thread.New("test", false), nil)
	f := frames.New(m, ctx.Thread)
	f.SetLocalWide(0, frames.LongSlot(4026531840))

	code := []byte{
		opLload, 0,
		opBipush, 68,
		opLshl,
		opLreturn,
	}
	m.Code = code
	v, _, err := Execute(ctx, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.I64 != 64424509440 {
		t.Fatalf("expected 64424509440, got %d", v.I64)
	}
}

// TestIfIcmpltBranchTaken exercises the if_icmp family's branch-taken
// path.
func TestIfIcmpltBranchTaken(t *testing.T) {
	// 0: iconst_3
	// 1: iconst_5
	// 2: if_icmplt +4 (to offset 6)  -- 3 < 5, so taken
	// 5: iconst_0 (skipped)
	// 6: iconst_1
	// 7: ireturn
	code := []byte{
		opIconst3,
		opIconst5,
		opIfIcmplt, 0x00, 0x04,
		opIconst0,
		opIconst1,
		opIreturn,
	}
	v := runMethod(t, code, 2, 0)
	if v.I32 != 1 {
		t.Fatalf("expected branch taken to push 1, got %d", v.I32)
	}
}

// TestIdivByZeroThrowsArithmeticException covers spec §7's implicit
// ArithmeticException on integer division by zero.
func TestIdivByZeroThrowsArithmeticException(t *testing.T) {
	code := []byte{
		opIconst1,
		opIconst0,
		opIdiv,
		opIreturn,
	}
	m := &classloader.Method{Code: code, MaxStack: 2, MaxLocals: 0}
	ctx := NewContext(&classloader.AppCL, thread.New("test", false), nil)
	f := frames.New(m, ctx.Thread)
	_, _, err := Execute(ctx, f)
	if err == nil {
		t.Fatalf("expected ArithmeticException, got nil error")
	}
	thrown, ok := err.(*Thrown)
	if !ok {
		t.Fatalf("expected *Thrown, got %T", err)
	}
	if thrown.ClassName != "java/lang/ArithmeticException" {
		t.Fatalf("expected ArithmeticException, got %s", thrown.ClassName)
	}
}

// TestLocalVariableRoundTripsThroughIstore verifies the iload/istore
// short forms and that a stored local survives past other stack traffic.
func TestLocalVariableRoundTripsThroughIstore(t *testing.T) {
	code := []byte{
		opBipush, 42,
		opIstore1,
		opIload1,
		opIload1,
		opIadd,
		opIreturn,
	}
	v := runMethod(t, code, 3, 2)
	if v.I32 != 84 {
		t.Fatalf("expected 84, got %d", v.I32)
	}
}
