/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import "jacobin/frames"

// execConversions implements the widening/narrowing numeric cast family.
func execConversions(f *frames.Frame, op byte) {
	v, _ := f.Operand.Pop()
	var out frames.Slot
	switch op {
	case opI2l:
		out = frames.LongSlot(int64(v.I32))
	case opI2f:
		out = frames.FloatSlot(float32(v.I32))
	case opI2d:
		out = frames.DoubleSlot(float64(v.I32))
	case opL2i:
		out = frames.IntSlot(int32(v.I64))
	case opL2f:
		out = frames.FloatSlot(float32(v.I64))
	case opL2d:
		out = frames.DoubleSlot(float64(v.I64))
	case opF2i:
		out = frames.IntSlot(floatToInt32(v.F32))
	case opF2l:
		out = frames.LongSlot(floatToInt64(float64(v.F32)))
	case opF2d:
		out = frames.DoubleSlot(float64(v.F32))
	case opD2i:
		out = frames.IntSlot(floatToInt32(float32(v.F64)))
	case opD2l:
		out = frames.LongSlot(floatToInt64(v.F64))
	case opD2f:
		out = frames.FloatSlot(float32(v.F64))
	case opI2b:
		out = frames.IntSlot(int32(int8(v.I32)))
	case opI2c:
		out = frames.IntSlot(int32(uint16(v.I32)))
	case opI2s:
		out = frames.IntSlot(int32(int16(v.I32)))
	}
	_ = f.Operand.Push(out)
}

// floatToInt32/floatToInt64 implement the JVM's saturating float-to-int
// conversion (JLS 5.1.3): NaN becomes 0, out-of-range values saturate to
// the target type's min/max rather than wrapping.
func floatToInt32(v float32) int32 {
	switch {
	case v != v: // NaN
		return 0
	case v >= 2147483647:
		return 2147483647
	case v <= -2147483648:
		return -2147483648
	default:
		return int32(v)
	}
}

func floatToInt64(v float64) int64 {
	switch {
	case v != v: // NaN
		return 0
	case v >= 9223372036854775807:
		return 9223372036854775807
	case v <= -9223372036854775808:
		return -9223372036854775808
	default:
		return int64(v)
	}
}

// execComparisons implements lcmp/fcmpl/fcmpg/dcmpl/dcmpg: push -1/0/1, or
// for the unordered (NaN) case, -1 ("l" suffix) or 1 ("g" suffix).
func execComparisons(f *frames.Frame, op byte) {
	switch op {
	case opLcmp:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		_ = f.Operand.Push(frames.IntSlot(int32(cmp64(a.I64, b.I64))))
	case opFcmpl, opFcmpg:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		_ = f.Operand.Push(frames.IntSlot(floatCmp(float64(a.F32), float64(b.F32), op == opFcmpg)))
	case opDcmpl, opDcmpg:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		_ = f.Operand.Push(frames.IntSlot(floatCmp(a.F64, b.F64, op == opDcmpg)))
	}
}

func cmp64(a, b int64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

func floatCmp(a, b float64, nanIsGreater bool) int32 {
	if a != a || b != b { // either NaN: unordered
		if nanIsGreater {
			return 1
		}
		return -1
	}
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// execIfBranch implements the if<cond> and if_<type>cmp<cond> family,
// patching f.PC to opcodePC+offset when the condition holds.
func execIfBranch(f *frames.Frame, op byte, opcodePC int) {
	offset := int(s2(f))
	taken := false
	switch op {
	case opIfeq, opIfne, opIflt, opIfge, opIfgt, opIfle:
		v, _ := f.Operand.Pop()
		taken = testUnary(op, v.I32)
	case opIfIcmpeq, opIfIcmpne, opIfIcmplt, opIfIcmpge, opIfIcmpgt, opIfIcmple:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		taken = testBinary(op, a.I32, b.I32)
	case opIfAcmpeq:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		taken = a.Ref == b.Ref
	case opIfAcmpne:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		taken = a.Ref != b.Ref
	case opIfnull:
		v, _ := f.Operand.Pop()
		taken = v.Ref == 0
	case opIfnonnull:
		v, _ := f.Operand.Pop()
		taken = v.Ref != 0
	}
	if taken {
		f.PC = opcodePC + offset
	}
}

func testUnary(op byte, v int32) bool {
	switch op {
	case opIfeq:
		return v == 0
	case opIfne:
		return v != 0
	case opIflt:
		return v < 0
	case opIfge:
		return v >= 0
	case opIfgt:
		return v > 0
	case opIfle:
		return v <= 0
	}
	return false
}

func testBinary(op byte, a, b int32) bool {
	switch op {
	case opIfIcmpeq:
		return a == b
	case opIfIcmpne:
		return a != b
	case opIfIcmplt:
		return a < b
	case opIfIcmpge:
		return a >= b
	case opIfIcmpgt:
		return a > b
	case opIfIcmple:
		return a <= b
	}
	return false
}
