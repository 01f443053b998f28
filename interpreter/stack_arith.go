/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"jacobin/excNames"
	"jacobin/frames"
)

// execStackOps implements the pop/dup/swap family. dup2 and its variants
// operate on "one or two words" per the JVM spec's own computational-type
// framing; here a wide Slot already occupies one Slot (spec's documented
// simplification), so the category-2 forms are just the category-1 forms
// applied to a single wide slot instead of two narrow ones.
func execStackOps(f *frames.Frame, op byte) *Thrown {
	switch op {
	case opPop:
		_, _ = f.Operand.Pop()
	case opPop2:
		top, _ := f.Operand.Pop()
		if !top.IsWide() {
			_, _ = f.Operand.Pop()
		}
	case opDup:
		v, _ := f.Operand.Peek(0)
		return pushOrOverflow(f, v)
	case opDupX1:
		a, _ := f.Operand.Pop()
		b, _ := f.Operand.Pop()
		_ = f.Operand.Push(a)
		_ = f.Operand.Push(b)
		return pushOrOverflow(f, a)
	case opDupX2:
		a, _ := f.Operand.Pop()
		b, _ := f.Operand.Pop()
		if b.IsWide() {
			_ = f.Operand.Push(a)
			_ = f.Operand.Push(b)
			return pushOrOverflow(f, a)
		}
		c, _ := f.Operand.Pop()
		_ = f.Operand.Push(a)
		_ = f.Operand.Push(c)
		_ = f.Operand.Push(b)
		return pushOrOverflow(f, a)
	case opDup2:
		a, _ := f.Operand.Pop()
		if a.IsWide() {
			_ = f.Operand.Push(a)
			return pushOrOverflow(f, a)
		}
		b, _ := f.Operand.Pop()
		_ = f.Operand.Push(b)
		_ = f.Operand.Push(a)
		if err := pushOrOverflow(f, b); err != nil {
			return err
		}
		return pushOrOverflow(f, a)
	case opDup2X1:
		a, _ := f.Operand.Pop()
		b, _ := f.Operand.Pop()
		if a.IsWide() {
			_ = f.Operand.Push(a)
			_ = f.Operand.Push(b)
			return pushOrOverflow(f, a)
		}
		c, _ := f.Operand.Pop()
		_ = f.Operand.Push(b)
		_ = f.Operand.Push(a)
		_ = f.Operand.Push(c)
		if err := pushOrOverflow(f, b); err != nil {
			return err
		}
		return pushOrOverflow(f, a)
	case opDup2X2:
		a, _ := f.Operand.Pop()
		b, _ := f.Operand.Pop()
		if a.IsWide() && b.IsWide() {
			_ = f.Operand.Push(a)
			_ = f.Operand.Push(b)
			return pushOrOverflow(f, a)
		}
		c, _ := f.Operand.Pop()
		if a.IsWide() {
			_ = f.Operand.Push(a)
			_ = f.Operand.Push(c)
			_ = f.Operand.Push(b)
			return pushOrOverflow(f, a)
		}
		hasD := !c.IsWide()
		d := c
		if hasD {
			d, _ = f.Operand.Pop()
		}
		_ = f.Operand.Push(b)
		_ = f.Operand.Push(a)
		if hasD {
			_ = f.Operand.Push(d)
		}
		_ = f.Operand.Push(c)
		if err := pushOrOverflow(f, b); err != nil {
			return err
		}
		return pushOrOverflow(f, a)
	case opSwap:
		a, _ := f.Operand.Pop()
		b, _ := f.Operand.Pop()
		_ = f.Operand.Push(a)
		return pushOrOverflow(f, b)
	}
	return nil
}

// execArithmetic implements the binary/unary numeric family, dispatching
// on operand kind implicit in the opcode's own encoding (ixxx vs lxxx vs
// fxxx vs dxxx, laid out as four parallel runs in the opcode table).
func execArithmetic(f *frames.Frame, op byte) *Thrown {
	switch op {
	case opIadd:
		return binIntOp(f, op, func(a, b int32) int32 { return a + b })
	case opIsub:
		return binIntOp(f, op, func(a, b int32) int32 { return a - b })
	case opImul:
		return binIntOp(f, op, func(a, b int32) int32 { return a * b })
	case opIdiv:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		if b.I32 == 0 {
			return throwArithmetic("/ by zero")
		}
		return pushOrOverflow(f, frames.IntSlot(a.I32/b.I32))
	case opIrem:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		if b.I32 == 0 {
			return throwArithmetic("/ by zero")
		}
		return pushOrOverflow(f, frames.IntSlot(a.I32%b.I32))
	case opIneg:
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.IntSlot(-a.I32))
	case opIshl:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.IntSlot(a.I32<<(uint32(b.I32)&0x1f)))
	case opIshr:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.IntSlot(a.I32>>(uint32(b.I32)&0x1f)))
	case opIushr:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.IntSlot(int32(uint32(a.I32)>>(uint32(b.I32)&0x1f))))
	case opIand:
		return binIntOp(f, op, func(a, b int32) int32 { return a & b })
	case opIor:
		return binIntOp(f, op, func(a, b int32) int32 { return a | b })
	case opIxor:
		return binIntOp(f, op, func(a, b int32) int32 { return a ^ b })

	case opLadd:
		return binLongOp(f, func(a, b int64) int64 { return a + b })
	case opLsub:
		return binLongOp(f, func(a, b int64) int64 { return a - b })
	case opLmul:
		return binLongOp(f, func(a, b int64) int64 { return a * b })
	case opLdiv:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		if b.I64 == 0 {
			return throwArithmetic("/ by zero")
		}
		return pushOrOverflow(f, frames.LongSlot(a.I64/b.I64))
	case opLrem:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		if b.I64 == 0 {
			return throwArithmetic("/ by zero")
		}
		return pushOrOverflow(f, frames.LongSlot(a.I64%b.I64))
	case opLneg:
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.LongSlot(-a.I64))
	case opLshl:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.LongSlot(a.I64<<(uint64(b.I32)&0x3f)))
	case opLshr:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.LongSlot(a.I64>>(uint64(b.I32)&0x3f)))
	case opLushr:
		b, _ := f.Operand.Pop()
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.LongSlot(int64(uint64(a.I64)>>(uint64(b.I32)&0x3f))))
	case opLand:
		return binLongOp(f, func(a, b int64) int64 { return a & b })
	case opLor:
		return binLongOp(f, func(a, b int64) int64 { return a | b })
	case opLxor:
		return binLongOp(f, func(a, b int64) int64 { return a ^ b })

	case opFadd:
		return binFloatOp(f, func(a, b float32) float32 { return a + b })
	case opFsub:
		return binFloatOp(f, func(a, b float32) float32 { return a - b })
	case opFmul:
		return binFloatOp(f, func(a, b float32) float32 { return a * b })
	case opFdiv:
		return binFloatOp(f, func(a, b float32) float32 { return a / b })
	case opFrem:
		return binFloatOp(f, func(a, b float32) float32 {
			q := float32(int64(a / b))
			return a - q*b
		})
	case opFneg:
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.FloatSlot(-a.F32))

	case opDadd:
		return binDoubleOp(f, func(a, b float64) float64 { return a + b })
	case opDsub:
		return binDoubleOp(f, func(a, b float64) float64 { return a - b })
	case opDmul:
		return binDoubleOp(f, func(a, b float64) float64 { return a * b })
	case opDdiv:
		return binDoubleOp(f, func(a, b float64) float64 { return a / b })
	case opDrem:
		return binDoubleOp(f, func(a, b float64) float64 {
			q := float64(int64(a / b))
			return a - q*b
		})
	case opDneg:
		a, _ := f.Operand.Pop()
		return pushOrOverflow(f, frames.DoubleSlot(-a.F64))
	}
	return throwNamed(excNames.LinkageError, "unreachable arithmetic opcode 0x%02x", op)
}

func binIntOp(f *frames.Frame, _ byte, fn func(a, b int32) int32) *Thrown {
	b, _ := f.Operand.Pop()
	a, _ := f.Operand.Pop()
	return pushOrOverflow(f, frames.IntSlot(fn(a.I32, b.I32)))
}

func binLongOp(f *frames.Frame, fn func(a, b int64) int64) *Thrown {
	b, _ := f.Operand.Pop()
	a, _ := f.Operand.Pop()
	return pushOrOverflow(f, frames.LongSlot(fn(a.I64, b.I64)))
}

func binFloatOp(f *frames.Frame, fn func(a, b float32) float32) *Thrown {
	b, _ := f.Operand.Pop()
	a, _ := f.Operand.Pop()
	return pushOrOverflow(f, frames.FloatSlot(fn(a.F32, b.F32)))
}

func binDoubleOp(f *frames.Frame, fn func(a, b float64) float64) *Thrown {
	b, _ := f.Operand.Pop()
	a, _ := f.Operand.Pop()
	return pushOrOverflow(f, frames.DoubleSlot(fn(a.F64, b.F64)))
}
