/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"jacobin/excNames"
	"jacobin/frames"
	"jacobin/gc"
	"jacobin/object"
)

// execLoads implements local load/store family's load half: push the
// value of a typed local slot, including the short forms (iload_0 etc.)
// that fold the index into the opcode.
func execLoads(f *frames.Frame, op byte) {
	var idx int
	switch {
	case op == opIload || op == opLload || op == opFload || op == opDload || op == opAload:
		idx = int(u1(f))
	case op >= opIload0 && op <= opIload3:
		idx = int(op - opIload0)
	case op >= opLload0 && op <= opLload3:
		idx = int(op - opLload0)
	case op >= opFload0 && op <= opFload3:
		idx = int(op - opFload0)
	case op >= opDload0 && op <= opDload3:
		idx = int(op - opDload0)
	case op >= opAload0 && op <= opAload3:
		idx = int(op - opAload0)
	}
	_ = f.Operand.Push(f.GetLocal(idx))
}

func execStores(f *frames.Frame, op byte) {
	var idx int
	switch {
	case op == opIstore || op == opLstore || op == opFstore || op == opDstore || op == opAstore:
		idx = int(u1(f))
	case op >= opIstore0 && op <= opIstore3:
		idx = int(op - opIstore0)
	case op >= opLstore0 && op <= opLstore3:
		idx = int(op - opLstore0)
	case op >= opFstore0 && op <= opFstore3:
		idx = int(op - opFstore0)
	case op >= opDstore0 && op <= opDstore3:
		idx = int(op - opDstore0)
	case op >= opAstore0 && op <= opAstore3:
		idx = int(op - opAstore0)
	}
	v, _ := f.Operand.Pop()
	if v.IsWide() {
		f.SetLocalWide(idx, v)
	} else {
		f.SetLocal(idx, v)
	}
}

func execIinc(f *frames.Frame) {
	idx := int(u1(f))
	delta := int32(s1(f))
	v := f.GetLocal(idx)
	f.SetLocal(idx, frames.IntSlot(v.I32+delta))
}

// execWide implements the `wide` prefix: the next instruction's local
// index (and, for iinc, its constant) is read as a u2 rather than a u1.
// This runtime handles wide by re-executing the target opcode with wide
// indices decoded inline, rather than threading a "wide mode" flag
// through every load/store/iinc handler.
func execWide(f *frames.Frame) {
	op := u1(f)
	idx := int(u2(f))
	switch op {
	case opIload, opLload, opFload, opDload, opAload:
		_ = f.Operand.Push(f.GetLocal(idx))
	case opIstore, opLstore, opFstore, opDstore, opAstore:
		v, _ := f.Operand.Pop()
		if v.IsWide() {
			f.SetLocalWide(idx, v)
		} else {
			f.SetLocal(idx, v)
		}
	case opIinc:
		delta := int32(s2(f))
		v := f.GetLocal(idx)
		f.SetLocal(idx, frames.IntSlot(v.I32+delta))
	case opRet:
		f.PC = f.Locals[idx].RA
	}
}

// execArrayLoads implements xaload: pop index then arrayref, bounds-check,
// push the element (sign/zero-extended to its stack type per family).
func execArrayLoads(f *frames.Frame, op byte) *Thrown {
	index, _ := f.Operand.Pop()
	ref, _ := f.Operand.Pop()
	if ref.Ref == 0 {
		return throwNullPointer("array load on null reference")
	}
	arr := gc.ResolveArray(ref.Ref)
	if arr == nil {
		return throwNullPointer("array load on null reference")
	}
	if index.I32 < 0 || index.I32 >= arr.Length {
		return throwArrayIndexOutOfBounds(index.I32, arr.Length)
	}
	v, err := arr.GetElement(index.I32)
	if err != nil {
		return throwNamed(excNames.LinkageError, "%v", err)
	}
	return pushOrOverflow(f, decodeArrayLoadResult(op, v))
}

func decodeArrayLoadResult(op byte, v interface{}) frames.Slot {
	switch op {
	case opIaload:
		return frames.IntSlot(toI32(v))
	case opLaload:
		return frames.LongSlot(toI64(v))
	case opFaload:
		return frames.Slot{Kind: frames.KindFloat, F32: float32FromBits(toI32(v))}
	case opDaload:
		return frames.Slot{Kind: frames.KindDouble, F64: float64FromBits(toI64(v))}
	case opAaload:
		return frames.Slot{Kind: frames.KindRef, Ref: toU64(v)}
	case opBaload:
		return frames.IntSlot(toI32(v))
	case opCaload:
		return frames.IntSlot(toI32(v))
	default: // opSaload
		return frames.IntSlot(toI32(v))
	}
}

// execArrayStores implements xastore: pop value, index, arrayref (in that
// order off the stack), bounds-check, and for aastore additionally
// store-type-check the value against the array's component type.
func execArrayStores(ctx *Context, f *frames.Frame, op byte) *Thrown {
	value, _ := f.Operand.Pop()
	index, _ := f.Operand.Pop()
	ref, _ := f.Operand.Pop()
	if ref.Ref == 0 {
		return throwNullPointer("array store on null reference")
	}
	arr := gc.ResolveArray(ref.Ref)
	if arr == nil {
		return throwNullPointer("array store on null reference")
	}
	if index.I32 < 0 || index.I32 >= arr.Length {
		return throwArrayIndexOutOfBounds(index.I32, arr.Length)
	}

	var stored interface{}
	switch op {
	case opIastore, opBastore, opCastore, opSastore:
		stored = int64(value.I32)
	case opLastore:
		stored = value.I64
	case opFastore:
		stored = int64(bitsFromFloat32(value.F32))
	case opDastore:
		stored = int64(bitsFromFloat64(value.F64))
	case opAastore:
		if value.Ref != 0 {
			if thrown := checkArrayStoreType(ctx, arr, value.Ref); thrown != nil {
				return thrown
			}
		}
		stored = value.Ref
	}
	if err := arr.SetElement(index.I32, stored); err != nil {
		return throwNamed(excNames.LinkageError, "%v", err)
	}
	return nil
}

// checkArrayStoreType implements spec §8's "Array store of a
// non-assignable reference raises array-store": arr's component class
// name is recoverable from its own KlassName (object.AllocateArray names
// a reference array "[L<name>;" or, one level down, "[<component>" for
// an array of arrays), and the stored value's concrete class name comes
// off whichever heap table actually holds it.
func checkArrayStoreType(ctx *Context, arr *object.Array, valueRef uint64) *Thrown {
	if !arr.IsReferenceComponent() {
		return nil
	}
	compName, ok := arrayComponentClassName(arr)
	if !ok {
		return nil
	}
	var concreteName string
	if obj := gc.Resolve(valueRef); obj != nil {
		concreteName = obj.KlassName
	} else if inner := gc.ResolveArray(valueRef); inner != nil {
		concreteName = inner.KlassName
	}
	if concreteName == "" {
		return nil
	}
	if !isAssignableFrom(ctx.CL, compName, concreteName) {
		return throwNamed(excNames.ArrayStoreException, "%s", concreteName)
	}
	return nil
}

// arrayComponentClassName extracts the class name aastore must check the
// stored reference against: for a plain reference array ("L" component,
// KlassName "[L<name>;") that's <name>; for an array of arrays ("["
// component), it's the one-level-shallower array descriptor itself
// (KlassName with its outermost "[" stripped).
func arrayComponentClassName(arr *object.Array) (string, bool) {
	name := arr.KlassName
	switch arr.ComponentDesc {
	case "L":
		if len(name) > 3 && name[0] == '[' && name[1] == 'L' && name[len(name)-1] == ';' {
			return name[2 : len(name)-1], true
		}
		return "", false
	case "[":
		if len(name) > 1 && name[0] == '[' {
			return name[1:], true
		}
		return "", false
	default:
		return "", false
	}
}
