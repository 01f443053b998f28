/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"jacobin/classloader"
	"jacobin/excNames"
	"jacobin/frames"
	"jacobin/gc"
	"jacobin/object"
)

// valueToSlot and slotToValue translate between the object package's
// decodeSlot/encodeSlot value shapes and frames.Slot, the same mapping
// decodeArrayLoadResult uses for array elements -- fields and array
// elements share the same on-the-wire encoding (spec §3).
func valueToSlot(desc string, v interface{}) frames.Slot {
	switch desc[0] {
	case 'J':
		return frames.LongSlot(toI64(v))
	case 'F':
		return frames.Slot{Kind: frames.KindFloat, F32: float32FromBits(toI32(v))}
	case 'D':
		return frames.Slot{Kind: frames.KindDouble, F64: float64FromBits(toI64(v))}
	case 'L', '[':
		return frames.Slot{Kind: frames.KindRef, Ref: toU64(v)}
	default: // Z, B, C, S, I
		return frames.IntSlot(toI32(v))
	}
}

func slotToValue(desc string, s frames.Slot) interface{} {
	switch desc[0] {
	case 'J':
		return s.I64
	case 'F':
		return int64(bitsFromFloat32(s.F32))
	case 'D':
		return int64(bitsFromFloat64(s.F64))
	case 'L', '[':
		return s.Ref
	default:
		return int64(s.I32)
	}
}

func fieldDescriptor(fd *classloader.Field) *object.FieldDescriptor {
	return &object.FieldDescriptor{
		Name:       fd.Name,
		Descriptor: fd.Descriptor,
		Offset:     fd.Offset,
		TypeSize:   fd.TypeSize,
		IsStatic:   fd.IsStatic,
	}
}

// execStaticField implements getstatic/putstatic: the declaring type is
// initialized on first access (spec §4.2 "Initialization is triggered by
// ... first active use of a static field").
func execStaticField(ctx *Context, f *frames.Frame, op byte) *Thrown {
	idx := u2(f)
	cp := declaringCP(f)
	fld, err := classloader.ResolveField(ctx.CL, cp, idx)
	if err != nil {
		return throwNamed(excNames.NoSuchFieldError, "%v", err)
	}

	owner := classloader.MethAreaFetch(fld.DeclaringClass)
	if owner == nil {
		return throwNamed(excNames.NoClassDefFoundError, "%s", fld.DeclaringClass)
	}
	if initErr := classloader.EnsureInitialized(ctx.CL, owner, ctx.Invoke, ctx.Thread.ID); initErr != nil {
		return throwNamed(excNames.ExceptionInInitializerError, "%v", initErr)
	}

	if op == opGetstatic {
		return pushOrOverflow(f, valueToSlot(fld.Descriptor, fld.StaticValue))
	}
	v, _ := f.Operand.Pop()
	fld.StaticValue = slotToValue(fld.Descriptor, v)
	return nil
}

// execInstanceField implements getfield/putfield.
func execInstanceField(ctx *Context, f *frames.Frame, op byte) *Thrown {
	idx := u2(f)
	cp := declaringCP(f)
	fld, err := classloader.ResolveField(ctx.CL, cp, idx)
	if err != nil {
		return throwNamed(excNames.NoSuchFieldError, "%v", err)
	}
	fdesc := fieldDescriptor(fld)

	if op == opGetfield {
		ref, _ := f.Operand.Pop()
		if ref.Ref == 0 {
			return throwNullPointer("getfield on null reference")
		}
		obj := gc.Resolve(ref.Ref)
		if obj == nil {
			return throwNullPointer("getfield on null reference")
		}
		v, gerr := obj.GetFieldValue(fdesc)
		if gerr != nil {
			return throwNamed(excNames.LinkageError, "%v", gerr)
		}
		return pushOrOverflow(f, valueToSlot(fld.Descriptor, v))
	}

	value, _ := f.Operand.Pop()
	ref, _ := f.Operand.Pop()
	if ref.Ref == 0 {
		return throwNullPointer("putfield on null reference")
	}
	obj := gc.Resolve(ref.Ref)
	if obj == nil {
		return throwNullPointer("putfield on null reference")
	}
	if serr := obj.SetFieldValue(fdesc, slotToValue(fld.Descriptor, value)); serr != nil {
		return throwNamed(excNames.LinkageError, "%v", serr)
	}
	return nil
}
