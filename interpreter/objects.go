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
	"jacobin/types"
)

// execNew implements new: resolve and initialize the target type, then
// allocate a zeroed instance sized from its linked ObjectSize (spec §4.4).
func execNew(ctx *Context, f *frames.Frame) *Thrown {
	idx := u2(f)
	cp := declaringCP(f)
	k, err := classloader.ResolveClass(ctx.CL, cp, idx)
	if err != nil {
		return throwNamed(excNames.NoClassDefFoundError, "%v", err)
	}
	if k.IsInterface || k.IsAbstract {
		return throwNamed(excNames.InstantiationException, "%s", k.Name)
	}
	if initErr := classloader.EnsureInitialized(ctx.CL, k, ctx.Invoke, ctx.Thread.ID); initErr != nil {
		return throwNamed(excNames.ExceptionInInitializerError, "%v", initErr)
	}
	obj := object.AllocateObject(k.Name, k.ObjectSize)
	handle := gc.Register(obj)
	return pushOrOverflow(f, frames.RefSlot(handle))
}

var newarrayDescs = map[byte]types.Descriptor{
	atBoolean: types.Bool,
	atChar:    types.Char,
	atFloat:   types.Float,
	atDouble:  types.Double,
	atByte:    types.Byte,
	atShort:   types.Short,
	atInt:     types.Int,
	atLong:    types.Long,
}

// execNewarray implements newarray: allocate a one-dimensional array of a
// primitive component type.
func execNewarray(ctx *Context, f *frames.Frame) *Thrown {
	atype := u1(f)
	count, _ := f.Operand.Pop()
	if count.I32 < 0 {
		return throwNegativeArraySize(count.I32)
	}
	desc, ok := newarrayDescs[atype]
	if !ok {
		return throwNamed(excNames.LinkageError, "invalid newarray type code %d", atype)
	}
	arrayName := "[" + desc
	arr := object.AllocateArray(arrayName, desc, types.TypeSize(desc), count.I32, 0)
	handle := gc.RegisterArray(arr)
	return pushOrOverflow(f, frames.RefSlot(handle))
}

// execAnewarray implements anewarray: allocate a one-dimensional array of
// a reference component type, resolved from the constant pool.
func execAnewarray(ctx *Context, f *frames.Frame) *Thrown {
	idx := u2(f)
	cp := declaringCP(f)
	k, err := classloader.ResolveClass(ctx.CL, cp, idx)
	if err != nil {
		return throwNamed(excNames.NoClassDefFoundError, "%v", err)
	}
	count, _ := f.Operand.Pop()
	if count.I32 < 0 {
		return throwNegativeArraySize(count.I32)
	}
	super := classloader.MethAreaFetch("java/lang/Object")
	var superSize uint32
	if super != nil {
		superSize = super.ObjectSize
	}
	arr := object.AllocateArray("[L"+k.Name+";", "L", types.ReferenceTypeSize, count.I32, superSize)
	handle := gc.RegisterArray(arr)
	return pushOrOverflow(f, frames.RefSlot(handle))
}

// execMultianewarray implements multianewarray: allocate an N-dimensional
// array by recursively allocating arrays-of-arrays, each outer level
// holding reference handles to the next level down.
func execMultianewarray(ctx *Context, f *frames.Frame) *Thrown {
	idx := u2(f)
	dims := int(u1(f))
	cp := declaringCP(f)

	arrayName, err := classloader.ClassNameAtIndex(cp, idx)
	if err != nil {
		return throwNamed(excNames.NoClassDefFoundError, "%v", err)
	}

	counts := make([]int32, dims)
	for i := dims - 1; i >= 0; i-- {
		v, _ := f.Operand.Pop()
		if v.I32 < 0 {
			return throwNegativeArraySize(v.I32)
		}
		counts[i] = v.I32
	}

	super := classloader.MethAreaFetch("java/lang/Object")
	var superSize uint32
	if super != nil {
		superSize = super.ObjectSize
	}

	handle, merr := allocateMultiDim(arrayName, counts, superSize)
	if merr != nil {
		return throwNamed(excNames.LinkageError, "%v", merr)
	}
	return pushOrOverflow(f, frames.RefSlot(handle))
}

func allocateMultiDim(arrayName string, counts []int32, superSize uint32) (uint64, error) {
	componentName := arrayName[1:] // strip one leading '['
	length := counts[0]

	if len(counts) == 1 {
		desc, size := elementShape(componentName, superSize)
		arr := object.AllocateArray(arrayName, desc, size, length, elementSuperSize(componentName, superSize))
		return gc.RegisterArray(arr), nil
	}

	arr := object.AllocateArray(arrayName, "[", types.ReferenceTypeSize, length, superSize)
	handle := gc.RegisterArray(arr)
	for i := int32(0); i < length; i++ {
		childHandle, err := allocateMultiDim(componentName, counts[1:], superSize)
		if err != nil {
			return 0, err
		}
		if err := arr.SetElement(i, childHandle); err != nil {
			return 0, err
		}
	}
	return handle, nil
}

// elementShape reports the single-character component descriptor and
// element byte size for one array dimension's component type name, which
// is either a primitive descriptor, "[..." (nested array, a reference),
// or "Lclass;" (object reference).
func elementShape(componentName string, _ uint32) (string, uint32) {
	if len(componentName) == 1 {
		switch componentName[0] {
		case 'Z', 'B', 'C', 'S', 'I', 'F', 'J', 'D':
			return componentName, types.TypeSize(componentName)
		}
	}
	return "L", types.ReferenceTypeSize
}

func elementSuperSize(componentName string, superSize uint32) uint32 {
	if len(componentName) == 1 {
		switch componentName[0] {
		case 'Z', 'B', 'C', 'S', 'I', 'F', 'J', 'D':
			return 0
		}
	}
	return superSize
}

// execArraylength implements arraylength.
func execArraylength(f *frames.Frame) *Thrown {
	ref, _ := f.Operand.Pop()
	if ref.Ref == 0 {
		return throwNullPointer("arraylength on null reference")
	}
	arr := gc.ResolveArray(ref.Ref)
	if arr == nil {
		return throwNullPointer("arraylength on null reference")
	}
	return pushOrOverflow(f, frames.IntSlot(arr.Length))
}

// execAthrow implements athrow: pop the throwable reference and surface
// it as a Thrown so Execute's unwinding takes over.
func execAthrow(f *frames.Frame) *Thrown {
	ref, _ := f.Operand.Pop()
	if ref.Ref == 0 {
		return throwNullPointer("athrow of null reference")
	}
	obj := gc.Resolve(ref.Ref)
	if obj == nil {
		return throwNullPointer("athrow of null reference")
	}
	msg := ""
	if fld, ok := obj.FieldTable["detailMessage"]; ok {
		if s, ok := fld.Fvalue.(string); ok {
			msg = s
		}
	}
	return &Thrown{Handle: ref.Ref, ClassName: obj.KlassName, Message: msg}
}

// execCheckcast implements checkcast: the reference stays on the stack
// (or is thrown away by a following exception); only a null or an
// assignable reference passes.
func execCheckcast(ctx *Context, f *frames.Frame) *Thrown {
	idx := u2(f)
	cp := declaringCP(f)
	targetName, err := classloader.ClassNameAtIndex(cp, idx)
	if err != nil {
		return throwNamed(excNames.NoClassDefFoundError, "%v", err)
	}
	ref, perr := f.Operand.Peek(0)
	if perr != nil {
		return throwNamed(excNames.LinkageError, "%v", perr)
	}
	if ref.Ref == 0 {
		return nil
	}
	obj := gc.Resolve(ref.Ref)
	if obj == nil {
		return nil
	}
	if !isAssignableFrom(ctx.CL, targetName, obj.KlassName) {
		return throwClassCast(obj.KlassName, targetName)
	}
	return nil
}

// execInstanceof implements instanceof: pop the reference, push 1 if it
// is non-null and assignable to the target type, 0 otherwise.
func execInstanceof(ctx *Context, f *frames.Frame) *Thrown {
	idx := u2(f)
	cp := declaringCP(f)
	targetName, err := classloader.ClassNameAtIndex(cp, idx)
	if err != nil {
		return throwNamed(excNames.NoClassDefFoundError, "%v", err)
	}
	ref, _ := f.Operand.Pop()
	if ref.Ref == 0 {
		return pushOrOverflow(f, frames.IntSlot(0))
	}
	obj := gc.Resolve(ref.Ref)
	if obj == nil {
		return pushOrOverflow(f, frames.IntSlot(0))
	}
	if isAssignableFrom(ctx.CL, targetName, obj.KlassName) {
		return pushOrOverflow(f, frames.IntSlot(1))
	}
	return pushOrOverflow(f, frames.IntSlot(0))
}

// execMonitorEnter/execMonitorExit implement the explicit monitor opcodes
// emitted for `synchronized` blocks (method-level synchronization instead
// enters/exits through Frame.Monitor, set up at invocation).
func execMonitorEnter(ctx *Context, f *frames.Frame) *Thrown {
	ref, _ := f.Operand.Pop()
	if ref.Ref == 0 {
		return throwNullPointer("monitorenter on null reference")
	}
	monitorFor(ref.Ref).Enter(ctx.Thread)
	return nil
}

func execMonitorExit(ctx *Context, f *frames.Frame) *Thrown {
	ref, _ := f.Operand.Pop()
	if ref.Ref == 0 {
		return throwNullPointer("monitorexit on null reference")
	}
	if err := monitorFor(ref.Ref).Exit(ctx.Thread); err != nil {
		return throwNamed(excNames.IllegalMonitorStateException, "%v", err)
	}
	return nil
}
