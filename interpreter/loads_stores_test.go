/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"testing"

	"jacobin/classloader"
	"jacobin/excNames"
	"jacobin/frames"
	"jacobin/gc"
	"jacobin/object"
	"jacobin/thread"
	"jacobin/types"
)

// TestAastoreRejectsNonAssignableReference exercises spec §8's "Array
// store of a non-assignable reference raises array-store": an aastore
// into a test/ArrStoreFoo[] with a test/ArrStoreBar instance, two
// unrelated types, must raise ArrayStoreException rather than silently
// storing the handle.
func TestAastoreRejectsNonAssignableReference(t *testing.T) {
	classloader.MethAreaInsert("test/ArrStoreFoo", &classloader.Klass{Name: "test/ArrStoreFoo"})
	classloader.MethAreaInsert("test/ArrStoreBar", &classloader.Klass{Name: "test/ArrStoreBar"})

	arr := object.AllocateArray("[Ltest/ArrStoreFoo;", "L", types.ReferenceTypeSize, 1, 0)
	arrHandle := gc.RegisterArray(arr)
	barHandle := gc.Register(object.AllocateObject("test/ArrStoreBar", 0))

	code := []byte{
		opAload0,
		opIconst0,
		opAload1,
		opAastore,
		opReturn,
	}
	m := &classloader.Method{Code: code, MaxStack: 3, MaxLocals: 2}
	ctx := NewContext(&classloader.AppCL, thread.New("test", false), nil)
	f := frames.New(m, ctx.Thread)
	f.SetLocal(0, frames.RefSlot(arrHandle))
	f.SetLocal(1, frames.RefSlot(barHandle))

	_, _, err := Execute(ctx, f)
	if err == nil {
		t.Fatalf("expected ArrayStoreException, got nil")
	}
	thrown, ok := err.(*Thrown)
	if !ok {
		t.Fatalf("expected *Thrown, got %T", err)
	}
	if thrown.ClassName != excNames.ArrayStoreException {
		t.Fatalf("expected %s, got %s", excNames.ArrayStoreException, thrown.ClassName)
	}
}

// TestAastoreAllowsAssignableReference is the companion positive case:
// storing an instance of the array's own component type must succeed and
// actually land in the array's backing memory.
func TestAastoreAllowsAssignableReference(t *testing.T) {
	classloader.MethAreaInsert("test/ArrStoreSame", &classloader.Klass{Name: "test/ArrStoreSame"})

	arr := object.AllocateArray("[Ltest/ArrStoreSame;", "L", types.ReferenceTypeSize, 1, 0)
	arrHandle := gc.RegisterArray(arr)
	valHandle := gc.Register(object.AllocateObject("test/ArrStoreSame", 0))

	code := []byte{
		opAload0,
		opIconst0,
		opAload1,
		opAastore,
		opReturn,
	}
	m := &classloader.Method{Code: code, MaxStack: 3, MaxLocals: 2}
	ctx := NewContext(&classloader.AppCL, thread.New("test", false), nil)
	f := frames.New(m, ctx.Thread)
	f.SetLocal(0, frames.RefSlot(arrHandle))
	f.SetLocal(1, frames.RefSlot(valHandle))

	if _, _, err := Execute(ctx, f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, err := arr.GetElement(0)
	if err != nil {
		t.Fatalf("unexpected error reading back element: %v", err)
	}
	if stored.(uint64) != valHandle {
		t.Fatalf("expected stored handle %d, got %v", valHandle, stored)
	}
}

// TestAastoreAllowsNullReference checks that storing a null reference
// never triggers the store-type check.
func TestAastoreAllowsNullReference(t *testing.T) {
	classloader.MethAreaInsert("test/ArrStoreNullTarget", &classloader.Klass{Name: "test/ArrStoreNullTarget"})

	arr := object.AllocateArray("[Ltest/ArrStoreNullTarget;", "L", types.ReferenceTypeSize, 1, 0)
	arrHandle := gc.RegisterArray(arr)

	code := []byte{
		opAload0,
		opIconst0,
		opAconstNull,
		opAastore,
		opReturn,
	}
	m := &classloader.Method{Code: code, MaxStack: 3, MaxLocals: 1}
	ctx := NewContext(&classloader.AppCL, thread.New("test", false), nil)
	f := frames.New(m, ctx.Thread)
	f.SetLocal(0, frames.RefSlot(arrHandle))

	if _, _, err := Execute(ctx, f); err != nil {
		t.Fatalf("unexpected error storing null: %v", err)
	}
}
