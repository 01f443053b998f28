/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jacobin/classloader"
	"jacobin/frames"
	"jacobin/gc"
	"jacobin/interpreter"
	"jacobin/object"
	"jacobin/thread"
)

func TestLooksLikeArchive(t *testing.T) {
	assert.True(t, looksLikeArchive("/lib/rt.jar"))
	assert.True(t, looksLikeArchive("/lib/java.base.jmod"))
	assert.False(t, looksLikeArchive("/classes"))
}

func TestFindMainRequiresStaticAndExactDescriptor(t *testing.T) {
	klass := &classloader.Klass{
		DeclaredMethods: []*classloader.Method{
			{Name: "main", Descriptor: "(Ljava/lang/String;)V", AccessFlags: accStatic},
			{Name: "main", Descriptor: mainDescriptor, AccessFlags: 0},
			{Name: "main", Descriptor: mainDescriptor, AccessFlags: accStatic},
		},
	}
	m := findMain(klass)
	if assert.NotNil(t, m) {
		assert.Equal(t, mainDescriptor, m.Descriptor)
		assert.NotZero(t, m.AccessFlags&accStatic)
	}
}

func TestFindMainReturnsNilWhenAbsent(t *testing.T) {
	klass := &classloader.Klass{}
	assert.Nil(t, findMain(klass))
}

func TestBuildArgsArrayLength(t *testing.T) {
	slot := buildArgsArray([]string{"a", "b", "c"})
	assert.Equal(t, frames.KindRef, slot.Kind)
	assert.NotZero(t, slot.Ref)
	assert.Equal(t, int32(3), gc.ResolveArray(slot.Ref).Length)
}

// TestRootsCollectsFrameAndStaticHandles exercises spec §4.5's root set:
// a handle live only in a frame local and one live only in a static
// reference field must both appear in roots()'s result, across two
// separate thread contexts (main and finalizer).
func TestRootsCollectsFrameAndStaticHandles(t *testing.T) {
	classloader.ResetMethArea()
	defer classloader.ResetMethArea()

	frameHandle := gc.Register(object.AllocateObject("test/RootsFrameVal", 0))
	staticHandle := gc.Register(object.AllocateObject("test/RootsStaticVal", 0))

	holder := &classloader.Klass{
		Name: "test/RootsHolder",
		DeclaredFields: []*classloader.Field{
			{Name: "val", Descriptor: "Ljava/lang/Object;", IsStatic: true, StaticValue: staticHandle},
		},
	}
	classloader.MethAreaInsert(holder.Name, holder)

	m := &classloader.Method{MaxLocals: 1, MaxStack: 0}
	ctx := interpreter.NewContext(&classloader.AppCL, thread.New("roots-test-main", false), nil)
	f := frames.New(m, ctx.Thread)
	f.SetLocal(0, frames.RefSlot(frameHandle))
	assert.NoError(t, frames.PushFrame(ctx.Stack, f))

	finalizerCtx := interpreter.NewContext(&classloader.AppCL, thread.New("roots-test-finalizer", true), nil)

	handles := roots(ctx, finalizerCtx)

	assert.Contains(t, handles, frameHandle)
	assert.Contains(t, handles, staticHandle)
}
