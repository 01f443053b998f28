/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"sync"

	"jacobin/classloader"
	"jacobin/frames"
	"jacobin/gc"
	"jacobin/object"
	"jacobin/stringPool"
)

// execConstants implements the constant-load family: push int/long/
// float/double/null/string-ref/type-ref literals and pool constants.
func execConstants(ctx *Context, f *frames.Frame, op byte) *Thrown {
	var s frames.Slot
	switch op {
	case opAconstNull:
		s = frames.RefSlot(0)
	case opIconstM1, opIconst0, opIconst1, opIconst2, opIconst3, opIconst4, opIconst5:
		s = frames.IntSlot(int32(op) - int32(opIconst0))
	case opLconst0, opLconst1:
		s = frames.LongSlot(int64(op) - int64(opLconst0))
	case opFconst0, opFconst1, opFconst2:
		s = frames.FloatSlot(float32(op) - float32(opFconst0))
	case opDconst0, opDconst1:
		s = frames.DoubleSlot(float64(op) - float64(opDconst0))
	case opBipush:
		s = frames.IntSlot(int32(s1(f)))
	case opSipush:
		s = frames.IntSlot(int32(s2(f)))
	case opLdc:
		idx := uint16(u1(f))
		var err *Thrown
		s, err = loadConstant(ctx, f, idx)
		if err != nil {
			return err
		}
	case opLdcW:
		idx := u2(f)
		var err *Thrown
		s, err = loadConstant(ctx, f, idx)
		if err != nil {
			return err
		}
	case opLdc2W:
		idx := u2(f)
		var err *Thrown
		s, err = loadConstant(ctx, f, idx)
		if err != nil {
			return err
		}
	}
	return pushOrOverflow(f, s)
}

func loadConstant(ctx *Context, f *frames.Frame, idx uint16) (frames.Slot, *Thrown) {
	cp := declaringCP(f)
	if cp == nil || int(idx) >= len(cp.Entries) {
		return frames.Slot{}, throwNamed("java/lang/LinkageError", "bad constant pool index %d", idx)
	}
	e := cp.Entries[idx]
	switch e.Kind {
	case classloader.CpInteger:
		return frames.IntSlot(e.IntVal), nil
	case classloader.CpFloat:
		return frames.FloatSlot(e.FloatVal), nil
	case classloader.CpLong:
		return frames.LongSlot(e.LongVal), nil
	case classloader.CpDouble:
		return frames.DoubleSlot(e.DoubleVal), nil
	case classloader.CpStringRef:
		si, err := classloader.ResolveString(cp, idx)
		if err != nil {
			return frames.Slot{}, throwNamed("java/lang/LinkageError", "%v", err)
		}
		return frames.Slot{Kind: frames.KindRef, Ref: internedStringHandle(si)}, nil
	case classloader.CpClassRef:
		k, err := classloader.ResolveClass(ctx.CL, cp, idx)
		if err != nil {
			return frames.Slot{}, throwNamed("java/lang/NoClassDefFoundError", "%v", err)
		}
		return frames.Slot{Kind: frames.KindRef, Ref: uint64(mirrorHandle(k.Name))}, nil
	default:
		return frames.Slot{}, throwNamed("java/lang/LinkageError", "ldc of unsupported constant kind")
	}
}

// mirrorHandle is a placeholder identity for a type's java.lang.Class
// mirror object until src/vm wires up a real mirror table; using the
// name's own hash keeps ldc of a class literal at least deterministic and
// distinguishable across classes.
func mirrorHandle(name string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return h
}

// internedStringMirrors maps a stringPool index to the gc handle of the
// java/lang/String mirror object ldc of that literal resolves to. A
// mirror is materialized once per pool index, so repeated ldc of the
// same literal always yields the same reference identity (spec §3's
// "shared mirror object") and so the mirror is a real, heap-registered
// object the collector can see -- not a bare pool index mistaken for a
// handle.
var (
	internMu      sync.Mutex
	internMirrors = make(map[uint32]uint64)
)

func internedStringHandle(si uint32) uint64 {
	internMu.Lock()
	defer internMu.Unlock()
	if h, ok := internMirrors[si]; ok {
		return h
	}
	var str string
	if p := stringPool.GetStringPointer(si); p != nil {
		str = *p
	}
	h := gc.Register(object.StringObjectFromGoString(str))
	internMirrors[si] = h
	return h
}

// InternedStringHandles returns the gc handle of every interned-string
// mirror materialized so far, for the GC root walk (spec §4.5's
// "interned strings" root category).
func InternedStringHandles() []uint64 {
	internMu.Lock()
	defer internMu.Unlock()
	handles := make([]uint64, 0, len(internMirrors))
	for _, h := range internMirrors {
		handles = append(handles, h)
	}
	return handles
}

func pushOrOverflow(f *frames.Frame, s frames.Slot) *Thrown {
	if err := f.Operand.Push(s); err != nil {
		return throwNamed("java/lang/LinkageError", "%v", err)
	}
	return nil
}

// declaringCP looks up the constant pool of the type that declared the
// frame's current method -- every constant-pool-indexed opcode resolves
// against that type's pool, never the caller's.
func declaringCP(f *frames.Frame) *classloader.ConstantPool {
	k := classloader.MethAreaFetch(f.Method.DeclaringClass)
	if k == nil {
		return nil
	}
	return k.CP
}
