/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023-4 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

package gfunction

import (
	"fmt"
	"math"
	"strings"

	"jacobin/classloader"
	"jacobin/frames"
	"jacobin/gc"
	"jacobin/interpreter"
	"jacobin/object"
	"jacobin/types"
)

// Invoke is the interpreter.NativeInvoker src/vm wires into every
// interpreter.Context at startup. It looks m up in MethodSignatures by
// its fully qualified key, converts args from the operand-stack Slot
// representation to the plain Go values GFunction bodies expect,
// converts the result back, and turns a *GErrBlk into the same Thrown
// the interpreter's own opcodes raise.
func Invoke(_ *interpreter.Context, m *classloader.Method, args []frames.Slot) (frames.Slot, bool, error) {
	key := m.DeclaringClass + "." + m.Name + m.Descriptor
	gm, ok := MethodSignatures[key]
	if !ok {
		return frames.Slot{}, false, fmt.Errorf("gfunction: no native method registered for %s", key)
	}

	params := make([]interface{}, len(args))
	for i, a := range args {
		params[i] = slotToGo(a)
	}

	result := gm.GFunction(params)
	return goToSlot(result, returnKind(m.Descriptor))
}

func slotToGo(s frames.Slot) interface{} {
	switch s.Kind {
	case frames.KindInt:
		return int64(s.I32)
	case frames.KindLong:
		return s.I64
	case frames.KindFloat:
		return float64(s.F32)
	case frames.KindDouble:
		return s.F64
	case frames.KindRef:
		if s.Ref == 0 {
			return nil
		}
		if obj := gc.Resolve(s.Ref); obj != nil {
			return obj
		}
		if arr := gc.ResolveArray(s.Ref); arr != nil {
			return objectFromArray(arr)
		}
		return nil
	default:
		return nil
	}
}

// returnKind extracts the single-character return-type descriptor from
// a method descriptor "(params)R", used to decide how to widen a
// GFunction's generic Go return value back into a Slot.
func returnKind(descriptor string) byte {
	i := strings.IndexByte(descriptor, ')')
	if i < 0 || i+1 >= len(descriptor) {
		return 'V'
	}
	return descriptor[i+1]
}

func goToSlot(result interface{}, retKind byte) (frames.Slot, bool, error) {
	if result == nil {
		return frames.Slot{}, false, nil
	}
	if errBlk, ok := result.(*GErrBlk); ok {
		return frames.Slot{}, false, errBlkToThrown(errBlk)
	}

	switch retKind {
	case 'V':
		return frames.Slot{}, false, nil
	case 'Z', 'B', 'C', 'S', 'I':
		return frames.IntSlot(int32(toI64(result))), true, nil
	case 'J':
		return frames.LongSlot(toI64(result)), true, nil
	case 'F':
		return frames.FloatSlot(float32(toF64(result))), true, nil
	case 'D':
		return frames.DoubleSlot(toF64(result)), true, nil
	default: // 'L' or '[' -- a reference
		switch r := result.(type) {
		case *object.Object:
			if arr := arrayFromObject(r); arr != nil {
				return frames.RefSlot(gc.RegisterArray(arr)), true, nil
			}
			return frames.RefSlot(gc.Register(r)), true, nil
		case *object.Array:
			return frames.RefSlot(gc.RegisterArray(r)), true, nil
		default:
			return frames.Slot{}, false, fmt.Errorf("gfunction: unsupported native return type %T", result)
		}
	}
}

func toI64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toF64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// objectFromArray materializes a heap-resolved object.Array into the
// FieldTable["value"]-bearing Object shape the native String/collection
// methods were ported expecting, a representation that predates this
// runtime's offset-based Array and is kept only at this native-call
// boundary.
func objectFromArray(a *object.Array) *object.Object {
	obj := object.MakeEmptyObject()
	obj.KlassName = a.KlassName
	switch a.ComponentDesc {
	case "B", "Z":
		buf := make([]byte, a.Length)
		for i := int32(0); i < a.Length; i++ {
			v, _ := a.GetElement(i)
			buf[i] = byte(toI64FromDecoded(v))
		}
		obj.FieldTable["value"] = &object.Field{Ftype: "[B", Fvalue: buf}
	case "F", "D":
		buf := make([]float64, a.Length)
		for i := int32(0); i < a.Length; i++ {
			v, _ := a.GetElement(i)
			bits := toI64FromDecoded(v)
			if a.ComponentDesc == "F" {
				buf[i] = float64(math.Float32frombits(uint32(bits)))
			} else {
				buf[i] = math.Float64frombits(uint64(bits))
			}
		}
		obj.FieldTable["value"] = &object.Field{Ftype: "[D", Fvalue: buf}
	case "L", "[":
		buf := make([]*object.Object, a.Length)
		for i := int32(0); i < a.Length; i++ {
			v, _ := a.GetElement(i)
			if h := uint64(toI64FromDecoded(v)); h != 0 {
				buf[i] = gc.Resolve(h)
			}
		}
		obj.FieldTable["value"] = &object.Field{Ftype: "[L", Fvalue: buf}
	default: // C, S, I, J -- all widened to int64 entries
		buf := make([]int64, a.Length)
		for i := int32(0); i < a.Length; i++ {
			v, _ := a.GetElement(i)
			buf[i] = toI64FromDecoded(v)
		}
		obj.FieldTable["value"] = &object.Field{Ftype: "[I", Fvalue: buf}
	}
	return obj
}

// toI64FromDecoded normalizes the various concrete types
// object.Array.GetElement can hand back (decodeSlot's per-descriptor
// result types) into a plain int64.
func toI64FromDecoded(v interface{}) int64 {
	switch n := v.(type) {
	case bool:
		if n {
			return 1
		}
		return 0
	case int8:
		return int64(n)
	case types.JavaByte:
		return int64(n)
	case uint16:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint32:
		return int64(n)
	case int64:
		return n
	case uint64:
		return int64(n)
	default:
		return 0
	}
}

// arrayFromObject converts the FieldTable["value"]-bearing synthetic
// Object produced by a native method's array-returning GFunction back
// into a proper object.Array so that arraylength/aaload and friends can
// operate on it like any bytecode-allocated array.
func arrayFromObject(obj *object.Object) *object.Array {
	fld, ok := obj.FieldTable["value"]
	if !ok {
		return nil
	}
	switch v := fld.Fvalue.(type) {
	case []byte:
		arr := object.AllocateArray(obj.KlassName, types.Byte, types.TypeSize(types.Byte), int32(len(v)), 0)
		for i, b := range v {
			_ = arr.SetElement(int32(i), int64(b))
		}
		return arr
	case []int64:
		comp := types.Int
		if strings.HasSuffix(obj.KlassName, "C") {
			comp = types.Char
		}
		arr := object.AllocateArray(obj.KlassName, comp, types.TypeSize(comp), int32(len(v)), 0)
		for i, n := range v {
			_ = arr.SetElement(int32(i), n)
		}
		return arr
	case []*object.Object:
		arr := object.AllocateArray(obj.KlassName, "L", types.ReferenceTypeSize, int32(len(v)), 0)
		for i, o := range v {
			h := uint64(0)
			if o != nil {
				h = gc.Register(o)
			}
			_ = arr.SetElement(int32(i), h)
		}
		return arr
	default:
		return nil
	}
}

// errBlkToThrown allocates the exception object a *GErrBlk describes and
// wraps it the same way interpreter's own throwNamed does, so execInvoke's
// `if t, ok := nerr.(*interpreter.Thrown); ok` path recognizes it and
// unwinds with the correct exception type instead of falling back to
// LinkageError.
func errBlkToThrown(e *GErrBlk) error {
	obj := object.MakeEmptyObject()
	obj.KlassName = e.ExceptionType
	obj.FieldTable["detailMessage"] = &object.Field{Ftype: "Ljava/lang/String;", Fvalue: e.ErrMsg}
	handle := gc.Register(obj)
	return &interpreter.Thrown{Handle: handle, ClassName: e.ExceptionType, Message: e.ErrMsg}
}
