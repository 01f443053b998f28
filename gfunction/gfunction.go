/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023-4 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

// Package gfunction holds the Go implementations of standard-library
// methods whose Java bytecode is either absent (it's a native method) or
// not worth interpreting (registerNatives(), trivial getters). Each
// supported method is registered in MethodSignatures under its fully
// qualified "class.name(descriptor)return" key; src/vm wires Invoke as
// the interpreter's NativeInvoker so invokestatic/invokevirtual on a
// native Method dispatches here instead of into the bytecode loop.
package gfunction

import (
	"jacobin/excNames"
	"jacobin/object"
	"sync"
)

const unsatisfiedLink = excNames.UnsatisfiedLinkError

// GMeth is one registered native method: the number of operand-stack
// slots its declared parameters occupy (not counting the receiver; long
// and double count as two), and the Go function that performs the work.
// The runtime does not read ParamSlots: execInvoke sizes its pops from the
// method descriptor.
//
// GFunction receives one entry per argument (the receiver first, for
// instance methods), int/long/char/short/byte/
// boolean widened to int64 and float/double widened to float64 --
// mirroring how the JVM itself only has computational types int, long,
// float, double, and reference -- and returns either nil (void), a Go
// value convertible to the method's declared return type, or a *GErrBlk
// to raise a Java exception instead of returning normally.
type GMeth struct {
	ParamSlots int
	GFunction  func([]interface{}) interface{}
}

// MethodSignatures is the process-wide native method table, populated by
// Init() calling every Load_* function once.
var MethodSignatures = make(map[string]GMeth)

var loadOnce sync.Once

// Init populates MethodSignatures. It is idempotent and safe to call
// from src/vm's startup path before the first class is loaded.
func Init() {
	loadOnce.Do(func() {
		Load_Io_InputStreamReader()
		Load_Lang_Runtime()
		Load_Lang_String()
		Load_Lang_StringBuilder()
		Load_Lang_Thread()
		Load_Util_HashMap()
		Load_Jdk_Internal_Misc_ScopedMemoryAccess()
	})
}

// GErrBlk is returned by a GFunction in place of its normal value to
// signal that a Java exception of ExceptionType should be raised with
// ErrMsg as its detail message, the same two-state convention the
// interpreter itself uses via Thrown.
type GErrBlk struct {
	ExceptionType string
	ErrMsg        string
}

func getGErrBlk(exceptionType, errMsg string) *GErrBlk {
	return &GErrBlk{ExceptionType: exceptionType, ErrMsg: errMsg}
}

// justReturn is the GFunction for natives whose only job is to satisfy
// the JVM's expectation that the method exists, e.g. registerNatives().
func justReturn([]interface{}) interface{} {
	return nil
}

// trapFunction marks a native method recognized but not yet implemented.
func trapFunction(params []interface{}) interface{} {
	return getGErrBlk(unsatisfiedLink, "function is not yet supported")
}

// trapDeprecated marks a native method that the JDK itself deprecated;
// jacobin declines to implement it rather than replicate dead behavior.
func trapDeprecated(params []interface{}) interface{} {
	return getGErrBlk(unsatisfiedLink, "function is deprecated and not supported")
}

// populator wraps value (a native Go slice) into an Object shaped like
// the array-valued fields the native String/collection methods exchange:
// klassName is the array's own class name (e.g. "[B", "[Ljava/lang/String;"),
// ftype is the descriptor tag stored alongside Fvalue.
func populator(klassName string, ftype string, value interface{}) *object.Object {
	obj := object.MakeEmptyObject()
	obj.KlassName = klassName
	obj.FieldTable["value"] = &object.Field{Ftype: ftype, Fvalue: value}
	return obj
}

// FilePath and FileHandle are the FieldTable keys the java.io native
// methods (FileInputStream, InputStreamReader, ...) use to stash a Go
// *os.File and the path it was opened from on the owning object.
const (
	FilePath   = "FilePath"
	FileHandle = "FileHandle"
)

// eofSet records whether a stream object has reached end-of-file, read
// back by the stream's ready()/read() natives on the next call.
func eofSet(obj *object.Object, eof bool) {
	v := int64(0)
	if eof {
		v = 1
	}
	obj.FieldTable["eof"] = &object.Field{Ftype: "Z", Fvalue: v}
}
