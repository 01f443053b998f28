/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023-4 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

package gfunction

import (
	"runtime"

	"jacobin/excNames"
	"jacobin/ffi"
	"jacobin/object"
	"jacobin/types"
)

func Load_Lang_Runtime() {

	MethodSignatures["java/lang/Runtime.registerNatives()V"] =
		GMeth{
			ParamSlots: 0,
			GFunction:  justReturn,
		}

	MethodSignatures["java/lang/Runtime.loadLibrary0(Ljava/lang/Class;Ljava/lang/String;)Z"] =
		GMeth{
			ParamSlots: 2,
			GFunction:  runtimeLoadLibrary,
		}

	MethodSignatures["java/lang/Runtime.availableProcessors()I"] =
		GMeth{
			ParamSlots: 0,
			GFunction:  runtimeAvailableProcessors,
		}
}

// "java/lang/Runtime.loadLibrary0(Ljava/lang/Class;Ljava/lang/String;)Z"
// params[0] is the calling Class object (unused -- jacobin has one flat
// native-library namespace, not one per defining classloader); params[1]
// is the bare library name, e.g. "z" for libz.so.
func runtimeLoadLibrary(params []interface{}) interface{} {
	nameObj, ok := params[1].(*object.Object)
	if !ok {
		return getGErrBlk(excNames.IllegalArgumentException, "loadLibrary: expected a library name string")
	}
	name := object.GoStringFromStringObject(nameObj)

	if _, err := ffi.Load(name); err != nil {
		return getGErrBlk(excNames.UnsatisfiedLinkError, err.Error())
	}
	return types.JavaBoolTrue
}

// "java/lang/Runtime.availableProcessors()I"
func runtimeAvailableProcessors(params []interface{}) interface{} {
	return int64(runtime.NumCPU())
}
