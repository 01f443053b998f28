/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"fmt"

	"jacobin/excNames"
	"jacobin/gc"
	"jacobin/object"
)

// Thrown carries an in-flight throwable out through Go's ordinary error
// return path, implementing spec §4.3's "two-state ok/exception-pending"
// propagation without every call site needing a separate (result, bool)
// pair: interpreter functions just return a Thrown wrapped as an error,
// and Execute's dispatch loop type-asserts it back out to drive the
// exception table walk.
type Thrown struct {
	Handle    uint64
	ClassName string
	Message   string
}

func (t *Thrown) Error() string {
	if t.Message != "" {
		return t.ClassName + ": " + t.Message
	}
	return t.ClassName
}

// throwNamed allocates a throwable object of className, registers it with
// the heap, and wraps it as a Thrown -- the path every implicit runtime
// check (divide by zero, null dereference, bad array index, ...) uses to
// raise its well-known exception.
func throwNamed(className, format string, args ...interface{}) *Thrown {
	obj := object.MakeEmptyObject()
	obj.KlassName = className
	msg := fmt.Sprintf(format, args...)
	obj.FieldTable["detailMessage"] = &object.Field{Ftype: "Ljava/lang/String;", Fvalue: msg}
	handle := gc.Register(obj)
	return &Thrown{Handle: handle, ClassName: className, Message: msg}
}

func throwNullPointer(detail string) *Thrown {
	return throwNamed(excNames.NullPointerException, "%s", detail)
}

func throwArithmetic(detail string) *Thrown {
	return throwNamed(excNames.ArithmeticException, "%s", detail)
}

func throwArrayIndexOutOfBounds(index, length int32) *Thrown {
	return throwNamed(excNames.ArrayIndexOutOfBoundsException, "index %d out of bounds for length %d", index, length)
}

func throwNegativeArraySize(size int32) *Thrown {
	return throwNamed(excNames.NegativeArraySizeException, "%d", size)
}

func throwClassCast(from, to string) *Thrown {
	return throwNamed(excNames.ClassCastException, "class %s cannot be cast to class %s", from, to)
}

func throwStackOverflow() *Thrown {
	return throwNamed(excNames.StackOverflowError, "")
}
