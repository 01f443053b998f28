/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package excNames holds the fully qualified names of the in-band
// throwable types the interpreter can raise, per spec §7. Keeping them as
// named constants (rather than inline string literals) is what lets
// resolve-by-name in the loader and the exception-table's caught-type
// check share one source of truth.
package excNames

const (
	ArithmeticException              = "java/lang/ArithmeticException"
	ArrayIndexOutOfBoundsException    = "java/lang/ArrayIndexOutOfBoundsException"
	ArrayStoreException               = "java/lang/ArrayStoreException"
	ClassCastException                 = "java/lang/ClassCastException"
	ClassNotFoundException             = "java/lang/ClassNotFoundException"
	ClassNotLoadedException            = "java/lang/ClassNotLoadedException"
	IllegalArgumentException          = "java/lang/IllegalArgumentException"
	IllegalMonitorStateException      = "java/lang/IllegalMonitorStateException"
	IncompatibleClassChangeError       = "java/lang/IncompatibleClassChangeError"
	IndexOutOfBoundsException          = "java/lang/IndexOutOfBoundsException"
	AbstractMethodError                = "java/lang/AbstractMethodError"
	ExceptionInInitializerError        = "java/lang/ExceptionInInitializerError"
	InstantiationException            = "java/lang/InstantiationException"
	IOException                        = "java/io/IOException"
	LinkageError                       = "java/lang/LinkageError"
	NegativeArraySizeException        = "java/lang/NegativeArraySizeException"
	NoClassDefFoundError               = "java/lang/NoClassDefFoundError"
	NoSuchFieldError                   = "java/lang/NoSuchFieldError"
	NoSuchMethodError                  = "java/lang/NoSuchMethodError"
	NullPointerException              = "java/lang/NullPointerException"
	OutOfMemoryError                   = "java/lang/OutOfMemoryError"
	PatternSyntaxException             = "java/util/regex/PatternSyntaxException"
	StackOverflowError                 = "java/lang/StackOverflowError"
	StringIndexOutOfBoundsException    = "java/lang/StringIndexOutOfBoundsException"
	UnsatisfiedLinkError               = "java/lang/UnsatisfiedLinkError"
	UnknownError                       = "java/lang/UnknownError"
)

// NameExists reports whether name is one of the well-known in-band
// throwable types above. No package in the runtime calls it at present.
func NameExists(name string) bool {
	switch name {
	case ArithmeticException, ArrayIndexOutOfBoundsException, ArrayStoreException,
		ClassCastException, ClassNotFoundException, ClassNotLoadedException, IllegalArgumentException,
		IllegalMonitorStateException, IncompatibleClassChangeError, IndexOutOfBoundsException, AbstractMethodError,
		ExceptionInInitializerError, InstantiationException, IOException, LinkageError,
		NegativeArraySizeException, NoClassDefFoundError, NoSuchFieldError, NoSuchMethodError,
		NullPointerException, OutOfMemoryError, PatternSyntaxException, StackOverflowError,
		StringIndexOutOfBoundsException, UnsatisfiedLinkError, UnknownError:
		return true
	default:
		return false
	}
}
