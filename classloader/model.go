/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classloader is the class loader & linker of spec §4.2, built
// around the type/field/method model of spec §3. It parses class files
// via src/classfile, builds the run-time constant pool, resolves
// symbolic references lazily and caches the result, computes field
// offsets, and drives type initialization.
package classloader

import (
	"sync"

	"jacobin/types"
)

// CpEntryKind is the tagged-sum discriminator for a run-time constant
// pool entry (spec §3 "Run-time constant pool"). The tag never changes
// across resolution; only the payload moves from symbolic to resolved.
type CpEntryKind int

const (
	CpUtf8 CpEntryKind = iota
	CpInteger
	CpFloat
	CpLong
	CpDouble
	CpClassRef
	CpStringRef
	CpFieldRef
	CpMethodRef
	CpInterfaceMethodRef
	CpNameAndType
	CpMethodHandle
	CpMethodType
	CpDynamic
	CpInvokeDynamic
)

// CpEntry is one run-time constant pool slot. Symbolic entries
// (ClassRef, FieldRef, MethodRef, InterfaceMethodRef) resolve in place on
// first use: Resolved flips to true and ResolvedTarget holds the direct
// pointer, after which every subsequent Resolve* call is a cache hit
// with no further side effect (spec §8 idempotency law).
type CpEntry struct {
	Kind CpEntryKind

	// symbolic payload
	Utf8       string
	IntVal     int32
	FloatVal   float32
	LongVal    int64
	DoubleVal  float64
	ClassName  string // for CpClassRef: the referenced type's name
	NatName    string // name_and_type: name
	NatDesc    string // name_and_type: descriptor
	RefClass   string // field/method-ref: owning class name
	RefNat     int    // field/method-ref: index of its NameAndType entry; string-ref: index of its Utf8 entry
	Idx1raw    int    // field/method-ref and name_and_type: first raw CP index before cross-referencing

	// resolution cache
	mu             sync.Mutex
	Resolved       bool
	ResolvedField  *Field
	ResolvedMethod *Method
	ResolvedKlass  *Klass
	ResolvedString uint32 // string pool index, for CpStringRef
}

// ConstantPool is the run-time constant pool of one loaded type.
type ConstantPool struct {
	Entries []CpEntry // index 0 unused (matches the 1-based class-file pool)
}

// Field is a declared field, instance or static, per spec §3.
type Field struct {
	DeclaringClass string
	Name           string
	Descriptor     string
	AccessFlags    uint16
	IsStatic       bool

	// Offset is valid for instance fields only, fixed at link time and
	// never changed afterward (spec §3 invariant).
	Offset   uint32
	TypeSize uint32

	// StaticValue is the dedicated storage cell for a static field.
	// Protected by the owning Klass's initOnce lock once the type has begun
	// initializing; safe to read before that under the loader's lock.
	StaticValue interface{}

	ConstValueIndex int // index into the declaring class's CP for ConstantValue attr, or 0
}

// Method is a declared method, per spec §3.
type Method struct {
	DeclaringClass string
	Name           string
	Descriptor     string
	AccessFlags    uint16
	Slot           int // index within the declaring type's method table

	MaxStack  int
	MaxLocals int
	Code      []byte

	ExceptionTable []ExceptionHandler
	ParamTypes     []string // resolved on demand from Descriptor

	IsNative bool // dispatches through the FFI/gfunction bridge instead of bytecode
}

// ExceptionHandler is one row of a method's exception table (spec §4.3).
type ExceptionHandler struct {
	StartPC   int
	EndPC     int
	HandlerPC int
	CatchType string // "" means catch-all (finally)
}

// Klass is the type descriptor of spec §3.
type Klass struct {
	Name        string
	AccessFlags uint16
	IsInterface bool
	IsAbstract  bool

	SuperName      string // "" for java/lang/Object
	Super          *Klass // loaded by link before offsets are computed
	InterfaceNames []string
	Interfaces     []*Klass // not populated by link; stays empty for loaded classes

	DeclaredFields  []*Field
	DeclaredMethods []*Method
	CP              *ConstantPool

	// Array/primitive metadata.
	IsArray       bool
	ComponentName string // for arrays: the component type's name ("" otherwise)
	IsPrimitive   bool
	PrimitiveDesc types.Descriptor

	ObjectSize uint32 // bytes of instance field area, super-inclusive
	TypeSize   uint32 // bytes per slot when used as a field/array element type

	Status    types.InitState
	ClInit    types.ClInitState
	initOnce  sync.Mutex // per-type lock guarding the loaded->initializing transition
	initOwner uint64      // thread ID currently driving <clinit>, valid while Status == Initializing
	initErr   error

	LoaderName string // defining loader's name ("bootstrap"/"extension"/"app")

	// MirrorName is the class name of the reflective mirror object
	// (always "java/lang/Class"); the mirror's own identity is tracked by
	// the object heap, not embedded here, to avoid an object<->classloader
	// import cycle.
	MirrorName string
}

// MethodTableKey is how methods are keyed for lookup: name+descriptor,
// matching the teacher's convertToPostableClass methodTableKey.
func MethodTableKey(name, descriptor string) string { return name + descriptor }
