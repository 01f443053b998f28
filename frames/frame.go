/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frames

import (
	"jacobin/classloader"
	"jacobin/containers"
	"jacobin/thread"
	"jacobin/types"
)

// Frame is the activation record of spec §3: frame-type, declaring
// method, program counter, locals, operand stack, return slot, and the
// monitor (if any) acquired at entry.
type Frame struct {
	Type    types.FrameType
	Method  *classloader.Method
	PC      int
	Locals  []Slot
	Operand *containers.FixedStack[Slot]

	Return    Slot
	HasReturn bool

	// Monitor is the lock acquired on entry for a synchronized method
	// (the receiver's monitor for instance methods, the declaring type's
	// mirror monitor for static ones), released exactly once on every
	// exit path -- normal return or exception unwinding (spec §4.3
	// "Invocation").
	Monitor *thread.Monitor
	Thread  *thread.Thread
}

// New allocates a Frame for m, sized from the method's declared
// max-locals/max-stack. Native methods (m.IsNative) get FrameType
// NativeFrame and no Locals/Operand, since they dispatch through the FFI
// bridge instead of the bytecode loop.
func New(m *classloader.Method, t *thread.Thread) *Frame {
	if m.IsNative {
		return &Frame{Type: types.NativeFrame, Method: m, Thread: t}
	}
	return &Frame{
		Type:    types.JavaFrame,
		Method:  m,
		Locals:  make([]Slot, m.MaxLocals),
		Operand: containers.NewFixedStack[Slot](m.MaxStack),
		Thread:  t,
	}
}

// SetLocal stores a category-1 value (int, float, reference,
// returnAddress) at index.
func (f *Frame) SetLocal(index int, s Slot) { f.Locals[index] = s }

// SetLocalWide stores a category-2 value (long, double) at index; index+1
// is left zeroed, reserved the way the class-file format reserves it,
// since this runtime addresses wide locals only by their base index.
func (f *Frame) SetLocalWide(index int, s Slot) {
	f.Locals[index] = s
	if index+1 < len(f.Locals) {
		f.Locals[index+1] = Slot{}
	}
}

// GetLocal reads the value at index.
func (f *Frame) GetLocal(index int) Slot { return f.Locals[index] }

// nextSlotWidth reports how many local-variable indices s occupies (1 or
// 2), used while filling parameter slots on invocation.
func nextSlotWidth(s Slot) int {
	if s.IsWide() {
		return 2
	}
	return 1
}

// FillParameters populates locals starting at startIndex (0 for static
// methods, 1 for instance methods whose receiver already occupies slot 0)
// from args in left-to-right declared order, advancing by 2 for each wide
// (long/double) argument, per spec §4.3 "Invocation".
func (f *Frame) FillParameters(startIndex int, args []Slot) {
	idx := startIndex
	for _, a := range args {
		if a.IsWide() {
			f.SetLocalWide(idx, a)
		} else {
			f.SetLocal(idx, a)
		}
		idx += nextSlotWidth(a)
	}
}

// ExceptionHandlerFor returns the exception table entry covering pc whose
// catch type matches (by caller-supplied predicate, since type
// compatibility requires the classloader's super-chain walk), or nil if
// none matches -- spec §4.3 "Exception unwinding".
func (f *Frame) ExceptionHandlerFor(pc int, matches func(catchType string) bool) *classloader.ExceptionHandler {
	for i := range f.Method.ExceptionTable {
		eh := &f.Method.ExceptionTable[i]
		if pc < eh.StartPC || pc >= eh.EndPC {
			continue
		}
		if eh.CatchType == "" || matches(eh.CatchType) {
			return eh
		}
	}
	return nil
}
