/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package vm

import (
	"jacobin/classloader"
	"jacobin/frames"
	"jacobin/interpreter"
)

// roots supplies the GC's root set (spec §4.5): every reference-typed
// local variable, operand-stack slot and return slot live across every
// frame on each of ctxs' call stacks, every static reference field cell
// across the loaded types (classloader.StaticReferenceRoots), and every
// materialized interned-string mirror (interpreter.InternedStringHandles).
// src/gc cannot see frames or the method area itself (it would otherwise
// need to import src/interpreter, src/frames and src/classloader,
// inverting the dependency), so vm -- the one package that already
// depends on all three -- is where the walk is assembled and handed to
// gc.StartServices as a RootFunc closure. Callers pass every live
// thread's context (the main thread and the finalizer thread, per spec
// §4.5's "every live thread's frame stack").
func roots(ctxs ...*interpreter.Context) []uint64 {
	var handles []uint64
	for _, ctx := range ctxs {
		frames.Walk(ctx.Stack, func(f *frames.Frame) bool {
			for _, s := range f.Locals {
				if s.Kind == frames.KindRef && s.Ref != 0 {
					handles = append(handles, s.Ref)
				}
			}
			if f.Operand != nil {
				for _, s := range f.Operand.Items() {
					if s.Kind == frames.KindRef && s.Ref != 0 {
						handles = append(handles, s.Ref)
					}
				}
			}
			if f.HasReturn && f.Return.Kind == frames.KindRef && f.Return.Ref != 0 {
				handles = append(handles, f.Return.Ref)
			}
			return true
		})
	}
	handles = append(handles, classloader.StaticReferenceRoots()...)
	handles = append(handles, interpreter.InternedStringHandles()...)
	return handles
}
