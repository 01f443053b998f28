/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"container/list"

	"jacobin/classloader"
	"jacobin/frames"
	"jacobin/thread"
)

// NativeInvoker runs a native method's Go implementation (src/gfunction)
// and returns its result. Supplied by src/vm at
// startup; interpreter does not import gfunction directly, since
// gfunction methods themselves need to call back into interpreter to
// invoke Java callbacks, which would otherwise cycle.
type NativeInvoker func(ctx *Context, m *classloader.Method, args []frames.Slot) (frames.Slot, bool, error)

// Context bundles everything one thread's interpretation loop needs
// beyond the current Frame: the defining classloader for constant-pool
// resolution, the thread's call stack (for invocation and stack-trace
// printing), and the native-method bridge.
type Context struct {
	CL            *classloader.Classloader
	Thread        *thread.Thread
	Stack         *list.List
	Native        NativeInvoker
	MaxStackDepth int

	// Invoke runs a method (almost always a <clinit>) to completion and is
	// handed to classloader.EnsureInitialized so that type initialization
	// can drive the very same interpretation loop recursively, without
	// classloader importing interpreter.
	Invoke classloader.Invoker
}

// NewContext builds an interpretation context for one thread, with the
// default maximum call depth used for the stack-overflow check (spec §7
// `stack-overflow`).
func NewContext(cl *classloader.Classloader, t *thread.Thread, native NativeInvoker) *Context {
	ctx := &Context{CL: cl, Thread: t, Stack: frames.CreateFrameStack(), Native: native, MaxStackDepth: 4096}
	ctx.Invoke = func(m *classloader.Method) error {
		_, _, err := Execute(ctx, frames.New(m, ctx.Thread))
		return err
	}
	return ctx
}
