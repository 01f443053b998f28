/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"jacobin/classloader"
	"jacobin/excNames"
	"jacobin/frames"
	"jacobin/trace"
	"jacobin/types"
)

// Execute runs f's bytecode (or, for a native frame, dispatches through
// ctx.Native) to completion and returns its result. For a bytecode frame a
// non-nil error is a *Thrown that f's own exception table did not handle,
// the *Thrown for a stack overflow raised before f starts, or an error
// from handleThrow itself. A native frame returns ctx.Native's error
// unchanged.
func Execute(ctx *Context, f *frames.Frame) (frames.Slot, bool, error) {
	if f.Type == types.NativeFrame {
		return ctx.Native(ctx, f.Method, nil)
	}

	if frames.Depth(ctx.Stack) >= ctx.MaxStackDepth {
		return frames.Slot{}, false, throwStackOverflow()
	}

	if f.Monitor != nil {
		f.Monitor.Enter(ctx.Thread)
	}
	_ = frames.PushFrame(ctx.Stack, f)
	defer func() {
		_, _ = frames.PopFrame(ctx.Stack)
		if f.Monitor != nil {
			_ = f.Monitor.Exit(ctx.Thread)
		}
	}()

	for {
		outcome, returned, thrown := step(ctx, f)
		if thrown == nil {
			if returned {
				return outcome.value, outcome.hasReturn, nil
			}
			continue
		}

		handled, err := handleThrow(ctx, f, thrown)
		if err != nil {
			return frames.Slot{}, false, err
		}
		if !handled {
			return frames.Slot{}, false, thrown
		}
		// handled: pc has been set to the handler target and the operand
		// stack already holds just the throwable; fall through to the next
		// dispatch iteration.
	}
}

// stepOutcome carries a method's return value when step signals returned
// == true; hasReturn distinguishes a void return from one actually
// carrying a value.
type stepOutcome struct {
	value     frames.Slot
	hasReturn bool
}

// handleThrow implements spec §4.3's exception unwinding: walk f's
// exception table for a handler whose range covers the opcode that just
// threw and whose caught type is a super type of thrown's class (or a
// catch-all). If found, the operand stack is cleared, the throwable
// pushed, and pc patched to the handler -- handled=true, caller keeps
// looping. If not, handled=false and the caller propagates thrown to its
// own caller; Execute's deferred cleanup releases any monitor held by f.
func handleThrow(ctx *Context, f *frames.Frame, thrown *Thrown) (handled bool, err error) {
	eh := f.ExceptionHandlerFor(f.PC, func(catchType string) bool {
		return isAssignableFrom(ctx.CL, catchType, thrown.ClassName)
	})
	if eh == nil {
		return false, nil
	}

	f.Operand.Clear()
	if pushErr := f.Operand.Push(frames.RefSlot(thrown.Handle)); pushErr != nil {
		return false, pushErr
	}
	f.PC = eh.HandlerPC
	return true, nil
}

// isAssignableFrom reports whether an instance of concrete is a valid
// catch target for a handler declared to catch ancestor (ancestor is a
// super type of, or equal to, concrete), per spec §4.3.
func isAssignableFrom(cl *classloader.Classloader, ancestor, concrete string) bool {
	if ancestor == concrete {
		return true
	}
	k := classloader.MethAreaFetch(concrete)
	for k != nil {
		if k.Name == ancestor {
			return true
		}
		for _, iface := range k.InterfaceNames {
			if iface == ancestor {
				return true
			}
		}
		k = k.Super
	}
	return false
}

func fatalOpcode(f *frames.Frame, op byte) *Thrown {
	trace.Error("interpreter: unsupported opcode")
	return throwNamed(excNames.LinkageError, "unsupported opcode 0x%02x at pc %d in %s", op, f.PC, f.Method.Name)
}
