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
	"jacobin/gc"
)

// accSynchronized is the class-file ACC_SYNCHRONIZED method access flag.
const accSynchronized = 0x0020

// execInvoke implements invokevirtual/invokespecial/invokestatic/
// invokeinterface: resolve the call's Method, pop its arguments (and
// receiver, for the non-static forms) off the caller's operand stack,
// build a callee Frame, and run it to completion via Execute -- the same
// loop this call site is itself executing inside of, giving call depth a
// natural mapping onto Go's own call stack.
func execInvoke(ctx *Context, f *frames.Frame, op byte) (stepOutcome, bool, *Thrown) {
	idx := u2(f)
	cp := declaringCP(f)
	method, err := classloader.ResolveMethod(ctx.CL, cp, idx)
	if err != nil {
		return stepOutcome{}, false, throwNamed(excNames.NoSuchMethodError, "%v", err)
	}

	params, _ := parseMethodDescriptor(method.Descriptor)
	args := make([]frames.Slot, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		args[i], _ = f.Operand.Pop()
	}

	var receiver frames.Slot
	isStatic := op == opInvokestatic
	if !isStatic {
		receiver, _ = f.Operand.Pop()
		if receiver.Ref == 0 {
			return stepOutcome{}, false, throwNullPointer("invocation on null reference")
		}
	}

	target := method
	if op == opInvokevirtual || op == opInvokeinterface {
		if obj := gc.Resolve(receiver.Ref); obj != nil {
			if k := classloader.MethAreaFetch(obj.KlassName); k != nil {
				if override := findVirtualOverride(k, method.Name, method.Descriptor); override != nil {
					target = override
				}
			}
		}
	}

	owner := classloader.MethAreaFetch(target.DeclaringClass)
	if owner != nil {
		if initErr := classloader.EnsureInitialized(ctx.CL, owner, ctx.Invoke, ctx.Thread.ID); initErr != nil {
			return stepOutcome{}, false, throwNamed(excNames.ExceptionInInitializerError, "%v", initErr)
		}
	}

	if target.IsNative {
		v, hasReturn, nerr := ctx.Native(ctx, target, prependReceiver(isStatic, receiver, args))
		if nerr != nil {
			if t, ok := nerr.(*Thrown); ok {
				return stepOutcome{}, false, t
			}
			return stepOutcome{}, false, throwNamed(excNames.LinkageError, "%v", nerr)
		}
		if hasReturn {
			if perr := pushOrOverflow(f, v); perr != nil {
				return stepOutcome{}, false, perr
			}
		}
		return stepOutcome{}, false, nil
	}

	callee := frames.New(target, ctx.Thread)
	startIdx := 0
	if !isStatic {
		callee.SetLocal(0, receiver)
		startIdx = 1
	}
	callee.FillParameters(startIdx, args)

	if target.AccessFlags&accSynchronized != 0 {
		if isStatic {
			callee.Monitor = monitorFor(uint64(mirrorHandle(target.DeclaringClass)))
		} else {
			callee.Monitor = monitorFor(receiver.Ref)
		}
	}

	v, hasReturn, cerr := Execute(ctx, callee)
	if cerr != nil {
		if t, ok := cerr.(*Thrown); ok {
			return stepOutcome{}, false, t
		}
		return stepOutcome{}, false, throwNamed(excNames.LinkageError, "%v", cerr)
	}
	if hasReturn {
		if perr := pushOrOverflow(f, v); perr != nil {
			return stepOutcome{}, false, perr
		}
	}
	return stepOutcome{}, false, nil
}

func prependReceiver(isStatic bool, receiver frames.Slot, args []frames.Slot) []frames.Slot {
	if isStatic {
		return args
	}
	full := make([]frames.Slot, 0, len(args)+1)
	full = append(full, receiver)
	full = append(full, args...)
	return full
}

// findVirtualOverride looks up name+descriptor starting at the receiver's
// actual runtime type and walking up, implementing single dispatch for
// invokevirtual/invokeinterface (spec §4.3 "Invocation": "virtual calls
// dispatch on the receiver's actual type").
func findVirtualOverride(k *classloader.Klass, name, descriptor string) *classloader.Method {
	key := classloader.MethodTableKey(name, descriptor)
	for cur := k; cur != nil; cur = cur.Super {
		for _, m := range cur.DeclaredMethods {
			if classloader.MethodTableKey(m.Name, m.Descriptor) == key {
				return m
			}
		}
	}
	return nil
}
