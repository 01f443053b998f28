/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package vm is the top-level orchestrator (spec §2 "Control flow"):
// wire every subsystem's startup order, load the requested main class,
// resolve its main(String[]) method, and interpret it to completion on a
// fresh primary thread. cmd/jacobin is the only caller.
package vm

import (
	"context"
	"fmt"
	"strings"

	"jacobin/classloader"
	"jacobin/config"
	"jacobin/ffi"
	"jacobin/frames"
	"jacobin/gc"
	"jacobin/gfunction"
	"jacobin/interpreter"
	"jacobin/object"
	"jacobin/shutdown"
	"jacobin/thread"
	"jacobin/trace"
	"jacobin/types"
)

// accStatic is the class-file ACC_STATIC method access flag.
const accStatic = 0x0008

const mainDescriptor = "([Ljava/lang/String;)V"

// Run boots the runtime and interprets mainClass's main(String[]) to
// completion, returning the process exit code spec §2 and §7 define:
// OK on normal return, JVM_EXCEPTION on an uncaught throwable,
// APP_EXCEPTION on any out-of-band startup fault (bad classpath, missing
// main method, malformed class file).
func Run(settings config.Settings, mainClass string, args []string) shutdown.ExitCode {
	config.Apply(settings)
	trace.Init(settings.Verbose)

	if err := classloader.Init(); err != nil {
		trace.Error(fmt.Sprintf("vm: classloader init: %v", err))
		return shutdown.APP_EXCEPTION
	}
	gfunction.Init()
	ffi.SetSearchPath(settings.Classpath)

	for _, entry := range settings.Classpath {
		if !looksLikeArchive(entry) {
			continue
		}
		if err := classloader.AppCL.OpenArchive(entry); err != nil {
			trace.Error(fmt.Sprintf("vm: opening archive %s: %v", entry, err))
			return shutdown.APP_EXCEPTION
		}
	}

	mainThread := thread.New("main", false)
	mainThread.Kind = thread.KindMain
	ctx := interpreter.NewContext(&classloader.AppCL, mainThread, gfunction.Invoke)

	finalizerThread := thread.New("Finalizer", true)
	finalizerThread.Kind = thread.KindFinalizer
	finalizerCtx := interpreter.NewContext(&classloader.AppCL, finalizerThread, gfunction.Invoke)
	gc.SetHasFinalizerFunc(hasFinalizer)
	gc.SetFinalizeFunc(func(obj *object.Object) { runFinalizer(finalizerCtx, obj) })

	stopGC := gc.StartServices(context.Background(), func() []uint64 { return roots(ctx, finalizerCtx) })
	defer stopGC()

	klass, err := classloader.Load(&classloader.AppCL, mainClass)
	if err != nil {
		trace.Error(fmt.Sprintf("vm: loading %s: %v", mainClass, err))
		return shutdown.APP_EXCEPTION
	}
	if err := classloader.EnsureInitialized(&classloader.AppCL, klass, ctx.Invoke, ctx.Thread.ID); err != nil {
		trace.Error(fmt.Sprintf("vm: initializing %s: %v", mainClass, err))
		return shutdown.APP_EXCEPTION
	}

	mainMethod := findMain(klass)
	if mainMethod == nil {
		trace.Error(fmt.Sprintf("vm: %s has no public static void main(String[]) method", mainClass))
		return shutdown.APP_EXCEPTION
	}

	callee := frames.New(mainMethod, mainThread)
	callee.FillParameters(0, []frames.Slot{buildArgsArray(args)})

	_, _, rerr := interpreter.Execute(ctx, callee)
	if rerr != nil {
		printUncaught(mainClass, rerr)
		return shutdown.JVM_EXCEPTION
	}
	return shutdown.OK
}

func looksLikeArchive(path string) bool {
	return strings.HasSuffix(path, ".jar") || strings.HasSuffix(path, ".jmod")
}

// findMain locates the public static main(String[]) entry point among
// klass's own declared methods; spec §2 doesn't require searching
// superclasses, matching the JVM specification's own restriction of
// main() discovery to the named class.
func findMain(klass *classloader.Klass) *classloader.Method {
	for _, m := range klass.DeclaredMethods {
		if m.Name == "main" && m.Descriptor == mainDescriptor && m.AccessFlags&accStatic != 0 {
			return m
		}
	}
	return nil
}

// buildArgsArray materializes args as a java/lang/String[] and returns
// the reference Slot that becomes main's sole parameter.
func buildArgsArray(args []string) frames.Slot {
	arr := object.AllocateArray("[Ljava/lang/String;", "L", types.ReferenceTypeSize, int32(len(args)), 0)
	for i, a := range args {
		handle := gc.Register(object.StringObjectFromGoString(a))
		_ = arr.SetElement(int32(i), handle)
	}
	return frames.RefSlot(gc.RegisterArray(arr))
}

const finalizeDescriptor = "()V"

// hasFinalizer reports whether obj's type declares its own finalize()
// rather than inheriting the platform library's no-op default, per spec
// §4.5's "objects whose type declares a non-default finalizer" rule.
// Anything that fails to resolve (type unloaded, no finalize() anywhere
// in the chain, which shouldn't happen once java/lang/Object is loaded)
// is treated as non-finalizable rather than faulting the collector.
func hasFinalizer(obj *object.Object) bool {
	k := classloader.MethAreaFetch(obj.KlassName)
	if k == nil {
		return false
	}
	m := classloader.FindVirtualMethod(k, "finalize", finalizeDescriptor)
	return m != nil && m.DeclaringClass != "java/lang/Object"
}

// runFinalizer invokes obj's finalize() on the runtime's dedicated
// finalizer thread (spec §4.7). Any exception escaping finalize() is
// swallowed, matching the platform specification's "finalizer exceptions
// are ignored and the thread continues" rule; the only outcome that
// matters here is that the method ran once.
func runFinalizer(ctx *interpreter.Context, obj *object.Object) {
	k := classloader.MethAreaFetch(obj.KlassName)
	if k == nil {
		return
	}
	m := classloader.FindVirtualMethod(k, "finalize", finalizeDescriptor)
	if m == nil || m.DeclaringClass == "java/lang/Object" {
		return
	}
	handle := gc.Register(obj)
	defer gc.Deregister(handle)
	f := frames.New(m, ctx.Thread)
	f.FillParameters(0, []frames.Slot{frames.RefSlot(handle)})
	defer func() { _ = recover() }()
	_, _, _ = interpreter.Execute(ctx, f)
}

// printUncaught renders the exception the way the teacher's launcher
// would report an uncaught throwable escaping main(), per spec §7.
func printUncaught(mainClass string, err error) {
	if t, ok := err.(*interpreter.Thrown); ok {
		trace.Error(fmt.Sprintf("Exception in thread \"main\" %s", t.Error()))
		return
	}
	trace.Error(fmt.Sprintf("vm: %s: uncaught error: %v", mainClass, err))
}
