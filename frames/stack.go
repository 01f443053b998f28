/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package frames

import (
	"container/list"
	"fmt"
)

// CreateFrameStack returns a new, empty call stack for one thread. Kept
// as a container/list.List -- matching the teacher's own frame-stack
// convention -- rather than a containers.FixedStack, since a thread's
// call depth isn't bounded the way a method's own operand stack is
// (beyond the runtime's stack-overflow check in src/interpreter).
func CreateFrameStack() *list.List { return list.New() }

// PushFrame pushes f onto the front of fs, so the most recent call is
// always fs.Front().
func PushFrame(fs *list.List, f *Frame) error {
	if fs == nil {
		return fmt.Errorf("PushFrame: nil frame stack")
	}
	fs.PushFront(f)
	return nil
}

// PopFrame removes and returns the frame at the top of fs.
func PopFrame(fs *list.List) (*Frame, error) {
	if fs == nil || fs.Len() == 0 {
		return nil, fmt.Errorf("PopFrame: frame stack is empty")
	}
	e := fs.Front()
	fs.Remove(e)
	return e.Value.(*Frame), nil
}

// PeekFrame returns the top frame without removing it.
func PeekFrame(fs *list.List) (*Frame, error) {
	if fs == nil || fs.Len() == 0 {
		return nil, fmt.Errorf("PeekFrame: frame stack is empty")
	}
	return fs.Front().Value.(*Frame), nil
}

// Depth reports the number of frames currently on the stack.
func Depth(fs *list.List) int {
	if fs == nil {
		return 0
	}
	return fs.Len()
}

// Walk calls visit for every frame on fs, outermost call last, stopping
// early if visit returns false. Used by the GC root walk (spec §4.5) and
// by uncaught-exception stack trace printing.
func Walk(fs *list.List, visit func(f *Frame) bool) {
	if fs == nil {
		return
	}
	for e := fs.Front(); e != nil; e = e.Next() {
		if !visit(e.Value.(*Frame)) {
			return
		}
	}
}
