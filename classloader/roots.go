/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

// StaticReferenceRoots returns the gc handle carried by every
// reference-typed static field across every currently loaded type --
// spec §4.5's "static field cells" root category. getstatic/putstatic
// store a reference field's StaticValue as the uint64 handle
// interpreter.valueToSlot/slotToValue round-trip (see
// src/interpreter/fields.go); an unset or null field's StaticValue is
// either nil or the zero handle, both skipped here.
func StaticReferenceRoots() []uint64 {
	var handles []uint64
	for _, k := range MethAreaSnapshot() {
		for _, fld := range k.DeclaredFields {
			if !fld.IsStatic || fld.Descriptor == "" {
				continue
			}
			switch fld.Descriptor[0] {
			case 'L', '[':
			default:
				continue
			}
			if h, ok := fld.StaticValue.(uint64); ok && h != 0 {
				handles = append(handles, h)
			}
		}
	}
	return handles
}
