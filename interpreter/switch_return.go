/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import "jacobin/frames"

// alignSwitchPad advances f.PC to the next multiple of 4 relative to the
// method's own code array, matching the class-file format's padding rule
// for tableswitch/lookupswitch (both opcodes are 4-byte aligned measuring
// from byte 0 of the method, not from the opcode itself).
func alignSwitchPad(f *frames.Frame) {
	for f.PC%4 != 0 {
		f.PC++
	}
}

// execTableSwitch implements the dense jump-table switch form.
func execTableSwitch(f *frames.Frame, opcodePC int) {
	alignSwitchPad(f)
	def := int(s4(f))
	low := int(s4(f))
	high := int(s4(f))

	key, _ := f.Operand.Pop()
	idx := int(key.I32)
	if idx < low || idx > high {
		f.PC = opcodePC + def
		return
	}
	offsetIdx := idx - low
	f.PC += offsetIdx * 4
	offset := int(s4(f))
	f.PC = opcodePC + offset
}

// execLookupSwitch implements the sparse match-pairs switch form.
func execLookupSwitch(f *frames.Frame, opcodePC int) {
	alignSwitchPad(f)
	def := int(s4(f))
	npairs := int(s4(f))

	key, _ := f.Operand.Pop()
	target := opcodePC + def
	for i := 0; i < npairs; i++ {
		matchVal := int(s4(f))
		offset := int(s4(f))
		if int32(matchVal) == key.I32 {
			target = opcodePC + offset
		}
	}
	f.PC = target
}

// execReturn implements the return family, popping the return value (if
// any) off the operand stack and signaling to Execute that the frame is
// done.
func execReturn(f *frames.Frame, op byte) (stepOutcome, bool) {
	if op == opReturn {
		return stepOutcome{}, true
	}
	v, _ := f.Operand.Pop()
	return stepOutcome{value: v, hasReturn: true}, true
}
