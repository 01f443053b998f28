/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import "jacobin/frames"

// code reading helpers. Each advances f.PC by the number of bytes read.

func u1(f *frames.Frame) byte {
	b := f.Method.Code[f.PC]
	f.PC++
	return b
}

func s1(f *frames.Frame) int8 { return int8(u1(f)) }

func u2(f *frames.Frame) uint16 {
	v := uint16(f.Method.Code[f.PC])<<8 | uint16(f.Method.Code[f.PC+1])
	f.PC += 2
	return v
}

func s2(f *frames.Frame) int16 { return int16(u2(f)) }

func u4(f *frames.Frame) uint32 {
	c := f.Method.Code
	v := uint32(c[f.PC])<<24 | uint32(c[f.PC+1])<<16 | uint32(c[f.PC+2])<<8 | uint32(c[f.PC+3])
	f.PC += 4
	return v
}

func s4(f *frames.Frame) int32 { return int32(u4(f)) }

// step executes exactly one opcode starting at f.PC, leaving f.PC
// advanced past it (or patched to a branch target). returned indicates
// the opcode was one of the return family; thrown indicates an exception
// is now pending and f.PC still points at the opcode that raised it (the
// position handleThrow's exception-table lookup needs).
func step(ctx *Context, f *frames.Frame) (stepOutcome, bool, *Thrown) {
	opcodePC := f.PC
	op := u1(f)

	var outcome stepOutcome
	var returned bool
	var thrown *Thrown

	switch {
	case op == opNop:
		// no-op
	case op >= opAconstNull && op <= opSipush || op == opLdc || op == opLdcW || op == opLdc2W:
		thrown = execConstants(ctx, f, op)
	case op >= opIload && op <= opAload3:
		execLoads(f, op)
	case op >= opIaload && op <= opSaload:
		thrown = execArrayLoads(f, op)
	case op >= opIstore && op <= opAstore3:
		execStores(f, op)
	case op >= opIastore && op <= opSastore:
		thrown = execArrayStores(ctx, f, op)
	case op >= opPop && op <= opSwap:
		thrown = execStackOps(f, op)
	case op >= opIadd && op <= opLxor:
		thrown = execArithmetic(f, op)
	case op == opIinc:
		execIinc(f)
	case op >= opI2l && op <= opI2s:
		execConversions(f, op)
	case op >= opLcmp && op <= opDcmpg:
		execComparisons(f, op)
	case op >= opIfeq && op <= opIfAcmpne:
		execIfBranch(f, op, opcodePC)
	case op == opGoto:
		f.PC = opcodePC + int(s2(f))
	case op == opGotoW:
		f.PC = opcodePC + int(s4(f))
	case op == opJsr:
		target := opcodePC + int(s2(f))
		_ = f.Operand.Push(frames.Slot{Kind: frames.KindReturnAddress, RA: f.PC})
		f.PC = target
	case op == opJsrW:
		target := opcodePC + int(s4(f))
		_ = f.Operand.Push(frames.Slot{Kind: frames.KindReturnAddress, RA: f.PC})
		f.PC = target
	case op == opRet:
		idx := int(u1(f))
		f.PC = f.Locals[idx].RA
	case op == opTableswitch:
		execTableSwitch(f, opcodePC)
	case op == opLookupswitch:
		execLookupSwitch(f, opcodePC)
	case op >= opIreturn && op <= opReturn:
		outcome, returned = execReturn(f, op)
	case op == opGetstatic || op == opPutstatic:
		thrown = execStaticField(ctx, f, op)
	case op == opGetfield || op == opPutfield:
		thrown = execInstanceField(ctx, f, op)
	case op == opInvokevirtual || op == opInvokespecial || op == opInvokestatic || op == opInvokeinterface:
		outcome, returned, thrown = execInvoke(ctx, f, op)
	case op == opInvokedynamic:
		thrown = throwNamed("java/lang/LinkageError", "invokedynamic is not supported")
	case op == opNew:
		thrown = execNew(ctx, f)
	case op == opNewarray:
		thrown = execNewarray(ctx, f)
	case op == opAnewarray:
		thrown = execAnewarray(ctx, f)
	case op == opMultianewarray:
		thrown = execMultianewarray(ctx, f)
	case op == opArraylength:
		thrown = execArraylength(f)
	case op == opAthrow:
		thrown = execAthrow(f)
	case op == opCheckcast:
		thrown = execCheckcast(ctx, f)
	case op == opInstanceof:
		thrown = execInstanceof(ctx, f)
	case op == opMonitorenter:
		thrown = execMonitorEnter(ctx, f)
	case op == opMonitorexit:
		thrown = execMonitorExit(ctx, f)
	case op == opWide:
		execWide(f)
	default:
		thrown = fatalOpcode(f, op)
	}

	if thrown != nil {
		f.PC = opcodePC
	}
	return outcome, returned, thrown
}
