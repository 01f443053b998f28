/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import (
	"math"

	"jacobin/types"
)

// toI32/toI64/toU64 normalize the interface{} values that object.Array's
// GetElement/decodeSlot hand back (whose concrete Go type varies by
// component descriptor) to the width the array-load opcodes need.
func toI32(v interface{}) int32 {
	switch n := v.(type) {
	case int32:
		return n
	case uint32:
		return int32(n)
	case int16:
		return int32(n)
	case uint16:
		return int32(n)
	case types.JavaByte:
		return int32(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case int64:
		return int32(n)
	case uint64:
		return int32(n)
	default:
		return 0
	}
}

func toI64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case uint64:
		return int64(n)
	case int32:
		return int64(n)
	case uint32:
		return int64(n)
	default:
		return 0
	}
}

func toU64(v interface{}) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case int64:
		return uint64(n)
	default:
		return 0
	}
}

func float32FromBits(bits int32) float32 { return math.Float32frombits(uint32(bits)) }
func float64FromBits(bits int64) float64 { return math.Float64frombits(uint64(bits)) }
func bitsFromFloat32(f float32) int32    { return int32(math.Float32bits(f)) }
func bitsFromFloat64(f float64) int64    { return int64(math.Float64bits(f)) }
