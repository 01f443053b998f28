/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classfile

import (
	"math"
	"os"
)

func mathFloat32frombits(b uint32) float32 { return math.Float32frombits(b) }
func mathFloat64frombits(b uint64) float64 { return math.Float64frombits(b) }

func mmapOpen(path string) (*os.File, error) {
	return os.Open(path)
}
