/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interpreter

import "strings"

// parseMethodDescriptor splits a method descriptor "(params)return" into
// its parameter field descriptors and return descriptor, in declaration
// order. Used wherever the interpreter needs to know how many operand
// stack slots a call site consumes/produces without a linked ParamTypes
// list (invokedynamic aside, every call site resolves a real Method whose
// descriptor is always well-formed by class-file verification).
func parseMethodDescriptor(desc string) (params []string, ret string) {
	i := strings.IndexByte(desc, '(')
	j := strings.IndexByte(desc, ')')
	if i < 0 || j < 0 || j <= i {
		return nil, "V"
	}
	body := desc[i+1 : j]
	ret = desc[j+1:]
	for k := 0; k < len(body); {
		start := k
		for body[k] == '[' {
			k++
		}
		if body[k] == 'L' {
			for body[k] != ';' {
				k++
			}
			k++
		} else {
			k++
		}
		params = append(params, body[start:k])
	}
	return params, ret
}
