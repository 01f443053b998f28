/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023-4 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

package gfunction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jacobin/ffi"
	"jacobin/object"
)

func TestRuntimeAvailableProcessorsIsPositive(t *testing.T) {
	n, ok := runtimeAvailableProcessors(nil).(int64)
	assert.True(t, ok)
	assert.Greater(t, n, int64(0))
}

func TestRuntimeLoadLibraryUnknownNameReturnsGErrBlk(t *testing.T) {
	ffi.Reset()
	nameObj := object.StringObjectFromGoString("no-such-library-jacobin-test")
	result := runtimeLoadLibrary([]interface{}{nil, nameObj})
	_, isErr := result.(*GErrBlk)
	assert.True(t, isErr)
}

func TestLoadLangRuntimeRegistersSignatures(t *testing.T) {
	Load_Lang_Runtime()
	_, ok := MethodSignatures["java/lang/Runtime.availableProcessors()I"]
	assert.True(t, ok)
}
