/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023-4 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

package ffi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformCandidatesPerGOOS(t *testing.T) {
	for _, name := range platformCandidates("z") {
		assert.NotEmpty(t, name)
	}
}

func TestLooksLikePath(t *testing.T) {
	assert.True(t, looksLikePath("/usr/lib/libz.so"))
	assert.True(t, looksLikePath("libz.dylib"))
	assert.False(t, looksLikePath("z"))
}

func TestLoadUnknownLibraryFails(t *testing.T) {
	Reset()
	_, err := Load("no-such-library-jacobin-test")
	require.Error(t, err)
	assert.False(t, Loaded("no-such-library-jacobin-test"))
}

func TestSetSearchPathIsIsolatedByReset(t *testing.T) {
	SetSearchPath([]string{"/tmp"})
	Reset()
	assert.Empty(t, searchPaths)
}
