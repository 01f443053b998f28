/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023-4 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

package ffi

import (
	"os"
	"runtime"
	"strings"
)

const platformSeparator = os.PathSeparator

// platformCandidates returns the conventional decorated file names for a
// bare library name on the running GOOS, e.g. "z" -> "libz.so" on linux,
// "libz.dylib" on darwin, "z.dll" on windows.
func platformCandidates(name string) []string {
	switch runtime.GOOS {
	case "windows":
		return []string{name + ".dll", "lib" + name + ".dll"}
	case "darwin":
		return []string{"lib" + name + ".dylib"}
	default:
		return []string{"lib" + name + ".so"}
	}
}

func looksLikePath(name string) bool {
	return strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator) ||
		strings.HasSuffix(name, ".so") || strings.HasSuffix(name, ".dylib") || strings.HasSuffix(name, ".dll")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
