/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package shutdown centralizes the runtime's exit codes. Out-of-band
// faults (malformed class files, corrupted archives, host mutex-primitive
// failures) all funnel through Exit() rather than each caller invoking
// os.Exit directly, so every exit path is traceable to one place.
package shutdown

import "os"

type ExitCode int

const (
	OK           ExitCode = 0
	JVM_EXCEPTION ExitCode = 1
	APP_EXCEPTION ExitCode = 2
)

// exitFunc is swapped out in tests that need to observe an attempted exit
// without killing the test binary.
var exitFunc = os.Exit

// Exit terminates the process with the given code. It is the single
// choke point for process termination so that out-of-band faults are
// never worked around with a bare os.Exit scattered through the core.
func Exit(code ExitCode) {
	exitFunc(int(code))
}

// SetExitFunc lets tests intercept Exit(); production code never calls it.
func SetExitFunc(f func(int)) {
	if f == nil {
		exitFunc = os.Exit
		return
	}
	exitFunc = f
}
