/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package globals is the runtime's one process-wide collaborator (per
// spec §9 "Global mutable state"): explicit init/teardown, every other
// subsystem reaches it through a passed reference rather than its own
// ad hoc singleton.
package globals

import (
	"sync"
)

// Globals holds the configuration and cross-cutting state every
// subsystem needs a read of: where the platform class library lives,
// which jar (if any) supplies the main class, and the trace switches the
// teacher exposed as package vars (TraceClass, TraceCloadi, ...).
type Globals struct {
	JavaHome    string
	JavaVersion string
	StartingJar string
	Classpath   []string

	PathSeparator string
	FileSeparator string

	TraceVerbose bool
	TraceClass   bool
	TraceCloadi  bool
	TraceInst    bool

	// FuncThrowException lets the classloader and other lower layers
	// raise an in-band exception without importing the interpreter
	// (which would create an import cycle). InitGlobals installs a no-op
	// default, and no package in this runtime replaces it.
	FuncThrowException func(excType int, msg string)

	ExitNow bool

	LoaderWg sync.WaitGroup
}

var global Globals
var once sync.Once

// GetGlobalRef returns the process-wide Globals instance, lazily
// constructing its defaults on first use.
func GetGlobalRef() *Globals {
	once.Do(func() {
		InitGlobals()
	})
	return &global
}

// InitGlobals (re)initializes the shared instance. Called once by
// GetGlobalRef on first use; a later call resets every field to its default.
func InitGlobals() *Globals {
	global = Globals{
		PathSeparator:      ":",
		FileSeparator:      "/",
		FuncThrowException: func(int, string) {},
	}
	return &global
}
