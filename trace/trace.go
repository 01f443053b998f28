/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package trace is the single logging facility consulted by every other
// package in the core. It keeps the teacher's call shape (Trace/Error/
// Warning, one line in, nothing out) but is backed by logrus so every
// line picks up levels, timestamps and structured fields for free.
package trace

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init lets src/vm wire the --verbose setting into the shared logger
// before any class is loaded: verbose selects debug level, otherwise info.
func Init(verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// Trace logs a routine informational line (class loading, GC cycles,
// native library loads).
func Trace(msg string) {
	logger.Debug(msg)
}

// Warning logs a recoverable but noteworthy condition.
func Warning(msg string) {
	logger.Warn(msg)
}

// Error logs a condition that is about to become a thrown exception or a
// fatal shutdown.
func Error(msg string) {
	logger.Error(msg)
}

// Fields logs with structured key/value context, used by the GC and
// thread subsystems to attach cycle numbers, object counts, etc.
func Fields(fields map[string]interface{}, msg string) {
	logger.WithFields(fields).Debug(msg)
}
