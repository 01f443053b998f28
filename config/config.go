/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package config resolves the three classpath-driving configuration
// values of spec §6 (class.path, path.separator, file.separator) plus
// the extra keys the teacher's CLI exposes (JAVA_HOME, verbosity). The
// CLI launcher (cmd/jacobin) populates a pflag.FlagSet and hands it here;
// nothing in src/classloader imports pflag directly, keeping the
// third-party dependency confined to the config boundary.
package config

import (
	"os"
	"strings"

	"github.com/spf13/pflag"

	"jacobin/globals"
)

// Keys recognized per spec §6.
const (
	KeyClassPath     = "class.path"
	KeyPathSeparator = "path.separator"
	KeyFileSeparator = "file.separator"
)

// Settings is the parsed configuration handed to the loader/linker.
type Settings struct {
	Classpath     []string
	PathSeparator string
	FileSeparator string
	JavaHome      string
	Verbose       bool
}

// Flags defines the launcher's flag surface on fs and returns a closure
// that, once fs.Parse has run, resolves the final Settings.
func Flags(fs *pflag.FlagSet) func() Settings {
	cp := fs.StringP("classpath", "cp", "", "search path for application classes")
	verbose := fs.Bool("verbose", false, "enable class-load and GC tracing")

	return func() Settings {
		pathSep := os.Getenv("path.separator")
		if pathSep == "" {
			pathSep = string(os.PathListSeparator)
		}
		fileSep := os.Getenv("file.separator")
		if fileSep == "" {
			fileSep = string(os.PathSeparator)
		}

		var entries []string
		if *cp != "" {
			entries = strings.Split(*cp, pathSep)
		}

		return Settings{
			Classpath:     entries,
			PathSeparator: pathSep,
			FileSeparator: fileSep,
			JavaHome:      os.Getenv("JAVA_HOME"),
			Verbose:       *verbose,
		}
	}
}

// Apply copies resolved settings into the process-wide globals instance
// so every subsystem reads from one place after startup.
func Apply(s Settings) {
	g := globals.GetGlobalRef()
	g.Classpath = s.Classpath
	g.PathSeparator = s.PathSeparator
	g.FileSeparator = s.FileSeparator
	g.JavaHome = s.JavaHome
	g.TraceVerbose = s.Verbose
}
