/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2023-4 by  the Jacobin authors. Consult jacobin.org.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0) All rights reserved.
 */

// Package ffi is the runtime's native-library bridge (spec §6): it
// resolves a shared-library name against java.library.path, opens it and
// looks up symbols, all without cgo. System.loadLibrary/Runtime.loadLibrary
// (wired from src/gfunction) and any native method whose body isn't one
// of the Go-implemented stdlib methods in src/gfunction go through here.
//
// No example repo in the pack loads shared libraries at runtime, so there
// is no in-pack convention to imitate for the dlopen/dlsym primitives
// themselves; github.com/ebitengine/purego is used because it is the
// standard portable way to do this in Go without cgo (see DESIGN.md).
// The surrounding shape -- a name-keyed registry guarded by a mutex, error
// wrapping via pkg/errors, trace logging on load -- follows the
// same pattern as src/classloader's Archives registry.
package ffi

import (
	"sync"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"

	"jacobin/trace"
)

// Library is one shared library this process has dlopen'd, with its
// symbol lookups cached so repeated native calls don't re-resolve.
type Library struct {
	Name   string
	Path   string
	handle uintptr

	mu      sync.Mutex
	symbols map[string]uintptr
}

// registry is the process-wide set of loaded libraries, keyed by the bare
// name passed to Load (e.g. "z", not "libz.so"), mirroring
// System.loadLibrary's once-per-name semantics: a second load of the same
// name is a no-op that returns the already-open handle.
var (
	registryMu sync.Mutex
	registry   = make(map[string]*Library)

	searchPaths []string
)

// SetSearchPath configures the directories Resolve walks when a bare
// library name (rather than an absolute path) is requested, the
// equivalent of java.library.path. Called once by src/vm at startup from
// config.Settings.
func SetSearchPath(paths []string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	searchPaths = append([]string(nil), paths...)
}

// Load opens the named library, returning the cached Library if it was
// already opened. name may be a bare library name ("m", "pthread") to be
// resolved against the configured search path and platform naming
// convention, or an absolute/relative path to open directly.
func Load(name string) (*Library, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if lib, ok := registry[name]; ok {
		return lib, nil
	}

	path, err := resolve(name)
	if err != nil {
		return nil, errors.Wrapf(err, "ffi: resolving library %q", name)
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Wrapf(err, "ffi: dlopen %q", path)
	}

	lib := &Library{Name: name, Path: path, handle: handle, symbols: make(map[string]uintptr)}
	registry[name] = lib
	trace.Trace("ffi: loaded library " + name + " from " + path)
	return lib, nil
}

// resolve turns a bare library name into a loadable path: if name already
// looks like a path (contains a separator or a platform suffix) it is
// used as-is, otherwise each search-path entry is tried with the
// platform's conventional prefix/suffix.
func resolve(name string) (string, error) {
	if looksLikePath(name) {
		return name, nil
	}
	for _, dir := range searchPaths {
		for _, candidate := range platformCandidates(name) {
			full := dir + string(platformSeparator) + candidate
			if fileExists(full) {
				return full, nil
			}
		}
	}
	// Fall back to the bare decorated name and let the dynamic linker's
	// own search path (LD_LIBRARY_PATH, DYLD_LIBRARY_PATH, ...) try it.
	candidates := platformCandidates(name)
	if len(candidates) == 0 {
		return "", errors.Errorf("no platform naming convention for %q", name)
	}
	return candidates[0], nil
}

// Sym looks up a symbol in l, caching the result. Returns an error rather
// than panicking so a missing native implementation surfaces as a Java
// UnsatisfiedLinkError instead of crashing the process (spec §6 edge
// case: "native method body absent").
func (l *Library) Sym(name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if addr, ok := l.symbols[name]; ok {
		return addr, nil
	}

	addr, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, errors.Wrapf(err, "ffi: dlsym %q in %q", name, l.Name)
	}
	l.symbols[name] = addr
	return addr, nil
}

// Loaded reports whether name has already been opened, the check
// System.loadLibrary uses to make repeated loads of the same library a
// harmless no-op rather than reopening the shared object.
func Loaded(name string) bool {
	registryMu.Lock()
	defer registryMu.Unlock()
	_, ok := registry[name]
	return ok
}

// Reset clears the registry and search path. Exported for tests that
// need a clean slate between cases; production code never calls it.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]*Library)
	searchPaths = nil
}
