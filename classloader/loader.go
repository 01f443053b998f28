/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"jacobin/archive"
	"jacobin/classfile"
	"jacobin/excNames"
	"jacobin/globals"
	"jacobin/trace"
	"jacobin/types"
	"jacobin/util"
)

// Classloader mirrors the teacher's three-tier delegation model:
// bootstrap -> extension -> app. Archives is the set of jar/jmod bundles
// this loader has already opened, keyed by path, so repeated lookups
// against the same bundle don't re-open it.
type Classloader struct {
	Name       string
	Parent     string
	ClassCount int
	Archives   map[string]*archive.Bundle

	mu sync.Mutex
}

var (
	BootstrapCL Classloader
	ExtensionCL Classloader
	AppCL       Classloader
)

// Init wires the three classloaders together in delegation order and
// resets the method area. Mirrors the teacher's classloader.Init().
func Init() error {
	BootstrapCL = Classloader{Name: "bootstrap", Archives: make(map[string]*archive.Bundle)}
	ExtensionCL = Classloader{Name: "extension", Parent: "bootstrap", Archives: make(map[string]*archive.Bundle)}
	AppCL = Classloader{Name: "app", Parent: "extension", Archives: make(map[string]*archive.Bundle)}
	ResetMethArea()
	LoadPrimitive(types.Int) // force the primitive-singleton sync.Once regardless of which descriptor is asked for first
	return nil
}

// GetCountOfLoadedClasses reports how many classes this loader has
// parsed and posted to the method area.
func (cl *Classloader) GetCountOfLoadedClasses() int { return cl.ClassCount }

// Load implements spec §4.2 `load(name) -> type | error`: cache by name,
// then search classpath entries in configured order, then the platform
// library's archive bundles. The first hit wins; a miss anywhere raises
// NoClassDefFoundError.
func Load(cl *Classloader, name string) (*Klass, error) {
	if k := MethAreaFetch(name); k != nil {
		return k, nil
	}

	// Mark as loading so concurrent Load() calls for the same name don't
	// race to parse the same bytes twice.
	placeholder := &Klass{Name: name, Status: types.Unloaded}
	MethAreaInsert(name, placeholder)

	raw, foundIn, err := locate(cl, name)
	if err != nil {
		MethAreaDelete(name)
		return nil, errors.Wrapf(err, "no-class-def-found: %s", name)
	}

	cf, err := classfile.Parse(raw)
	if err != nil {
		MethAreaDelete(name)
		trace.Error("Load: malformed class " + name + ": " + err.Error())
		return nil, err
	}

	k, err := link(cl, cf, name, foundIn)
	if err != nil {
		MethAreaDelete(name)
		return nil, err
	}

	MethAreaInsert(name, k)
	cl.mu.Lock()
	cl.ClassCount++
	cl.mu.Unlock()

	return k, nil
}

// locate performs the lookup-order search: classpath directories first,
// in configured order, then the archive bundle(s) registered on cl.
func locate(cl *Classloader, name string) ([]byte, string, error) {
	g := globals.GetGlobalRef()
	rel := util.ConvertInternalClassNameToFilename(name) + ".class"

	for _, entry := range g.Classpath {
		candidate := filepath.Join(entry, filepath.FromSlash(rel))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			raw, err := classfile.ReadFileMmap(candidate)
			if err != nil {
				return nil, "", err
			}
			return raw, candidate, nil
		}
	}

	for path, bundle := range cl.Archives {
		if bundle.Has(rel) {
			raw, err := bundle.ReadClass(rel)
			if err != nil {
				return nil, "", err
			}
			return raw, path, nil
		}
	}

	return nil, "", errors.Errorf("%s: %s", excNames.NoClassDefFoundError, name)
}

// OpenArchive opens the archive bundle at path (once per path) and
// registers it with cl so subsequent Load() calls can search it, matching
// spec §4.2 step 3
// ("search archive bundles of the platform library").
func (cl *Classloader) OpenArchive(path string) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if _, ok := cl.Archives[path]; ok {
		return nil
	}
	b, err := archive.Open(path)
	if err != nil {
		return err
	}
	cl.Archives[path] = b
	return nil
}
