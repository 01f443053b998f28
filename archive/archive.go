/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package archive reads compressed archive bundles (jar/jmod files) that
// package platform library classes, keyed by "/"-separated paths ending
// in ".class" (spec §6 Archive format). Access is read-only: there is no
// write path anywhere in this package.
package archive

import (
	"archive/zip"
	"fmt"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Bundle is one opened archive file. The zip central directory is parsed
// once at Open time; member bytes are read lazily from a memory-mapped
// view of the file so that pulling a handful of classes out of a
// multi-thousand-entry jmod doesn't require buffering the whole archive.
type Bundle struct {
	path    string
	file    *os.File
	mapping mmap.MMap
	zr      *zip.Reader

	mu      sync.Mutex
	byName  map[string]*zip.File
}

// Open memory-maps path and parses its central directory. The archive
// format is the standard compressed (zip-based) bundle format named in
// spec §6; no bespoke decompression is implemented here.
func Open(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "archive.Open: opening %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "archive.Open: stat %s", path)
	}
	if info.Size() == 0 {
		f.Close()
		return nil, errors.Errorf("archive.Open: %s is empty", path)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "archive.Open: mmap %s", path)
	}

	zr, err := zip.NewReader(byteReaderAt(m), info.Size())
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, errors.Wrapf(err, "archive.Open: corrupted archive %s", path)
	}

	b := &Bundle{
		path:    path,
		file:    f,
		mapping: m,
		zr:      zr,
		byName:  make(map[string]*zip.File),
	}
	for _, zf := range zr.File {
		b.byName[zf.Name] = zf
	}
	return b, nil
}

// Close unmaps the archive and releases its file handle.
func (b *Bundle) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.mapping.Unmap(); err != nil {
		return err
	}
	return b.file.Close()
}

// ReadClass returns the raw bytes of the member at the given "/"-joined
// path (e.g. "java/lang/Object.class"). Returns an error if the member
// does not exist or does not end in ".class".
func (b *Bundle) ReadClass(memberPath string) ([]byte, error) {
	if len(memberPath) < len(".class") || memberPath[len(memberPath)-6:] != ".class" {
		return nil, fmt.Errorf("archive.ReadClass: %s is not a .class member", memberPath)
	}

	b.mu.Lock()
	zf, ok := b.byName[memberPath]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("archive.ReadClass: %s not found in %s", memberPath, b.path)
	}

	rc, err := zf.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "archive.ReadClass: opening member %s", memberPath)
	}
	defer rc.Close()

	out := make([]byte, zf.UncompressedSize64)
	if _, err := readFull(rc, out); err != nil {
		return nil, errors.Wrapf(err, "archive.ReadClass: reading member %s", memberPath)
	}
	return out, nil
}

// Has reports whether memberPath is present in the archive, without
// reading it.
func (b *Bundle) Has(memberPath string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.byName[memberPath]
	return ok
}
