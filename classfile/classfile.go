/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classfile is the binary type-descriptor reader of spec §4.1. It
// parses the well-known big-endian, magic-0xCAFEBABE format into a raw,
// symbolic in-memory form and performs no resolution -- that's
// src/classloader's job. Parse() is the only pass here: its structural
// checks (magic, version range, tag range, truncation, attribute length)
// run inline while reading; there is no separate format-check pass.
package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

const (
	MagicNumber = 0xCAFEBABE

	MinSupportedMajor = 51
	MaxSupportedMajor = 52
)

// ConstantPool tag values. Payload size for each tag is fixed by the
// spec; Parse relies on this switch to know how many bytes to consume.
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// CpInfo is one tagged constant-pool entry in its raw, unresolved form.
type CpInfo struct {
	Tag  byte
	Raw  []byte  // for UTF8 entries, the modified-UTF8 bytes
	Idx1 uint16  // generic first index field (class_index, name_index, ...)
	Idx2 uint16  // generic second index field (name_and_type_index, ...)
	Int  int32   // IntConst, or MethodHandle.reference_kind (its reference_index goes in Idx1)
	Long int64
	Flt  float32
	Dbl  float64
}

// AttributeInfo is an unparsed attribute: name index plus raw payload
// bytes. Unknown attributes are retained this way and skipped by the
// linker -- "Unknown attributes are skipped by length" per spec §4.1.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
}

// FieldInfo / MethodInfo are the raw field/method table entries.
type FieldInfo struct {
	AccessFlags uint16
	NameIndex   uint16
	DescIndex   uint16
	Attributes  []AttributeInfo
}

type MethodInfo struct {
	AccessFlags uint16
	NameIndex   uint16
	DescIndex   uint16
	Attributes  []AttributeInfo
}

// ClassFile is the fully-read, still-symbolic representation of one
// binary class file.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool []CpInfo // index 0 unused, matches the 1-based JVM CP
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// MalformedClassError is returned for every structural defect the reader
// detects: wrong magic, truncated input, tag out of range, inconsistent
// attribute length.
type MalformedClassError struct {
	Reason string
}

func (e *MalformedClassError) Error() string {
	return "Class Format Error: " + e.Reason
}

func malformed(format string, args ...interface{}) error {
	return errors.WithStack(&MalformedClassError{Reason: fmt.Sprintf(format, args...)})
}

// reader wraps a byte slice with the cursor-based primitives the parse
// functions need; errors short-circuit every subsequent read.
type reader struct {
	buf *bytes.Reader
	err error
}

func (r *reader) u1() byte {
	if r.err != nil {
		return 0
	}
	b, err := r.buf.ReadByte()
	if err != nil {
		r.err = malformed("truncated input reading u1: %v", err)
	}
	return b
}

func (r *reader) u2() uint16 {
	if r.err != nil {
		return 0
	}
	var v uint16
	if err := binary.Read(r.buf, binary.BigEndian, &v); err != nil {
		r.err = malformed("truncated input reading u2: %v", err)
	}
	return v
}

func (r *reader) u4() uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	if err := binary.Read(r.buf, binary.BigEndian, &v); err != nil {
		r.err = malformed("truncated input reading u4: %v", err)
	}
	return v
}

func (r *reader) bytesN(n int) []byte {
	if r.err != nil || n < 0 {
		return nil
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r.buf, out); err != nil {
		r.err = malformed("truncated input reading %d bytes: %v", n, err)
	}
	return out
}

// Parse reads raw bytes into a ClassFile. It performs no resolution and
// no bytecode verification, matching spec §1 Non-goals.
func Parse(raw []byte) (*ClassFile, error) {
	r := &reader{buf: bytes.NewReader(raw)}

	magic := r.u4()
	if r.err != nil {
		return nil, r.err
	}
	if magic != MagicNumber {
		return nil, malformed("bad magic number 0x%08X", magic)
	}

	cf := &ClassFile{}
	cf.MinorVersion = r.u2()
	cf.MajorVersion = r.u2()
	if r.err != nil {
		return nil, r.err
	}
	if cf.MajorVersion < MinSupportedMajor || cf.MajorVersion > MaxSupportedMajor {
		return nil, malformed("unsupported class file version %d.%d",
			cf.MajorVersion, cf.MinorVersion)
	}

	cpCount := r.u2()
	if r.err != nil {
		return nil, r.err
	}
	cf.ConstantPool = make([]CpInfo, cpCount) // index 0 is the unused slot
	for i := 1; i < int(cpCount); i++ {
		entry, wide, err := parseCpEntry(r)
		if err != nil {
			return nil, err
		}
		cf.ConstantPool[i] = entry
		if wide {
			// Long/Double entries occupy two CP slots; the next index is
			// unused, per the binary format's historical quirk.
			i++
		}
	}
	if r.err != nil {
		return nil, r.err
	}

	cf.AccessFlags = r.u2()
	cf.ThisClass = r.u2()
	cf.SuperClass = r.u2()

	ifaceCount := r.u2()
	for i := 0; i < int(ifaceCount); i++ {
		cf.Interfaces = append(cf.Interfaces, r.u2())
	}

	fieldCount := r.u2()
	for i := 0; i < int(fieldCount); i++ {
		fi, err := parseFieldOrMethod(r)
		if err != nil {
			return nil, err
		}
		cf.Fields = append(cf.Fields, FieldInfo(fi))
	}

	methodCount := r.u2()
	for i := 0; i < int(methodCount); i++ {
		mi, err := parseFieldOrMethod(r)
		if err != nil {
			return nil, err
		}
		cf.Methods = append(cf.Methods, MethodInfo(mi))
	}

	attrCount := r.u2()
	for i := 0; i < int(attrCount); i++ {
		a, err := parseAttribute(r)
		if err != nil {
			return nil, err
		}
		cf.Attributes = append(cf.Attributes, a)
	}

	if r.err != nil {
		return nil, r.err
	}
	return cf, nil
}

func parseCpEntry(r *reader) (CpInfo, bool, error) {
	tag := r.u1()
	e := CpInfo{Tag: tag}
	switch tag {
	case TagUtf8:
		length := r.u2()
		e.Raw = r.bytesN(int(length))
	case TagInteger:
		e.Int = int32(r.u4())
	case TagFloat:
		bits := r.u4()
		e.Flt = float32FromBits(bits)
	case TagLong:
		hi := uint64(r.u4())
		lo := uint64(r.u4())
		e.Long = int64(hi<<32 | lo)
		return e, true, r.err
	case TagDouble:
		hi := uint64(r.u4())
		lo := uint64(r.u4())
		e.Dbl = float64FromBits(hi<<32 | lo)
		return e, true, r.err
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		e.Idx1 = r.u2()
	case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType,
		TagDynamic, TagInvokeDynamic:
		e.Idx1 = r.u2()
		e.Idx2 = r.u2()
	case TagMethodHandle:
		e.Int = int32(r.u1())
		e.Idx1 = r.u2()
	default:
		return e, false, malformed("constant pool tag out of range: %d", tag)
	}
	if r.err != nil {
		return e, false, r.err
	}
	return e, false, nil
}

func parseFieldOrMethod(r *reader) (FieldInfo, error) {
	fi := FieldInfo{}
	fi.AccessFlags = r.u2()
	fi.NameIndex = r.u2()
	fi.DescIndex = r.u2()
	attrCount := r.u2()
	for i := 0; i < int(attrCount); i++ {
		a, err := parseAttribute(r)
		if err != nil {
			return fi, err
		}
		fi.Attributes = append(fi.Attributes, a)
	}
	if r.err != nil {
		return fi, r.err
	}
	return fi, nil
}

// parseAttribute reads one attribute by its declared length and stores
// the raw content; interpreting known attributes (Code, Exceptions,
// LineNumberTable, ...) happens later in src/classloader, which re-reads
// these bytes with attribute-specific sub-parsers. This two-phase split
// mirrors the arena discipline the spec's design notes call for: if a
// later sub-parse fails, only the attribute's own byte slice needs to be
// discarded, not the whole class file tree.
func parseAttribute(r *reader) (AttributeInfo, error) {
	a := AttributeInfo{}
	a.NameIndex = r.u2()
	length := r.u4()
	a.Info = r.bytesN(int(length))
	if r.err != nil {
		return a, r.err
	}
	if uint32(len(a.Info)) != length {
		return a, malformed("inconsistent attribute length: declared %d, got %d",
			length, len(a.Info))
	}
	return a, nil
}

func float32FromBits(bits uint32) float32 {
	return mathFloat32frombits(bits)
}

func float64FromBits(bits uint64) float64 {
	return mathFloat64frombits(bits)
}

// ReadFileMmap reads a .class file's bytes via a memory map rather than a
// buffered read, matching the platform shim's file-I/O role in spec §6;
// grounded on saferwall-pe's use of github.com/edsrzf/mmap-go for fast
// binary-format ingestion.
func ReadFileMmap(path string) ([]byte, error) {
	f, err := mmapOpen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ReadFileMmap: opening %s", path)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "ReadFileMmap: mmap %s", path)
	}
	defer m.Unmap()

	out := make([]byte, len(m))
	copy(out, m)
	return out, nil
}
