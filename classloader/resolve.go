/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"github.com/pkg/errors"

	"jacobin/classfile"
	"jacobin/stringPool"
	"jacobin/util"
)

// buildConstantPool turns a classfile.ClassFile's raw, tag-only constant
// pool into the run-time ConstantPool of spec §3: UTF8 entries are
// decoded immediately, while String entries (interned on first
// ResolveString) and class/field/method/name-and-type entries stay
// symbolic until first use (spec §4.2 "resolve" -- lazy, idempotent,
// cached in place).
func buildConstantPool(cf *classfile.ClassFile) (*ConstantPool, error) {
	cp := &ConstantPool{Entries: make([]CpEntry, len(cf.ConstantPool))}

	for i, raw := range cf.ConstantPool {
		if i == 0 {
			continue
		}
		switch raw.Tag {
		case classfile.TagUtf8:
			units := util.DecodeModifiedUTF8(raw.Raw)
			cp.Entries[i] = CpEntry{Kind: CpUtf8, Utf8: util.Utf16ToGoString(units)}
		case classfile.TagInteger:
			cp.Entries[i] = CpEntry{Kind: CpInteger, IntVal: raw.Int}
		case classfile.TagFloat:
			cp.Entries[i] = CpEntry{Kind: CpFloat, FloatVal: raw.Flt}
		case classfile.TagLong:
			cp.Entries[i] = CpEntry{Kind: CpLong, LongVal: raw.Long}
		case classfile.TagDouble:
			cp.Entries[i] = CpEntry{Kind: CpDouble, DoubleVal: raw.Dbl}
		case classfile.TagClass:
			cp.Entries[i] = CpEntry{Kind: CpClassRef, RefNat: int(raw.Idx1)}
		case classfile.TagString:
			cp.Entries[i] = CpEntry{Kind: CpStringRef, RefNat: int(raw.Idx1)}
		case classfile.TagFieldref:
			cp.Entries[i] = CpEntry{Kind: CpFieldRef, RefNat: int(raw.Idx2), Idx1raw: int(raw.Idx1)}
		case classfile.TagMethodref:
			cp.Entries[i] = CpEntry{Kind: CpMethodRef, RefNat: int(raw.Idx2), Idx1raw: int(raw.Idx1)}
		case classfile.TagInterfaceMethodref:
			cp.Entries[i] = CpEntry{Kind: CpInterfaceMethodRef, RefNat: int(raw.Idx2), Idx1raw: int(raw.Idx1)}
		case classfile.TagNameAndType:
			cp.Entries[i] = CpEntry{Kind: CpNameAndType, Idx1raw: int(raw.Idx1), RefNat: int(raw.Idx2)}
		case classfile.TagMethodHandle:
			cp.Entries[i] = CpEntry{Kind: CpMethodHandle}
		case classfile.TagMethodType:
			cp.Entries[i] = CpEntry{Kind: CpMethodType, RefNat: int(raw.Idx1)}
		case classfile.TagDynamic:
			cp.Entries[i] = CpEntry{Kind: CpDynamic}
		case classfile.TagInvokeDynamic:
			cp.Entries[i] = CpEntry{Kind: CpInvokeDynamic}
		default:
			return nil, errors.Errorf("Class Format Error: unexpected constant pool tag %d at index %d", raw.Tag, i)
		}
	}

	// Second pass: fill in the class/field/method refs' owning-class and
	// name/descriptor strings now that every UTF8 entry is decoded. This
	// keeps CpEntry self-contained so resolution never has to reach back
	// into the classfile.ClassFile once linking is done.
	for i, raw := range cf.ConstantPool {
		if i == 0 {
			continue
		}
		e := &cp.Entries[i]
		switch e.Kind {
		case CpClassRef:
			name, err := utf8At(cf, cp, uint16(e.RefNat))
			if err != nil {
				return nil, err
			}
			e.ClassName = name
		case CpFieldRef, CpMethodRef, CpInterfaceMethodRef:
			className, err := classNameAt(cf, cp, uint16(e.Idx1raw))
			if err != nil {
				return nil, err
			}
			e.RefClass = className
			nat := cp.Entries[e.RefNat]
			if nat.Kind != CpNameAndType {
				return nil, errors.Errorf("Class Format Error: ref at %d does not point to a NameAndType entry", i)
			}
			natName, err := utf8At(cf, cp, uint16(nat.Idx1raw))
			if err != nil {
				return nil, err
			}
			natDesc, err := utf8At(cf, cp, uint16(nat.RefNat))
			if err != nil {
				return nil, err
			}
			e.NatName = natName
			e.NatDesc = natDesc
		case CpNameAndType:
			natName, err := utf8At(cf, cp, uint16(e.Idx1raw))
			if err != nil {
				return nil, err
			}
			natDesc, err := utf8At(cf, cp, uint16(e.RefNat))
			if err != nil {
				return nil, err
			}
			e.NatName = natName
			e.NatDesc = natDesc
		}
		_ = raw
	}

	return cp, nil
}

func utf8At(cf *classfile.ClassFile, cp *ConstantPool, idx uint16) (string, error) {
	if int(idx) <= 0 || int(idx) >= len(cp.Entries) {
		return "", errors.Errorf("Class Format Error: constant pool index %d out of range", idx)
	}
	e := cp.Entries[idx]
	if e.Kind != CpUtf8 {
		return "", errors.Errorf("Class Format Error: constant pool entry %d is not Utf8", idx)
	}
	return e.Utf8, nil
}

func classNameAt(cf *classfile.ClassFile, cp *ConstantPool, idx uint16) (string, error) {
	if int(idx) <= 0 || int(idx) >= len(cp.Entries) {
		return "", errors.Errorf("Class Format Error: constant pool index %d out of range", idx)
	}
	e := cp.Entries[idx]
	if e.Kind != CpClassRef {
		return "", errors.Errorf("Class Format Error: constant pool entry %d is not a class reference", idx)
	}
	if e.ClassName != "" {
		return e.ClassName, nil
	}
	return utf8At(cf, cp, uint16(e.RefNat))
}

// ClassNameAtIndex resolves a Class entry's name using only the already
// fully-built ConstantPool (no classfile.ClassFile needed), for use once
// linking has completed its first pass -- e.g. exception-table catch
// types, which are read after the pool's class names are already filled
// in.
func ClassNameAtIndex(cp *ConstantPool, idx uint16) (string, error) {
	if int(idx) <= 0 || int(idx) >= len(cp.Entries) {
		return "", errors.Errorf("Class Format Error: constant pool index %d out of range", idx)
	}
	e := cp.Entries[idx]
	if e.Kind != CpClassRef {
		return "", errors.Errorf("Class Format Error: constant pool entry %d is not a class reference", idx)
	}
	return e.ClassName, nil
}

// ResolveClass implements spec §4.2 `resolve(type_ref) -> type | error`:
// idempotent, mutex-guarded so concurrent resolvers racing the same entry
// converge on one winner.
func ResolveClass(cl *Classloader, cp *ConstantPool, idx uint16) (*Klass, error) {
	e := &cp.Entries[idx]
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Resolved && e.ResolvedKlass != nil {
		return e.ResolvedKlass, nil
	}
	k, err := Load(cl, e.ClassName)
	if err != nil {
		return nil, err
	}
	e.ResolvedKlass = k
	e.Resolved = true
	return k, nil
}

// ResolveField implements spec §4.2 `resolve(field_ref) -> field | error`:
// walks the owner's super chain, raising NoSuchFieldError if nothing
// matches. Fields declared on interfaces are not searched.
func ResolveField(cl *Classloader, cp *ConstantPool, idx uint16) (*Field, error) {
	e := &cp.Entries[idx]
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Resolved && e.ResolvedField != nil {
		return e.ResolvedField, nil
	}

	owner, err := Load(cl, e.RefClass)
	if err != nil {
		return nil, err
	}
	f := findField(owner, e.NatName)
	if f == nil {
		return nil, errors.Errorf("java.lang.NoSuchFieldError: %s.%s", e.RefClass, e.NatName)
	}
	e.ResolvedField = f
	e.Resolved = true
	return f, nil
}

func findField(k *Klass, name string) *Field {
	for k != nil {
		for _, f := range k.DeclaredFields {
			if f.Name == name {
				return f
			}
		}
		k = k.Super
	}
	return nil
}

// ResolveMethod implements spec §4.2 `resolve(method_ref) -> method |
// error`: searches the declaring type, then its super chain, then the
// entries of Klass.Interfaces (which link leaves empty, so in practice
// only the super chain is searched), raising NoSuchMethodError when
// nothing matches. The resolved method's kind (static vs instance) is not
// checked against the call site, so no IncompatibleClassChangeError is
// raised here.
func ResolveMethod(cl *Classloader, cp *ConstantPool, idx uint16) (*Method, error) {
	e := &cp.Entries[idx]
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Resolved && e.ResolvedMethod != nil {
		return e.ResolvedMethod, nil
	}

	owner, err := Load(cl, e.RefClass)
	if err != nil {
		return nil, err
	}

	m := findMethod(owner, e.NatName, e.NatDesc)
	if m == nil {
		return nil, errors.Errorf("java.lang.NoSuchMethodError: %s.%s%s", e.RefClass, e.NatName, e.NatDesc)
	}
	e.ResolvedMethod = m
	e.Resolved = true
	return m, nil
}

// FindVirtualMethod walks k's super chain and then its interfaces looking
// for name+descriptor, the same lookup ResolveMethod uses internally.
// Exported for callers outside the package that need vtable-equivalent
// lookup without going through a constant-pool entry -- currently
// src/vm's finalizer wiring, which must tell an object's declared
// finalize() (if any) apart from the inherited default.
func FindVirtualMethod(k *Klass, name, descriptor string) *Method {
	return findMethod(k, name, descriptor)
}

func findMethod(k *Klass, name, descriptor string) *Method {
	key := MethodTableKey(name, descriptor)
	for cur := k; cur != nil; cur = cur.Super {
		for _, m := range cur.DeclaredMethods {
			if MethodTableKey(m.Name, m.Descriptor) == key {
				return m
			}
		}
	}
	for _, iface := range k.Interfaces {
		if m := findMethod(iface, name, descriptor); m != nil {
			return m
		}
	}
	return nil
}

// ResolveString implements spec §4.2 `resolve(string_ref) -> ref`: every
// String constant pool entry interns into the global string pool exactly
// once, after which resolution is just an index copy.
func ResolveString(cp *ConstantPool, idx uint16) (uint32, error) {
	e := &cp.Entries[idx]
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Resolved {
		return e.ResolvedString, nil
	}
	target := cp.Entries[e.RefNat]
	if target.Kind != CpUtf8 {
		return 0, errors.Errorf("Class Format Error: string constant %d does not point to Utf8", idx)
	}
	si := stringPool.GetStringIndex(target.Utf8)
	e.ResolvedString = si
	e.Resolved = true
	return si, nil
}
