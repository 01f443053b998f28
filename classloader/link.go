/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"github.com/pkg/errors"

	"jacobin/classfile"
	"jacobin/types"
)

// link turns a parsed (but still symbolic) classfile.ClassFile into a
// linked Klass: builds the run-time constant pool, resolves the super
// type recursively, computes instance-field offsets, and assigns method
// slots in declaration order (spec §4.2 "Linking").
func link(cl *Classloader, cf *classfile.ClassFile, name, sourcePath string) (*Klass, error) {
	k := &Klass{
		Name:        name,
		AccessFlags: cf.AccessFlags,
		LoaderName:  cl.Name,
		Status:      types.Loaded,
		MirrorName:  "java/lang/Class",
	}
	k.IsInterface = cf.AccessFlags&0x0200 != 0
	k.IsAbstract = cf.AccessFlags&0x0400 != 0

	cp, err := buildConstantPool(cf)
	if err != nil {
		return nil, err
	}
	k.CP = cp

	if cf.SuperClass != 0 {
		superName, err := classNameAt(cf, cp, cf.SuperClass)
		if err != nil {
			return nil, err
		}
		k.SuperName = superName
	}

	for _, ifaceIdx := range cf.Interfaces {
		ifaceName, err := classNameAt(cf, cp, ifaceIdx)
		if err != nil {
			return nil, err
		}
		k.InterfaceNames = append(k.InterfaceNames, ifaceName)
	}

	if err := linkFields(cf, cp, k); err != nil {
		return nil, err
	}
	if err := linkMethods(cf, cp, k); err != nil {
		return nil, err
	}

	// Resolve the super type recursively (spec §4.2) before computing
	// offsets, since object_size is defined in terms of the super's.
	if k.SuperName != "" {
		super, err := Load(cl, k.SuperName)
		if err != nil {
			return nil, err
		}
		k.Super = super
	}

	computeOffsets(k)

	_, hasClinit := methodByKey(k.DeclaredMethods, MethodTableKey("<clinit>", "()V"))
	if hasClinit {
		k.ClInit = types.ClInitNotRun
	} else {
		k.ClInit = types.NoClinit
	}

	return k, nil
}

func methodByKey(methods []*Method, key string) (*Method, bool) {
	for _, m := range methods {
		if MethodTableKey(m.Name, m.Descriptor) == key {
			return m, true
		}
	}
	return nil, false
}

// computeOffsets implements spec §4.4/§8's central invariant:
// T.object_size = super(T).object_size + sum(sizeof(f) for declared
// non-static fields of T), with each field's offset fixed once and never
// recomputed. Ported from original_source's
// ObjectAllocator::calculate_offsets, but run once at link time here
// rather than per allocation, since the offsets never vary across
// instances of the same type. Fields are packed back-to-back with no
// per-field alignment padding, so every field is "aligned to its
// type_size" only in the degenerate case where the preceding field's
// type_size already divides the running offset; this keeps the §8
// sum-invariant exact rather than trading it for real alignment.
func computeOffsets(k *Klass) {
	var offset uint32
	if k.Super != nil {
		offset = k.Super.ObjectSize
	}
	for _, f := range k.DeclaredFields {
		if f.IsStatic {
			continue
		}
		f.Offset = offset
		offset += f.TypeSize
	}
	k.ObjectSize = offset
	if k.IsPrimitive {
		k.TypeSize = types.TypeSize(k.PrimitiveDesc)
	} else {
		k.TypeSize = types.ReferenceTypeSize
	}
}

func linkFields(cf *classfile.ClassFile, cp *ConstantPool, k *Klass) error {
	for _, fi := range cf.Fields {
		name, err := utf8At(cf, cp, fi.NameIndex)
		if err != nil {
			return err
		}
		desc, err := utf8At(cf, cp, fi.DescIndex)
		if err != nil {
			return err
		}
		f := &Field{
			DeclaringClass: k.Name,
			Name:           name,
			Descriptor:     desc,
			AccessFlags:    fi.AccessFlags,
			IsStatic:       fi.AccessFlags&0x0008 != 0,
			TypeSize:       fieldTypeSize(desc),
		}
		k.DeclaredFields = append(k.DeclaredFields, f)
	}
	return nil
}

func fieldTypeSize(desc string) uint32 {
	if len(desc) == 0 {
		return types.ReferenceTypeSize
	}
	switch desc[0] {
	case 'Z', 'B':
		return 1
	case 'C', 'S':
		return 2
	case 'I', 'F':
		return 4
	case 'J', 'D':
		return 8
	default: // 'L' or '['
		return types.ReferenceTypeSize
	}
}

func linkMethods(cf *classfile.ClassFile, cp *ConstantPool, k *Klass) error {
	for slot, mi := range cf.Methods {
		name, err := utf8At(cf, cp, mi.NameIndex)
		if err != nil {
			return err
		}
		desc, err := utf8At(cf, cp, mi.DescIndex)
		if err != nil {
			return err
		}
		m := &Method{
			DeclaringClass: k.Name,
			Name:           name,
			Descriptor:     desc,
			AccessFlags:    mi.AccessFlags,
			Slot:           slot,
			IsNative:       mi.AccessFlags&0x0100 != 0,
		}
		if err := applyCodeAttribute(cf, cp, mi, m); err != nil {
			return err
		}
		k.DeclaredMethods = append(k.DeclaredMethods, m)
	}
	return nil
}

// applyCodeAttribute finds and sub-parses the "Code" attribute, which
// itself owns a nested exception table and (recursively) further
// attributes -- the arena discipline spec §9 calls for: a sub-parse
// failure here discards only this attribute's byte slice, never the rest
// of the already-linked class.
func applyCodeAttribute(cf *classfile.ClassFile, cp *ConstantPool, mi classfile.MethodInfo, m *Method) error {
	for _, attr := range mi.Attributes {
		name, err := utf8At(cf, cp, attr.NameIndex)
		if err != nil {
			continue
		}
		if name != "Code" {
			continue
		}
		return parseCodeAttribute(attr.Info, cp, m)
	}
	return nil // abstract/native methods legitimately have no Code attribute
}

func parseCodeAttribute(info []byte, cp *ConstantPool, m *Method) error {
	if len(info) < 8 {
		return errors.New("Class Format Error: truncated Code attribute")
	}
	m.MaxStack = int(be16(info[0:2]))
	m.MaxLocals = int(be16(info[2:4]))
	codeLen := be32(info[4:8])
	if uint32(len(info)) < 8+codeLen {
		return errors.New("Class Format Error: Code attribute shorter than declared code_length")
	}
	m.Code = info[8 : 8+codeLen]

	p := 8 + int(codeLen)
	if len(info) < p+2 {
		return errors.New("Class Format Error: truncated exception table count")
	}
	excCount := int(be16(info[p : p+2]))
	p += 2
	for i := 0; i < excCount; i++ {
		if len(info) < p+8 {
			return errors.New("Class Format Error: truncated exception table entry")
		}
		startPC := int(be16(info[p : p+2]))
		endPC := int(be16(info[p+2 : p+4]))
		handlerPC := int(be16(info[p+4 : p+6]))
		catchIdx := be16(info[p+6 : p+8])
		var catchType string
		if catchIdx != 0 {
			if ct, err := ClassNameAtIndex(cp, catchIdx); err == nil {
				catchType = ct
			}
		}
		m.ExceptionTable = append(m.ExceptionTable, ExceptionHandler{
			StartPC: startPC, EndPC: endPC, HandlerPC: handlerPC, CatchType: catchType,
		})
		p += 8
	}
	// remaining bytes are the Code attribute's own sub-attributes
	// (LineNumberTable, LocalVariableTable, StackMapTable, ...); skipped
	// by length per spec §4.1, since debugging tables aren't load-bearing
	// for execution semantics this core implements.
	return nil
}

func be16(b []byte) uint16 { return uint16(b[0])<<8 | uint16(b[1]) }
func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
