/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2024 by  the Jacobin Authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)  Consult jacobin.org.
 */

package object

import (
	"jacobin/stringPool"
	"jacobin/types"
	"strings"
	"unicode"
)

func GoStringFromJavaByteArray(jbarr []types.JavaByte) string {
	var sb strings.Builder
	for _, b := range jbarr {
		sb.WriteByte(byte(b))
	}
	return sb.String()
}

func JavaByteArrayFromGoString(str string) []types.JavaByte {
	jbarr := make([]types.JavaByte, len(str))
	for i, b := range str {
		jbarr[i] = types.JavaByte(b)
	}
	return jbarr
}

func JavaByteArrayFromGoByteArray(gbarr []byte) []types.JavaByte {
	jbarr := make([]types.JavaByte, len(gbarr))
	for i, b := range gbarr {
		jbarr[i] = types.JavaByte(b)
	}
	return jbarr
}

func GoByteArrayFromJavaByteArray(jbarr []types.JavaByte) []byte {
	gbarr := make([]byte, len(jbarr))
	for i, b := range jbarr {
		gbarr[i] = byte(b)
	}
	return gbarr
}

// JavaByteArrayFromStringObject: convenience method to extract a Java byte array from a String object (Java string)
func JavaByteArrayFromStringObject(obj *Object) []types.JavaByte {
	if obj != nil && obj.KlassName == "java/lang/String" {
		return obj.FieldTable["value"].Fvalue.([]types.JavaByte)
	} else {
		return nil
	}
}

// StringObjectFromJavaByteArray: convenience method to create a string object from a JavaByte array
func StringObjectFromJavaByteArray(bytes []types.JavaByte) *Object {
	newStr := NewStringObject()
	newStr.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: bytes}
	return newStr
}

// StringObjectFromGoString creates a java/lang/String object whose "value"
// field holds str's UTF-8 bytes, the representation the gfunction native
// String methods read and write.
func StringObjectFromGoString(str string) *Object {
	newStr := NewStringObject()
	newStr.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: []byte(str)}
	return newStr
}

// UpdateStringObjectFromBytes overwrites obj's "value" field in place with
// bytes, used by the String constructors to fill in an already-allocated
// instance.
func UpdateStringObjectFromBytes(obj *Object, bytes []byte) {
	if obj.FieldTable == nil {
		obj.FieldTable = make(map[string]*Field)
	}
	obj.FieldTable["value"] = &Field{Ftype: types.ByteArray, Fvalue: bytes}
}

// GoStringFromStringObject extracts the Go string backing obj's "value"
// field, tolerating either the []byte or []types.JavaByte storage used
// across the native String methods.
func GoStringFromStringObject(obj *Object) string {
	if obj == nil {
		return ""
	}
	fld, ok := obj.FieldTable["value"]
	if !ok {
		return ""
	}
	switch v := fld.Fvalue.(type) {
	case []byte:
		return string(v)
	case []types.JavaByte:
		return GoStringFromJavaByteArray(v)
	case string:
		return v
	default:
		return ""
	}
}

// ByteArrayFromStringObject returns the raw bytes backing obj's "value"
// field as a []byte, regardless of which of the two storage conventions
// populated it.
func ByteArrayFromStringObject(obj *Object) []byte {
	if obj == nil {
		return nil
	}
	fld, ok := obj.FieldTable["value"]
	if !ok {
		return nil
	}
	switch v := fld.Fvalue.(type) {
	case []byte:
		return v
	case []types.JavaByte:
		return GoByteArrayFromJavaByteArray(v)
	case string:
		return []byte(v)
	default:
		return nil
	}
}

// FormatField renders obj the way Object.toString() would: the backing
// string for a java/lang/String, otherwise the class-qualified
// ToString() dump. indent is reserved for callers (e.g. StringBuilder)
// that want to nest the rendering; it is unused for the plain-string case.
func (o *Object) FormatField(indent string) string {
	if o == nil {
		return "null"
	}
	if o.KlassName == types.StringClassName {
		return GoStringFromStringObject(o)
	}
	return indent + o.ToString()
}

// JavaByteArrayFromStringPoolIndex: convenience method to get a byte array using a string pool index
func JavaByteArrayFromStringPoolIndex(index uint32) []types.JavaByte {
	if index < stringPool.GetStringPoolSize() {
		str := *stringPool.GetStringPointer(index)
		return JavaByteArrayFromGoString(str)
	} else {
		return nil
	}
}

func JavaByteArrayEquals(jbarr1, jbarr2 []types.JavaByte) bool {
	if jbarr1 == nil || jbarr2 == nil {
		if jbarr1 == nil && jbarr2 == nil {
			return true
		}
		return false
	}

	if len(jbarr1) != len(jbarr2) {
		return false
	}
	for i, b := range jbarr1 {
		if b != jbarr2[i] {
			return false
		}
	}
	return true
}

func JavaByteArrayEqualsIgnoreCase(jbarr1, jbarr2 []types.JavaByte) bool {
	if jbarr1 == nil || jbarr2 == nil {
		if jbarr1 == nil && jbarr2 == nil {
			return true
		}
		return false
	}

	if len(jbarr1) != len(jbarr2) {
		return false
	}
	for i, b := range jbarr1 {
		if unicode.ToLower(rune(b)) != unicode.ToLower(rune(jbarr2[i])) {
			return false
		}
	}
	return true
}
