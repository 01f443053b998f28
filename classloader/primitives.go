/*
 * Jacobin VM - A Java virtual machine
 * Copyright (c) 2021-4 by the Jacobin authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"fmt"
	"sync"

	"jacobin/types"
)

var primitiveOnce sync.Once
var primitiveKlasses map[types.Descriptor]*Klass

func primitiveName(d types.Descriptor) string {
	switch d {
	case types.Void:
		return "void"
	case types.Bool:
		return "boolean"
	case types.Byte:
		return "byte"
	case types.Char:
		return "char"
	case types.Short:
		return "short"
	case types.Int:
		return "int"
	case types.Float:
		return "float"
	case types.Long:
		return "long"
	case types.Double:
		return "double"
	default:
		return fmt.Sprintf("<unknown:%s>", d)
	}
}

// LoadPrimitive returns the singleton Klass for one of the nine
// primitive descriptors (spec §3 "Primitive descriptors"), creating the
// nine singletons on first call.
func LoadPrimitive(d types.Descriptor) *Klass {
	primitiveOnce.Do(func() {
		primitiveKlasses = make(map[types.Descriptor]*Klass)
		for _, d := range []types.Descriptor{
			types.Void, types.Bool, types.Byte, types.Char, types.Short,
			types.Int, types.Float, types.Long, types.Double,
		} {
			name := primitiveName(d)
			k := &Klass{
				Name:          name,
				IsPrimitive:   true,
				PrimitiveDesc: d,
				TypeSize:      types.TypeSize(d),
				Status:        types.Initialized,
				ClInit:        types.NoClinit,
			}
			primitiveKlasses[d] = k
			MethAreaInsert(name, k)
		}
	})
	return primitiveKlasses[d]
}

// LoadArray returns (creating if necessary) the Klass describing an
// array whose elements are of componentType, per spec §4.2 `load_array`.
// Array classes are cached in the method area exactly like any other
// type, under the conventional "[" + component-descriptor name.
func LoadArray(cl *Classloader, componentType *Klass) (*Klass, error) {
	arrName := arrayClassName(componentType)
	if existing := MethAreaFetch(arrName); existing != nil {
		return existing, nil
	}

	objKlass, err := ensureObjectLoaded(cl)
	if err != nil {
		return nil, err
	}

	k := &Klass{
		Name:          arrName,
		IsArray:       true,
		ComponentName: componentType.Name,
		SuperName:     "java/lang/Object",
		Super:         objKlass,
		TypeSize:      types.ReferenceTypeSize, // arrays are themselves references
		Status:        types.Initialized,
		ClInit:        types.NoClinit,
		LoaderName:    cl.Name,
	}
	MethAreaInsert(arrName, k)
	return k, nil
}

func arrayClassName(component *Klass) string {
	if component.IsPrimitive {
		return "[" + component.PrimitiveDesc
	}
	if component.IsArray {
		return "[" + component.Name
	}
	return "[L" + component.Name + ";"
}

func ensureObjectLoaded(cl *Classloader) (*Klass, error) {
	if k := MethAreaFetch("java/lang/Object"); k != nil {
		return k, nil
	}
	return Load(cl, "java/lang/Object")
}
