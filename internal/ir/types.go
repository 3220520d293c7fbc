package ir

import (
	"fmt"
	"strings"
)

// Kind classifies an IR type.
type Kind uint8

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindVector
	KindPointer
	KindStruct
	KindArray
)

// Type describes the shape of an IR value or memory cell.
// Scalar and vector types are predeclared singletons; aggregates are built
// with StructOf and ArrayOf.
type Type struct {
	Kind   Kind
	Bits   int     // width for int and float kinds
	Lanes  int     // lane count for vectors
	Elem   *Type   // element type for vectors and arrays
	Len    int     // element count for arrays
	Fields []*Type // struct fields in order
	Name   string  // struct alias used in listings
}

// Predeclared types.
var (
	Void  = &Type{Kind: KindVoid}
	I1    = &Type{Kind: KindInt, Bits: 1}
	I8    = &Type{Kind: KindInt, Bits: 8}
	I32   = &Type{Kind: KindInt, Bits: 32}
	F32   = &Type{Kind: KindFloat, Bits: 32}
	F64   = &Type{Kind: KindFloat, Bits: 64}
	V2F32 = &Type{Kind: KindVector, Lanes: 2, Elem: F32}
	V2F64 = &Type{Kind: KindVector, Lanes: 2, Elem: F64}
	V2I32 = &Type{Kind: KindVector, Lanes: 2, Elem: I32}
	Ptr   = &Type{Kind: KindPointer}
)

// StructOf returns a named struct type with the given fields.
func StructOf(name string, fields ...*Type) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields}
}

// ArrayOf returns a fixed-length array type.
func ArrayOf(elem *Type, n int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: n}
}

// String returns the listing spelling of the type.
func (t *Type) String() string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindInt:
		return fmt.Sprintf("i%d", t.Bits)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Bits)
	case KindVector:
		return fmt.Sprintf("v%d%s", t.Lanes, t.Elem)
	case KindPointer:
		return "ptr"
	case KindStruct:
		if t.Name != "" {
			return t.Name
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindArray:
		return fmt.Sprintf("[%d x %s]", t.Len, t.Elem)
	default:
		return fmt.Sprintf("Kind(%d)", t.Kind)
	}
}

// Equal reports whether two types have the same structure.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindInt, KindFloat:
		return t.Bits == o.Bits
	case KindVector:
		return t.Lanes == o.Lanes && t.Elem.Equal(o.Elem)
	case KindArray:
		return t.Len == o.Len && t.Elem.Equal(o.Elem)
	case KindStruct:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if !t.Fields[i].Equal(o.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Scalar returns the lane type of a vector, or t itself.
func (t *Type) Scalar() *Type {
	if t.Kind == KindVector {
		return t.Elem
	}
	return t
}

// IsFloat reports whether t is a float scalar or a vector of floats.
func (t *Type) IsFloat() bool {
	return t.Scalar().Kind == KindFloat
}

// IsInt reports whether t is an int scalar or a vector of ints.
func (t *Type) IsInt() bool {
	return t.Scalar().Kind == KindInt
}

// IsVector reports whether t is a vector type.
func (t *Type) IsVector() bool {
	return t.Kind == KindVector
}

// LaneCount returns the number of lanes, 1 for scalars.
func (t *Type) LaneCount() int {
	if t.Kind == KindVector {
		return t.Lanes
	}
	return 1
}
