package coerce

import (
	"reflect"
	"strconv"
)

// Kind is the declared type tag of a parameter or return value.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBoolean
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindChar
	KindString
	KindObject
	KindArray
)

var kindNames = [...]string{
	KindVoid:    "void",
	KindBoolean: "boolean",
	KindByte:    "byte",
	KindShort:   "short",
	KindInt:     "int",
	KindLong:    "long",
	KindFloat:   "float",
	KindDouble:  "double",
	KindChar:    "char",
	KindString:  "String",
	KindObject:  "Object",
	KindArray:   "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsPrimitive reports whether k is one of the eight primitive kinds.
func (k Kind) IsPrimitive() bool {
	return k >= KindBoolean && k <= KindChar
}

// Type is a declared type: a kind plus the Go type values are materialized into.
type Type struct {
	Go   reflect.Type
	Elem *Type
	Kind Kind
}

// Canonical types. Go fields hold the Go type Argument produces for each kind.
var (
	Void    = Type{Kind: KindVoid}
	Boolean = Type{Kind: KindBoolean, Go: reflect.TypeFor[bool]()}
	Byte    = Type{Kind: KindByte, Go: reflect.TypeFor[int8]()}
	Short   = Type{Kind: KindShort, Go: reflect.TypeFor[int16]()}
	Int     = Type{Kind: KindInt, Go: reflect.TypeFor[int32]()}
	Long    = Type{Kind: KindLong, Go: reflect.TypeFor[int64]()}
	Float   = Type{Kind: KindFloat, Go: reflect.TypeFor[float32]()}
	Double  = Type{Kind: KindDouble, Go: reflect.TypeFor[float64]()}
	Char    = Type{Kind: KindChar, Go: reflect.TypeFor[uint16]()}
	String  = Type{Kind: KindString, Go: reflect.TypeFor[string]()}
	Object  = Type{Kind: KindObject, Go: reflect.TypeFor[any]()}
)

// ArrayOf returns the array type with the given component.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e, Go: reflect.SliceOf(elem.Go)}
}

// TypeOf returns the declared type for a Go type. A nil type is void.
func TypeOf(t reflect.Type) Type {
	if t == nil {
		return Void
	}
	switch t.Kind() {
	case reflect.Bool:
		return Type{Kind: KindBoolean, Go: t}
	case reflect.Int8, reflect.Uint8:
		return Type{Kind: KindByte, Go: t}
	case reflect.Int16:
		return Type{Kind: KindShort, Go: t}
	case reflect.Int32, reflect.Int:
		return Type{Kind: KindInt, Go: t}
	case reflect.Int64:
		return Type{Kind: KindLong, Go: t}
	case reflect.Float32:
		return Type{Kind: KindFloat, Go: t}
	case reflect.Float64:
		return Type{Kind: KindDouble, Go: t}
	case reflect.Uint16:
		return Type{Kind: KindChar, Go: t}
	case reflect.String:
		return Type{Kind: KindString, Go: t}
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.String {
			return Type{Kind: KindString, Go: t}
		}
	case reflect.Slice:
		elem := TypeOf(t.Elem())
		return Type{Kind: KindArray, Elem: &elem, Go: t}
	}
	return Type{Kind: KindObject, Go: t}
}

// IsArray reports whether t is an array type of any dimension.
func (t Type) IsArray() bool {
	return t.Kind == KindArray
}

func (t Type) String() string {
	if t.Kind == KindArray && t.Elem != nil {
		return t.Elem.String() + "[]"
	}
	return t.Kind.String()
}
