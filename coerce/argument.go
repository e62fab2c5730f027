package coerce

import (
	"reflect"

	"github.com/wippyai/remote-object/wire"
)

// StringCoercion selects whether non-string values may become strings.
// Top-level arguments use Coerce; array elements use DoNotCoerce.
type StringCoercion uint8

const (
	Coerce StringCoercion = iota
	DoNotCoerce
)

const undefinedText = "undefined"

// absent is the invalid reflect.Value; Materialize turns it into a Go zero value.
var absent reflect.Value

// Argument converts arg to declared type t.
// The result is either a value of the canonical Go type for t.Kind
// (int32 for int, uint16 for char, a slice of t.Go for arrays, ...) or the
// absent value. It never panics.
func Argument(arg wire.Value, t Type, mode StringCoercion) reflect.Value {
	switch arg.Tag() {
	case wire.TagNumber:
		return fromNumber(arg.Number(), t, mode)
	case wire.TagBoolean:
		return fromBoolean(arg.Boolean(), t, mode)
	case wire.TagString:
		return fromString(arg, t)
	case wire.TagSingleton:
		return fromUndefined(t, mode)
	case wire.TagArray:
		return fromArray(arg.Elems(), t, mode)
	}
	return absent
}

func fromNumber(d float64, t Type, mode StringCoercion) reflect.Value {
	switch t.Kind {
	case KindByte:
		return reflect.ValueOf(toInt8(d))
	case KindShort:
		return reflect.ValueOf(toInt16(d))
	case KindInt:
		return reflect.ValueOf(toInt32(d))
	case KindLong:
		return reflect.ValueOf(toInt64(d))
	case KindFloat:
		return reflect.ValueOf(float32(d))
	case KindDouble:
		return reflect.ValueOf(d)
	case KindChar:
		return reflect.ValueOf(toChar(d))
	case KindBoolean:
		// Not ToBoolean: every number is false here.
		return reflect.ValueOf(false)
	case KindString:
		if mode == Coerce {
			return reflect.ValueOf(FormatNumber(d))
		}
	}
	return absent
}

func fromBoolean(b bool, t Type, mode StringCoercion) reflect.Value {
	switch {
	case t.Kind == KindBoolean:
		return reflect.ValueOf(b)
	case t.Kind.IsPrimitive():
		return zeroOf(t.Kind)
	case t.Kind == KindString && mode == Coerce:
		if b {
			return reflect.ValueOf("true")
		}
		return reflect.ValueOf("false")
	}
	return absent
}

func fromString(v wire.Value, t Type) reflect.Value {
	switch {
	case t.Kind == KindString:
		return reflect.ValueOf(v.Text())
	case t.Kind.IsPrimitive():
		// Numeric and boolean strings are not parsed.
		return zeroOf(t.Kind)
	}
	return absent
}

func fromUndefined(t Type, mode StringCoercion) reflect.Value {
	switch {
	case t.Kind == KindString && mode == Coerce:
		return reflect.ValueOf(undefinedText)
	case t.Kind.IsPrimitive():
		return zeroOf(t.Kind)
	}
	return absent
}

func fromArray(elems []wire.Value, t Type, mode StringCoercion) reflect.Value {
	switch {
	case t.Kind == KindArray:
		if t.Elem == nil || t.Go == nil || t.Go.Kind() != reflect.Slice {
			return absent
		}
		elem := *t.Elem
		// Multi-dimensional and object-component arrays are rejected.
		if !elem.Kind.IsPrimitive() && elem.Kind != KindString {
			return absent
		}
		out := reflect.MakeSlice(t.Go, len(elems), len(elems))
		for i, e := range elems {
			out.Index(i).Set(Materialize(Argument(e, elem, DoNotCoerce), elem.Go))
		}
		return out
	case t.Kind == KindString && mode == Coerce:
		return reflect.ValueOf(undefinedText)
	case t.Kind.IsPrimitive():
		return zeroOf(t.Kind)
	}
	return absent
}

func zeroOf(k Kind) reflect.Value {
	switch k {
	case KindBoolean:
		return reflect.ValueOf(false)
	case KindByte:
		return reflect.ValueOf(int8(0))
	case KindShort:
		return reflect.ValueOf(int16(0))
	case KindInt:
		return reflect.ValueOf(int32(0))
	case KindLong:
		return reflect.ValueOf(int64(0))
	case KindFloat:
		return reflect.ValueOf(float32(0))
	case KindDouble:
		return reflect.ValueOf(float64(0))
	case KindChar:
		return reflect.ValueOf(uint16(0))
	}
	return absent
}

// Materialize makes v assignable to goType. The absent value becomes the Go
// zero value; strings become pointers for *string; numeric values convert
// with wrap-around (int8 to uint8 keeps the bit pattern).
func Materialize(v reflect.Value, goType reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(goType)
	}
	if v.Type() == goType {
		return v
	}
	if goType.Kind() == reflect.Pointer && v.Kind() == reflect.String && goType.Elem().Kind() == reflect.String {
		p := reflect.New(goType.Elem())
		p.Elem().Set(v.Convert(goType.Elem()))
		return p
	}
	if v.Type().ConvertibleTo(goType) {
		return v.Convert(goType)
	}
	return reflect.Zero(goType)
}
