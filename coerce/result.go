package coerce

import (
	"reflect"

	"github.com/wippyai/remote-object/wire"
)

// Result converts a return value according to the declared return type t,
// ignoring the dynamic type of v: an Object-declared method returning a
// string at runtime is still an Object. The boolean is false when t has no
// wire representation (Object and arrays).
func Result(v reflect.Value, t Type) (wire.Value, bool) {
	switch t.Kind {
	case KindVoid:
		return wire.UndefinedValue(), true
	case KindBoolean:
		return wire.Boolean(v.Bool()), true
	case KindByte:
		// uint8 results keep their bit pattern as a signed byte.
		if isUnsigned(v) {
			return wire.Number(float64(int8(v.Uint()))), true
		}
		return wire.Number(float64(v.Int())), true
	case KindShort, KindInt, KindLong:
		return wire.Number(float64(v.Int())), true
	case KindFloat, KindDouble:
		return wire.Number(v.Float()), true
	case KindChar:
		return wire.Number(float64(v.Uint())), true
	case KindString:
		if v.Kind() == reflect.Pointer {
			// A null string is reported as undefined, not as a null string.
			if v.IsNil() {
				return wire.UndefinedValue(), true
			}
			v = v.Elem()
		}
		return wire.String(v.String()), true
	}
	return wire.Value{}, false
}

func isUnsigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}
