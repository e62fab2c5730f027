package wire

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Tag identifies the active variant of a Value.
type Tag uint8

const (
	TagNumber Tag = iota
	TagBoolean
	TagString
	TagSingleton
	TagArray
)

func (t Tag) String() string {
	switch t {
	case TagNumber:
		return "number"
	case TagBoolean:
		return "boolean"
	case TagString:
		return "string"
	case TagSingleton:
		return "singleton"
	case TagArray:
		return "array"
	default:
		return "tag(" + strconv.Itoa(int(t)) + ")"
	}
}

// Singleton enumerates the valueless markers. Undefined is the only one.
type Singleton uint8

const (
	Undefined Singleton = iota
)

// Value is the tagged union exchanged with script.
// The zero Value is Number(0).
type Value struct {
	str       []uint16
	arr       []Value
	num       float64
	tag       Tag
	boolean   bool
	singleton Singleton
}

// Number returns a Number value.
func Number(v float64) Value {
	return Value{tag: TagNumber, num: v}
}

// Boolean returns a Boolean value.
func Boolean(v bool) Value {
	return Value{tag: TagBoolean, boolean: v}
}

// String returns a String value holding s encoded as UTF-16.
func String(s string) Value {
	return Value{tag: TagString, str: utf16.Encode([]rune(s))}
}

// StringUnits returns a String value holding raw UTF-16 code units,
// which may include unpaired surrogates.
func StringUnits(units []uint16) Value {
	return Value{tag: TagString, str: units}
}

// UndefinedValue returns Singleton(Undefined).
func UndefinedValue() Value {
	return Value{tag: TagSingleton, singleton: Undefined}
}

// Array returns an Array value. The slice is not copied.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{tag: TagArray, arr: elems}
}

// Tag returns the active variant.
func (v Value) Tag() Tag { return v.tag }

// Number returns the payload of a Number value.
func (v Value) Number() float64 { return v.num }

// Boolean returns the payload of a Boolean value.
func (v Value) Boolean() bool { return v.boolean }

// Units returns the UTF-16 payload of a String value.
func (v Value) Units() []uint16 { return v.str }

// Text decodes the String payload. Unpaired surrogates become U+FFFD.
func (v Value) Text() string { return string(utf16.Decode(v.str)) }

// Singleton returns the payload of a Singleton value.
func (v Value) Singleton() Singleton { return v.singleton }

// Elems returns the payload of an Array value.
func (v Value) Elems() []Value { return v.arr }

// IsUndefined reports whether v is Singleton(Undefined).
func (v Value) IsUndefined() bool {
	return v.tag == TagSingleton && v.singleton == Undefined
}

// Equal reports deep equality. Numbers compare bitwise, so NaN equals NaN
// and -0 differs from +0.
func (v Value) Equal(o Value) bool {
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case TagNumber:
		if math.IsNaN(v.num) {
			return math.IsNaN(o.num)
		}
		return math.Float64bits(v.num) == math.Float64bits(o.num)
	case TagBoolean:
		return v.boolean == o.boolean
	case TagString:
		if len(v.str) != len(o.str) {
			return false
		}
		for i := range v.str {
			if v.str[i] != o.str[i] {
				return false
			}
		}
		return true
	case TagSingleton:
		return v.singleton == o.singleton
	case TagArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v the way a script console would.
func (v Value) String() string {
	switch v.tag {
	case TagNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case TagBoolean:
		return strconv.FormatBool(v.boolean)
	case TagString:
		return strconv.Quote(v.Text())
	case TagSingleton:
		return "undefined"
	case TagArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return v.tag.String()
}
