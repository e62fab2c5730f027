// Package coerce converts between wire values and declared Go parameter and
// return types using LiveConnect semantics.
//
// Conversion never fails. An input that cannot be represented degrades to the
// absent value (an invalid reflect.Value, materialized as the Go zero value,
// i.e. nil for *string, slices and interfaces) or to the zero value of a
// primitive. Several rules deliberately differ from what a strict
// implementation would do and are relied on by existing scripts:
//
//   - a Number passed to a boolean parameter is always false
//   - a String passed to a numeric or boolean parameter is the zero value
//   - a Boolean passed to any primitive other than boolean is the zero value
//   - only one-dimensional arrays of primitives or strings are converted
//
// Dispatch is on declared types, expressed as a small closed set of kinds:
//
//	boolean byte short int long float double char String Object T[]
//
// TypeOf maps Go types onto those kinds:
//
//	bool            boolean
//	int8, uint8     byte
//	int16           short
//	int32, int      int
//	int64           long
//	float32         float
//	float64         double
//	uint16          char
//	string, *string String
//	[]T             T[]
//	anything else   Object
package coerce
