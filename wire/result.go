package wire

import "strconv"

// ErrorCode is the closed set of outcomes reported to script.
type ErrorCode uint8

const (
	OK ErrorCode = iota
	MethodNotFound
	ObjectGetClassBlocked
	ExceptionThrown
)

func (c ErrorCode) String() string {
	switch c {
	case OK:
		return "OK"
	case MethodNotFound:
		return "METHOD_NOT_FOUND"
	case ObjectGetClassBlocked:
		return "OBJECT_GET_CLASS_BLOCKED"
	case ExceptionThrown:
		return "EXCEPTION_THROWN"
	default:
		return "ErrorCode(" + strconv.Itoa(int(c)) + ")"
	}
}

// Valid reports whether c belongs to the closed set.
func (c ErrorCode) Valid() bool {
	return c <= ExceptionThrown
}

// Result is the outcome of one invocation.
// Value is nil for every error code, and for successful calls whose
// declared return type has no wire representation.
type Result struct {
	Value *Value    `cbor:"2,keyasint,omitempty"`
	Code  ErrorCode `cbor:"1,keyasint"`
}

// Success returns an OK result carrying v.
func Success(v Value) Result {
	return Result{Code: OK, Value: &v}
}

// Failure returns a result carrying only an error code.
func Failure(code ErrorCode) Result {
	return Result{Code: code}
}

func (r Result) String() string {
	if r.Code != OK {
		return r.Code.String()
	}
	if r.Value == nil {
		return "OK"
	}
	return "OK " + r.Value.String()
}
