package wire

import "strconv"

// ObjectID names an exposed object within one connection. Zero is never allocated.
type ObjectID uint32

// Op selects what a Request asks of an object.
type Op uint8

const (
	OpInvoke Op = iota + 1
	OpHasMethod
	OpGetMethods
	OpAcquire
	OpRelease
)

func (o Op) String() string {
	switch o {
	case OpInvoke:
		return "invoke"
	case OpHasMethod:
		return "has-method"
	case OpGetMethods:
		return "get-methods"
	case OpAcquire:
		return "acquire"
	case OpRelease:
		return "release"
	default:
		return "op(" + strconv.Itoa(int(o)) + ")"
	}
}

// Request is a single script-originated call.
type Request struct {
	Method string   `cbor:"4,keyasint,omitempty"`
	Args   []Value  `cbor:"5,keyasint,omitempty"`
	Seq    uint64   `cbor:"1,keyasint"`
	Object ObjectID `cbor:"2,keyasint"`
	Op     Op       `cbor:"3,keyasint"`
}

// Response answers the Request with the same Seq.
// Found is set for OpHasMethod, OpAcquire and OpRelease; Methods for OpGetMethods.
type Response struct {
	Methods []string `cbor:"4,keyasint,omitempty"`
	Result  Result   `cbor:"2,keyasint"`
	Seq     uint64   `cbor:"1,keyasint"`
	Found   bool     `cbor:"3,keyasint,omitempty"`
}
