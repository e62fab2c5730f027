// Package wire defines the values that cross the boundary between script and host.
//
// Every argument and every result is a Value: a tagged union holding exactly one of
//
//	Number     float64
//	Boolean    bool
//	String     UTF-16 code units
//	Singleton  Undefined
//	Array      []Value
//
// Nested arrays are representable here; rejecting them is the business of the
// coercion layer on the parameter side.
//
// A call produces a Result carrying one of the closed set of error codes:
//
//	OK                      success, optionally with a Value
//	MethodNotFound          no method with that name and arity
//	ObjectGetClassBlocked   the reflective type accessor was requested
//	ExceptionThrown         the target method failed
//
// Requests and responses travel as CBOR (canonical encoding):
//
//	data, err := wire.MarshalRequest(&wire.Request{
//		Seq:    1,
//		Object: 3,
//		Op:     wire.OpInvoke,
//		Method: "greet",
//		Args:   []wire.Value{wire.Number(3)},
//	})
package wire
