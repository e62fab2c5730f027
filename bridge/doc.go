// Package bridge exposes the methods of a Go object to an untrusted script
// environment.
//
// A Bridge is built once per target. Construction indexes the target's
// exported methods by script name; invocation resolves a name and an
// argument count to the first overload of that arity, coerces each wire
// argument to the declared Go parameter type, calls the method and coerces
// the result back according to the declared return type.
//
//	g := &Greeter{}
//	b, err := bridge.New(g, bridge.Options{
//		Auditor: bridge.AuditorFunc(func(caller string) {
//			log.Printf("getClass attempt from %s", caller)
//		}),
//	})
//	res, ok := b.InvokeMethod(ctx, "greet", []wire.Value{wire.Number(3)})
//
// # Naming and overloads
//
// Go method names become script names with the first word lowercased
// (Greet -> greet, HTTPGet -> httpGet). A suffix after the last underscore
// is dropped, so Greet and Greet_Named form one overload set "greet".
// Targets implementing Registrar list bindings explicitly instead.
//
// # Parameters and results
//
// A context.Context directly after the receiver receives the invocation
// context and does not count toward arity. A trailing error result that is
// non-nil, or a panic, reports ExceptionThrown. See package coerce for the
// mapping between Go types and declared kinds.
//
// # Security
//
// The reflective accessor getClass is part of every unrestricted method
// table, mirroring the universal accessor of the host object model, and is
// always blocked: the Auditor is notified and ObjectGetClassBlocked returned.
//
// # Lifetime
//
// The bridge holds its target through a weak pointer. Once the target is
// collected, invocations produce no response at all.
package bridge
