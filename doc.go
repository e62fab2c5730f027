// Package remoteobject exposes Go objects to an untrusted script environment
// over a message channel.
//
// A script holding an object handle calls methods by name with dynamically
// typed arguments. The host coerces the arguments to the declared parameter
// types, calls the method, coerces the result back and reports one of a
// closed set of outcome codes.
//
// # Architecture Overview
//
//	remoteobject/
//	├── wire/        Script values, result codes, request/response frames, CBOR codec
//	├── coerce/      Declared types, argument and result coercion, number formatting
//	├── bridge/      Method tables, markers, auditor, the invocation dispatcher
//	├── host/        Object registry: ids, reference counts, lifecycle events
//	├── channel/     In-memory and stream channels, Server loop, Client
//	├── config/      TOML configuration
//	├── errors/      Structured host-side errors
//	└── cmd/bridge/  CLI and interactive TUI around a demo object
//
// # Quick Start
//
// Expose an object and call it in-process:
//
//	reg := host.NewRegistry()
//	id, b, err := host.Expose(reg, &Greeter{}, bridge.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, ok := b.InvokeMethod(ctx, "greet", []wire.Value{wire.String("World")})
//	fmt.Println(res, ok) // OK "Hello, World" true
//
// Or serve the registry over a channel:
//
//	clientEnd, serverEnd := channel.Pipe()
//	go channel.NewServer(reg, logger).Serve(ctx, serverEnd)
//
//	client := channel.NewClient(clientEnd, logger)
//	res, err := client.Invoke(ctx, id, "greet", wire.String("World"))
//
// # Method Exposure
//
// Every exported method of the pointer type is exposed unless a Marker
// restricts the set. Go names map to lowerCamel script names; a suffix
// after the last underscore separates overloads:
//
//	Greet        -> greet
//	Greet_Times  -> greet (second overload)
//	GetHTTPURL   -> getHTTPURL
//
// Overloads are resolved by argument count alone, first match wins.
// A context.Context first parameter is supplied by the host and not counted.
// A trailing error result, like a panic, reports EXCEPTION_THROWN.
//
// The reflective accessor getClass is always blocked and reported to the
// configured Auditor. Methods declared to return a slice are never called
// and report undefined.
//
// # Object Lifetime
//
// A Bridge holds its target weakly. The registry holds the strong reference
// until the last Release. A call on a collected target gets no response.
//
// # Thread Safety
//
// Registry is safe for concurrent use. A Bridge dispatches one call at a
// time; Server serializes requests per connection.
package remoteobject
