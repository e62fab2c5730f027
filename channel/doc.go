// Package channel carries invocation requests and responses between a
// script environment and the host.
//
// A Channel is the host's end: it receives Requests and sends Responses.
// A ClientChannel is the script's end. Two implementations are provided:
//
//	Pipe()          connected in-memory ends backed by Go channels
//	NewServerStream length-prefixed CBOR frames over an io.ReadWriteCloser
//	NewClientStream
//
// Server dispatches one request at a time, so invocations on a bridge never
// overlap. Run one Server per connection, with a Registry of its own: when
// the channel fails every bridge of that registry receives OnConnectionError.
//
// A request whose target has been collected gets no response; a Client
// waiting on it returns when its context expires.
package channel
