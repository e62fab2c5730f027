package main

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/remote-object/bridge"
	"github.com/wippyai/remote-object/config"
	"github.com/wippyai/remote-object/host"
	"github.com/wippyai/remote-object/wire"
)

func TestParseArgs(t *testing.T) {
	args, err := parseArgs(`["world", 2, true, null, [1, "x"]]`)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	want := []wire.Value{
		wire.String("world"),
		wire.Number(2),
		wire.Boolean(true),
		wire.UndefinedValue(),
		wire.Array(wire.Number(1), wire.String("x")),
	}
	if len(args) != len(want) {
		t.Fatalf("got %d args, want %d", len(args), len(want))
	}
	for i := range want {
		if !args[i].Equal(want[i]) {
			t.Errorf("arg %d = %v, want %v", i, args[i], want[i])
		}
	}

	for _, bad := range []string{`{"a": 1}`, `[{"a": 1}]`, `[1,`} {
		if _, err := parseArgs(bad); err == nil {
			t.Errorf("parseArgs(%s) should fail", bad)
		}
	}
	if args, err := parseArgs(""); err != nil || args != nil {
		t.Errorf("parseArgs(\"\") = %v, %v", args, err)
	}
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want wire.Value
	}{
		{"", wire.UndefinedValue()},
		{"42", wire.Number(42)},
		{"true", wire.Boolean(true)},
		{`"quoted"`, wire.String("quoted")},
		{"plain text", wire.String("plain text")},
		{"1 2", wire.String("1 2")},
		{`{"a":1}`, wire.String(`{"a":1}`)},
		{"[1,2]", wire.Array(wire.Number(1), wire.Number(2))},
	}
	for _, tt := range tests {
		if got := parseField(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseField(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGreeter(t *testing.T) {
	reg := host.NewRegistry()
	defer reg.Close()

	var blocked []string
	opts := bridgeOptions(config.Default(), zap.NewNop())
	opts.Auditor = bridge.AuditorFunc(func(caller string) { blocked = append(blocked, caller) })
	_, b, err := host.Expose(reg, newGreeter(), opts)
	if err != nil {
		t.Fatalf("Expose: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name   string
		method string
		args   []wire.Value
		want   wire.Result
	}{
		{"greet", "greet", []wire.Value{wire.String("world")}, wire.Success(wire.String("Hello, world"))},
		{"greet twice", "greet", []wire.Value{wire.String("a"), wire.Number(2)}, wire.Success(wire.String("Hello, a; Hello, a"))},
		{"greet number", "greet", []wire.Value{wire.Number(1.5)}, wire.Success(wire.String("Hello, 1.5"))},
		{"initial", "initial", []wire.Value{wire.String("Zed")}, wire.Success(wire.Number('Z'))},
		{"letter from number", "letter", []wire.Value{wire.Number(65)}, wire.Success(wire.String("A"))},
		{"shout number is false", "shout", []wire.Value{wire.Number(1)}, wire.Success(wire.String("Hello"))},
		{"shout", "shout", []wire.Value{wire.Boolean(true)}, wire.Success(wire.String("HELLO!"))},
		{"add saturates", "add", []wire.Value{wire.Number(1e300), wire.Number(0)}, wire.Success(wire.Number(9223372036854775807))},
		{"sum", "sum", []wire.Value{wire.Array(wire.Number(1), wire.Number(2.9))}, wire.Success(wire.Number(3))},
		{"ids", "ids", nil, wire.Success(wire.UndefinedValue())},
		{"nickname unset", "nickname", nil, wire.Success(wire.UndefinedValue())},
		{"fail", "fail", []wire.Value{wire.String("x")}, wire.Failure(wire.ExceptionThrown)},
		{"panic", "panic", nil, wire.Failure(wire.ExceptionThrown)},
		{"getClass", "getClass", nil, wire.Failure(wire.ObjectGetClassBlocked)},
		{"missing", "missing", nil, wire.Failure(wire.MethodNotFound)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := b.InvokeMethod(ctx, tt.method, tt.args)
			if !ok {
				t.Fatal("expected a response")
			}
			if got.Code != tt.want.Code {
				t.Fatalf("code = %v, want %v", got.Code, tt.want.Code)
			}
			if (got.Value == nil) != (tt.want.Value == nil) {
				t.Fatalf("result = %v, want %v", got, tt.want)
			}
			if got.Value != nil && !got.Value.Equal(*tt.want.Value) {
				t.Errorf("result = %v, want %v", got, tt.want)
			}
		})
	}

	if len(blocked) != 1 || blocked[0] != "cli" {
		t.Errorf("auditor notifications = %v, want [cli]", blocked)
	}
}

func TestServeConnClosesConnection(t *testing.T) {
	peer, conn := net.Pipe()

	done := make(chan struct{})
	go func() {
		serveConn(context.Background(), config.Default(), zap.NewNop(), conn)
		close(done)
	}()
	_ = peer.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("serveConn did not return")
	}
	if _, err := conn.Write([]byte{0}); !stderrors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("write after serveConn = %v, want closed pipe", err)
	}
}
