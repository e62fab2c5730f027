package channel

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"slices"
	"testing"
	"time"

	"github.com/wippyai/remote-object/bridge"
	"github.com/wippyai/remote-object/errors"
	"github.com/wippyai/remote-object/host"
	"github.com/wippyai/remote-object/wire"
)

type greeter struct {
	greeting string
}

func (g *greeter) Greet(name string) string { return g.greeting + ", " + name }

func (g *greeter) Ids() []int32 { return []int32{1, 2} }

func (g *greeter) Fail() { panic("boom") }

type session struct {
	client *Client
	reg    *host.Registry
	id     wire.ObjectID
	b      *bridge.Bridge
	done   chan error
}

func startSession(t *testing.T, client ClientChannel, server Channel) *session {
	t.Helper()
	reg := host.NewRegistry()
	id, b, err := host.Expose(reg, &greeter{greeting: "hello"}, bridge.DefaultOptions())
	if err != nil {
		t.Fatalf("Expose: %v", err)
	}

	s := &session{client: NewClient(client, nil), reg: reg, id: id, b: b, done: make(chan error, 1)}
	srv := NewServer(reg, nil)
	go func() { s.done <- srv.Serve(context.Background(), server) }()
	t.Cleanup(func() { _ = s.client.Close() })
	return s
}

func (s *session) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-s.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func exerciseSession(t *testing.T, s *session) {
	ctx := testContext(t)

	res, err := s.client.Invoke(ctx, s.id, "greet", wire.String("world"))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Code != wire.OK || res.Value == nil || res.Value.Text() != "hello, world" {
		t.Fatalf("greet = %v", res)
	}

	res, err = s.client.Invoke(ctx, s.id, "greet")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Code != wire.MethodNotFound {
		t.Errorf("greet() code = %v, want METHOD_NOT_FOUND", res.Code)
	}

	res, err = s.client.Invoke(ctx, s.id, "ids")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Code != wire.OK || res.Value == nil || !res.Value.IsUndefined() {
		t.Errorf("ids = %v, want OK undefined", res)
	}

	res, err = s.client.Invoke(ctx, s.id, "fail")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Code != wire.ExceptionThrown {
		t.Errorf("fail code = %v, want EXCEPTION_THROWN", res.Code)
	}

	res, err = s.client.Invoke(ctx, s.id, "getClass")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Code != wire.ObjectGetClassBlocked {
		t.Errorf("getClass code = %v, want OBJECT_GET_CLASS_BLOCKED", res.Code)
	}

	has, err := s.client.HasMethod(ctx, s.id, "greet")
	if err != nil || !has {
		t.Errorf("HasMethod(greet) = %v, %v", has, err)
	}
	has, err = s.client.HasMethod(ctx, s.id, "missing")
	if err != nil || has {
		t.Errorf("HasMethod(missing) = %v, %v", has, err)
	}

	names, err := s.client.Methods(ctx, s.id)
	if err != nil {
		t.Fatalf("Methods: %v", err)
	}
	want := []string{"fail", "getClass", "greet", "ids"}
	if !slices.Equal(names, want) {
		t.Errorf("Methods = %v, want %v", names, want)
	}
}

func TestServer_Pipe(t *testing.T) {
	c, s := Pipe()
	exerciseSession(t, startSession(t, c, s))
}

func TestServer_Stream(t *testing.T) {
	a, b := net.Pipe()
	exerciseSession(t, startSession(t, NewClientStream(a, 0), NewServerStream(b, 0)))
}

func TestServer_UnknownObject(t *testing.T) {
	c, s := Pipe()
	sess := startSession(t, c, s)
	ctx := testContext(t)

	res, err := sess.client.Invoke(ctx, sess.id+10, "greet", wire.String("x"))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.Code != wire.MethodNotFound {
		t.Errorf("code = %v, want METHOD_NOT_FOUND", res.Code)
	}

	names, err := sess.client.Methods(ctx, sess.id+10)
	if err != nil || len(names) != 0 {
		t.Errorf("Methods = %v, %v", names, err)
	}
}

func TestServer_AcquireRelease(t *testing.T) {
	c, s := Pipe()
	sess := startSession(t, c, s)
	ctx := testContext(t)

	if ok, err := sess.client.Acquire(ctx, sess.id); err != nil || !ok {
		t.Fatalf("Acquire = %v, %v", ok, err)
	}
	for i := 0; i < 2; i++ {
		if ok, err := sess.client.Release(ctx, sess.id); err != nil || !ok {
			t.Fatalf("Release #%d = %v, %v", i, ok, err)
		}
	}
	if ok, err := sess.client.Release(ctx, sess.id); err != nil || ok {
		t.Fatalf("Release after removal = %v, %v", ok, err)
	}
	if !sess.b.Closed() {
		t.Error("bridge should be closed after the last release")
	}
}

func TestServer_NoResponseForClosedBridge(t *testing.T) {
	c, s := Pipe()
	sess := startSession(t, c, s)
	sess.b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := sess.client.Invoke(ctx, sess.id, "greet", wire.String("x"))
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}

	// The server keeps serving after a dropped request; the stale
	// response check must not confuse later calls.
	has, err := sess.client.HasMethod(testContext(t), sess.id, "greet")
	if err != nil || !has {
		t.Fatalf("HasMethod after drop = %v, %v", has, err)
	}
}

func TestServer_ConnectionErrorClosesBridges(t *testing.T) {
	c, s := Pipe()
	sess := startSession(t, c, s)

	if err := sess.client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sess.wait(t); err != nil {
		t.Fatalf("Serve = %v, want nil", err)
	}
	if !sess.b.Closed() {
		t.Error("bridge should be closed after the connection ends")
	}
}

func TestServer_ContextCancel(t *testing.T) {
	reg := host.NewRegistry()
	_, b, err := host.Expose(reg, &greeter{}, bridge.DefaultOptions())
	if err != nil {
		t.Fatalf("Expose: %v", err)
	}
	_, s := Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(reg, nil).Serve(ctx, s) }()
	cancel()

	select {
	case err := <-done:
		if !stderrors.Is(err, context.Canceled) {
			t.Fatalf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
	if !b.Closed() {
		t.Error("bridge should be closed after cancellation")
	}
}

func TestServer_UnknownOp(t *testing.T) {
	c, s := Pipe()
	sess := startSession(t, c, s)

	if err := c.Send(testContext(t), &wire.Request{Op: wire.Op(99), Object: sess.id}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	err := sess.wait(t)
	if !stderrors.Is(err, errors.InvalidInput(errors.PhaseTransport, "")) {
		t.Fatalf("Serve = %v, want invalid input", err)
	}
	if !sess.b.Closed() {
		t.Error("bridge should be closed after a protocol error")
	}
}

func TestPipe_Closed(t *testing.T) {
	c, s := Pipe()
	_ = s.Close()
	ctx := testContext(t)

	if err := c.Send(ctx, &wire.Request{}); !stderrors.Is(err, ErrClosed) {
		t.Errorf("Send = %v, want ErrClosed", err)
	}
	if _, err := c.Receive(ctx); !stderrors.Is(err, ErrClosed) {
		t.Errorf("Receive = %v, want ErrClosed", err)
	}
	if _, err := s.Receive(ctx); !stderrors.Is(err, ErrClosed) {
		t.Errorf("server Receive = %v, want ErrClosed", err)
	}
}

func TestStream_FrameTooLarge(t *testing.T) {
	a, b := net.Pipe()
	client := NewClientStream(a, 0)
	server := NewServerStream(b, 16)
	defer client.Close()
	defer server.Close()

	go func() {
		_ = client.Send(context.Background(), &wire.Request{
			Op:     wire.OpInvoke,
			Object: 1,
			Method: "aMethodNameLongerThanSixteenBytes",
		})
	}()

	_, err := server.Receive(testContext(t))
	if !stderrors.Is(err, errors.FrameTooLarge(0, 0)) {
		t.Fatalf("Receive = %v, want frame too large", err)
	}
}

func TestStream_WriteLimit(t *testing.T) {
	a, b := net.Pipe()
	client := NewClientStream(a, 8)
	defer client.Close()
	defer b.Close()

	err := client.Send(testContext(t), &wire.Request{Op: wire.OpInvoke, Object: 1, Method: "longer than eight"})
	if !stderrors.Is(err, errors.FrameTooLarge(0, 0)) {
		t.Fatalf("Send = %v, want frame too large", err)
	}
}

func TestStream_Roundtrip(t *testing.T) {
	a, b := net.Pipe()
	client := NewClientStream(a, 0)
	server := NewServerStream(b, 0)
	defer client.Close()
	defer server.Close()
	ctx := testContext(t)

	req := &wire.Request{
		Op:     wire.OpInvoke,
		Object: 7,
		Seq:    3,
		Method: "greet",
		Args:   []wire.Value{wire.Number(1.5), wire.Array(wire.Boolean(true), wire.UndefinedValue())},
	}
	go func() { _ = client.Send(ctx, req) }()

	got, err := server.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got.Seq != 3 || got.Object != 7 || got.Method != "greet" || len(got.Args) != 2 {
		t.Fatalf("request = %+v", got)
	}
	for i := range req.Args {
		if !got.Args[i].Equal(req.Args[i]) {
			t.Errorf("arg %d = %v, want %v", i, got.Args[i], req.Args[i])
		}
	}

	go func() {
		_ = server.Send(ctx, &wire.Response{Seq: 3, Result: wire.Success(wire.String("ok"))})
	}()
	resp, err := client.Receive(ctx)
	if err != nil {
		t.Fatalf("client Receive: %v", err)
	}
	if resp.Seq != 3 || resp.Result.Code != wire.OK || resp.Result.Value.Text() != "ok" {
		t.Fatalf("response = %+v", resp)
	}
}

type pacer struct {
	delay time.Duration
}

func (p *pacer) Slow() string {
	time.Sleep(p.delay)
	return "slow"
}

func (p *pacer) Quick() string { return "quick" }

func TestClient_AbandonedCallKeepsPipeUsable(t *testing.T) {
	reg := host.NewRegistry()
	id, _, err := host.Expose(reg, &pacer{delay: 100 * time.Millisecond}, bridge.DefaultOptions())
	if err != nil {
		t.Fatalf("Expose: %v", err)
	}
	c, s := Pipe()
	go func() { _ = NewServer(reg, nil).Serve(context.Background(), s) }()
	client := NewClient(c, nil)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.Invoke(ctx, id, "slow"); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("slow: err = %v, want deadline exceeded", err)
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	res, err := client.Invoke(ctx2, id, "quick")
	if err != nil {
		t.Fatalf("quick: %v", err)
	}
	if res.Code != wire.OK || res.Value == nil || res.Value.Text() != "quick" {
		t.Fatalf("quick = %v, want OK \"quick\"", res)
	}
}

func TestServer_ClosesStreamOnBadFrame(t *testing.T) {
	peer, conn := net.Pipe()
	defer peer.Close()

	done := make(chan error, 1)
	go func() {
		done <- NewServer(host.NewRegistry(), nil).Serve(context.Background(), NewServerStream(conn, 0))
	}()

	if _, err := peer.Write([]byte{0, 0, 0, 1, 0xff}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Serve = nil, want decode error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}

	_ = peer.SetReadDeadline(time.Now().Add(time.Second))
	if _, err := peer.Read(make([]byte, 1)); err != io.EOF {
		t.Fatalf("peer read = %v, want EOF", err)
	}
}

func TestServer_ClosesStreamOnEOF(t *testing.T) {
	peer, conn := net.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- NewServer(host.NewRegistry(), nil).Serve(context.Background(), NewServerStream(conn, 0))
	}()
	_ = peer.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}

	if _, err := conn.Write([]byte{0}); !stderrors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("server side write = %v, want closed pipe", err)
	}
}
