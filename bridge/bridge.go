package bridge

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"weak"

	"go.uber.org/zap"

	"github.com/wippyai/remote-object/coerce"
	"github.com/wippyai/remote-object/errors"
	"github.com/wippyai/remote-object/wire"
)

// Options configures a Bridge.
type Options struct {
	// Marker restricts the exposed methods. Nil exposes every exported method.
	Marker Marker

	// Auditor is notified of blocked reflective calls. May be nil.
	Auditor Auditor

	// Logger overrides the package logger for this bridge.
	Logger *zap.Logger

	// Caller identifies the calling party in audit notifications.
	Caller string
}

// DefaultOptions returns options exposing every exported method.
func DefaultOptions() Options {
	return Options{}
}

// Bridge exposes the methods of one target object to script.
//
// The target is held weakly: the bridge never keeps it alive. Invocations
// are dispatched one at a time; callers sharing a bridge between goroutines
// must serialize InvokeMethod themselves. Close may be called from any goroutine.
type Bridge struct {
	target   func() (reflect.Value, bool)
	methods  methodTable
	auditor  Auditor
	log      *zap.Logger
	caller   string
	typeName string
	closed   atomic.Bool
	once     sync.Once
}

// New creates a bridge for target. The bridge keeps only a weak reference,
// so the caller owns target's lifetime. target must not point to a
// zero-size value.
func New[T any](target *T, opts Options) (*Bridge, error) {
	if target == nil {
		return nil, errors.NilPointer(errors.PhaseRegister, nil, reflect.TypeFor[*T]().String())
	}

	methods, err := buildMethodTable(target, opts.Marker)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	typeName := reflect.TypeFor[T]().String()

	wp := weak.Make(target)
	return &Bridge{
		target: func() (reflect.Value, bool) {
			p := wp.Value()
			if p == nil {
				return reflect.Value{}, false
			}
			return reflect.ValueOf(p), true
		},
		methods:  methods,
		auditor:  opts.Auditor,
		log:      log.With(zap.String("target", typeName)),
		caller:   opts.Caller,
		typeName: typeName,
	}, nil
}

// NewWithDefaults creates a bridge exposing every exported method of target.
func NewWithDefaults[T any](target *T) (*Bridge, error) {
	return New(target, DefaultOptions())
}

// TypeName returns the Go type name of the target.
func (b *Bridge) TypeName() string {
	return b.typeName
}

// HasMethod reports whether any overload is exposed under name.
func (b *Bridge) HasMethod(name string) bool {
	_, ok := b.methods[name]
	return ok
}

// Methods returns the exposed method names, sorted.
func (b *Bridge) Methods() []string {
	return b.methods.names()
}

// Overloads returns every exposed overload, grouped by name in sorted
// order and in discovery order within a name.
func (b *Bridge) Overloads() []Overload {
	var out []Overload
	for _, name := range b.methods.names() {
		for _, m := range b.methods[name] {
			out = append(out, m.overload())
		}
	}
	return out
}

// Signatures returns a printable signature per overload, in the order of
// Overloads, e.g. "String greet(int)".
func (b *Bridge) Signatures() []string {
	overloads := b.Overloads()
	out := make([]string, len(overloads))
	for i, o := range overloads {
		out[i] = o.String()
	}
	return out
}

// Alive reports whether the target has not been collected.
func (b *Bridge) Alive() bool {
	_, ok := b.target()
	return ok
}

// InvokeMethod calls the first overload of name whose arity matches args.
//
// The boolean is false when no response must be sent: the bridge is closed
// or the target has been collected. Otherwise the result carries one of
// the closed set of codes. Failures inside the target, panics included,
// become ExceptionThrown and never propagate.
//
// A method declared to return an array is never called; it reports
// success with Undefined.
func (b *Bridge) InvokeMethod(ctx context.Context, name string, args []wire.Value) (wire.Result, bool) {
	if b.closed.Load() {
		return wire.Result{}, false
	}

	recv, ok := b.target()
	if !ok {
		// No reply: the script side treats the handle as dead.
		b.log.Warn("invocation on collected target dropped", zap.String("method", name))
		return wire.Result{}, false
	}

	m := b.methods.find(name, len(args))
	if m == nil {
		return wire.Failure(wire.MethodNotFound), true
	}

	if m.blocked() {
		if b.auditor != nil {
			b.auditor.OnGetClassBlocked(b.caller)
		}
		b.log.Info("blocked reflective type access", zap.String("caller", b.caller))
		return wire.Failure(wire.ObjectGetClassBlocked), true
	}

	if m.ret.IsArray() {
		return wire.Success(wire.UndefinedValue()), true
	}

	in := make([]reflect.Value, 0, 2+len(args))
	in = append(in, recv)
	if m.withCtx {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	ft := m.fn.Type()
	for i, p := range m.params {
		goType := ft.In(len(in))
		in = append(in, coerce.Materialize(coerce.Argument(args[i], p, coerce.Coerce), goType))
	}
	b.checkCall(m, in)

	out, thrown := b.call(m, in)
	if thrown != nil {
		b.log.Error("target method threw",
			zap.String("method", m.goName),
			zap.Any("panic", thrown))
		return wire.Failure(wire.ExceptionThrown), true
	}

	if m.returnsErr {
		if errv := out[len(out)-1]; !errv.IsNil() {
			b.log.Error("target method failed",
				zap.String("method", m.goName),
				zap.Error(errv.Interface().(error)))
			return wire.Failure(wire.ExceptionThrown), true
		}
	}

	var rv reflect.Value
	if m.ret.Kind != coerce.KindVoid {
		rv = out[0]
	}
	v, ok := coerce.Result(rv, m.ret)
	if !ok {
		return wire.Result{Code: wire.OK}, true
	}
	return wire.Success(v), true
}

// call invokes m, converting a panic into the thrown value.
func (b *Bridge) call(m *method, in []reflect.Value) (out []reflect.Value, thrown any) {
	defer func() {
		if r := recover(); r != nil {
			out, thrown = nil, r
		}
	}()
	if m.variadic {
		return m.fn.CallSlice(in), nil
	}
	return m.fn.Call(in), nil
}

// checkCall panics when the bridge itself built a call that cannot be made.
// Such faults belong to the host program and are never reported to script.
func (b *Bridge) checkCall(m *method, in []reflect.Value) {
	ft := m.fn.Type()
	if len(in) != ft.NumIn() {
		panic(errors.Internal(errors.PhaseInvoke, []string{b.typeName, m.goName}, nil,
			fmt.Sprintf("built %d arguments for %d parameters", len(in), ft.NumIn())))
	}
	for i, v := range in {
		if !v.Type().AssignableTo(ft.In(i)) {
			panic(errors.Internal(errors.PhaseInvoke, []string{b.typeName, m.goName}, nil,
				fmt.Sprintf("argument %d of type %s is not assignable to %s", i, v.Type(), ft.In(i))))
		}
	}
}

// Close stops the bridge. Later invocations produce no response.
// It is idempotent and never touches the target.
func (b *Bridge) Close() {
	b.once.Do(func() {
		b.closed.Store(true)
		b.log.Debug("bridge closed")
	})
}

// OnConnectionError handles loss of the channel; it is Close.
func (b *Bridge) OnConnectionError() {
	b.Close()
}

// Closed reports whether Close has been called.
func (b *Bridge) Closed() bool {
	return b.closed.Load()
}
