package bridge

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/remote-object/coerce"
	"github.com/wippyai/remote-object/errors"
)

// getClassName is the script name of the reflective type accessor.
// Every host object answers to it; calling it is always blocked.
const getClassName = "getClass"

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Binding names one exposed function explicitly.
// Func must take the target pointer as its first parameter, which a method
// expression does: Binding{Name: "greet", Func: (*Greeter).Greet}.
// A closure over the target would keep it alive and defeat the weak reference.
type Binding struct {
	Func any
	Name string
}

// Registrar lets a target list its methods explicitly, in order, instead of
// relying on reflection and name conversion. Several bindings may share a
// name to form an overload set.
type Registrar interface {
	BridgeMethods() []Binding
}

// method is one overload. fn takes the receiver first.
type method struct {
	fn         reflect.Value
	params     []coerce.Type
	ret        coerce.Type
	name       string
	goName     string
	withCtx    bool
	returnsErr bool
	variadic   bool
	getClass   bool
}

func (m *method) arity() int { return len(m.params) }

func (m *method) overload() Overload {
	return Overload{Name: m.name, Params: m.params, Return: m.ret, Variadic: m.variadic}
}

// Overload describes one exposed method as script sees it.
type Overload struct {
	Name     string
	Params   []coerce.Type
	Return   coerce.Type
	Variadic bool
}

// String renders o as "String greet(int)".
func (o Overload) String() string {
	params := make([]string, len(o.Params))
	for i, p := range o.Params {
		params[i] = p.String()
	}
	if o.Variadic && len(params) > 0 {
		params[len(params)-1] = o.Params[len(params)-1].Elem.String() + "..."
	}
	return o.Return.String() + " " + o.Name + "(" + strings.Join(params, ", ") + ")"
}

// blocked reports whether m is the reflective type accessor.
func (m *method) blocked() bool {
	return m.getClass || (m.name == getClassName && m.arity() == 0)
}

// methodTable maps script names to overloads in discovery order.
// It is built once and never mutated.
type methodTable map[string][]*method

// find returns the first overload of name taking argc arguments.
func (t methodTable) find(name string, argc int) *method {
	for _, m := range t[name] {
		if m.arity() == argc {
			return m
		}
	}
	return nil
}

func (t methodTable) names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildMethodTable indexes the methods of the target type. target is used
// only to ask a Registrar for its bindings; nothing retains it.
func buildMethodTable(target any, marker Marker) (methodTable, error) {
	recvType := reflect.TypeOf(target)
	table := make(methodTable)

	add := func(m *method) {
		table[m.name] = append(table[m.name], m)
	}

	if r, ok := target.(Registrar); ok {
		for _, b := range r.BridgeMethods() {
			if marker != nil && !marker.Marks(b.Name) {
				continue
			}
			m, err := bindingMethod(recvType, b)
			if err != nil {
				return nil, err
			}
			add(m)
		}
	} else {
		for i := 0; i < recvType.NumMethod(); i++ {
			rm := recvType.Method(i)
			if !rm.IsExported() {
				continue
			}
			if marker != nil && !marker.Marks(rm.Name) {
				continue
			}
			m, err := newMethod(scriptName(rm.Name), rm.Name, rm.Func)
			if err != nil {
				Logger().Debug("skipping method with unsupported signature",
					zap.String("type", recvType.String()),
					zap.String("method", rm.Name),
					zap.Error(err))
				continue
			}
			add(m)
		}
	}

	if marker == nil || marker.Marks("GetClass") {
		if table.find(getClassName, 0) == nil {
			add(&method{
				name:     getClassName,
				goName:   "GetClass",
				ret:      coerce.Object,
				getClass: true,
			})
		}
	}

	return table, nil
}

func bindingMethod(recvType reflect.Type, b Binding) (*method, error) {
	if b.Name == "" {
		return nil, errors.InvalidInput(errors.PhaseRegister, "binding name cannot be empty")
	}
	fn := reflect.ValueOf(b.Func)
	if fn.Kind() != reflect.Func {
		return nil, errors.Registration(b.Name,
			errors.TypeMismatch(errors.PhaseRegister, []string{b.Name}, fmt.Sprintf("%T", b.Func), "function"))
	}
	ft := fn.Type()
	if ft.NumIn() == 0 || !recvType.AssignableTo(ft.In(0)) {
		return nil, errors.Registration(b.Name, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			GoType(ft.String()).
			Detail("first parameter must accept %s", recvType).
			Build())
	}
	m, err := newMethod(b.Name, b.Name, fn)
	if err != nil {
		return nil, errors.Registration(b.Name, err)
	}
	return m, nil
}

// newMethod derives declared types from fn, whose first parameter is the receiver.
// An optional context.Context may follow the receiver; an optional trailing
// error result reports failure the way a thrown exception would.
func newMethod(name, goName string, fn reflect.Value) (*method, error) {
	ft := fn.Type()
	m := &method{
		fn:       fn,
		name:     name,
		goName:   goName,
		variadic: ft.IsVariadic(),
		ret:      coerce.Void,
	}

	first := 1
	if ft.NumIn() > 1 && ft.In(1) == contextType {
		m.withCtx = true
		first = 2
	}
	for i := first; i < ft.NumIn(); i++ {
		m.params = append(m.params, coerce.TypeOf(ft.In(i)))
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			m.returnsErr = true
		} else {
			m.ret = coerce.TypeOf(ft.Out(0))
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, errors.New(errors.PhaseRegister, errors.KindUnsupported).
				Path(name).
				GoType(ft.String()).
				ScriptType(coerce.TypeOf(ft.Out(0)).String()).
				Detail("second result must be error").
				Build()
		}
		m.ret = coerce.TypeOf(ft.Out(0))
		m.returnsErr = true
	default:
		err := errors.Unsupported(errors.PhaseRegister, "at most one value and an error may be returned")
		err.Path = []string{name}
		err.GoType = ft.String()
		return nil, err
	}

	return m, nil
}
