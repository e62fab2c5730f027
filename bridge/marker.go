package bridge

import "reflect"

// Marker restricts which methods a bridge exposes.
// It plays the role of an allow-list annotation: a method is exposed only
// when the marker reports it as marked. Marks receives the Go method name,
// or the binding name for targets implementing Registrar.
type Marker interface {
	Marks(name string) bool
}

// MarkerFunc adapts a function to Marker.
type MarkerFunc func(name string) bool

func (f MarkerFunc) Marks(name string) bool { return f(name) }

// InterfaceMarker marks exactly the methods declared by the interface type
// iface. Declaring an exposure interface is the Go counterpart of annotating
// each method:
//
//	type greeterAPI interface {
//		Greet(n int32) string
//	}
//
//	b, err := bridge.New(g, bridge.Options{
//		Marker: bridge.InterfaceMarker(reflect.TypeFor[greeterAPI]()),
//	})
//
// It panics if iface is not an interface type.
func InterfaceMarker(iface reflect.Type) Marker {
	if iface.Kind() != reflect.Interface {
		panic("bridge: InterfaceMarker requires an interface type, got " + iface.String())
	}
	names := make(map[string]bool, iface.NumMethod())
	for i := 0; i < iface.NumMethod(); i++ {
		names[iface.Method(i).Name] = true
	}
	return nameSet(names)
}

// NameMarker marks the listed names. Both Go names (Greet) and script
// names (greet) are accepted.
func NameMarker(names ...string) Marker {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return MarkerFunc(func(name string) bool {
		return set[name] || set[scriptName(name)]
	})
}

type nameSet map[string]bool

func (s nameSet) Marks(name string) bool { return s[name] }
