// Package host manages the objects a host program exposes to script.
//
// The Registry maps object ids to bridges. Ids are small integers, never 0,
// reused after an object is removed. Each entry carries a reference count
// and optionally a holder: the strong reference that keeps the target
// alive while script may still reach it. Bridges themselves hold targets
// weakly, so dropping the holder is what lets a target go.
//
//	reg := host.NewRegistry()
//	id, b, err := host.Expose(reg, &Greeter{}, bridge.DefaultOptions())
//
//	reg.Acquire(id) // second reference
//	reg.Release(id) // back to one
//	reg.Release(id) // removed, bridge closed, holder dropped
//
// Observers receive lifecycle events synchronously, outside the registry lock.
package host
