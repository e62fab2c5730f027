package host

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/remote-object/bridge"
	"github.com/wippyai/remote-object/errors"
	"github.com/wippyai/remote-object/wire"
)

var logger = zap.NewNop()

// Logger returns the host package's logger. It is a no-op logger by default.
func Logger() *zap.Logger {
	return logger
}

// SetLogger configures the host package's logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

// Registry is an id-addressed table of exposed objects.
// Thread-safe.
type Registry struct {
	entries   []entry
	freeList  []wire.ObjectID
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	bridge *bridge.Bridge
	holder any
	refs   uint32
	valid  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:  make([]entry, 0, 16),
		freeList: make([]wire.ObjectID, 0, 4),
	}
}

// Expose creates a bridge for target and adds it with target as holder,
// so the registry keeps target alive until the last Release.
func Expose[T any](r *Registry, target *T, opts bridge.Options) (wire.ObjectID, *bridge.Bridge, error) {
	b, err := bridge.New(target, opts)
	if err != nil {
		return 0, nil, err
	}
	id, err := r.Add(b, target)
	if err != nil {
		b.Close()
		return 0, nil, err
	}
	return id, b, nil
}

// Add stores b with one reference. holder, if non-nil, is retained until
// the entry is removed.
func (r *Registry) Add(b *bridge.Bridge, holder any) (wire.ObjectID, error) {
	if b == nil {
		return 0, errors.NilPointer(errors.PhaseHost, nil, "*bridge.Bridge")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, errors.Closed(errors.PhaseHost, "registry")
	}

	e := entry{
		bridge: b,
		holder: holder,
		refs:   1,
		valid:  true,
	}

	var id wire.ObjectID
	if len(r.freeList) > 0 {
		id = r.freeList[len(r.freeList)-1]
		r.freeList = r.freeList[:len(r.freeList)-1]
		r.entries[id-1] = e
	} else {
		r.entries = append(r.entries, e)
		id = wire.ObjectID(len(r.entries))
	}
	r.mu.Unlock()

	logger.Debug("object added", zap.Uint32("id", uint32(id)), zap.String("type", b.TypeName()))
	r.notify(Event{Type: EventAdded, ID: id, Bridge: b, Refs: 1})
	return id, nil
}

// Get returns the bridge for id.
func (r *Registry) Get(id wire.ObjectID) (*bridge.Bridge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e := r.lookup(id)
	if e == nil {
		return nil, false
	}
	return e.bridge, true
}

// Lookup is Get returning a host error for unknown ids.
func (r *Registry) Lookup(id wire.ObjectID) (*bridge.Bridge, error) {
	b, ok := r.Get(id)
	if !ok {
		return nil, errors.NotFound(errors.PhaseHost, "object", strconv.FormatUint(uint64(id), 10))
	}
	return b, nil
}

// Acquire adds a reference to id.
func (r *Registry) Acquire(id wire.ObjectID) bool {
	r.mu.Lock()
	e := r.lookup(id)
	if e == nil {
		r.mu.Unlock()
		return false
	}
	e.refs++
	ev := Event{Type: EventAcquired, ID: id, Bridge: e.bridge, Refs: e.refs}
	r.mu.Unlock()

	r.notify(ev)
	return true
}

// Release drops a reference to id. The last release removes the entry,
// closes its bridge and drops the holder.
func (r *Registry) Release(id wire.ObjectID) bool {
	r.mu.Lock()
	e := r.lookup(id)
	if e == nil {
		r.mu.Unlock()
		return false
	}
	e.refs--
	if e.refs > 0 {
		ev := Event{Type: EventReleased, ID: id, Bridge: e.bridge, Refs: e.refs}
		r.mu.Unlock()
		r.notify(ev)
		return true
	}
	b := r.removeLocked(id)
	r.mu.Unlock()

	r.finishRemove(id, b)
	return true
}

// Remove drops id regardless of its reference count.
func (r *Registry) Remove(id wire.ObjectID) bool {
	r.mu.Lock()
	if r.lookup(id) == nil {
		r.mu.Unlock()
		return false
	}
	b := r.removeLocked(id)
	r.mu.Unlock()

	r.finishRemove(id, b)
	return true
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// Each iterates over live entries in id order until fn returns false.
func (r *Registry) Each(fn func(wire.ObjectID, *bridge.Bridge) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, e := range r.entries {
		if e.valid {
			if !fn(wire.ObjectID(i+1), e.bridge) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// Close removes every entry and stops accepting new ones.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true

	type removed struct {
		b  *bridge.Bridge
		id wire.ObjectID
	}
	var all []removed
	for i := range r.entries {
		if r.entries[i].valid {
			id := wire.ObjectID(i + 1)
			all = append(all, removed{id: id, b: r.removeLocked(id)})
		}
	}
	r.entries = nil
	r.freeList = nil
	r.mu.Unlock()

	for _, rm := range all {
		r.finishRemove(rm.id, rm.b)
	}
	return nil
}

func (r *Registry) lookup(id wire.ObjectID) *entry {
	if id == 0 || int(id) > len(r.entries) {
		return nil
	}
	e := &r.entries[id-1]
	if !e.valid {
		return nil
	}
	return e
}

func (r *Registry) removeLocked(id wire.ObjectID) *bridge.Bridge {
	e := &r.entries[id-1]
	b := e.bridge
	*e = entry{}
	r.freeList = append(r.freeList, id)
	return b
}

func (r *Registry) finishRemove(id wire.ObjectID, b *bridge.Bridge) {
	b.Close()
	logger.Debug("object removed", zap.Uint32("id", uint32(id)), zap.String("type", b.TypeName()))
	r.notify(Event{Type: EventRemoved, ID: id, Bridge: b})
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	observers := make([]Observer, len(r.observers))
	copy(observers, r.observers)
	r.obsMu.RUnlock()

	for _, o := range observers {
		o.OnObjectEvent(e)
	}
}
