package host

import (
	"github.com/wippyai/remote-object/bridge"
	"github.com/wippyai/remote-object/wire"
)

// EventType identifies a registry lifecycle event.
type EventType uint8

const (
	EventAdded EventType = iota
	EventAcquired
	EventReleased
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventAcquired:
		return "acquired"
	case EventReleased:
		return "released"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event describes one registry lifecycle change.
type Event struct {
	Bridge *bridge.Bridge
	ID     wire.ObjectID
	Refs   uint32
	Type   EventType
}

// Observer receives registry lifecycle events.
type Observer interface {
	OnObjectEvent(Event)
}
