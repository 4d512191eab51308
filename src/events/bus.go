package events

import (
	"sync"
	"time"
)

// EventType identifies published event categories.
type EventType string

const (
	// EventCommandExecuted is emitted after a command completes.
	EventCommandExecuted EventType = "command_executed"
	// EventValueChanged is emitted after a leaf value was rewritten.
	EventValueChanged EventType = "value_changed"
)

// Metadata keys carried by EventValueChanged.
const (
	MetaPath     = "path"
	MetaOldValue = "old"
	MetaNewValue = "new"
)

// Event captures domain happenings for observers.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Command   string
	Raw       string
	File      string
	Metadata  map[string]string
}

// Listener consumes published events.
type Listener interface {
	Handle(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// Handle calls f.
func (f ListenerFunc) Handle(evt Event) {
	f(evt)
}

// Bus is a simple observer dispatcher.
type Bus struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a listener.
func (b *Bus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

// Publish sends an event to listeners in subscription order.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, l := range b.listeners {
		l.Handle(event)
	}
}
