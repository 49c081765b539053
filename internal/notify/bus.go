package notify

import "sync"

type EventType string

const (
	EventSpoke           EventType = "spoke"
	EventHandlerStart    EventType = "handlerStart"
	EventHandlerComplete EventType = "handlerComplete"
)

// Event is a notifier lifecycle event. Handler names the command handler for
// start/complete events; Text carries what was spoken.
type Event struct {
	Type    EventType
	Handler string
	Text    string
}

// Bus delivers events synchronously to every subscriber, in subscription
// order. Subscribers must not block.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := make([]func(Event), len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
}
