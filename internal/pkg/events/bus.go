// Package events carries the process-wide change notifications that replace
// polling: any flow that mutates entitlements publishes a subscription-changed
// event, and every interested observer re-evaluates its gating state when one
// arrives.
package events

import "sync"

// Event types.
const (
	TypeSubscriptionChanged = "subscription:changed"
	TypeScrapeProgress      = "scrape:progress"
)

// Event is a change notification.
type Event struct {
	Type   string                 `json:"type"`
	UserID int64                  `json:"user_id,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Handler receives published events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Event)

// Bus is an in-process publish/subscribe fan-out.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers a handler and returns an unsubscribe function.
func (b *Bus) Subscribe(fn Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Publish delivers the event to every current subscriber.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(evt)
	}
}

// PublishSubscriptionChanged is a shorthand for the one event the
// entitlement machinery cares about.
func (b *Bus) PublishSubscriptionChanged(userID int64) {
	b.Publish(Event{Type: TypeSubscriptionChanged, UserID: userID})
}
