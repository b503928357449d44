package events

import (
	"log/slog"
	"sync"
)

// Handler receives a published event.
type Handler func(Event)

type subscription struct {
	id      int
	handler Handler
}

// Bus is a synchronous event bus. Handlers run in subscription order on the
// publisher's goroutine; a failing handler is logged and never blocks the
// others. Subscribe and Unsubscribe are safe for concurrent use, though the
// loop itself publishes from a single goroutine.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	byType   map[string][]subscription
	global   []subscription
	logger   *slog.Logger
}

// NewBus creates an empty bus. A nil logger means slog.Default().
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{byType: make(map[string][]subscription), logger: logger}
}

// Subscribe registers a handler for one event type and returns an
// unsubscribe function.
func (b *Bus) Subscribe(eventType string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.byType[eventType] = append(b.byType[eventType], subscription{id: id, handler: handler})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.byType[eventType] = removeSubscription(b.byType[eventType], id)
	}
}

// SubscribeAll registers a handler for every event and returns an
// unsubscribe function.
func (b *Bus) SubscribeAll(handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.global = append(b.global, subscription{id: id, handler: handler})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.global = removeSubscription(b.global, id)
	}
}

// Publish delivers the event to type-specific handlers first, then global
// handlers. Handler panics are recovered and logged per handler.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	typed := append([]subscription(nil), b.byType[event.EventType()]...)
	global := append([]subscription(nil), b.global...)
	b.mu.RUnlock()

	for _, sub := range typed {
		b.deliver(sub, event)
	}
	for _, sub := range global {
		b.deliver(sub, event)
	}
}

func (b *Bus) deliver(sub subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("event handler panicked",
				"event_type", event.EventType(),
				"panic", r)
		}
	}()
	sub.handler(event)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byType = make(map[string][]subscription)
	b.global = nil
}

func removeSubscription(subs []subscription, id int) []subscription {
	for i, sub := range subs {
		if sub.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
