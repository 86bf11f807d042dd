// Package event carries domain events from the state machines to their
// subscribers. The services publish after the mutation is durably persisted;
// subscribers must treat delivery as fire-and-forget.
package event

import "context"

// Handler consumes a published domain event. Handlers own their failure
// handling; nothing they do can affect the mutation that produced the event.
type Handler func(ctx context.Context, evt any)

// Bus is a synchronous in-process observer. Subscribe during wiring, before
// any Publish; the handler slice is not guarded for concurrent mutation.
type Bus struct {
	handlers []Handler
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Publish delivers evt to every handler in subscription order.
func (b *Bus) Publish(ctx context.Context, evt any) {
	for _, h := range b.handlers {
		h(ctx, evt)
	}
}
