// Package event is an in-process dispatcher for domain events. Services fire
// events; listeners (broker publisher, websocket hub, metrics) subscribe by
// name or to every event with "*".
package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/workerpool"
)

// Wildcard subscribes a handler to every event.
const Wildcard = "*"

// Event is one occurrence of a named domain event.
type Event struct {
	Name       string    `json:"event"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Handler receives an event. Returned errors are logged, never propagated to
// the code that fired the event.
type Handler func(ctx context.Context, e Event) error

// Bus dispatches events to registered handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
	now      func() time.Time
}

// NewBus returns a Bus. With a nil pool FireAsync runs handlers on their own
// goroutines.
func NewBus(pool *workerpool.Pool) *Bus {
	return &Bus{handlers: map[string][]Handler{}, pool: pool, now: time.Now}
}

// Listen registers handler for name (or Wildcard).
func (b *Bus) Listen(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

func (b *Bus) listeners(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, 0, len(b.handlers[name])+len(b.handlers[Wildcard]))
	hs = append(hs, b.handlers[name]...)
	return append(hs, b.handlers[Wildcard]...)
}

func (b *Bus) event(name string, payload any) Event {
	return Event{Name: name, Payload: payload, OccurredAt: b.now().UTC()}
}

// Fire runs every listener synchronously on the caller's goroutine.
func (b *Bus) Fire(ctx context.Context, name string, payload any) {
	e := b.event(name, payload)
	for _, h := range b.listeners(name) {
		call(ctx, h, e)
	}
}

// FireAsync hands each listener to the worker pool and returns immediately.
// The request context's values (logger, request id) are kept but its
// cancellation is not, so listeners outlive the response. When the pool is
// saturated the listener runs inline instead of being dropped.
func (b *Bus) FireAsync(ctx context.Context, name string, payload any) {
	e := b.event(name, payload)
	detached := context.WithoutCancel(ctx)

	for _, h := range b.listeners(name) {
		h := h
		task := func() { call(detached, h, e) }

		if b.pool == nil {
			go task()
			continue
		}
		if err := b.pool.Submit(task); err != nil {
			if !errors.Is(err, workerpool.ErrPoolFull) {
				logger.WithCtx(ctx).Warn("event dropped", "event", name, "error", err)
				continue
			}
			task()
		}
	}
}

// Flush removes all listeners.
func (b *Bus) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = map[string][]Handler{}
}

func call(ctx context.Context, h Handler, e Event) {
	if err := h(ctx, e); err != nil {
		logger.WithCtx(ctx).Warn("event listener failed", "event", e.Name, "error", err)
	}
}
