// Package listeners subscribes the side effects of domain events to the bus:
// forwarding to Kafka, pushing order updates to websocket clients and
// recording business metrics.
package listeners

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/broker"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// Pusher delivers a message to one subject's live connections.
type Pusher interface {
	SendTo(subject string, data []byte)
}

type keyed interface {
	EventKey() string
}

// Register wires every listener onto bus. A nil publisher or pusher skips
// that listener.
func Register(bus *event.Bus, pub broker.Publisher, push Pusher) {
	if pub != nil {
		bus.Listen(event.Wildcard, Publish(pub))
	}
	if push != nil {
		bus.Listen(services.EventOrderCreated, PushOrder(push))
		bus.Listen(services.EventOrderUpdated, PushOrder(push))
	}
	bus.Listen(services.EventOrderCreated, RecordOrderCreated)
	bus.Listen(services.EventOrderUpdated, RecordOrderUpdated)
}

// Publish forwards every event to the topic named after it, keyed by the
// payload's entity id so updates to one entity stay ordered.
func Publish(pub broker.Publisher) event.Handler {
	return func(ctx context.Context, e event.Event) error {
		var key string
		if k, ok := e.Payload.(keyed); ok {
			key = k.EventKey()
		}
		err := pub.Publish(ctx, e.Name, key, e)
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.EventsPublished.WithLabelValues(e.Name, result).Inc()
		return err
	}
}

// PushOrder sends order events to the owning user. The hub copies them to
// admins.
func PushOrder(push Pusher) event.Handler {
	return func(_ context.Context, e event.Event) error {
		o, ok := e.Payload.(services.OrderEvent)
		if !ok {
			return fmt.Errorf("listeners: %s carries %T, want OrderEvent", e.Name, e.Payload)
		}
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		push.SendTo(o.UserID, data)
		return nil
	}
}

func RecordOrderCreated(_ context.Context, e event.Event) error {
	o, ok := e.Payload.(services.OrderEvent)
	if !ok {
		return nil
	}
	metrics.OrdersCreated.Inc()
	metrics.OrderValue.Observe(o.TotalPrice)
	return nil
}

func RecordOrderUpdated(_ context.Context, e event.Event) error {
	o, ok := e.Payload.(services.OrderEvent)
	if !ok {
		return nil
	}
	metrics.OrderStatusChanges.WithLabelValues(o.Status).Inc()
	return nil
}
