package listeners_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/listeners"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, value any) error {
	return m.Called(ctx, topic, key, value).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

type recordingPusher struct {
	mu   sync.Mutex
	sent map[string][][]byte
}

func (p *recordingPusher) SendTo(subject string, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[string][][]byte{}
	}
	p.sent[subject] = append(p.sent[subject], data)
}

func TestPublishUsesEventNameAndKey(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, services.EventProductDeleted, "p1", mock.Anything).Return(nil).Once()
	pub.On("Publish", mock.Anything, services.EventUserBanned, "u1", mock.Anything).Return(errors.New("broker down")).Once()

	bus := event.NewBus(nil)
	listeners.Register(bus, pub, nil)

	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(services.EventUserBanned, "error"))
	bus.Fire(context.Background(), services.EventProductDeleted, services.DeletedEvent{ID: "p1"})
	bus.Fire(context.Background(), services.EventUserBanned, services.BanEvent{UserID: "u1"})

	pub.AssertExpectations(t)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(services.EventUserBanned, "error")))
}

func TestOrderEventsArePushedToOwner(t *testing.T) {
	push := &recordingPusher{}
	bus := event.NewBus(nil)
	listeners.Register(bus, nil, push)

	created := testutil.ToFloat64(metrics.OrdersCreated)
	delivering := testutil.ToFloat64(metrics.OrderStatusChanges.WithLabelValues("delivering"))

	bus.Fire(context.Background(), services.EventOrderCreated, services.OrderEvent{OrderID: "o1", UserID: "u1", Status: "in process", TotalPrice: 35})
	bus.Fire(context.Background(), services.EventOrderUpdated, services.OrderEvent{OrderID: "o1", UserID: "u1", Status: "delivering", TotalPrice: 35})
	bus.Fire(context.Background(), services.EventProductCreated, services.ProductEvent{ID: "p1"})

	require.Len(t, push.sent["u1"], 2)
	assert.Len(t, push.sent, 1)

	var msg struct {
		Event   string              `json:"event"`
		Payload services.OrderEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(push.sent["u1"][1], &msg))
	assert.Equal(t, services.EventOrderUpdated, msg.Event)
	assert.Equal(t, "delivering", msg.Payload.Status)

	assert.Equal(t, created+1, testutil.ToFloat64(metrics.OrdersCreated))
	assert.Equal(t, delivering+1, testutil.ToFloat64(metrics.OrderStatusChanges.WithLabelValues("delivering")))
}
