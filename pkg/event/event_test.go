package event_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/event"
	"github.com/shashiranjanraj/shopfront/pkg/workerpool"
)

func TestFireReachesNamedAndWildcardListeners(t *testing.T) {
	bus := event.NewBus(nil)

	var got []string
	bus.Listen("order.created", func(_ context.Context, e event.Event) error {
		got = append(got, "named:"+e.Name)
		return nil
	})
	bus.Listen(event.Wildcard, func(_ context.Context, e event.Event) error {
		got = append(got, "all:"+e.Name)
		return errors.New("logged, not returned")
	})

	bus.Fire(context.Background(), "order.created", map[string]any{"total": 35})
	bus.Fire(context.Background(), "product.deleted", nil)

	assert.Equal(t, []string{"named:order.created", "all:order.created", "all:product.deleted"}, got)
}

func TestFireAsyncSurvivesRequestCancellation(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()
	bus := event.NewBus(pool)

	var wg sync.WaitGroup
	wg.Add(1)
	var ctxErr error
	bus.Listen("user.banned", func(ctx context.Context, e event.Event) error {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		ctxErr = ctx.Err()
		assert.Equal(t, "u1", e.Payload)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.FireAsync(ctx, "user.banned", "u1")
	cancel()

	wg.Wait()
	require.NoError(t, ctxErr)
}

func TestFlush(t *testing.T) {
	bus := event.NewBus(nil)
	called := false
	bus.Listen("x", func(context.Context, event.Event) error { called = true; return nil })
	bus.Flush()
	bus.Fire(context.Background(), "x", nil)
	assert.False(t, called)
}
