package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories/repotest"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/event"
)

func seedProducts(t *testing.T, s *repotest.Stores, prices ...float64) []*models.Product {
	t.Helper()
	out := make([]*models.Product, len(prices))
	for i, price := range prices {
		p := &models.Product{Name: string(rune('A' + i)), Price: price}
		require.NoError(t, s.Products.Create(context.Background(), p))
		out[i] = p
	}
	return out
}

func TestPricerSumsCatalogPrices(t *testing.T) {
	s := repotest.New()
	ps := seedProducts(t, s, 10, 5, 0.1)
	pricer := services.NewPricer(s.Products)

	total, err := pricer.Total(context.Background(), []models.CartItem{
		{Product: ps[0].ID, Quantity: 2},
		{Product: ps[1].ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 35.0, total)

	total, err = pricer.Total(context.Background(), []models.CartItem{
		{Product: ps[2].ID, Quantity: 1},
		{Product: ps[2].ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.3, total, "decimal arithmetic avoids float drift")

	missing := primitive.NewObjectID()
	_, err = pricer.Total(context.Background(), []models.CartItem{{Product: missing, Quantity: 1}})
	requireKind(t, err, apperr.KindNotFound, "Product "+missing.Hex()+" not found")
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := repotest.New()
	buyer := seedUser(t, s, "ana@example.com", "secret", models.RoleUser)
	ps := seedProducts(t, s, 10, 5)

	bus := event.NewBus(nil)
	created := capture(bus, services.EventOrderCreated)
	updated := capture(bus, services.EventOrderUpdated)
	svc := services.NewOrderService(s.Orders, services.NewPricer(s.Products), bus).
		WithClock(func() time.Time { return now })

	_, err := svc.List(ctx, services.OrderListInput{})
	requireKind(t, err, apperr.KindNotFound, "Orders not found")

	o, err := svc.Create(ctx, buyer, services.CreateOrderInput{Cart: []services.CartItemInput{
		{Product: ps[0].ID.Hex(), Quantity: 2, Variant: "red"},
		{Product: ps[1].ID.Hex(), Quantity: 3},
	}})
	require.NoError(t, err)
	assert.Equal(t, 35.0, o.TotalPrice)
	assert.Equal(t, models.StatusInProcess, o.Status)
	assert.Equal(t, now, o.Created)
	assert.Equal(t, buyer.ID, o.User)

	ev := receive(t, created).Payload.(services.OrderEvent)
	assert.Equal(t, buyer.ID.Hex(), ev.UserID)
	assert.Equal(t, 35.0, ev.TotalPrice)

	detail, err := svc.Get(ctx, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", detail.User.Email)
	require.Len(t, detail.Cart, 2)
	assert.Equal(t, "A", detail.Cart[0].Product.Name)

	changed, err := svc.UpdateStatus(ctx, o.ID.Hex(), services.OrderStatusInput{Status: models.StatusDelivering})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivering, changed.Status)
	assert.Equal(t, buyer.ID.Hex(), receive(t, updated).Payload.(services.OrderEvent).UserID)

	page, err := svc.List(ctx, services.OrderListInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = svc.Get(ctx, primitive.NewObjectID().Hex())
	requireKind(t, err, apperr.KindNotFound, "Order not found")
}

func TestOrderCreateRejectsUnknownProduct(t *testing.T) {
	s := repotest.New()
	buyer := seedUser(t, s, "ana@example.com", "secret", models.RoleUser)
	svc := services.NewOrderService(s.Orders, services.NewPricer(s.Products), event.NewBus(nil))

	_, err := svc.Create(context.Background(), buyer, services.CreateOrderInput{Cart: []services.CartItemInput{
		{Product: primitive.NewObjectID().Hex(), Quantity: 1},
	}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
