package routes_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/graphql"
	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories/repotest"
	"github.com/shashiranjanraj/shopfront/app/routes"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	gqlserver "github.com/shashiranjanraj/shopfront/pkg/graphql"
	"github.com/shashiranjanraj/shopfront/pkg/router"
	"github.com/shashiranjanraj/shopfront/pkg/testkit"
	"github.com/shashiranjanraj/shopfront/pkg/ws"
)

// Fixed ids referenced by the scenario files.
var (
	topsID  = mustID("650000000000000000000001")
	shirtID = mustID("650000000000000000000011")
	socksID = mustID("650000000000000000000012")
	anaID   = mustID("650000000000000000000021")
)

func mustID(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		panic(err)
	}
	return id
}

func seed(t *testing.T, s *repotest.Stores) {
	t.Helper()
	ctx := context.Background()
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)

	require.NoError(t, s.Users.Create(ctx, &models.User{Email: "admin@example.com", Password: hash, FirstName: "Ada", LastName: "Admin", Role: models.RoleAdmin}))
	require.NoError(t, s.Users.Create(ctx, &models.User{ID: anaID, Email: "ana@example.com", Password: hash, FirstName: "Ana", LastName: "Lee", Role: models.RoleUser}))
	require.NoError(t, s.Categories.Create(ctx, &models.Category{ID: topsID, Name: "Tops"}))
	require.NoError(t, s.Products.Create(ctx, &models.Product{ID: shirtID, Name: "Shirt", Price: 10, Variants: []string{"S", "M"}, Categories: []primitive.ObjectID{topsID}}))
	require.NoError(t, s.Products.Create(ctx, &models.Product{ID: socksID, Name: "Socks", Price: 5}))
}

func newAPI(t *testing.T) (http.Handler, testkit.TokenSource) {
	t.Helper()
	s := repotest.New()
	seed(t, s)

	issuer := auth.NewIssuer("route-test-secret")
	bus := event.NewBus(nil)
	products := services.NewProductService(s.Products, s.Categories, bus)
	schema, err := graphql.NewCatalogSchema(products)
	require.NoError(t, err)

	r := router.New()
	routes.RegisterAPI(r, routes.Deps{
		Auth:     services.NewAuthService(services.NewStrategies(services.AuthDeps{Users: s.Users, Tokens: issuer})),
		Users:    services.NewUserService(s.Users, issuer, bus),
		Products: products,
		Orders:   services.NewOrderService(s.Orders, services.NewPricer(s.Products), bus),
		Hub:      ws.NewHub(),
		GraphQL:  gqlserver.Handler(schema),
	})

	tokens := func(t *testing.T, as string) string {
		token, err := issuer.Issue(as)
		require.NoError(t, err)
		return token
	}
	return r.Handler(), tokens
}

func TestAPIScenarios(t *testing.T) {
	h, tokens := newAPI(t)
	testkit.RunDir(t, h, "testdata/api", testkit.WithTokens(tokens))
}

func TestRouteTable(t *testing.T) {
	r := router.New()
	routes.RegisterAPI(r, routes.Deps{})

	got := map[string]bool{}
	for _, rt := range r.Routes() {
		got[rt.Method+" "+rt.Path] = true
	}
	for _, want := range []string{
		"GET /api/v1/users/all",
		"POST /api/v1/users/signin_with_google",
		"PUT /api/v1/products/categories/{categoryId}",
		"DELETE /api/v1/products/{productId}",
		"GET /api/v1/orders/ws",
		"PUT /api/v1/orders/{orderId}",
		"POST /api/v1/admin/ban_user",
		"GET /api/v1/admin/unban_user/{userId}",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
	assert.False(t, got["POST /api/v1/graphql"], "graphql is only mounted when configured")
}
