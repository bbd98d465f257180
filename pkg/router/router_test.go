package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/router"
)

func tag(value string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupMiddlewareOrder(t *testing.T) {
	r := router.New()
	api := r.Group("/api/v1", tag("group"))
	products := api.Group("products")
	products.Delete("/{productId}", "products.destroy", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/products/abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"group", "route"}, rec.Header().Values("X-Chain"))
}

func TestNamedRoutes(t *testing.T) {
	r := router.New()
	api := r.Group("/api/v1")
	api.Put("/orders/{orderId}", "orders.update", ok)
	api.Get("/orders", "", ok)

	url, err := r.URL("orders.update", map[string]string{"orderId": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/orders/42", url)

	_, err = r.URL("orders.update", nil)
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutesTableIsSorted(t *testing.T) {
	r := router.New()
	r.Post("/b", "b.store", ok)
	r.Get("/b", "b.index", ok)
	r.Get("/a", "", ok)

	assert.Equal(t, []router.RouteInfo{
		{Method: http.MethodGet, Path: "/a"},
		{Method: http.MethodGet, Path: "/b", Name: "b.index"},
		{Method: http.MethodPost, Path: "/b", Name: "b.store"},
	}, r.Routes())
}
