package ctx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	appctx "github.com/shashiranjanraj/shopfront/pkg/ctx"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
)

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestParamAndQuery(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/orders/{orderId}", appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{
			"id":      c.Param("orderId"),
			"page":    c.QueryInt("page", 1),
			"perPage": c.QueryInt("rowsPerPage", 10),
			"sort":    c.DefaultQuery("sort", "created"),
		})
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/abc?page=3&rowsPerPage=x", nil))

	data := body(t, rec)["data"].(map[string]any)
	assert.Equal(t, "abc", data["id"])
	assert.Equal(t, float64(3), data["page"])
	assert.Equal(t, float64(10), data["perPage"])
	assert.Equal(t, "created", data["sort"])
}

func TestBindJSONValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"john@example.com","password":"pw"}`))
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Email    string `json:"email"    validate:"required,email"`
			Password string `json:"password" validate:"required"`
		}
		require.True(t, c.BindJSON(&input))
		assert.Equal(t, "john@example.com", input.Email)
		c.NoContent()
	})(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBindJSONValidationFailureIs400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Email string `json:"email" validate:"required,email"`
		}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	out := body(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Request", out["message"])
	assert.Contains(t, out["errors"], "email")
}

func TestBindJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		var input struct{}
		assert.False(t, c.BindJSON(&input))
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFailAndPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithPrincipal(req.Context(), &middleware.Principal{ID: "u1", Role: "User"}))
	rec := httptest.NewRecorder()

	appctx.Wrap(func(c *appctx.Context) {
		p, ok := c.Principal()
		require.True(t, ok)
		assert.Equal(t, "u1", p.ID)
		c.Fail(apperr.NotFound("Order not found"))
	})(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", body(t, rec)["message"])
}

func TestStore(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Set("k", 42)
		v, ok := c.Get("k")
		assert.True(t, ok)
		assert.Equal(t, 42, v)
		c.Created("created", nil)
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
}
