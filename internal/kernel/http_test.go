package kernel_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/internal/kernel"
	"github.com/shashiranjanraj/shopfront/pkg/router"
)

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	healthy := kernel.NewHTTPKernel(kernel.Options{Health: func(context.Context) error { return nil }}).Handler()
	rec := serve(healthy, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"data":{"database":"up"}}`, rec.Body.String())

	down := kernel.NewHTTPKernel(kernel.Options{Health: func(context.Context) error { return errors.New("no primary") }}).Handler()
	rec = serve(down, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDAndRoutes(t *testing.T) {
	k := kernel.NewHTTPKernel(kernel.Options{Routes: func(r *router.Router) {
		r.Get("/ping", "ping", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("pong")) })
	}})

	rec := serve(k.Handler(), http.MethodGet, "/ping")
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	names := map[string]bool{}
	for _, rt := range k.Router().Routes() {
		names[rt.Name] = true
	}
	assert.True(t, names["ping"])
	assert.True(t, names["metrics"])
}

func TestStorageIsServed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "products"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "products", "a.txt"), []byte("image bytes"), 0o644))

	h := kernel.NewHTTPKernel(kernel.Options{StorageRoot: root}).Handler()
	rec := serve(h, http.MethodGet, "/storage/products/a.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image bytes", rec.Body.String())
}
