// Package kernel builds the HTTP handler: the global middleware stack, the
// operational endpoints and the application routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/reqid"
	"github.com/shashiranjanraj/shopfront/pkg/response"
	"github.com/shashiranjanraj/shopfront/pkg/router"
)

// Options configures the kernel. Zero values disable the matching feature.
type Options struct {
	// Limiter enables per-client rate limiting.
	Limiter middleware.Limiter
	// StorageRoot is served read-only under /storage/ (the local image disk).
	StorageRoot string
	// Health backs GET /health; nil always reports healthy.
	Health func(ctx context.Context) error
	// Routes registers the application routes.
	Routes func(r *router.Router)
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(opts Options) *HTTPKernel {
	r := router.New()

	// Outermost first: metrics see total latency, recovery guards the rest,
	// and the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter))
	}

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", healthHandler(opts.Health))
	if opts.StorageRoot != "" {
		r.Mount("/storage", http.StripPrefix("/storage", http.FileServer(http.Dir(opts.StorageRoot))))
	}

	if opts.Routes != nil {
		opts.Routes(r)
	}
	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table, for route:list.
func (k *HTTPKernel) Router() *router.Router { return k.router }

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				response.Write(w, http.StatusServiceUnavailable, "unhealthy", map[string]string{"database": "down"})
				return
			}
		}
		response.Success(w, map[string]string{"database": "up"})
	}
}
