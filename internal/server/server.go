// Package server boots the application: it connects the backing services,
// wires repositories, services and listeners, and runs the HTTP and gRPC
// servers until the process is signalled.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/shopfront/app/graphql"
	"github.com/shashiranjanraj/shopfront/app/listeners"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/app/routes"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/internal/kernel"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/broker"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
	"github.com/shashiranjanraj/shopfront/pkg/database"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	gqlserver "github.com/shashiranjanraj/shopfront/pkg/graphql"
	grpcserver "github.com/shashiranjanraj/shopfront/pkg/grpc"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/migration"
	"github.com/shashiranjanraj/shopfront/pkg/router"
	"github.com/shashiranjanraj/shopfront/pkg/schedule"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
	"github.com/shashiranjanraj/shopfront/pkg/workerpool"
	"github.com/shashiranjanraj/shopfront/pkg/ws"
)

const (
	listenerWorkers = 8
	shutdownTimeout = 15 * time.Second
)

// App holds the long-lived collaborators created at boot.
type App struct {
	DB        *database.DB
	Cache     cache.Store
	Publisher broker.Publisher
	Pool      *workerpool.Pool
	Bus       *event.Bus
	Hub       *ws.Hub
	Disks     *storage.Manager
	Deps      routes.Deps

	redis    *cache.Redis
	closeLog func()
}

// Start runs the server until SIGINT or SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if config.AutoMigrate() {
		if err := app.Migrate(ctx); err != nil {
			return err
		}
	}

	go app.Hub.Run(ctx)
	go app.Scheduler().Start(ctx)

	grpcSrv, err := grpcserver.Start(config.GRPCPort(), app.DB.Ping)
	if err != nil {
		return err
	}
	defer grpcserver.Stop(grpcSrv)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           app.Kernel(ctx).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Boot connects every backing service and builds the service graph. Redis
// and Kafka are optional: without them the product cache is in-process and
// events are not forwarded.
func Boot(ctx context.Context) (*App, error) {
	db, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase())
	if err != nil {
		return nil, err
	}
	app := &App{DB: db}

	logOpts := logger.Options{File: config.LogFile()}
	if config.LogMongo() {
		logOpts.Mongo = logger.NewMongoHandler(ctx, db.Client, config.MongoDatabase(), "logs", slog.LevelInfo)
	}
	app.closeLog = logger.Setup(logOpts)

	if r, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword()); err != nil {
		logger.Warn("redis unavailable, using in-process cache", "error", err)
		app.Cache = cache.NewMemory()
	} else {
		app.redis = r
		app.Cache = r
	}

	app.Publisher = broker.Nop{}
	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		k, err := broker.NewKafka(ctx, broker.Config{Brokers: brokers, ClientID: "shopfront"})
		if err != nil {
			logger.Warn("kafka unavailable, events will not be published", "error", err)
		} else {
			app.Publisher = k
		}
	}

	if app.Disks, err = disks(ctx); err != nil {
		app.Close()
		return nil, err
	}

	app.Pool = workerpool.New(listenerWorkers, workerpool.WithPanicHandler(func(rec any) {
		logger.Error("event listener panicked", "panic", rec)
	}))
	app.Bus = event.NewBus(app.Pool)
	app.Hub = ws.NewHub()
	listeners.Register(app.Bus, app.Publisher, app.Hub)

	if err := app.wire(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire() error {
	users := repositories.NewUserRepository(a.DB.Database)
	categories := repositories.NewCategoryRepository(a.DB.Database)
	orders := repositories.NewOrderRepository(a.DB.Database)
	products := repositories.NewCachedProductRepository(
		repositories.NewProductRepository(a.DB.Database), a.Cache, config.CacheTTL())

	tokens := auth.NewIssuer(config.JWTSecret())
	strategies := services.NewStrategies(services.AuthDeps{
		Users:       users,
		Tokens:      tokens,
		Google:      auth.NewGoogleVerifier(config.GoogleClientID()),
		EnforceBans: config.EnforceBans(),
	})

	productService := services.NewProductService(products, categories, a.Bus).WithCache(products)
	if config.OffloadImages() {
		disk, err := a.Disks.Default()
		if err != nil {
			return err
		}
		productService.WithImageOffload(services.NewImageOffloader(disk))
	}

	schema, err := graphql.NewCatalogSchema(productService)
	if err != nil {
		return fmt.Errorf("graphql: %w", err)
	}

	a.Deps = routes.Deps{
		Auth:     services.NewAuthService(strategies),
		Users:    services.NewUserService(users, tokens, a.Bus),
		Products: productService,
		Orders:   services.NewOrderService(orders, services.NewPricer(products), a.Bus),
		Hub:      a.Hub,
		GraphQL:  gqlserver.Handler(schema),
	}
	return nil
}

// disks registers the local disk and, when selected, S3.
func disks(ctx context.Context) (*storage.Manager, error) {
	m := storage.NewManager(config.StorageDisk())
	m.Register("local", storage.NewLocal(config.StorageLocalRoot(), config.StorageURL()))

	if config.StorageDisk() == "s3" {
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
		if err != nil {
			return nil, err
		}
		m.Register("s3", s3)
	}
	return m, nil
}

// Kernel builds the HTTP handler. The rate limiter shares Redis across
// instances when it is available.
func (a *App) Kernel(ctx context.Context) *kernel.HTTPKernel {
	var limiter middleware.Limiter
	if a.redis != nil {
		limiter = middleware.NewStoreLimiter(a.Cache, config.RateLimit(), time.Minute)
	} else {
		limiter = middleware.NewMemoryLimiter(ctx, config.RateLimit(), time.Minute)
	}

	opts := kernel.Options{
		Limiter: limiter,
		Health:  a.DB.Ping,
		Routes:  func(r *router.Router) { routes.RegisterAPI(r, a.Deps) },
	}
	if config.StorageDisk() == "local" {
		if local, err := a.Disks.Use("local"); err == nil {
			opts.StorageRoot = local.(*storage.Local).Root()
		}
	}
	return kernel.NewHTTPKernel(opts)
}

// Scheduler registers the background maintenance tasks.
func (a *App) Scheduler() *schedule.Scheduler {
	s := schedule.New()
	s.Every(config.BanSweepInterval()).Name("bans.sweep").Run(func(ctx context.Context) error {
		n, err := a.Deps.Users.SweepExpiredBans(ctx)
		if n > 0 {
			logger.Info("expired bans lifted", "count", n)
		}
		return err
	})
	return s
}

// Migrate applies pending migrations.
func (a *App) Migrate(ctx context.Context) error {
	runner, err := migration.New(ctx, a.DB.Database)
	if err != nil {
		return err
	}
	ran, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(ran) > 0 {
		logger.Info("migrations applied", "count", len(ran))
	}
	return nil
}

// Close releases everything Boot opened, in reverse order.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Shutdown()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			logger.Warn("kafka close", "error", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
	if a.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.DB.Close(ctx)
	}
}

// RouteTable lists the API routes without connecting to any backing service.
func RouteTable() []router.RouteInfo {
	r := router.New()
	schema, err := graphql.NewCatalogSchema(nil)
	deps := routes.Deps{}
	if err == nil {
		deps.GraphQL = gqlserver.Handler(schema)
	}
	routes.RegisterAPI(r, deps)
	return r.Routes()
}
