// Package app wires the storefront dependencies and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/ShadEl7/her-essence-website/internal/cart"
	"github.com/ShadEl7/her-essence-website/internal/catalog"
	esengine "github.com/ShadEl7/her-essence-website/internal/catalog/engine/elasticsearch"
	memengine "github.com/ShadEl7/her-essence-website/internal/catalog/engine/memory"
	"github.com/ShadEl7/her-essence-website/internal/checkout"
	mockprovider "github.com/ShadEl7/her-essence-website/internal/checkout/provider/mock"
	"github.com/ShadEl7/her-essence-website/internal/checkout/provider/remote"
	"github.com/ShadEl7/her-essence-website/internal/config"
	"github.com/ShadEl7/her-essence-website/internal/event"
	handler "github.com/ShadEl7/her-essence-website/internal/handler/http"
	"github.com/ShadEl7/her-essence-website/internal/notify"
	"github.com/ShadEl7/her-essence-website/internal/storage"
	memstore "github.com/ShadEl7/her-essence-website/internal/storage/memory"
	pgstore "github.com/ShadEl7/her-essence-website/internal/storage/postgres"
	redisstore "github.com/ShadEl7/her-essence-website/internal/storage/redis"
	"github.com/ShadEl7/her-essence-website/internal/tracking"
	trackingclient "github.com/ShadEl7/her-essence-website/internal/tracking/client"
	ordersrepo "github.com/ShadEl7/her-essence-website/internal/tracking/repository/memory"
	"github.com/ShadEl7/her-essence-website/pkg/database"
	"github.com/ShadEl7/her-essence-website/pkg/health"
	pkgkafka "github.com/ShadEl7/her-essence-website/pkg/kafka"
	"github.com/ShadEl7/her-essence-website/pkg/middleware"
	"github.com/ShadEl7/her-essence-website/pkg/tracing"
)

// ServiceName is used for logs, metrics and traces.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront server.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	rdb      *redis.Client
	pool     *pgxpool.Pool
	producer *pkgkafka.Producer
	notifier *notify.Notifier

	shutdownTracer func(context.Context) error
	handler        http.Handler
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// Anything opened before a failure is closed again.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.shutdownTracer, err = tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Only the Postgres cart store issues traced queries.
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	healthHandler := health.NewHandler()

	store, err := a.openStorage(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	// Observers run in subscription order: badge and toasts first, then Kafka.
	a.notifier = notify.New(notify.DefaultConfig())
	observers := []cart.Observer{a.notifier}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		observers = append(observers, event.NewProducer(a.producer, logger))
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	carts := cart.NewRegistry(store, cfg.CartStorageKey,
		cart.WithLogger(logger),
		cart.WithObservers(observers...),
	)

	catalogService, err := a.openCatalog(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	checkoutService, err := a.openCheckout()
	if err != nil {
		return nil, err
	}

	tracker := a.openTracking()

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	a.handler = handler.NewRouter(handler.RouterConfig{
		ServiceName: ServiceName,
		Currency:    cfg.Currency,
		CORS:        cors,
		PprofCIDRs:  cfg.PprofAllowedCIDRs,
		Carts:       carts,
		Catalog:     catalogService,
		Checkout:    checkoutService,
		Tracking:    tracker,
		Notifier:    a.notifier,
		Health:      healthHandler,
		Logger:      logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// openStorage connects the configured cart storage backend and registers it
// as a critical readiness dependency.
func (a *App) openStorage(ctx context.Context, hh *health.Handler) (storage.Store, error) {
	switch a.cfg.StorageBackend {
	case config.StorageRedis:
		rdb, err := database.NewRedisClient(ctx, a.cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.logger.Info("connected to Redis",
			slog.String("addr", a.cfg.RedisAddr),
			slog.Int("db", a.cfg.RedisDB),
		)
		store := redisstore.New(rdb, a.cfg.CartTTL())
		hh.RegisterCritical("redis", store.Ping)
		return store, nil

	case config.StoragePostgres:
		pgCfg := a.cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		if err := database.RunMigrations(ctx, pool, pgstore.Migrations(), a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, ServiceName); err != nil {
			a.logger.Warn("register pool metrics", slog.String("error", err.Error()))
		}
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", pgCfg.Host),
			slog.String("database", pgCfg.DBName),
		)
		hh.RegisterCritical("postgres", pool.Ping)
		return pgstore.New(pool), nil

	default:
		a.logger.Info("using in-memory cart storage")
		return memstore.New(), nil
	}
}

// openCatalog builds the search engine and seeds it with the storefront
// collection.
func (a *App) openCatalog(ctx context.Context, hh *health.Handler) (*catalog.Service, error) {
	var engine catalog.Engine
	switch a.cfg.SearchBackend {
	case config.SearchElasticsearch:
		es, err := esengine.New(ctx, esengine.Config{
			Addresses: []string{a.cfg.ElasticsearchURL},
			Index:     a.cfg.ElasticsearchIndex,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to elasticsearch: %w", err)
		}
		hh.RegisterNonCritical("elasticsearch", es.Ping)
		engine = es
	default:
		engine = memengine.New()
	}

	svc := catalog.NewService(engine, a.logger)
	if err := svc.Seed(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func (a *App) openCheckout() (*checkout.Service, error) {
	switch a.cfg.CheckoutProvider {
	case config.CheckoutRemote:
		p := remote.New(remote.Config{
			BaseURL: a.cfg.CheckoutRemoteURL,
			Timeout: a.cfg.CheckoutTimeout,
		}, a.logger)
		return checkout.NewService(p, a.logger), nil
	case config.CheckoutMock:
		return checkout.NewService(mockprovider.New(), a.logger), nil
	default:
		return nil, fmt.Errorf("unknown checkout provider %q", a.cfg.CheckoutProvider)
	}
}

// openTracking returns the local seeded order lookup or a client for a
// remote tracking API.
func (a *App) openTracking() tracking.Tracker {
	if a.cfg.TrackingBackend == config.TrackingRemote {
		a.logger.Info("using remote order tracking", slog.String("url", a.cfg.TrackingRemoteURL))
		return trackingclient.New(a.cfg.TrackingRemoteURL, nil)
	}
	return tracking.NewService(ordersrepo.NewSeeded(), a.logger)
}

// Handler returns the HTTP handler served by Run.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.close()

	a.logger.Info("application shutdown complete")
	return nil
}

// close releases everything except the HTTP server. Safe on a partially
// built App and safe to call twice.
func (a *App) close() {
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
		a.producer = nil
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.rdb = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracer(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
		a.shutdownTracer = nil
	}
}
