package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/mkitchen/catering-backend/api/routes"
	"github.com/mkitchen/catering-backend/internal/cart"
	"github.com/mkitchen/catering-backend/internal/catalog"
	"github.com/mkitchen/catering-backend/internal/checkout"
	"github.com/mkitchen/catering-backend/internal/notify"
	"github.com/mkitchen/catering-backend/internal/orders"
	"github.com/mkitchen/catering-backend/pkg/config"
	"github.com/mkitchen/catering-backend/pkg/db"
	"github.com/mkitchen/catering-backend/pkg/env"
	"github.com/mkitchen/catering-backend/pkg/instance"
	"github.com/mkitchen/catering-backend/pkg/kvstore"
	"github.com/mkitchen/catering-backend/pkg/lock"
	"github.com/mkitchen/catering-backend/pkg/logger"
	"github.com/mkitchen/catering-backend/pkg/metrics"
	"github.com/mkitchen/catering-backend/pkg/migrate"
	"github.com/mkitchen/catering-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Instance:    instance.GetID(),
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	closeAll := func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		if errs != nil {
			logg.Error(context.Background(), "error closing resources", errs)
		}
	}
	defer closeAll()
	fail := func(msg string, err error) {
		logg.Error(context.Background(), msg, err)
		closeAll()
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		fail("failed to bootstrap database", err)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fail("failed to run dev migrations", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			fail("failed to bootstrap redis", err)
		}
		closers = append(closers, redisClient.Close)
	} else {
		logg.Warn(ctx, "redis not configured: idempotency and rate limiting disabled, placement lock is per-process")
	}

	storage, err := kvstore.FromConfig(cfg.Storage, redisClient, dbClient)
	if err != nil {
		fail("failed to select storage backend", err)
	}

	var locks lock.Factory = lock.NewMemoryFactory()
	if redisClient != nil {
		redisLocks, err := lock.NewRedisFactory(redisClient)
		if err != nil {
			fail("failed to create lock factory", err)
		}
		locks = redisLocks
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	notifiers, err := notify.FromConfig(cfg, checkoutMetrics, logg)
	if err != nil {
		fail("failed to configure notifiers", err)
	}

	menuService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		fail("failed to create menu service", err)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Storage: storage,
		Catalog: menuService,
		Logger:  logg,
	})
	if err != nil {
		fail("failed to create cart service", err)
	}

	ordersRepo := orders.NewRepository(storage, logg)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Flows:   checkout.NewRepository(storage, logg),
		Carts:   cartService,
		Orders:  ordersRepo,
		Locks:   locks,
		Email:   notifiers.Email,
		SMS:     notifiers.SMS,
		Metrics: checkoutMetrics,
		Logger:  logg,
		LockTTL: cfg.Checkout.PlacementLockTTL,
	})
	if err != nil {
		fail("failed to create checkout service", err)
	}

	port := env.Get("PORT", cfg.App.Port)
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.Normalized(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			menuService,
			cartService,
			checkoutService,
			ordersRepo,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail("api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}
}
