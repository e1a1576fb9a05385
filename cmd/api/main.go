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

	"github.com/angelmondragon/pizzeria/api/routes"
	"github.com/angelmondragon/pizzeria/internal/catalog"
	"github.com/angelmondragon/pizzeria/internal/checkout"
	"github.com/angelmondragon/pizzeria/internal/orders"
	"github.com/angelmondragon/pizzeria/internal/products"
	"github.com/angelmondragon/pizzeria/internal/storefront"
	"github.com/angelmondragon/pizzeria/pkg/config"
	"github.com/angelmondragon/pizzeria/pkg/db"
	"github.com/angelmondragon/pizzeria/pkg/logger"
	"github.com/angelmondragon/pizzeria/pkg/metrics"
	"github.com/angelmondragon/pizzeria/pkg/migrate"
	"github.com/angelmondragon/pizzeria/pkg/redis"
)

const (
	shutdownTimeout = 15 * time.Second
	sweepInterval   = time.Minute
)

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
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	productRepo := products.NewRepository(dbClient.DB())
	if cfg.FeatureFlags.SeedFile != "" {
		if err := products.SeedFile(ctx, productRepo, cfg.FeatureFlags.SeedFile, logg); err != nil {
			logg.Error(ctx, "failed to seed products", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis disabled, order idempotency and rate limiting are off")
	}

	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(dbClient.DB()),
		Tx:          dbClient,
		Products:    productRepo,
		DeliveryFee: cfg.Cart.DeliveryFee,
		Amount:      cfg.Amount.Settings(),
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	// a remote backend replaces both the catalog and the order endpoint;
	// /order is then served elsewhere
	var (
		source    catalog.Source     = products.NewSource(productRepo)
		submitter checkout.Submitter = orders.NewLocalSubmitter(orderSvc)
		localSvc                     = orderSvc
	)
	if cfg.Backend.Remote() {
		source = catalog.NewHTTPSource(cfg.Backend.Endpoint(cfg.Backend.ProductPath), cfg.Backend.Timeout)
		submitter = orders.NewHTTPSubmitter(cfg.Backend.Endpoint(cfg.Backend.OrderPath), cfg.Backend.Timeout)
		localSvc = nil
		logg.Info(logg.WithField(ctx, "backend_url", cfg.Backend.URL), "storefront using remote backend")
	}
	if redisClient != nil {
		key := redisClient.CatalogKey("remote")
		if !cfg.Backend.Remote() {
			key = redisClient.CatalogKey("local")
		}
		source = catalog.NewCachedSource(source, redisClient, key, cfg.Redis.CatalogTTL, logg)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sessions, err := storefront.NewRegistry(storefront.RegistryParams{
		Source:      source,
		Submitter:   submitter,
		Amount:      cfg.Amount.Settings(),
		Cart:        cfg.Cart.Settings(cfg.Amount),
		Logger:      logg,
		Metrics:     metrics.NewStorefront(reg),
		IdleTTL:     cfg.Storefront.SessionIdleTTL,
		MaxSessions: cfg.Storefront.MaxSessions,
	})
	if err != nil {
		logg.Error(ctx, "failed to create storefront registry", err)
		os.Exit(1)
	}
	go sessions.Start(ctx, sweepInterval)

	deps := routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Catalog:  source,
		Orders:   localSvc,
		Sessions: sessions,
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	sessions.Close()
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(serverCtx, "error during shutdown", closeErr)
		exitCode = 1
	}

	logg.Info(serverCtx, "api server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
