package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/marcoguerrero/cartkeeper/api/routes"
	cartsvc "github.com/marcoguerrero/cartkeeper/internal/cart"
	"github.com/marcoguerrero/cartkeeper/internal/catalog"
	"github.com/marcoguerrero/cartkeeper/pkg/config"
	"github.com/marcoguerrero/cartkeeper/pkg/db"
	"github.com/marcoguerrero/cartkeeper/pkg/instance"
	"github.com/marcoguerrero/cartkeeper/pkg/logger"
	"github.com/marcoguerrero/cartkeeper/pkg/metrics"
	"github.com/marcoguerrero/cartkeeper/pkg/migrate"
	"github.com/marcoguerrero/cartkeeper/pkg/redis"
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

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	var dbClient *db.Client
	var catalogueDB routes.Pinger
	var catalogue catalog.Provider

	switch cfg.Catalog.Source {
	case config.CatalogSourceDB:
		dbClient, err = db.New(ctx, cfg.DB)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap catalogue database", err)
			os.Exit(1)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
		catalogue = catalog.NewRepository(dbClient.DB())
		catalogueDB = dbClient
	default:
		catalogue, err = catalog.NewHTTPClient(cfg.Catalog.BaseURL, catalog.WithTimeout(cfg.Catalog.Timeout))
		if err != nil {
			logg.Error(ctx, "failed to build catalogue client", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(registry)

	cartRepo := cartsvc.NewRepository(redisClient)
	cartService, err := cartsvc.NewService(cartRepo, catalogue, cfg.Cart, cartMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	bootCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"catalog":  cfg.Catalog.Source,
	})
	logg.Info(bootCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, catalogueDB, cartService, registry),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(bootCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(bootCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownGrace)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	if dbClient != nil {
		closeErr = multierr.Append(closeErr, dbClient.Close())
	}
	if closeErr != nil {
		logg.Error(bootCtx, "error during shutdown", closeErr)
		os.Exit(1)
	}
	logg.Info(bootCtx, "api server stopped")
}
