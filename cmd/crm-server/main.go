package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/minicrm/backoffice/internal/config"
	customerapp "github.com/minicrm/backoffice/internal/customer/application"
	customerhttp "github.com/minicrm/backoffice/internal/customer/infrastructure/http"
	customerpg "github.com/minicrm/backoffice/internal/customer/infrastructure/postgres"
	inventoryapp "github.com/minicrm/backoffice/internal/inventory/application"
	inventorypg "github.com/minicrm/backoffice/internal/inventory/infrastructure/postgres"
	orderapp "github.com/minicrm/backoffice/internal/order/application"
	orderhttp "github.com/minicrm/backoffice/internal/order/infrastructure/http"
	orderpg "github.com/minicrm/backoffice/internal/order/infrastructure/postgres"
	productapp "github.com/minicrm/backoffice/internal/product/application"
	producthttp "github.com/minicrm/backoffice/internal/product/infrastructure/http"
	productpg "github.com/minicrm/backoffice/internal/product/infrastructure/postgres"
	"github.com/minicrm/backoffice/pkg/httpapi"
	"github.com/minicrm/backoffice/pkg/logging"
	"github.com/minicrm/backoffice/pkg/migrate"
	"github.com/minicrm/backoffice/pkg/ratelimit"
	"github.com/minicrm/backoffice/pkg/shutdown"
	"github.com/minicrm/backoffice/pkg/tracing"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "crm-server", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres setup
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrate.Run(ctx, log, pool); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// Redis backs the per-IP request gate only.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	limiter := ratelimit.NewLimiter(rdb, cfg.RateLimitWindow, cfg.RateLimitMax)

	// Repositories & services
	customerRepo := customerpg.NewRepository(log, pool)
	productRepo := productpg.NewRepository(log, pool)
	stockRepo := inventorypg.NewRepository(log, pool)
	orderRepo := orderpg.NewRepository(log, pool)

	customers := customerapp.NewService(log, customerRepo)
	products := productapp.NewService(log, productRepo)
	inventory := inventoryapp.NewService(log, stockRepo)
	orders := orderapp.NewService(log, orderRepo, customerRepo, inventory)

	// HTTP server
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(httpapi.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(ratelimit.Middleware(log, limiter))
		r.Mount("/customers", customerhttp.NewHandler(log, customers).Routes())
		r.Mount("/products", producthttp.NewHandler(log, products, inventory).Routes())
		r.Mount("/orders", orderhttp.NewHandler(log, orders).Routes())
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("crm-server shutdown complete")
}
