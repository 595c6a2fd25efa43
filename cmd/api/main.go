package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chifaexpress/storefront-backend/api/routes"
	"github.com/chifaexpress/storefront-backend/internal/auth"
	cartsvc "github.com/chifaexpress/storefront-backend/internal/cart"
	"github.com/chifaexpress/storefront-backend/internal/catalog"
	"github.com/chifaexpress/storefront-backend/internal/checkout"
	"github.com/chifaexpress/storefront-backend/internal/orders"
	"github.com/chifaexpress/storefront-backend/internal/pricing"
	"github.com/chifaexpress/storefront-backend/internal/session"
	"github.com/chifaexpress/storefront-backend/internal/users"
	authsession "github.com/chifaexpress/storefront-backend/pkg/auth/session"
	"github.com/chifaexpress/storefront-backend/pkg/config"
	"github.com/chifaexpress/storefront-backend/pkg/db"
	"github.com/chifaexpress/storefront-backend/pkg/logger"
	"github.com/chifaexpress/storefront-backend/pkg/metrics"
	"github.com/chifaexpress/storefront-backend/pkg/migrate"
	"github.com/chifaexpress/storefront-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := authsession.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())

	intents, err := session.NewIntentStore(redisClient, redisClient, cfg.Checkout.IntentTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create intent store", err)
		os.Exit(1)
	}
	gate, err := session.NewGate(cfg.JWT, usersRepo, sessionManager, intents)
	if err != nil {
		logg.Error(context.Background(), "failed to create session gate", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	pricingEngine, err := pricing.NewEngine(cfg.Pricing)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing engine", err)
		os.Exit(1)
	}
	cartStore, err := cartsvc.NewStore(redisClient, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartStore, catalogService, pricingEngine)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	metricsRegistry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(metricsRegistry)

	submitter, err := checkout.NewSubmitter(checkout.SubmitterParams{
		Carts:   cartService,
		Orders:  ordersRepo,
		Locker:  redisClient,
		Keyer:   redisClient,
		Metrics: checkoutMetrics,
		Logger:  logg,
		LockTTL: cfg.Checkout.SubmitLockTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout submitter", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			metricsRegistry,
			gate,
			authService,
			catalogService,
			cartService,
			ordersService,
			usersRepo,
			submitter,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
