package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aurelle/storefront-backend/api/routes"
	"github.com/aurelle/storefront-backend/internal/bestsellers"
	cartsvc "github.com/aurelle/storefront-backend/internal/cart"
	checkoutsvc "github.com/aurelle/storefront-backend/internal/checkout"
	"github.com/aurelle/storefront-backend/internal/notifications"
	ordersvc "github.com/aurelle/storefront-backend/internal/orders"
	"github.com/aurelle/storefront-backend/internal/products"
	"github.com/aurelle/storefront-backend/internal/users"
	"github.com/aurelle/storefront-backend/pkg/config"
	"github.com/aurelle/storefront-backend/pkg/db"
	"github.com/aurelle/storefront-backend/pkg/logger"
	"github.com/aurelle/storefront-backend/pkg/metrics"
	"github.com/aurelle/storefront-backend/pkg/migrate"
	"github.com/aurelle/storefront-backend/pkg/razorpay"
	pkgredis "github.com/aurelle/storefront-backend/pkg/redis"
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

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gateway, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)
	aggregationMetrics := metrics.NewAggregationMetrics(registry)

	productsRepo := products.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	ordersRepo := ordersvc.NewRepository(dbClient.DB())

	cartService, err := cartsvc.NewService(cartRepo, productsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := ordersvc.NewService(ordersRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	mailer := notifications.NewMailer(cfg.Mailer, logg)
	notifier := notifications.NewSender(mailer, logg)

	checkoutService, err := checkoutsvc.NewService(
		gateway,
		ordersRepo,
		dbClient,
		usersRepo,
		cartService,
		notifier,
		checkoutMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	bestsellersService, err := bestsellers.NewService(ordersRepo, productsRepo, aggregationMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create bestsellers service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Checkout:    checkoutService,
			Orders:      ordersService,
			Cart:        cartService,
			BestSellers: bestsellersService,
			Registry:    registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
