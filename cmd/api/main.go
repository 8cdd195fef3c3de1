package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mokolo-market/mokolo-backend/api/routes"
	"github.com/mokolo-market/mokolo-backend/internal/accounts"
	"github.com/mokolo-market/mokolo-backend/internal/auth"
	"github.com/mokolo-market/mokolo-backend/internal/catalog"
	"github.com/mokolo-market/mokolo-backend/internal/checkout"
	"github.com/mokolo-market/mokolo-backend/internal/contact"
	"github.com/mokolo-market/mokolo-backend/internal/orders"
	"github.com/mokolo-market/mokolo-backend/internal/payments"
	"github.com/mokolo-market/mokolo-backend/internal/shipping"
	"github.com/mokolo-market/mokolo-backend/internal/vendors"
	"github.com/mokolo-market/mokolo-backend/pkg/auth/session"
	"github.com/mokolo-market/mokolo-backend/pkg/config"
	"github.com/mokolo-market/mokolo-backend/pkg/db"
	"github.com/mokolo-market/mokolo-backend/pkg/logger"
	"github.com/mokolo-market/mokolo-backend/pkg/mailer"
	"github.com/mokolo-market/mokolo-backend/pkg/metrics"
	"github.com/mokolo-market/mokolo-backend/pkg/migrate"
	"github.com/mokolo-market/mokolo-backend/pkg/momo"
	"github.com/mokolo-market/mokolo-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	momoClient, err := momo.NewClient(cfg.Momo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create momo client", err)
		os.Exit(1)
	}

	mail, err := mailer.New(cfg.Mail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	gdb := dbClient.DB()
	accountsRepo := accounts.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       accountsRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	accountsService, err := accounts.NewService(accountsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(dbClient, checkout.NewRepository(gdb), ordersRepo, cfg.Delivery.DefaultFeeXAF, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.NewRepository(gdb), ordersRepo, dbClient, momoClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(gdb), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	vendorsService, err := vendors.NewService(vendors.NewRepository(gdb), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendors service", err)
		os.Exit(1)
	}

	shippingService, err := shipping.NewService(shipping.NewRepository(gdb), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	contactService, err := contact.NewService(contact.NewRepository(gdb), mail)
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	svcs := routes.Services{
		Auth:     authService,
		Accounts: accountsService,
		Checkout: checkoutService,
		Orders:   ordersService,
		Payments: paymentsService,
		Catalog:  catalogService,
		Vendors:  vendorsService,
		Shipping: shippingService,
		Contact:  contactService,
	}
	deps := routes.Deps{
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessionManager,
		HTTPMetrics: httpMetrics,
		Registry:    registry,
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, svcs, deps),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
