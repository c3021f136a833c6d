package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tarunagarwal1981/travelhub-backend/api/routes"
	"github.com/tarunagarwal1981/travelhub-backend/internal/idempotency"
	"github.com/tarunagarwal1981/travelhub-backend/internal/itineraries"
	"github.com/tarunagarwal1981/travelhub-backend/internal/payments"
	"github.com/tarunagarwal1981/travelhub-backend/internal/terms"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/config"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/db"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/migrate"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/redis"
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

	itineraryService, err := itineraries.NewService(itineraries.ServiceParams{
		Repo:   itineraries.NewRepository(dbClient.DB()),
		DB:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create itinerary service", err)
		os.Exit(1)
	}

	idempotencyService, err := idempotency.NewService(idempotency.ServiceParams{
		Repo:   idempotency.NewRepository(dbClient.DB()),
		Logger: logg,
		TTL:    cfg.Idempotency.TTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency service", err)
		os.Exit(1)
	}

	termsService, err := terms.NewService(terms.ServiceParams{
		Repo:     terms.NewRepository(dbClient.DB()),
		Logger:   logg,
		Versions: cfg.Terms,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create terms service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:        payments.NewRepository(dbClient.DB()),
		Itineraries: itineraries.NewRepository(dbClient.DB()),
		Idempotency: idempotencyService,
		Terms:       termsService,
		DB:          dbClient,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Itineraries: itineraryService,
			Payments:    paymentService,
			Terms:       termsService,
			Metrics:     prometheus.DefaultGatherer,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
