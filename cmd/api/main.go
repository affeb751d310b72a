package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mokarr/appointpro/internal/adapters/cache"
	"github.com/mokarr/appointpro/internal/adapters/database"
	"github.com/mokarr/appointpro/internal/adapters/events"
	"github.com/mokarr/appointpro/internal/api/handlers"
	"github.com/mokarr/appointpro/internal/api/routes"
	"github.com/mokarr/appointpro/internal/application/loaders"
	"github.com/mokarr/appointpro/internal/application/services"
	"github.com/mokarr/appointpro/internal/domain/repositories"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/postgres"
	"github.com/mokarr/appointpro/internal/infrastructure/clients/redis"
	"github.com/mokarr/appointpro/internal/infrastructure/observability"
	"github.com/mokarr/appointpro/pkg/config"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	pgClient.OnRetry = func(ctx context.Context, name string) {
		observability.RecordTxRetry(ctx, metrics, name)
	}

	if cfg.Database.AutoMigrate {
		if err := pgClient.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var facilityRepo repositories.FacilityRepository = database.NewFacilityAdapter(pgClient)
	if redisClient != nil {
		cacheProvider := cache.NewRedisAdapter(redisClient.Client(), "appointpro:")
		facilityRepo = database.NewCachedFacilityAdapter(facilityRepo, cacheProvider, cfg.Availability.FacilityCacheTTL, metrics)
		log.Info().Dur("ttl", cfg.Availability.FacilityCacheTTL).Msg("Facility reads cached in Redis")
	}
	bookingRepo := database.NewBookingAdapter(pgClient)
	classRepo := database.NewClassAdapter(pgClient)

	publisher, err := events.NewPublisher(cfg.Events, redisClient)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Events.Backend).Msg("Failed to initialize event publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event publisher")
		}
	}()

	availabilityService, err := services.NewAvailabilityService(facilityRepo, bookingRepo, classRepo, publisher, cfg.Availability, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize availability service")
	}
	bookingService := services.NewBookingService(facilityRepo, bookingRepo, publisher)
	classService := services.NewClassService(classRepo, bookingRepo, facilityRepo, publisher, cfg.Availability)

	router := routes.NewRouter(
		handlers.NewAvailabilityHandler(availabilityService),
		handlers.NewBookingHandler(bookingService),
		handlers.NewClassHandler(classService),
		loaders.Middleware(classRepo),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Availability.ClassCreateTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
