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

	"mini-pos/internal/alert"
	"mini-pos/internal/auth"
	"mini-pos/internal/config"
	"mini-pos/internal/database"
	"mini-pos/internal/handler"
	"mini-pos/internal/middleware"
	"mini-pos/internal/notify"
	"mini-pos/internal/repository"
	"mini-pos/internal/router"
	"mini-pos/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting mini-pos API server")

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection pool and schema
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Redis backs sessions, rate limits and, by default, stock events
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	broker, err := openBroker(cfg.Notify, redisClient, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications: %w", err)
	}
	defer broker.Close()

	dispatcher := notify.NewDispatcher(broker, cfg.Notify.QueueSize, logger)

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	saleRepo := repository.NewSaleRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Initialize services
	sessions := auth.NewRedisSessionStore(redisClient, cfg.Auth.SessionTTL, logger)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, dispatcher, logger)
	checkoutService := service.NewCheckoutService(saleRepo, productRepo, dispatcher, logger)
	reportService := service.NewReportService(saleRepo, productRepo, logger)
	userService := service.NewUserService(userRepo, sessions, logger)

	// Initialize HTTP handlers
	eventsHandler := handler.NewEventsHandler(broker, logger)
	handlers := router.Handlers{
		Health: handler.NewHealthHandler(logger,
			handler.Check{Name: "postgres", Ping: pool.Ping},
			handler.Check{Name: "redis", Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
		),
		Auth:     handler.NewAuthHandler(userService, cfg.Auth.SessionTTL, cfg.Auth.CookieSecure, logger),
		Category: handler.NewCategoryHandler(catalogService, logger),
		Product:  handler.NewProductHandler(catalogService, logger),
		Sales:    handler.NewSalesHandler(checkoutService, logger),
		Report:   handler.NewReportHandler(reportService, logger),
		Events:   eventsHandler,
	}

	// Initialize router
	limiter := middleware.NewRateLimiter(redisClient, logger)
	mux := router.New(handlers, sessions, limiter, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	server.RegisterOnShutdown(eventsHandler.Close)

	// The dispatcher outlives the server so events from in-flight requests
	// still go out during shutdown.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})

	if cfg.Alert.Enabled {
		alerter, err := alert.NewSESAlerter(ctx, broker, cfg.Alert.Region, cfg.Alert.Sender, cfg.Alert.Recipients, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize stock alerter: %w", err)
		}
		g.Go(func() error {
			return alerter.Run(gctx)
		})
	}

	g.Go(func() error {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopDispatch()

		logger.Info().Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
		return nil
	})

	return g.Wait()
}

// openBroker connects the configured notification transport.
func openBroker(cfg config.NotifyConfig, client *redis.Client, logger zerolog.Logger) (notify.Broker, error) {
	switch cfg.Backend {
	case "amqp":
		return notify.DialAMQP(cfg.AMQPURL, logger)
	default:
		return notify.NewRedisBroker(client, cfg.ChannelPrefix, logger), nil
	}
}
