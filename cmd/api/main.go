package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"reserva/internal/api"
	"reserva/internal/config"
	"reserva/internal/database"
	"reserva/internal/domain"
	"reserva/internal/events"
	"reserva/internal/export"
	"reserva/internal/logging"
	"reserva/internal/metrics"
	"reserva/internal/models"
	"reserva/internal/repository"
	"reserva/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	seed, err := loadInventorySeed(&logger)
	if err != nil {
		return err
	}

	db, err := initDatabase(cfg, seed, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	idempotencyRepo := initIdempotencyRepo(cfg, redisClient, &logger)

	eventBus := events.NewEventBus()
	subscribeReservationEvents(eventBus, &logger)

	reservationService := service.NewReservationService(db, idempotencyRepo, eventBus, cfg.Booking, &logger)
	availabilityService := service.NewAvailabilityService(db, &logger)
	inventoryService := service.NewInventoryService(db, eventBus, &logger)
	verificationService := service.NewVerificationService(db, reservationService, eventBus, cfg.Verification.RefreshSeconds, &logger)
	go verificationService.Start(ctx)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	exportService := export.NewService(cfg.Exports.Path, &logger)
	httpServer := api.NewHTTPServer(
		cfg.API, reservationService, availabilityService,
		verificationService, inventoryService, db, exportService, &logger,
	)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("create database directory")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("create exports directory")
		return err
	}
	return nil
}

func loadInventorySeed(logger *zerolog.Logger) (*models.InventorySeed, error) {
	seedPath := os.Getenv("INVENTORY_PATH")
	if seedPath == "" {
		seedPath = "configs/inventory.yaml"
	}

	data, err := os.ReadFile(seedPath)
	if os.IsNotExist(err) {
		logger.Warn().Str("seed_path", seedPath).Msg("inventory seed not found, skipping sync")
		return nil, nil
	}
	if err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("read inventory seed")
		return nil, err
	}

	var seed models.InventorySeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("seed_path", seedPath).Msg("parse inventory seed")
		return nil, err
	}

	return &seed, nil
}

func initDatabase(cfg *config.Config, seed *models.InventorySeed, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	if err := db.SyncInventory(context.Background(), seed); err != nil {
		logger.Error().Err(err).Msg("inventory sync failed")
	}
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initIdempotencyRepo(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.IdempotencyRepository {
	ttl := time.Duration(cfg.Booking.IdempotencyTTL) * time.Second
	if ttl <= 0 {
		ttl = time.Duration(models.DefaultIdempotencyTTL) * time.Second
	}

	fallback := repository.NewMemoryIdempotencyRepository(ttl)
	if redisClient == nil {
		return fallback
	}

	primary := repository.NewRedisIdempotencyRepository(redisClient, ttl)
	return repository.NewFailoverIdempotencyRepository(primary, fallback, logger)
}

func subscribeReservationEvents(bus *events.EventBus, logger *zerolog.Logger) {
	audit := func(ev *events.Event) error {
		logger.Info().
			Str("event", ev.Type).
			RawJSON("payload", ev.Payload).
			Msg("reservation event")
		return nil
	}

	bus.Subscribe(events.EventReservationCreated, audit)
	bus.Subscribe(events.EventReservationCompleted, audit)
	bus.Subscribe(events.EventReservationCancelled, audit)
	bus.Subscribe(events.EventUnitStatusChanged, audit)
	bus.Subscribe(events.EventUnitNoteAdded, audit)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if !cfg.API.HTTP.Enabled {
			logger.Warn().Msg("HTTP API is disabled in config")
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("reservation service started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("reservation service stopped")
	return nil
}
