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

	"aromos/internal/api"
	"aromos/internal/config"
	"aromos/internal/database"
	"aromos/internal/domain"
	"aromos/internal/events"
	"aromos/internal/export"
	"aromos/internal/google"
	"aromos/internal/logging"
	"aromos/internal/metrics"
	"aromos/internal/models"
	"aromos/internal/repository"
	"aromos/internal/service"
	"aromos/internal/snapshot"
	"aromos/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
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
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	redisClient, sessions := initSessions(ctx, cfg, &logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	// Воркер синхронизации леджера запускается только при живом Google
	var sheetsWorker *worker.SheetsWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker = worker.NewSheetsWorker(db, sheetsService, redisClient, retryPolicy, &logger)
		go sheetsWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()
	subscribeAuditLog(eventBus, &logger)

	// Снапшоты: хаб раздает коллекции подписчикам, представление держит
	// последнюю пересчитанную статистику
	hub := snapshot.NewHub(&logger)
	defer hub.Close()
	loader := snapshot.NewLoader(db, hub, &logger)

	view := snapshot.NewView(&logger)
	view.Attach(ctx, hub)
	loader.RefreshAll(ctx)

	var syncWorker domain.SyncWorker
	if sheetsWorker != nil {
		syncWorker = sheetsWorker
	}

	deps := api.Deps{
		View:         view,
		Reservations: service.NewReservationService(db, eventBus, syncWorker, loader, &logger),
		Units:        service.NewUnitService(db, eventBus, loader, &logger),
		Expenses:     service.NewExpenseService(db, eventBus, loader, &logger),
		Maintenance:  service.NewMaintenanceService(db, eventBus, loader, &logger),
		Exporter:     export.NewExporter(cfg.Exports.Path, &logger),
		Sessions:     sessions,
		BusinessName: cfg.Business.Name,
	}

	if !cfg.API.Enabled {
		logger.Warn().Msg("API выключен в конфиге, поднимать нечего")
		<-ctx.Done()
		return nil
	}

	apiServer := api.NewHTTPServer(cfg.API, deps, &logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
		}
	}()

	logger.Info().Int("port", cfg.API.Port).Msg("Сервер запущен...")
	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiServer.Shutdown(shutdownCtx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для экспорта")
		return err
	}
	return nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return nil, err
	}

	units := cfg.Units
	if len(units) == 0 {
		units = models.DefaultUnits()
	}
	if err := db.SeedDefaultUnits(ctx, units); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бунгало по умолчанию")
	}
	return db, nil
}

// initSessions собирает хранилище сессий: Redis как основное с фолбэком
// в память, либо только память, если Redis не сконфигурирован.
func initSessions(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.SessionRepository) {
	ttl := time.Duration(models.SessionTTL) * time.Second
	memory := repository.NewMemorySessionRepository(ttl)

	if cfg.Redis.Address == "" {
		return nil, memory
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}

	primary := repository.NewRedisSessionRepository(redisClient, ttl)
	return redisClient, repository.NewFailoverSessionRepository(primary, memory, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if !cfg.Google.Enabled {
		logger.Info().Msg("Синхронизация с Google Sheets выключена")
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(
		cfg.Google.CredentialsFile,
		cfg.Google.LedgerSpreadsheetID,
		cfg.Google.LedgerSheetName,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return sheetsSvc
}

// subscribeAuditLog пишет каждое доменное событие в журнал.
func subscribeAuditLog(bus *events.EventBus, logger *zerolog.Logger) {
	handler := func(ev *events.Event) error {
		logger.Info().
			Str("event", ev.Type).
			RawJSON("payload", ev.Payload).
			Msg("domain event")
		return nil
	}

	for _, eventType := range []string{
		events.EventReservationCreated,
		events.EventReservationCanceled,
		events.EventReservationRescheduled,
		events.EventUnitStatusChanged,
		events.EventExpenseAdded,
		events.EventTaskToggled,
	} {
		bus.Subscribe(eventType, handler)
	}
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
