package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/i474232898/pest-advisory/internal/advisor"
	httpapi "github.com/i474232898/pest-advisory/internal/api/http"
	"github.com/i474232898/pest-advisory/internal/catalog"
	"github.com/i474232898/pest-advisory/internal/config"
	"github.com/i474232898/pest-advisory/internal/ml"
	"github.com/i474232898/pest-advisory/internal/notify"
	"github.com/i474232898/pest-advisory/internal/risk"
	"github.com/i474232898/pest-advisory/internal/scheduler"
	"github.com/i474232898/pest-advisory/internal/store"
	"github.com/i474232898/pest-advisory/internal/translate"
	"github.com/i474232898/pest-advisory/internal/weather"
	"github.com/i474232898/pest-advisory/internal/weather/providers"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run wires the service and blocks until SIGINT or SIGTERM. Startup errors
// are returned so that deferred cleanup still runs.
func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer zlog.Sync()

	// Static advisory tables and the optional ML model.
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog %q: %w", cfg.CatalogPath, err)
	}

	engineOpts := []risk.Option{risk.WithLogger(zlog.Named("engine"))}
	if cfg.MLModelPath != "" {
		model, err := ml.LoadLogistic(cfg.MLModelPath)
		if err != nil {
			return fmt.Errorf("failed to load ML model %q: %w", cfg.MLModelPath, err)
		}
		engineOpts = append(engineOpts, risk.WithPredictor(model))
	}
	engine := risk.NewEngine(cat, engineOpts...)

	// Persistent farmer, report and alert storage.
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	repo, err := store.OpenSQLite(cfg.DatabasePath, zlog.Named("store"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker), tried in order.
	provs := []weather.Provider{providers.NewOpenMeteoProvider(httpClient, cfg.WeatherAPIURL)}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}

	weatherOpts := []weather.Option{
		weather.WithCoordinates(cat),
		weather.WithFreshness(cfg.CacheMaxAge),
		weather.WithLogger(zlog.Named("weather")),
	}
	if cfg.GeocoderAPIKey != "" {
		weatherOpts = append(weatherOpts, weather.WithGeocoder(weather.NewGoogleGeocoder(cfg.GeocoderAPIKey)))
	}
	memStore := store.NewMemoryStore(cfg.CacheMaxHistory, cfg.HistoryMaxAge)
	weatherSvc := weather.NewService(memStore, provs, weatherOpts...)

	// Alert fan-out.
	var notifiers notify.Multi
	if len(cfg.KafkaBrokers) > 0 {
		pub := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAlertTopic)
		defer pub.Close()
		notifiers = append(notifiers, pub)
	}
	if cfg.TelegramBotToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, zlog.Named("telegram"))
		if err != nil {
			zlog.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	scanSvc := advisor.NewService(engine, repo, weatherSvc, notifiers, advisor.Config{
		Lookback: cfg.ReportLookback,
		Workers:  cfg.ScanWorkers,
	}, zlog.Named("advisor"))

	// Kannada labels from the catalog, Gemini for everything else.
	var fallback translate.Translator
	if cfg.GeminiAPIKey != "" {
		gem, err := translate.NewGemini(context.Background(), translate.GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			ModelName: cfg.GeminiModel,
		}, zlog.Named("gemini"))
		if err != nil {
			zlog.Warn("gemini translation disabled", zap.Error(err))
		} else {
			defer gem.Close()
			fallback = gem
		}
	}
	translator := translate.NewChain(translate.NewStatic(cat), fallback)

	// Scheduler that periodically warms district weather and rescans farmers.
	sched := scheduler.New(cat.Districts(), cfg.ScanInterval, weatherSvc, scanSvc, zlog.Named("scheduler"))
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "pest-advisory",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Repo:       repo,
		Scanner:    scanSvc,
		Weather:    weatherSvc,
		Translator: translator,
	})

	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	return nil
}
