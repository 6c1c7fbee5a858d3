package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/beespeak/honeypot/internal/agent"
	"github.com/beespeak/honeypot/internal/api/router"
	"github.com/beespeak/honeypot/internal/callback"
	"github.com/beespeak/honeypot/internal/classify"
	appconfig "github.com/beespeak/honeypot/internal/config"
	"github.com/beespeak/honeypot/internal/history"
	"github.com/beespeak/honeypot/internal/language"
	"github.com/beespeak/honeypot/internal/observability/metrics"
	"github.com/beespeak/honeypot/internal/pipeline"
	"github.com/beespeak/honeypot/internal/session"
	"github.com/beespeak/honeypot/pkg/logging"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting honeypot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
		"history_backend", cfg.HistoryBackend,
	)

	var redisClient *redis.Client
	if cfg.SessionBackend == "redis" || cfg.HistoryBackend == "redis" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cancel()
	}

	var sessions session.Store
	switch cfg.SessionBackend {
	case "redis":
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
	default:
		sessions = session.NewMemoryStore()
	}

	var histories history.Store
	switch cfg.HistoryBackend {
	case "redis":
		histories = history.NewRedisStore(redisClient, cfg.SessionTTL)
	case "file":
		store, err := history.NewFileStore(cfg.HistoryFilePath)
		if err != nil {
			logger.Error("failed to open history file store", "path", cfg.HistoryFilePath, "error", err)
			os.Exit(1)
		}
		histories = store
	default:
		histories = history.NewMemoryStore()
	}

	pipelineMetrics := metrics.NewPipelineMetrics(nil)
	callbackMetrics := metrics.NewCallbackMetrics(nil)

	dispatcher := callback.NewDispatcher(callback.Config{
		URL:               cfg.CallbackURL,
		PerAttemptTimeout: cfg.CallbackTimeout,
		Deadline:          cfg.CallbackDeadline,
		MaxAttempts:       cfg.CallbackMaxAttempts,
		BackoffBase:       cfg.CallbackBackoffBase,
		MinMessages:       cfg.CallbackMinMessages,
	}, sessions, callbackMetrics, logger)

	var classifier classify.Classifier
	if cfg.ClassifierURL != "" {
		classifier = classify.NewHTTPClassifier(cfg.ClassifierURL, cfg.ClassifierTimeout, logger)
	} else {
		logger.Warn("no classifier configured; unmatched messages are treated as benign")
	}

	if cfg.APIKey == "" {
		logger.Warn("HONEYPOT_API_KEY not set; process endpoint will reject all requests")
	}

	service := pipeline.NewService(sessions, histories, pipeline.Options{
		Classifier:           classifier,
		Normalizer:           language.NewNormalizer(nil, nil, logger),
		Replies:              agent.NewGenerator(cfg.OpenAIAPIKey, cfg.ChatModel, logger),
		Dispatcher:           dispatcher,
		Metrics:              pipelineMetrics,
		Logger:               logger,
		MLScamThreshold:      cfg.MLScamThreshold,
		ExtraSuspiciousTerms: cfg.SuspiciousTerms,
	})

	r := router.New(&router.Config{
		Logger:          logger,
		PipelineHandler: pipeline.NewHandler(service, logger),
		APIKey:          cfg.APIKey,
		MetricsHandler:  promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
