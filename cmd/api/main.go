// Package main is the entrypoint for the FreshPlate API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/freshplate/freshplate/internal/auth"
	"github.com/freshplate/freshplate/internal/cache"
	"github.com/freshplate/freshplate/internal/config"
	"github.com/freshplate/freshplate/internal/handler"
	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/repository"
	"github.com/freshplate/freshplate/internal/server"
	"github.com/freshplate/freshplate/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.MigrateOnStart {
		if err := repo.Migrate(ctx); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			repo.Close()
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.WithPoolSize(cfg.RedisPoolSize))
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Metrics
	var (
		recorder       metrics.Recorder = metrics.NewNoop()
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		prom := metrics.NewPrometheus(prometheus.NewRegistry())
		recorder = prom
		metricsHandler = prom.Handler()
	}

	// Initialize services
	hasher := auth.NewHasher(auth.Params{
		Memory:      cfg.HashMemoryKB,
		Iterations:  cfg.HashIterations,
		Parallelism: cfg.HashParallelism,
	})
	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:      []byte(cfg.JWTSecret),
		SessionTTL:  cfg.SessionTokenTTL,
		RecoveryTTL: cfg.RecoveryTokenTTL,
	})

	userService := service.NewUserService(repo, hasher, recorder)
	authService := service.NewAuthService(userService, tokens, recorder)
	recoveryService := service.NewRecoveryService(userService, tokens, cacheClient, recorder)
	recipeService := service.NewRecipeService(repo, recorder)

	r := handler.NewRouter(handler.RouterConfig{
		Logger:   logger,
		Users:    userService,
		Auth:     authService,
		Recovery: recoveryService,
		Recipes:  recipeService,
		Tokens:   tokens,
		Limiter:  cacheClient,
		RateLimit: handler.RateLimitOptions{
			Enabled: cfg.RateLimitAuthEnabled,
			RPM:     cfg.RateLimitAuthRPM,
			Burst:   cfg.RateLimitAuthBurst,
		},
		StoreHealth:    repo,
		CacheHealth:    cacheClient,
		Metrics:        recorder,
		MetricsHandler: metricsHandler,
		TrustProxy:     cfg.TrustProxyHeaders,
		CORSOrigins:    cfg.GetCORSAllowedOrigins(),
		MaxBodySize:    cfg.MaxRequestBodySize,
		IsDevelopment:  cfg.IsDevelopment(),
	})

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"metrics", cfg.MetricsEnabled,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
