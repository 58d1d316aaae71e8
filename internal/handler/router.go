package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/freshplate/freshplate/internal/metrics"
	"github.com/freshplate/freshplate/internal/middleware"
	"github.com/freshplate/freshplate/internal/service"
)

// Rate limit scopes for the unauthenticated credential endpoints.
const (
	scopeSignIn   = "signin"
	scopeSignUp   = "signup"
	scopeRecovery = "recovery"
)

// RateLimitOptions configures the per-IP limit on credential endpoints.
type RateLimitOptions struct {
	Enabled bool
	RPM     int
	Burst   int
}

// RouterConfig holds everything the HTTP surface depends on.
type RouterConfig struct {
	Logger *slog.Logger

	Users    *service.UserService
	Auth     *service.AuthService
	Recovery *service.RecoveryService
	Recipes  *service.RecipeService
	Tokens   middleware.SessionVerifier

	// Limiter backs the credential endpoint rate limit. Nil disables it.
	Limiter   middleware.IPRateLimiter
	RateLimit RateLimitOptions

	// StoreHealth and CacheHealth are pinged by /readyz. Nil means not configured.
	StoreHealth HealthChecker
	CacheHealth HealthChecker

	Metrics metrics.Recorder
	// MetricsHandler serves /metrics. Nil leaves the route unregistered.
	MetricsHandler http.Handler

	// TrustProxy installs chi's RealIP so forwarding headers set the client
	// address used for rate limiting and logs.
	TrustProxy bool

	CORSOrigins   []string
	MaxBodySize   int64
	IsDevelopment bool
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	healthHandler := NewHealthHandler(cfg.StoreHealth, cfg.CacheHealth)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Recovery, logger)
	userHandler := NewUserHandler(cfg.Users, cfg.Recipes, logger)
	recipeHandler := NewRecipeHandler(cfg.Recipes, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSOrigins

	r := chi.NewRouter()

	// Global middleware
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	limit := func(scope string) func(http.Handler) http.Handler {
		return middleware.RateLimitIP(middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cfg.Limiter,
			Enabled: cfg.RateLimit.Enabled,
			Scope:   scope,
			RPM:     cfg.RateLimit.RPM,
			Burst:   cfg.RateLimit.Burst,
		})
	}
	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: cfg.Tokens,
	}
	if cfg.Users != nil {
		authCfg.Accounts = cfg.Users
	}
	authenticate := middleware.Authenticate(authCfg)

	r.Route("/auth", func(r chi.Router) {
		r.With(limit(scopeSignIn)).Post("/signin", authHandler.SignIn)
		r.Get("/signout", authHandler.SignOut)

		r.Group(func(r chi.Router) {
			r.Use(limit(scopeRecovery))
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/verify-security-answer", authHandler.VerifySecurityAnswer)
			r.Post("/reset-password", authHandler.ResetPassword)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.With(limit(scopeSignUp)).Post("/", userHandler.Create)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.With(middleware.RequireAdmin()).Get("/", userHandler.List)
				r.Get("/{userID}", userHandler.Get)
				r.Put("/{userID}", userHandler.Update)
				r.Delete("/{userID}", userHandler.Delete)
				r.With(middleware.RequireAdmin()).Put("/{userID}/admin", userHandler.SetAdmin)
				r.Put("/{userID}/security", userHandler.UpdateSecurity)
				r.Put("/{userID}/password", userHandler.UpdatePassword)
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", recipeHandler.Create)
				r.Get("/{recipeID}", recipeHandler.Get)
				r.Put("/{recipeID}", recipeHandler.Update)
				r.Delete("/{recipeID}", recipeHandler.Delete)

				r.Post("/{recipeID}/comments", recipeHandler.AddComment)
				r.Put("/{recipeID}/comments/{commentID}", recipeHandler.UpdateComment)
				r.Delete("/{recipeID}/comments/{commentID}", recipeHandler.DeleteComment)

				r.With(middleware.RequireAdmin()).Put("/transfer/{userID}", recipeHandler.Transfer)
				r.With(middleware.RequireAdmin()).Delete("/user/{userID}", recipeHandler.DeleteByUser)
			})
		})

		r.With(authenticate).Get("/comments/byuser/{userID}", recipeHandler.CommentsByUser)
	})

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}
