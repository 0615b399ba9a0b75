package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/config"
	"github.com/Rista10/event-planner-application/internal/transport/http/handlers"
	"github.com/Rista10/event-planner-application/internal/transport/http/middleware"
)

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Auth     handlers.AuthUseCase
	Sessions port.SessionTokenIssuer
	// RateLimitStore may be nil, in which case auth endpoints are not throttled.
	RateLimitStore port.RateLimitStore
	Readiness      map[string]handlers.ReadinessCheck
	Registerer     prometheus.Registerer
	Gatherer       prometheus.Gatherer
	TracerProvider trace.TracerProvider
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	production := cfg.App.IsProduction()
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: deps.Registerer})
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.Recovery(log, !production))
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing(deps.TracerProvider))
	r.Use(middleware.Logger(log))
	r.Use(middleware.SecurityHeaders(production))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(httpMetrics.Handler())
	r.NoRoute(middleware.NoRoute())

	health := handlers.NewHealthHandler(deps.Readiness)
	r.GET("/api/health", health.Status)
	r.GET("/healthz", health.Live)
	r.GET("/readyz", health.Ready)
	r.GET("/metrics", metricsHandler(deps.Gatherer))

	limiter := middleware.NewRateLimiter(deps.RateLimitStore, log)
	authRule := middleware.RateLimitRule{
		Name:       "auth",
		Limit:      cfg.RateLimit.AuthMaxRequests,
		Window:     cfg.RateLimit.AuthWindow,
		Identifier: middleware.ClientIPIdentifier(),
	}

	refreshTTL, err := cfg.JWT.RefreshTokenTTL()
	if err != nil {
		return nil, err
	}
	authHandler := handlers.NewAuthHandler(
		deps.Auth,
		handlers.NewErrorResponder(log, !production),
		handlers.CookieConfig{Secure: production, MaxAge: refreshTTL},
	)
	authHandler.RegisterRoutes(r.Group("/api/auth"), handlers.AuthRouteOptions{
		RateLimit:   limiter.RateLimit(authRule),
		RequireAuth: middleware.RequireAuth(deps.Sessions),
		TwoFactor:   cfg.Features.TwoFactor,
	})

	return r, nil
}

func metricsHandler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	if gatherer == nil {
		return gin.WrapH(promhttp.Handler())
	}
	return gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
