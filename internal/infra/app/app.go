package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/config"
	"github.com/Rista10/event-planner-application/internal/infra/database"
	kafkainfra "github.com/Rista10/event-planner-application/internal/infra/kafka"
	"github.com/Rista10/event-planner-application/internal/infra/logger"
	"github.com/Rista10/event-planner-application/internal/infra/mail"
	redisinfra "github.com/Rista10/event-planner-application/internal/infra/redis"
	"github.com/Rista10/event-planner-application/internal/infra/security"
	"github.com/Rista10/event-planner-application/internal/infra/telemetry"
	postgresrepo "github.com/Rista10/event-planner-application/internal/repository/postgres"
	redisrepo "github.com/Rista10/event-planner-application/internal/repository/redis"
	"github.com/Rista10/event-planner-application/internal/transport/http/handlers"
	"github.com/Rista10/event-planner-application/internal/transport/http/routes"
	"github.com/Rista10/event-planner-application/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
	tracer   *telemetry.TracerProvider
}

func New(ctx context.Context, cfg *config.AppConfig) (_ *Application, err error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	var tracerProvider trace.TracerProvider
	if cfg.Telemetry.TracingEnabled {
		tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		a.tracer = tp
		tracerProvider = tp.TracerProvider()
	}

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Postgres, log); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	a.pool, err = database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	a.redis, err = redisinfra.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(a.redis.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: cfg.RateLimit.KeyPrefix,
	})

	repos := postgresrepo.NewRepositories(a.pool)

	hasher, err := security.NewPasswordHasher(cfg.Password.Algorithm, cfg.Password.BcryptCost, security.Argon2Config{
		Memory:      cfg.Password.Argon2.Memory,
		Iterations:  cfg.Password.Argon2.Iterations,
		Parallelism: cfg.Password.Argon2.Parallelism,
		SaltLength:  cfg.Password.Argon2.SaltLength,
		KeyLength:   cfg.Password.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}
	otpHasher, err := security.NewBcryptHasher(cfg.Password.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("init otp hasher: %w", err)
	}

	accessTTL, err := cfg.JWT.AccessTokenTTL()
	if err != nil {
		return nil, err
	}
	refreshTTL, err := cfg.JWT.RefreshTokenTTL()
	if err != nil {
		return nil, err
	}
	sessions, err := security.NewSessionTokenManager(security.SessionTokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("init session tokens: %w", err)
	}

	mailer := mail.New(cfg.SMTP, cfg.FrontendURL, mail.Expiries{
		EmailVerification: cfg.Tokens.EmailVerificationTTL(),
		PasswordReset:     cfg.Tokens.PasswordResetTTL(),
		TwoFactor:         cfg.Tokens.TwoFactorTTL(),
	}, log)

	events := a.eventPublisher()

	metrics, err := telemetry.NewProvider(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	authService := usecase.NewAuthService(
		repos.Users,
		usecase.NewTokenService(repos.Tokens, otpHasher),
		hasher,
		security.NewPasswordPolicy(cfg.Password.MinStrengthScore),
		mailer,
		sessions,
		events,
		repos.Transactor,
		usecase.TokenTTLs{
			EmailVerification: cfg.Tokens.EmailVerificationTTL(),
			PasswordReset:     cfg.Tokens.PasswordResetTTL(),
			TwoFactor:         cfg.Tokens.TwoFactorTTL(),
		},
	).WithLogger(log).WithMetrics(metrics).WithTwoFactor(cfg.Features.TwoFactor)

	a.engine, err = routes.Register(routes.Dependencies{
		Config:         cfg,
		Logger:         log,
		Auth:           authService,
		Sessions:       sessions,
		RateLimitStore: rateLimitStore,
		Readiness: map[string]handlers.ReadinessCheck{
			"postgres": a.pool.Ping,
			"redis":    a.redis.HealthCheck,
		},
		Registerer:     prometheus.DefaultRegisterer,
		Gatherer:       prometheus.DefaultGatherer,
		TracerProvider: tracerProvider,
	})
	if err != nil {
		return nil, fmt.Errorf("init routes: %w", err)
	}

	return a, nil
}

func (a *Application) eventPublisher() port.EventPublisher {
	if len(a.cfg.Kafka.Brokers) == 0 {
		a.logger.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(a.logger)
	}

	producer, err := kafkainfra.NewProducer(a.cfg.Kafka, a.logger)
	if err != nil {
		a.logger.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(a.logger)
	}
	a.producer = producer
	a.logger.Info("kafka event publisher initialized", zap.Strings("brokers", a.cfg.Kafka.Brokers))
	return kafkainfra.NewEventPublisher(producer, a.cfg.App, a.logger)
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.close()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting event planner API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.Bool("two_factor", a.cfg.Features.TwoFactor),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down event planner API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

// close releases every dependency that was opened. Safe on a partially built Application.
func (a *Application) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("failed to close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			a.logger.Warn("failed to shut down tracer provider", zap.Error(err))
		}
	}
}
