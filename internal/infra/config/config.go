package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App         AppSettings       `mapstructure:"app"`
	Postgres    PostgresSettings  `mapstructure:"postgres"`
	Redis       RedisSettings     `mapstructure:"redis"`
	Kafka       KafkaSettings     `mapstructure:"kafka"`
	JWT         JWTSettings       `mapstructure:"jwt"`
	Password    PasswordSettings  `mapstructure:"password"`
	Tokens      TokenSettings     `mapstructure:"tokens"`
	SMTP        SMTPSettings      `mapstructure:"smtp"`
	FrontendURL string            `mapstructure:"frontend_url"`
	CORS        CORSSettings      `mapstructure:"cors"`
	RateLimit   RateLimitSettings `mapstructure:"rate_limit"`
	Features    FeatureSettings   `mapstructure:"features"`
	Telemetry   TelemetrySettings `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// IsProduction reports whether the service runs with production hardening (secure cookies, redacted errors).
func (s AppSettings) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	AutoMigrate       bool          `mapstructure:"auto_migrate"`
}

// DSN renders the connection string shared by the pgx pool and the migration runner.
func (s PostgresSettings) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User,
		s.Password,
		s.Host,
		s.Port,
		s.Database,
		s.SSLMode,
	)
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// KafkaSettings configures the account event producer. No brokers means events are only logged.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

type JWTSettings struct {
	AccessSecret  string `mapstructure:"access_secret"`
	RefreshSecret string `mapstructure:"refresh_secret"`
	// AccessTTL and RefreshTTL accept Go durations plus a day suffix ("7d").
	AccessTTL  string `mapstructure:"access_ttl"`
	RefreshTTL string `mapstructure:"refresh_ttl"`
	Issuer     string `mapstructure:"issuer"`
}

// AccessTokenTTL parses AccessTTL.
func (s JWTSettings) AccessTokenTTL() (time.Duration, error) {
	return ParseDuration(s.AccessTTL)
}

// RefreshTokenTTL parses RefreshTTL.
func (s JWTSettings) RefreshTokenTTL() (time.Duration, error) {
	return ParseDuration(s.RefreshTTL)
}

// PasswordSettings selects the password hashing algorithm and strength policy.
type PasswordSettings struct {
	Algorithm        string         `mapstructure:"algorithm"`
	BcryptCost       int            `mapstructure:"bcrypt_cost"`
	Argon2           Argon2Settings `mapstructure:"argon2"`
	MinStrengthScore int            `mapstructure:"min_strength_score"`
}

// Argon2Settings configures Argon2id password hashing parameters
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

// TokenSettings holds single-use token lifetimes in minutes.
type TokenSettings struct {
	EmailVerificationMinutes int `mapstructure:"email_verification_ttl"`
	PasswordResetMinutes     int `mapstructure:"password_reset_ttl"`
	TwoFactorMinutes         int `mapstructure:"two_factor_ttl"`
}

func (s TokenSettings) EmailVerificationTTL() time.Duration {
	return time.Duration(s.EmailVerificationMinutes) * time.Minute
}

func (s TokenSettings) PasswordResetTTL() time.Duration {
	return time.Duration(s.PasswordResetMinutes) * time.Minute
}

func (s TokenSettings) TwoFactorTTL() time.Duration {
	return time.Duration(s.TwoFactorMinutes) * time.Minute
}

// SMTPSettings configures outgoing mail. Empty credentials disable sending.
type SMTPSettings struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	User    string        `mapstructure:"user"`
	Pass    string        `mapstructure:"pass"`
	From    string        `mapstructure:"from"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether credentials were supplied.
func (s SMTPSettings) Enabled() bool {
	return s.User != "" && s.Pass != ""
}

type CORSSettings struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitSettings configures the sliding window applied to unauthenticated auth endpoints.
type RateLimitSettings struct {
	AuthWindow      time.Duration `mapstructure:"auth_window"`
	AuthMaxRequests int           `mapstructure:"auth_max_requests"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

type FeatureSettings struct {
	TwoFactor bool `mapstructure:"two_factor"`
}

type TelemetrySettings struct {
	TracingEnabled bool    `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// envAliases lists the flat variable names used by existing deployments for each key.
var envAliases = map[string][]string{
	"app.env":                       {"NODE_ENV"},
	"app.port":                      {"PORT"},
	"postgres.host":                 {"DB_HOST"},
	"postgres.port":                 {"DB_PORT"},
	"postgres.user":                 {"DB_USER"},
	"postgres.password":             {"DB_PASSWORD"},
	"postgres.database":             {"DB_NAME"},
	"jwt.access_secret":             {"JWT_SECRET"},
	"jwt.refresh_secret":            {"JWT_REFRESH_SECRET"},
	"jwt.access_ttl":                {"JWT_ACCESS_EXPIRY"},
	"jwt.refresh_ttl":               {"JWT_REFRESH_EXPIRY"},
	"password.bcrypt_cost":          {"BCRYPT_SALT_ROUNDS"},
	"tokens.email_verification_ttl": {"EMAIL_VERIFICATION_EXPIRY_MINUTES"},
	"tokens.password_reset_ttl":     {"PASSWORD_RESET_EXPIRY_MINUTES"},
	"tokens.two_factor_ttl":         {"TWO_FACTOR_EXPIRY_MINUTES"},
	"smtp.user":                     {"SMTP_USER"},
	"smtp.pass":                     {"SMTP_PASS"},
	"smtp.from":                     {"EMAIL_FROM"},
	"frontend_url":                  {"FRONTEND_URL"},
	"features.two_factor":           {"FEATURE_2FA"},
}

var configKeys = []string{
	"app.name",
	"app.env",
	"app.host",
	"app.port",
	"postgres.host",
	"postgres.port",
	"postgres.user",
	"postgres.password",
	"postgres.database",
	"postgres.ssl_mode",
	"postgres.max_conns",
	"postgres.min_conns",
	"postgres.max_conn_lifetime",
	"postgres.max_conn_idle_time",
	"postgres.health_check_period",
	"postgres.auto_migrate",
	"redis.host",
	"redis.port",
	"redis.db",
	"redis.password",
	"redis.tls_enabled",
	"kafka.brokers",
	"kafka.topic_prefix",
	"jwt.access_secret",
	"jwt.refresh_secret",
	"jwt.access_ttl",
	"jwt.refresh_ttl",
	"jwt.issuer",
	"password.algorithm",
	"password.bcrypt_cost",
	"password.min_strength_score",
	"password.argon2.memory",
	"password.argon2.iterations",
	"password.argon2.parallelism",
	"password.argon2.salt_length",
	"password.argon2.key_length",
	"tokens.email_verification_ttl",
	"tokens.password_reset_ttl",
	"tokens.two_factor_ttl",
	"smtp.host",
	"smtp.port",
	"smtp.user",
	"smtp.pass",
	"smtp.from",
	"smtp.timeout",
	"frontend_url",
	"cors.allowed_origins",
	"rate_limit.auth_window",
	"rate_limit.auth_max_requests",
	"rate_limit.key_prefix",
	"features.two_factor",
	"telemetry.tracing_enabled",
	"telemetry.otlp_endpoint",
	"telemetry.service_name",
	"telemetry.sampling_rate",
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("EP")

	setDefaults(v)

	if err := bindEnvs(v, configKeys); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORS.AllowedOrigins) == 0 && cfg.FrontendURL != "" {
		cfg.CORS.AllowedOrigins = []string{cfg.FrontendURL}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("jwt.access_secret (JWT_SECRET) is required"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("jwt.refresh_secret (JWT_REFRESH_SECRET) is required"))
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("jwt access and refresh secrets must differ"))
	}
	if ttl, err := c.JWT.AccessTokenTTL(); err != nil || ttl <= 0 {
		errs = append(errs, fmt.Errorf("jwt.access_ttl %q must be a positive duration", c.JWT.AccessTTL))
	}
	if ttl, err := c.JWT.RefreshTokenTTL(); err != nil || ttl <= 0 {
		errs = append(errs, fmt.Errorf("jwt.refresh_ttl %q must be a positive duration", c.JWT.RefreshTTL))
	}
	if c.Tokens.EmailVerificationMinutes <= 0 || c.Tokens.PasswordResetMinutes <= 0 || c.Tokens.TwoFactorMinutes <= 0 {
		errs = append(errs, errors.New("token expiry minutes must be positive"))
	}
	if c.RateLimit.AuthWindow <= 0 || c.RateLimit.AuthMaxRequests <= 0 {
		errs = append(errs, errors.New("rate_limit.auth_window and rate_limit.auth_max_requests must be positive"))
	}

	return errors.Join(errs...)
}

// ParseDuration accepts time.ParseDuration syntax plus a whole-day suffix such as "7d".
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", value, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", value, err)
	}
	return d, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "event-planner-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 3000)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "event_planner")
	v.SetDefault("postgres.password", "event_planner")
	v.SetDefault("postgres.database", "event_planner")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")
	v.SetDefault("postgres.auto_migrate", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "event-planner")

	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "7d")
	v.SetDefault("jwt.issuer", "event-planner")

	v.SetDefault("password.algorithm", "bcrypt")
	v.SetDefault("password.bcrypt_cost", 10)
	v.SetDefault("password.min_strength_score", 0)
	v.SetDefault("password.argon2.memory", 65536) // 64 MB
	v.SetDefault("password.argon2.iterations", 3)
	v.SetDefault("password.argon2.parallelism", 4)
	v.SetDefault("password.argon2.salt_length", 16)
	v.SetDefault("password.argon2.key_length", 32)

	v.SetDefault("tokens.email_verification_ttl", 1440)
	v.SetDefault("tokens.password_reset_ttl", 60)
	v.SetDefault("tokens.two_factor_ttl", 10)

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("smtp.from", "noreply@example.com")
	v.SetDefault("smtp.timeout", "10s")

	v.SetDefault("frontend_url", "http://localhost:5173")

	v.SetDefault("rate_limit.auth_window", "15m")
	v.SetDefault("rate_limit.auth_max_requests", 20)
	v.SetDefault("rate_limit.key_prefix", "event-planner:ratelimit")

	v.SetDefault("features.two_factor", true)

	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "event-planner-api")
	v.SetDefault("telemetry.sampling_rate", 1.0)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		names := append([]string{"EP_" + envKey, envKey}, envAliases[key]...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
