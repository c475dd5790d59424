package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/cashswap-backend/internal/data/db"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/cache"
	"github.com/yungbote/cashswap-backend/internal/platform/envutil"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
	"github.com/yungbote/cashswap-backend/internal/platform/sendgrid"
	"github.com/yungbote/cashswap-backend/internal/services"
)

const devJWTSecret = "cashswap-dev-secret"

type Config struct {
	Port    string
	LogMode string

	DB              db.Config
	MemstoreCellDeg float64

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Match services.MatchConfig
	OTP   services.OTPConfig
	Chat  services.ConversationConfig

	OTPSweepInterval time.Duration
	Redis            cache.RedisConfig
	SendGrid         sendgrid.Config

	AllowedOrigins []string

	Otel           observability.OtelConfig
	MetricsEnabled bool
	MetricsAddr    string
}

func LoadConfig(log *logger.Logger) Config {
	logMode := envutil.String("LOG_MODE", "development")
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: logMode,
		DB: db.Config{
			Driver:           strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "cashswap"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "cashswap.db"),
			SlowThreshold:    envutil.Duration("DB_SLOW_THRESHOLD", time.Second, time.Millisecond),
		},
		MemstoreCellDeg: envutil.Float("MEMSTORE_CELL_DEG", 0.1),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", 24*time.Hour, time.Second),

		Match: services.MatchConfig{
			MaxDistance: envutil.Float("MATCH_MAX_DISTANCE", services.DefaultMatchDistance),
			Limit:       envutil.Int("MATCH_LIMIT", 0),
		},
		OTP: services.OTPConfig{
			Expiry:      envutil.Duration("OTP_EXPIRY_MINUTES", 5*time.Minute, time.Minute),
			MaxAttempts: envutil.Int("OTP_MAX_ATTEMPTS", 3),
		},
		Chat: services.ConversationConfig{
			SummaryConcurrency: envutil.Int("SUMMARY_CONCURRENCY", 8),
			ListLimit:          envutil.Int("CONVERSATION_LIST_LIMIT", 0),
		},
		OTPSweepInterval: envutil.Duration("OTP_SWEEP_INTERVAL", 5*time.Minute, time.Second),
		Redis: cache.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Prefix:   envutil.String("REDIS_PREFIX", "cashswap"),
		},
		SendGrid:       sendgrid.ConfigFromEnv(),
		AllowedOrigins: envutil.List("ALLOWED_ORIGINS", nil),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "cashswap"),
			Environment: envutil.String("APP_ENV", logMode),
			Version:     envutil.String("APP_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
		},
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:    envutil.String("METRICS_ADDR", ":9090"),
	}
	if cfg.JWTSecretKey == "" && !isProduction(logMode) {
		if log != nil {
			log.Warn("JWT_SECRET_KEY not set; using the development secret")
		}
		cfg.JWTSecretKey = devJWTSecret
	}
	return cfg
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite, db.DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Match.MaxDistance <= 0 {
		return fmt.Errorf("MATCH_MAX_DISTANCE must be positive")
	}
	if c.OTP.MaxAttempts <= 0 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func isProduction(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		return true
	}
	return false
}
