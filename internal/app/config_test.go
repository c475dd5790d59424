package app

import (
	"testing"
	"time"

	"github.com/yungbote/cashswap-backend/internal/data/db"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LOG_MODE", "development")
	t.Setenv("JWT_SECRET_KEY", "")
	cfg := LoadConfig(logger.Nop())

	if cfg.Port != "8080" {
		t.Fatalf("port: got=%q", cfg.Port)
	}
	if cfg.Match.MaxDistance != 10000 {
		t.Fatalf("match distance: got=%v", cfg.Match.MaxDistance)
	}
	if cfg.OTP.Expiry != 5*time.Minute || cfg.OTP.MaxAttempts != 3 {
		t.Fatalf("otp: got=%+v", cfg.OTP)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("token ttl: got=%v", cfg.AccessTokenTTL)
	}
	if cfg.JWTSecretKey != devJWTSecret {
		t.Fatalf("dev secret not applied")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("MATCH_MAX_DISTANCE", "2500")
	t.Setenv("OTP_EXPIRY_MINUTES", "10")
	t.Setenv("ACCESS_TOKEN_TTL", "3600")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg := LoadConfig(logger.Nop())

	if cfg.DB.Driver != db.DriverMemory {
		t.Fatalf("driver: got=%q", cfg.DB.Driver)
	}
	if cfg.Match.MaxDistance != 2500 {
		t.Fatalf("distance: got=%v", cfg.Match.MaxDistance)
	}
	if cfg.OTP.Expiry != 10*time.Minute {
		t.Fatalf("otp expiry: got=%v", cfg.OTP.Expiry)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("ttl: got=%v", cfg.AccessTokenTTL)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("origins: got=%v", cfg.AllowedOrigins)
	}
}

func TestValidateRejectsProductionWithoutSecret(t *testing.T) {
	t.Setenv("LOG_MODE", "production")
	t.Setenv("JWT_SECRET_KEY", "")
	cfg := LoadConfig(logger.Nop())
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing secret error")
	}

	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("DB_DRIVER", "mongo")
	cfg = LoadConfig(logger.Nop())
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected driver error")
	}
}
