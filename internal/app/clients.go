package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/cashswap-backend/internal/platform/cache"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
	"github.com/yungbote/cashswap-backend/internal/platform/sendgrid"
	"github.com/yungbote/cashswap-backend/internal/services"
)

type Clients struct {
	OTPCache cache.Cache
	Mailer   services.Mailer

	// Exactly one of these backs OTPCache.
	MemoryCache *cache.Memory
	RedisCache  *cache.Redis
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		r, err := cache.NewRedis(log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis cache: %w", err)
		}
		out.RedisCache = r
		out.OTPCache = r
	} else {
		m := cache.NewMemory(log, cfg.OTPSweepInterval)
		out.MemoryCache = m
		out.OTPCache = m
	}

	// SendGrid
	if strings.TrimSpace(cfg.SendGrid.APIKey) != "" {
		client, err := sendgrid.New(log, cfg.SendGrid)
		if err != nil {
			_ = out.OTPCache.Close()
			return Clients{}, fmt.Errorf("init sendgrid: %w", err)
		}
		out.Mailer = services.NewSendGridMailer(client, log)
	} else {
		log.Warn("SENDGRID_API_KEY not set; one-time codes are written to the log")
		out.Mailer = services.NewLogMailer(log)
	}
	return out, nil
}
