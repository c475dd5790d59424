package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/cashswap-backend/internal/data/db"
	"github.com/yungbote/cashswap-backend/internal/data/memstore"
	httpserver "github.com/yungbote/cashswap-backend/internal/http"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *httpserver.Server
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(log *logger.Logger, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx := context.Background()
	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	a.Metrics = observability.Init(cfg.MetricsEnabled)

	if cfg.DB.Driver == db.DriverMemory {
		log.Warn("DB_DRIVER=memory: data is lost on restart")
		a.Repos = wireMemoryRepos(memstore.New(log, cfg.MemstoreCellDeg))
	} else {
		svc, err := db.Open(cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		if err := db.AutoMigrateAll(svc.DB()); err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		a.dbService = svc
		a.DB = svc.DB()
		a.Repos = wireRepos(a.DB, log)
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		a.closeStores()
		return nil, err
	}
	a.Clients = clients
	a.Services = wireServices(log, cfg, a.Repos, clients)

	handlers := wireHandlers(a.Services)
	middleware := wireMiddleware(log, a.Services)
	a.Server = httpserver.NewServer(":"+cfg.Port, routerConfig(log, cfg, a.Metrics, handlers, middleware))
	return a, nil
}

// Start launches background work: the OTP cache sweeper and metric collectors.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.MemoryCache != nil {
		a.Clients.MemoryCache.Start(ctx)
	}
	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB, 0)
		if a.Clients.RedisCache != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.RedisCache.Client(), 0)
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("server listening", "port", a.Cfg.Port, "driver", a.Cfg.DB.Driver)
	return a.Server.Run()
}

// Shutdown drains HTTP traffic, then stops background work and closes stores.
func (a *App) Shutdown(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("http shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Clients.OTPCache != nil {
		if err := a.Clients.OTPCache.Close(); err != nil {
			a.Log.Warn("cache close", "error", err)
		}
	}
	a.closeStores()
	if a.otelShutdown != nil {
		otelCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = a.otelShutdown(otelCtx)
		cancel()
	}
	a.Log.Sync()
}

func (a *App) closeStores() {
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close", "error", err)
		}
		a.dbService = nil
	}
}
