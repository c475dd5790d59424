package app

import (
	httpserver "github.com/yungbote/cashswap-backend/internal/http"
	httpH "github.com/yungbote/cashswap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cashswap-backend/internal/http/middleware"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	Request      *httpH.RequestHandler
	Match        *httpH.MatchHandler
	Conversation *httpH.ConversationHandler
}

func wireHandlers(s Services) Handlers {
	return Handlers{
		Health:       httpH.NewHealthHandler(),
		Auth:         httpH.NewAuthHandler(s.Auth),
		Request:      httpH.NewRequestHandler(s.Request),
		Match:        httpH.NewMatchHandler(s.Match),
		Conversation: httpH.NewConversationHandler(s.Conversation, s.Message),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, s.Auth),
	}
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers, mw Middleware) httpserver.RouterConfig {
	return httpserver.RouterConfig{
		Log:                 log,
		AllowedOrigins:      cfg.AllowedOrigins,
		TracingEnabled:      cfg.Otel.Enabled,
		ServiceName:         cfg.Otel.ServiceName,
		Metrics:             metrics,
		AuthMiddleware:      mw.Auth,
		HealthHandler:       h.Health,
		AuthHandler:         h.Auth,
		RequestHandler:      h.Request,
		MatchHandler:        h.Match,
		ConversationHandler: h.Conversation,
	}
}
