package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/cashswap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cashswap-backend/internal/http/middleware"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AllowedOrigins []string
	TracingEnabled bool
	ServiceName    string
	Metrics        *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	RequestHandler      *httpH.RequestHandler
	MatchHandler        *httpH.MatchHandler
	ConversationHandler *httpH.ConversationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/auth/send-otp", cfg.AuthHandler.SendOTP)
			api.POST("/auth/signup", cfg.AuthHandler.Signup)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
		if cfg.RequestHandler != nil {
			api.GET("/requests", cfg.RequestHandler.List)
		}
		if cfg.MatchHandler != nil {
			api.POST("/matches/derived", cfg.MatchHandler.Derived)
		}
	}

	protected := api.Group("")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Exchange requests
		if cfg.RequestHandler != nil {
			protected.POST("/requests", cfg.RequestHandler.Create)
		}
		if cfg.MatchHandler != nil {
			protected.POST("/matches", cfg.MatchHandler.Direct)
		}

		// Conversations
		if cfg.ConversationHandler != nil {
			protected.POST("/conversations", cfg.ConversationHandler.GetOrCreate)
			protected.GET("/conversations", cfg.ConversationHandler.List)
			protected.GET("/conversations/:id/messages", cfg.ConversationHandler.ListMessages)
			protected.POST("/conversations/:id/messages", cfg.ConversationHandler.SendMessage)
			protected.POST("/conversations/:id/read", cfg.ConversationHandler.MarkRead)
			protected.GET("/conversations/:id/unread", cfg.ConversationHandler.UnreadCount)
		}
	}

	return r
}
