package app

import (
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
	"github.com/yungbote/cashswap-backend/internal/services"
)

type Services struct {
	OTP          services.OTPService
	Auth         services.AuthService
	Request      services.RequestService
	Match        services.MatchService
	Conversation services.ConversationService
	Message      services.MessageService
}

func wireServices(log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")
	otp := services.NewOTPService(log, c.OTPCache, c.Mailer, cfg.OTP)
	convs := services.NewConversationService(log, r.Conversation, r.Message, cfg.Chat)
	return Services{
		OTP:          otp,
		Auth:         services.NewAuthService(log, r.User, otp, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Request:      services.NewRequestService(log, r.Request),
		Match:        services.NewMatchService(log, r.Request, cfg.Match),
		Conversation: convs,
		Message:      services.NewMessageService(log, convs, r.Message),
	}
}
