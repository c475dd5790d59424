package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/cashswap-backend/internal/data/repos/chat"
	"github.com/yungbote/cashswap-backend/internal/data/repos/exchange"
	"github.com/yungbote/cashswap-backend/internal/data/repos/user"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type RequestRepo = exchange.RequestRepo
type ConversationRepo = chat.ConversationRepo
type MessageRepo = chat.MessageRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return user.NewUserRepo(db, log)
}

func NewRequestRepo(db *gorm.DB, log *logger.Logger) RequestRepo {
	return exchange.NewRequestRepo(db, log)
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return chat.NewConversationRepo(db, log)
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return chat.NewMessageRepo(db, log)
}
