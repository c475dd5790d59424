package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cashswap-backend/internal/data/memstore"
	"github.com/yungbote/cashswap-backend/internal/data/repos"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	Request      repos.RequestRepo
	Conversation repos.ConversationRepo
	Message      repos.MessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Request:      repos.NewRequestRepo(db, log),
		Conversation: repos.NewConversationRepo(db, log),
		Message:      repos.NewMessageRepo(db, log),
	}
}

func wireMemoryRepos(st *memstore.Store) Repos {
	return Repos{
		User:         st.Users,
		Request:      st.Requests,
		Conversation: st.Conversations,
		Message:      st.Messages,
	}
}
