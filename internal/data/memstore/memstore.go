// Package memstore backs every repository with process memory. It is selected
// with DB_DRIVER=memory and gives the same observable behaviour as the SQL repos,
// including a single conversation per participant pair and request.
package memstore

import (
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type Store struct {
	Requests      *RequestStore
	Conversations *ConversationStore
	Messages      *MessageStore
	Users         *UserStore
}

func New(log *logger.Logger, cellDeg float64) *Store {
	if log == nil {
		log = logger.Nop()
	}
	convs := newConversationStore(log)
	return &Store{
		Requests:      newRequestStore(log, cellDeg),
		Conversations: convs,
		Messages:      newMessageStore(log, convs),
		Users:         newUserStore(log),
	}
}
