package chat

import (
	"time"

	"github.com/google/uuid"
)

// Summary is the read-side view of one conversation for one member.
type Summary struct {
	ConversationID    uuid.UUID `json:"conversation_id"`
	OtherParticipants []string  `json:"participants"`
	RequestID         uuid.UUID `json:"request_id"`
	LastMessage       string    `json:"last_message"`
	LastMessageTime   time.Time `json:"last_message_time"`
	UnreadCount       int64     `json:"unread_count"`
}
