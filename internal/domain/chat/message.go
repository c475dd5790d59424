package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is append-only; only Read ever changes, and only from false to true.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;column:conversation_id;not null;index:idx_message_conversation_sent,priority:1" json:"conversation_id"`
	Sender         string    `gorm:"column:sender;not null;index" json:"sender"`
	Content        string    `gorm:"column:content;type:text;not null" json:"content"`
	Timestamp      time.Time `gorm:"column:sent_at;not null;index:idx_message_conversation_sent,priority:2" json:"timestamp"`
	Read           bool      `gorm:"column:is_read;not null;default:false;index" json:"read"`
}

func (Message) TableName() string { return "message" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}
