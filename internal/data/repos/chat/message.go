package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type MessageRepo interface {
	// Append stores an unread message stamped at and moves the conversation's
	// last_message_at forward to the same instant.
	Append(dbc dbctx.Context, conversationID uuid.UUID, sender, content string, at time.Time) (*types.Message, error)
	ListFor(dbc dbctx.Context, conversationID uuid.UUID) ([]*types.Message, error)
	// Latest returns (nil, nil) for a conversation with no messages.
	Latest(dbc dbctx.Context, conversationID uuid.UUID) (*types.Message, error)
	// MarkRead flags every unread message not sent by reader and returns how many flipped.
	MarkRead(dbc dbctx.Context, conversationID uuid.UUID, reader string) (int64, error)
	UnreadCount(dbc dbctx.Context, conversationID uuid.UUID, reader string) (int64, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (r *messageRepo) Append(dbc dbctx.Context, conversationID uuid.UUID, sender, content string, at time.Time) (*types.Message, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	sender = types.NormalizeIdentity(sender)
	if sender == "" {
		return nil, fmt.Errorf("missing sender")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	msg := &types.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
		Timestamp:      at,
		Read:           false,
	}

	write := func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&types.Conversation{}).
			Where("id = ? AND last_message_at < ?", conversationID, at).
			Update("last_message_at", at).Error
	}

	if dbc.Tx != nil {
		if err := write(dbc.Tx.WithContext(dbc.Context())); err != nil {
			return nil, err
		}
		return msg, nil
	}
	if err := r.db.WithContext(dbc.Context()).Transaction(write); err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *messageRepo) ListFor(dbc dbctx.Context, conversationID uuid.UUID) ([]*types.Message, error) {
	if conversationID == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	var out []*types.Message
	if err := dbc.Conn(r.db).WithContext(dbc.Context()).
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *messageRepo) Latest(dbc dbctx.Context, conversationID uuid.UUID) (*types.Message, error) {
	var out []*types.Message
	if err := dbc.Conn(r.db).WithContext(dbc.Context()).
		Where("conversation_id = ?", conversationID).
		Order("sent_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *messageRepo) MarkRead(dbc dbctx.Context, conversationID uuid.UUID, reader string) (int64, error) {
	reader = types.NormalizeIdentity(reader)
	if reader == "" {
		return 0, fmt.Errorf("missing reader")
	}
	res := dbc.Conn(r.db).WithContext(dbc.Context()).
		Model(&types.Message{}).
		Where("conversation_id = ? AND sender <> ? AND is_read = ?", conversationID, reader, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *messageRepo) UnreadCount(dbc dbctx.Context, conversationID uuid.UUID, reader string) (int64, error) {
	reader = types.NormalizeIdentity(reader)
	var n int64
	if err := dbc.Conn(r.db).WithContext(dbc.Context()).
		Model(&types.Message{}).
		Where("conversation_id = ? AND sender <> ? AND is_read = ?", conversationID, reader, false).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
