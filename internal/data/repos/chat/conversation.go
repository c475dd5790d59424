package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/domain/chat"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type ConversationRepo interface {
	// GetOrCreate returns the one conversation for the unordered pair a/b and
	// requestID, inserting it if needed. Concurrent callers converge on one row.
	GetOrCreate(dbc dbctx.Context, a, b string, requestID uuid.UUID) (*types.Conversation, error)
	// GetByID returns (nil, nil) when the conversation does not exist.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	ListFor(dbc dbctx.Context, identity string, limit int) ([]*types.Conversation, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{
		db:  db,
		log: baseLog.With("repo", "ConversationRepo"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *conversationRepo) GetOrCreate(dbc dbctx.Context, a, b string, requestID uuid.UUID) (*types.Conversation, error) {
	key := chat.KeyFor(a, b, requestID)
	if key.Low == "" || key.High == "" {
		return nil, fmt.Errorf("missing participant")
	}
	if requestID == uuid.Nil {
		return nil, fmt.Errorf("missing request_id")
	}

	conn := dbc.Conn(r.db).WithContext(dbc.Context())
	row := chat.NewConversation(key.Low, key.High, requestID, r.now())
	res := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return row, nil
	}

	// Lost the race (or the row already existed): read back the winner.
	var out types.Conversation
	if err := conn.
		Where("participant_low = ? AND participant_high = ? AND request_id = ?", key.Low, key.High, key.RequestID).
		Take(&out).Error; err != nil {
		return nil, err
	}
	r.log.Debug("conversation already existed", "conversation_id", out.ID)
	return &out, nil
}

func (r *conversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out []*types.Conversation
	if err := dbc.Conn(r.db).WithContext(dbc.Context()).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *conversationRepo) ListFor(dbc dbctx.Context, identity string, limit int) ([]*types.Conversation, error) {
	identity = types.NormalizeIdentity(identity)
	if identity == "" {
		return nil, fmt.Errorf("missing identity")
	}
	q := dbc.Conn(r.db).WithContext(dbc.Context()).
		Where("participant_low = ? OR participant_high = ?", identity, identity).
		Order("last_message_at DESC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Conversation
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
