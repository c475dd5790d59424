package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/cashswap-backend/internal/data/dberr"
	"github.com/yungbote/cashswap-backend/internal/data/repos"
	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

const maxMessageRunes = 4000

type MessageService interface {
	Send(ctx context.Context, conversationID uuid.UUID, sender, content string) (*domain.Message, error)
	List(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error)
	// MarkRead flags everything the other side sent as read and returns how many
	// messages changed. Repeating it is a no-op.
	MarkRead(ctx context.Context, conversationID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, conversationID uuid.UUID) (int64, error)
}

type messageService struct {
	log      *logger.Logger
	convs    ConversationService
	messages repos.MessageRepo
	now      func() time.Time
}

func NewMessageService(log *logger.Logger, convs ConversationService, messages repos.MessageRepo) MessageService {
	return &messageService{
		log:      log.With("service", "MessageService"),
		convs:    convs,
		messages: messages,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *messageService) Send(ctx context.Context, conversationID uuid.UUID, sender, content string) (*domain.Message, error) {
	const op = "message.send"
	conv, caller, err := s.convs.Authorize(ctx, op, conversationID)
	if err != nil {
		return nil, err
	}
	sender = domain.NormalizeIdentity(sender)
	if sender == "" {
		sender = caller
	}
	if sender != caller {
		return nil, domain.Forbidden(op, "you can only send messages as yourself")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Validation(op, "content is required")
	}
	if utf8.RuneCountInString(content) > maxMessageRunes {
		return nil, domain.Validation(op, "content must be at most %d characters", maxMessageRunes)
	}

	msg, err := s.messages.Append(dbctx.Context{Ctx: ctx}, conv.ID, sender, content, s.now())
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	observability.Current().IncEvent(observability.EventMessageSent)
	return msg, nil
}

func (s *messageService) List(ctx context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	const op = "message.list"
	conv, _, err := s.convs.Authorize(ctx, op, conversationID)
	if err != nil {
		return nil, err
	}
	out, err := s.messages.ListFor(dbctx.Context{Ctx: ctx}, conv.ID)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	return out, nil
}

func (s *messageService) MarkRead(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	const op = "message.mark_read"
	conv, caller, err := s.convs.Authorize(ctx, op, conversationID)
	if err != nil {
		return 0, err
	}
	n, err := s.messages.MarkRead(dbctx.Context{Ctx: ctx}, conv.ID, caller)
	if err != nil {
		return 0, dberr.Map(op, err)
	}
	if n > 0 {
		observability.Current().IncEvent(observability.EventMessagesRead)
	}
	return n, nil
}

func (s *messageService) UnreadCount(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	const op = "message.unread_count"
	conv, caller, err := s.convs.Authorize(ctx, op, conversationID)
	if err != nil {
		return 0, err
	}
	n, err := s.messages.UnreadCount(dbctx.Context{Ctx: ctx}, conv.ID, caller)
	if err != nil {
		return 0, dberr.Map(op, err)
	}
	return n, nil
}
