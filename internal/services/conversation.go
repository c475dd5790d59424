package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/cashswap-backend/internal/data/dberr"
	"github.com/yungbote/cashswap-backend/internal/data/repos"
	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type ConversationService interface {
	// GetOrCreate returns the single conversation between a and b about
	// requestID. The caller must be one of the two; an empty a means the caller.
	GetOrCreate(ctx context.Context, a, b string, requestID uuid.UUID) (*domain.Conversation, error)
	// Summaries lists the caller's conversations, most recently active first.
	Summaries(ctx context.Context) ([]domain.ConversationSummary, error)
	// Authorize loads a conversation and checks the caller participates in it.
	Authorize(ctx context.Context, op string, conversationID uuid.UUID) (*domain.Conversation, string, error)
}

type ConversationConfig struct {
	SummaryConcurrency int
	ListLimit          int
}

type conversationService struct {
	log      *logger.Logger
	convs    repos.ConversationRepo
	messages repos.MessageRepo
	cfg      ConversationConfig
}

func NewConversationService(log *logger.Logger, convs repos.ConversationRepo, messages repos.MessageRepo, cfg ConversationConfig) ConversationService {
	if cfg.SummaryConcurrency <= 0 {
		cfg.SummaryConcurrency = 8
	}
	return &conversationService{
		log:      log.With("service", "ConversationService"),
		convs:    convs,
		messages: messages,
		cfg:      cfg,
	}
}

func (s *conversationService) GetOrCreate(ctx context.Context, a, b string, requestID uuid.UUID) (*domain.Conversation, error) {
	const op = "conversation.get_or_create"
	caller, err := callerIdentity(ctx, op)
	if err != nil {
		return nil, err
	}
	a = domain.NormalizeIdentity(a)
	b = domain.NormalizeIdentity(b)
	if a == "" {
		a = caller
	}
	if b == "" {
		return nil, domain.Validation(op, "the other participant is required")
	}
	if a == b {
		return nil, domain.Validation(op, "a conversation needs two different participants")
	}
	if requestID == uuid.Nil {
		return nil, domain.Validation(op, "request_id is required")
	}
	if caller != a && caller != b {
		return nil, domain.Forbidden(op, "you can only open conversations you take part in")
	}

	conv, err := s.convs.GetOrCreate(dbctx.Context{Ctx: ctx}, a, b, requestID)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	observability.Current().IncEvent(observability.EventConversationGet)
	return conv, nil
}

func (s *conversationService) Authorize(ctx context.Context, op string, conversationID uuid.UUID) (*domain.Conversation, string, error) {
	caller, err := callerIdentity(ctx, op)
	if err != nil {
		return nil, "", err
	}
	if conversationID == uuid.Nil {
		return nil, "", domain.Validation(op, "conversation id is required")
	}
	conv, err := s.convs.GetByID(dbctx.Context{Ctx: ctx}, conversationID)
	if err != nil {
		return nil, "", dberr.Map(op, err)
	}
	if conv == nil {
		return nil, "", domain.NotFound(op, "conversation %s not found", conversationID)
	}
	if !conv.HasParticipant(caller) {
		return nil, "", domain.Forbidden(op, "not a participant in this conversation")
	}
	return conv, caller, nil
}

func (s *conversationService) Summaries(ctx context.Context) ([]domain.ConversationSummary, error) {
	const op = "conversation.summaries"
	caller, err := callerIdentity(ctx, op)
	if err != nil {
		return nil, err
	}
	convs, err := s.convs.ListFor(dbctx.Context{Ctx: ctx}, caller, s.cfg.ListLimit)
	if err != nil {
		return nil, dberr.Map(op, err)
	}

	out := make([]domain.ConversationSummary, len(convs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.SummaryConcurrency)
	for i, conv := range convs {
		i, conv := i, conv
		g.Go(func() error {
			sum, err := s.summarize(gctx, conv, caller)
			if err != nil {
				return err
			}
			out[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dberr.Map(op, err)
	}
	return out, nil
}

func (s *conversationService) summarize(ctx context.Context, conv *domain.Conversation, caller string) (domain.ConversationSummary, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sum := domain.ConversationSummary{
		ConversationID:    conv.ID,
		OtherParticipants: conv.Others(caller),
		RequestID:         conv.RequestID,
		LastMessageTime:   conv.CreatedAt,
	}
	latest, err := s.messages.Latest(dbc, conv.ID)
	if err != nil {
		return sum, err
	}
	if latest != nil {
		sum.LastMessage = latest.Content
		sum.LastMessageTime = latest.Timestamp
	}
	unread, err := s.messages.UnreadCount(dbc, conv.ID, caller)
	if err != nil {
		return sum, err
	}
	sum.UnreadCount = unread
	return sum, nil
}

