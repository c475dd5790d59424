package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	chatrepo "github.com/yungbote/cashswap-backend/internal/data/repos/chat"
	types "github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type MessageStore struct {
	log   *logger.Logger
	convs *ConversationStore

	mu     sync.RWMutex
	byConv map[uuid.UUID][]*types.Message
}

func newMessageStore(log *logger.Logger, convs *ConversationStore) *MessageStore {
	return &MessageStore{
		log:    log.With("repo", "MemMessageStore"),
		convs:  convs,
		byConv: map[uuid.UUID][]*types.Message{},
	}
}

func (s *MessageStore) Append(dbc dbctx.Context, conversationID uuid.UUID, sender, content string, at time.Time) (*types.Message, error) {
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
	}

	s.mu.Lock()
	list := append(s.byConv[conversationID], msg)
	// Keep the slice ordered by timestamp; appends are almost always already last.
	sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.Before(list[j].Timestamp) })
	s.byConv[conversationID] = list
	s.mu.Unlock()

	s.convs.touch(conversationID, at)
	cp := *msg
	return &cp, nil
}

func (s *MessageStore) ListFor(dbc dbctx.Context, conversationID uuid.UUID) ([]*types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.byConv[conversationID]
	out := make([]*types.Message, 0, len(list))
	for _, m := range list {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MessageStore) Latest(dbc dbctx.Context, conversationID uuid.UUID) (*types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.byConv[conversationID]
	if len(list) == 0 {
		return nil, nil
	}
	cp := *list[len(list)-1]
	return &cp, nil
}

func (s *MessageStore) MarkRead(dbc dbctx.Context, conversationID uuid.UUID, reader string) (int64, error) {
	reader = types.NormalizeIdentity(reader)
	if reader == "" {
		return 0, fmt.Errorf("missing reader")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.byConv[conversationID] {
		if m.Sender != reader && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (s *MessageStore) UnreadCount(dbc dbctx.Context, conversationID uuid.UUID, reader string) (int64, error) {
	reader = types.NormalizeIdentity(reader)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.byConv[conversationID] {
		if m.Sender != reader && !m.Read {
			n++
		}
	}
	return n, nil
}

var _ chatrepo.MessageRepo = (*MessageStore)(nil)
