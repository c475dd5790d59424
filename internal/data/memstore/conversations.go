package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	chatrepo "github.com/yungbote/cashswap-backend/internal/data/repos/chat"
	types "github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/domain/chat"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type ConversationStore struct {
	log *logger.Logger
	now func() time.Time

	mu    sync.RWMutex
	byID  map[uuid.UUID]*chat.Conversation
	byKey map[chat.Key]uuid.UUID
}

func newConversationStore(log *logger.Logger) *ConversationStore {
	return &ConversationStore{
		log:   log.With("repo", "MemConversationStore"),
		now:   func() time.Time { return time.Now().UTC() },
		byID:  map[uuid.UUID]*chat.Conversation{},
		byKey: map[chat.Key]uuid.UUID{},
	}
}

// GetOrCreate holds the write lock across lookup and insert, which is the
// in-memory equivalent of the unique index plus ON CONFLICT DO NOTHING.
func (s *ConversationStore) GetOrCreate(dbc dbctx.Context, a, b string, requestID uuid.UUID) (*types.Conversation, error) {
	key := chat.KeyFor(a, b, requestID)
	if key.Low == "" || key.High == "" {
		return nil, fmt.Errorf("missing participant")
	}
	if requestID == uuid.Nil {
		return nil, fmt.Errorf("missing request_id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byKey[key]; ok {
		return clone(s.byID[id]), nil
	}
	c := chat.NewConversation(key.Low, key.High, requestID, s.now())
	s.byID[c.ID] = c
	s.byKey[key] = c.ID
	return clone(c), nil
}

func (s *ConversationStore) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return clone(c), nil
}

func (s *ConversationStore) ListFor(dbc dbctx.Context, identity string, limit int) ([]*types.Conversation, error) {
	identity = types.NormalizeIdentity(identity)
	if identity == "" {
		return nil, fmt.Errorf("missing identity")
	}
	s.mu.RLock()
	out := []*types.Conversation{}
	for _, c := range s.byID {
		if c.HasParticipant(identity) {
			out = append(out, clone(c))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ConversationStore) touch(id uuid.UUID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.byID[id]; ok && c.LastMessageAt.Before(at) {
		c.LastMessageAt = at
	}
}

func clone(c *chat.Conversation) *chat.Conversation {
	cp := *c
	cp.Participants = []string{c.ParticipantLow, c.ParticipantHigh}
	return &cp
}

var _ chatrepo.ConversationRepo = (*ConversationStore)(nil)
