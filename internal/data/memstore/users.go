package memstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	userrepo "github.com/yungbote/cashswap-backend/internal/data/repos/user"
	types "github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type UserStore struct {
	log *logger.Logger

	mu      sync.RWMutex
	byID    map[uuid.UUID]types.User
	byEmail map[string]uuid.UUID
}

func newUserStore(log *logger.Logger) *UserStore {
	return &UserStore{
		log:     log.With("repo", "MemUserStore"),
		byID:    map[uuid.UUID]types.User{},
		byEmail: map[string]uuid.UUID{},
	}
}

// Create reports a duplicate email with gorm.ErrDuplicatedKey so callers handle
// it the same way as a SQL unique violation.
func (s *UserStore) Create(dbc dbctx.Context, u *types.User) (*types.User, error) {
	if u == nil {
		return nil, fmt.Errorf("missing user")
	}
	u.Email = types.NormalizeIdentity(u.Email)
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[u.Email]; taken {
		return nil, gorm.ErrDuplicatedKey
	}
	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return u, nil
}

func (s *UserStore) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[types.NormalizeIdentity(email)]
	if !ok {
		return nil, nil
	}
	u := s.byID[id]
	return &u, nil
}

func (s *UserStore) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStore) EmailExists(dbc dbctx.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[types.NormalizeIdentity(email)]
	return ok, nil
}

var _ userrepo.UserRepo = (*UserStore)(nil)
