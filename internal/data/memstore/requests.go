package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	exchangerepo "github.com/yungbote/cashswap-backend/internal/data/repos/exchange"
	types "github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/geo"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type RequestStore struct {
	log   *logger.Logger
	index geo.Index[uuid.UUID]

	mu   sync.RWMutex
	rows map[uuid.UUID]types.ExchangeRequest
}

func newRequestStore(log *logger.Logger, cellDeg float64) *RequestStore {
	return &RequestStore{
		log:   log.With("repo", "MemRequestStore"),
		index: geo.NewGridIndex[uuid.UUID](cellDeg),
		rows:  map[uuid.UUID]types.ExchangeRequest{},
	}
}

func (s *RequestStore) Create(dbc dbctx.Context, req *types.ExchangeRequest) (*types.ExchangeRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("missing request")
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.PostedAt.IsZero() {
		req.PostedAt = time.Now().UTC()
	}
	req.PosterEmail = types.NormalizeIdentity(req.PosterEmail)

	s.mu.Lock()
	s.rows[req.ID] = *req
	s.index.Insert(req.ID, req.Location)
	s.mu.Unlock()
	return req, nil
}

func (s *RequestStore) FindNearest(dbc dbctx.Context, center geo.Point, radius float64, filter types.RequestFilter, limit int) ([]types.Match, error) {
	filter.ExcludeIdentity = types.NormalizeIdentity(filter.ExcludeIdentity)

	s.mu.RLock()
	hits := s.index.Within(center, radius)
	out := make([]types.Match, 0, len(hits))
	for _, h := range hits {
		row, ok := s.rows[h.Key]
		if !ok || !filter.Match(&row) {
			continue
		}
		out = append(out, types.Match{Request: &row, Distance: h.Distance})
	}
	s.mu.RUnlock()

	exchangerepo.SortMatches(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *RequestStore) MostRecentFor(dbc dbctx.Context, identity string) (*types.ExchangeRequest, error) {
	identity = types.NormalizeIdentity(identity)
	if identity == "" {
		return nil, fmt.Errorf("missing identity")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *types.ExchangeRequest
	for _, row := range s.rows {
		if row.PosterEmail != identity {
			continue
		}
		if best == nil || row.PostedAt.After(best.PostedAt) {
			cp := row
			best = &cp
		}
	}
	return best, nil
}

func (s *RequestStore) List(dbc dbctx.Context, limit int) ([]*types.ExchangeRequest, error) {
	s.mu.RLock()
	out := make([]*types.ExchangeRequest, 0, len(s.rows))
	for _, row := range s.rows {
		cp := row
		out = append(out, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PostedAt.Equal(out[j].PostedAt) {
			return out[i].PostedAt.After(out[j].PostedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ exchangerepo.RequestRepo = (*RequestStore)(nil)
