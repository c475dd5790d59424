package exchange

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	types "github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/geo"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

// RequestRepo is the durable collection of exchange offers.
type RequestRepo interface {
	Create(dbc dbctx.Context, req *types.ExchangeRequest) (*types.ExchangeRequest, error)
	// FindNearest returns requests matching filter within radius metres of center,
	// nearest first. A limit <= 0 returns every match.
	FindNearest(dbc dbctx.Context, center geo.Point, radius float64, filter types.RequestFilter, limit int) ([]types.Match, error)
	// MostRecentFor returns (nil, nil) when the identity never posted.
	MostRecentFor(dbc dbctx.Context, identity string) (*types.ExchangeRequest, error)
	List(dbc dbctx.Context, limit int) ([]*types.ExchangeRequest, error)
}

type requestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRequestRepo(db *gorm.DB, baseLog *logger.Logger) RequestRepo {
	return &requestRepo{db: db, log: baseLog.With("repo", "RequestRepo")}
}

func (r *requestRepo) Create(dbc dbctx.Context, req *types.ExchangeRequest) (*types.ExchangeRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("missing request")
	}
	req.PosterEmail = types.NormalizeIdentity(req.PosterEmail)
	if err := dbc.Conn(r.db).WithContext(dbc.Context()).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepo) FindNearest(dbc dbctx.Context, center geo.Point, radius float64, filter types.RequestFilter, limit int) ([]types.Match, error) {
	box := geo.BoundingBox(center, radius)
	q := dbc.Conn(r.db).WithContext(dbc.Context()).
		Model(&types.ExchangeRequest{}).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon)
	if filter.Have != "" {
		q = q.Where("have = ?", filter.Have)
	}
	if filter.Want != "" {
		q = q.Where("want = ?", filter.Want)
	}
	if id := types.NormalizeIdentity(filter.ExcludeIdentity); id != "" {
		q = q.Where("poster_email <> ?", id)
	}

	var rows []*types.ExchangeRequest
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]types.Match, 0, len(rows))
	for _, row := range rows {
		d := geo.Distance(center, row.Location)
		if d > radius {
			continue
		}
		out = append(out, types.Match{Request: row, Distance: d})
	}
	SortMatches(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SortMatches orders by distance; ties go to the newer request.
func SortMatches(ms []types.Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Distance != ms[j].Distance {
			return ms[i].Distance < ms[j].Distance
		}
		return ms[i].Request.PostedAt.After(ms[j].Request.PostedAt)
	})
}

func (r *requestRepo) MostRecentFor(dbc dbctx.Context, identity string) (*types.ExchangeRequest, error) {
	identity = types.NormalizeIdentity(identity)
	if identity == "" {
		return nil, fmt.Errorf("missing identity")
	}
	var out []*types.ExchangeRequest
	if err := dbc.Conn(r.db).WithContext(dbc.Context()).
		Where("poster_email = ?", identity).
		Order("posted_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *requestRepo) List(dbc dbctx.Context, limit int) ([]*types.ExchangeRequest, error) {
	q := dbc.Conn(r.db).WithContext(dbc.Context()).
		Order("posted_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.ExchangeRequest
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

