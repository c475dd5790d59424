package services

import (
	"context"

	"github.com/yungbote/cashswap-backend/internal/data/dberr"
	"github.com/yungbote/cashswap-backend/internal/data/repos"
	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/geo"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

// DefaultMatchDistance is the matching radius in metres.
const DefaultMatchDistance = 10000.0

type MatchService interface {
	// FindDirect returns requests offering the opposite of have within the
	// matching radius of location, nearest first. Requests exactly at the radius
	// are included.
	FindDirect(ctx context.Context, have domain.MoneyKind, location *geo.Point) ([]domain.Match, error)
	// FindDerived matches against identity's most recent request. The caller's
	// own requests are never returned. override replaces the stored location.
	FindDerived(ctx context.Context, identity string, override *geo.Point) ([]domain.Match, error)
	MaxDistance() float64
}

type MatchConfig struct {
	MaxDistance float64
	Limit       int
}

type matchService struct {
	log  *logger.Logger
	repo repos.RequestRepo
	cfg  MatchConfig
}

func NewMatchService(log *logger.Logger, repo repos.RequestRepo, cfg MatchConfig) MatchService {
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = DefaultMatchDistance
	}
	return &matchService{log: log.With("service", "MatchService"), repo: repo, cfg: cfg}
}

func (s *matchService) MaxDistance() float64 { return s.cfg.MaxDistance }

func (s *matchService) FindDirect(ctx context.Context, have domain.MoneyKind, location *geo.Point) ([]domain.Match, error) {
	const op = "match.direct"
	if !have.Valid() {
		return nil, domain.Validation(op, "have must be %q or %q", domain.KindCash, domain.KindDigital)
	}
	if location == nil {
		return nil, domain.Validation(op, "Location coordinates required.")
	}
	if err := location.Validate(); err != nil {
		return nil, domain.Validation(op, "%s", err.Error())
	}
	matches, err := s.repo.FindNearest(dbctx.Context{Ctx: ctx}, *location, s.cfg.MaxDistance,
		domain.RequestFilter{Have: have.Opposite()}, s.cfg.Limit)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	s.log.Debug("direct matches", "have", have, "count", len(matches))
	observability.Current().ObserveMatches("direct", len(matches))
	return matches, nil
}

func (s *matchService) FindDerived(ctx context.Context, identity string, override *geo.Point) ([]domain.Match, error) {
	const op = "match.derived"
	identity = domain.NormalizeIdentity(identity)
	if identity == "" {
		return nil, domain.Validation(op, "email is required")
	}
	if override != nil {
		if err := override.Validate(); err != nil {
			return nil, domain.Validation(op, "%s", err.Error())
		}
	}

	dbc := dbctx.Context{Ctx: ctx}
	mine, err := s.repo.MostRecentFor(dbc, identity)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	if mine == nil {
		return nil, domain.NotFound(op, "Your request not found.")
	}

	center := mine.Location
	if override != nil {
		center = *override
	}
	matches, err := s.repo.FindNearest(dbc, center, s.cfg.MaxDistance, domain.RequestFilter{
		Have:            mine.Have.Opposite(),
		Want:            mine.Want.Opposite(),
		ExcludeIdentity: identity,
	}, s.cfg.Limit)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	s.log.Debug("derived matches", "email", identity, "request_id", mine.ID, "count", len(matches))
	observability.Current().ObserveMatches("derived", len(matches))
	return matches, nil
}
