package services

import (
	"context"
	"math"
	"strings"

	"github.com/yungbote/cashswap-backend/internal/data/dberr"
	"github.com/yungbote/cashswap-backend/internal/data/repos"
	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type RequestService interface {
	// Post validates and stores a new offer on behalf of the caller.
	Post(ctx context.Context, in domain.NewRequest) (*domain.ExchangeRequest, error)
	// List is the public browse view, newest first.
	List(ctx context.Context, limit int) ([]domain.PublicRequest, error)
}

type requestService struct {
	log  *logger.Logger
	repo repos.RequestRepo
}

func NewRequestService(log *logger.Logger, repo repos.RequestRepo) RequestService {
	return &requestService{log: log.With("service", "RequestService"), repo: repo}
}

func (s *requestService) Post(ctx context.Context, in domain.NewRequest) (*domain.ExchangeRequest, error) {
	const op = "request.post"
	caller, err := callerIdentity(ctx, op)
	if err != nil {
		return nil, err
	}
	req, err := validateNewRequest(op, caller, in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(dbctx.Context{Ctx: ctx}, req)
	if err != nil {
		return nil, dberr.Map(op, err)
	}
	s.log.Info("request posted", "request_id", created.ID, "email", created.PosterEmail, "have", created.Have)
	observability.Current().IncEvent(observability.EventRequestPosted)
	return created, nil
}

// validateNewRequest enforces have != want, a positive finite amount and a
// well-formed location. The poster is always the caller.
func validateNewRequest(op, caller string, in domain.NewRequest) (*domain.ExchangeRequest, error) {
	if !in.Have.Valid() || !in.Want.Valid() {
		return nil, domain.Validation(op, "have and want must each be %q or %q", domain.KindCash, domain.KindDigital)
	}
	if in.Have == in.Want {
		return nil, domain.Validation(op, "You can't request the same thing you already have.")
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return nil, domain.Validation(op, "amount must be a positive number")
	}
	if in.Location == nil {
		return nil, domain.Validation(op, "Location with coordinates is required.")
	}
	if err := in.Location.Validate(); err != nil {
		return nil, domain.Validation(op, "%s", err.Error())
	}

	email := domain.NormalizeIdentity(in.PosterEmail)
	if email == "" {
		email = caller
	}
	if email != caller {
		return nil, domain.Forbidden(op, "requests can only be posted for your own account")
	}
	name := strings.TrimSpace(in.PosterName)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	return &domain.ExchangeRequest{
		PosterName:  name,
		PosterEmail: email,
		Have:        in.Have,
		Want:        in.Want,
		Amount:      in.Amount,
		Location:    *in.Location,
	}, nil
}

func (s *requestService) List(ctx context.Context, limit int) ([]domain.PublicRequest, error) {
	rows, err := s.repo.List(dbctx.Context{Ctx: ctx}, clampLimit(limit))
	if err != nil {
		return nil, dberr.Map("request.list", err)
	}
	out := make([]domain.PublicRequest, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Public())
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

