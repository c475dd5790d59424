package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/geo"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:         uuid.New(),
		Email:      email,
		Password:   "pw",
		FirstName:  "A",
		SecondName: "B",
		Verified:   true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedRequest(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, have, want types.MoneyKind, lon, lat float64, postedAt time.Time) *types.ExchangeRequest {
	tb.Helper()
	r := &types.ExchangeRequest{
		ID:          uuid.New(),
		PosterName:  email,
		PosterEmail: email,
		Have:        have,
		Want:        want,
		Amount:      100,
		Location:    geo.NewPoint(lon, lat),
		PostedAt:    postedAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed request: %v", err)
	}
	return r
}
