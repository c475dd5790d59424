package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/cashswap-backend/internal/data/dberr"
	types "github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/geo"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
)

func dbc() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func TestConcurrentGetOrCreateYieldsOneConversation(t *testing.T) {
	s := New(nil, 0)
	reqID := uuid.New()

	const workers = 32
	ids := make([]uuid.UUID, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			a, b := "john@college.edu", "jane@college.edu"
			if i%2 == 1 {
				a, b = b, a
			}
			c, err := s.Conversations.GetOrCreate(dbc(), a, b, reqID)
			if err != nil {
				t.Errorf("GetOrCreate: %v", err)
				return
			}
			ids[i] = c.ID
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < workers; i++ {
		require.Equal(t, ids[0], ids[i], "worker %d saw a different conversation", i)
	}
	list, err := s.Conversations.ListFor(dbc(), "john@college.edu", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRequestStoreFindNearest(t *testing.T) {
	s := New(nil, 0.05)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mk := func(email string, have, want types.MoneyKind, lon, lat float64, at time.Time) *types.ExchangeRequest {
		r, err := s.Requests.Create(dbc(), &types.ExchangeRequest{
			PosterName: email, PosterEmail: email, Have: have, Want: want, Amount: 10,
			Location: geo.NewPoint(lon, lat), PostedAt: at,
		})
		require.NoError(t, err)
		return r
	}
	john := mk("john@college.edu", types.KindCash, types.KindDigital, -73.935, 40.731, base)
	jane := mk("jane@college.edu", types.KindDigital, types.KindCash, -73.935, 40.730, base.Add(time.Minute))
	mk("far@college.edu", types.KindDigital, types.KindCash, -73.0, 40.731, base)

	got, err := s.Requests.FindNearest(dbc(), john.Location, 10000, types.RequestFilter{Have: types.KindDigital}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, jane.ID, got[0].Request.ID)

	got, err = s.Requests.FindNearest(dbc(), john.Location, 10000, types.RequestFilter{ExcludeIdentity: "JOHN@college.edu"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, jane.ID, got[0].Request.ID)

	recent, err := s.Requests.MostRecentFor(dbc(), "jane@college.edu")
	require.NoError(t, err)
	assert.Equal(t, jane.ID, recent.ID)

	list, err := s.Requests.List(dbc(), 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, jane.ID, list[0].ID)
}

func TestMessageStoreUnreadAndOrdering(t *testing.T) {
	s := New(nil, 0)
	conv, err := s.Conversations.GetOrCreate(dbc(), "john@college.edu", "jane@college.edu", uuid.New())
	require.NoError(t, err)

	base := time.Now().UTC().Add(time.Minute)
	_, err = s.Messages.Append(dbc(), conv.ID, "jane@college.edu", "second", base.Add(2*time.Second))
	require.NoError(t, err)
	_, err = s.Messages.Append(dbc(), conv.ID, "jane@college.edu", "first", base.Add(time.Second))
	require.NoError(t, err)
	_, err = s.Messages.Append(dbc(), conv.ID, "john@college.edu", "mine", base.Add(3*time.Second))
	require.NoError(t, err)

	list, err := s.Messages.ListFor(dbc(), conv.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "mine", list[2].Content)

	n, err := s.Messages.UnreadCount(dbc(), conv.ID, "john@college.edu")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	flipped, err := s.Messages.MarkRead(dbc(), conv.ID, "john@college.edu")
	require.NoError(t, err)
	assert.EqualValues(t, 2, flipped)
	flipped, err = s.Messages.MarkRead(dbc(), conv.ID, "john@college.edu")
	require.NoError(t, err)
	assert.Zero(t, flipped)

	got, err := s.Conversations.GetByID(dbc(), conv.ID)
	require.NoError(t, err)
	assert.True(t, got.LastMessageAt.Equal(base.Add(3*time.Second)))
}

func TestUserStoreRejectsDuplicateEmail(t *testing.T) {
	s := New(nil, 0)
	_, err := s.Users.Create(dbc(), &types.User{Email: "a@college.edu", Password: "x"})
	require.NoError(t, err)
	_, err = s.Users.Create(dbc(), &types.User{Email: " A@college.edu", Password: "y"})
	assert.True(t, dberr.IsUniqueViolation(err))

	u, err := s.Users.GetByEmail(dbc(), "a@college.edu")
	require.NoError(t, err)
	require.NotNil(t, u)
	same, err := s.Users.GetByID(dbc(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, same.Email)
}
