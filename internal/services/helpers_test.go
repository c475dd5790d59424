package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/cashswap-backend/internal/data/memstore"
	"github.com/yungbote/cashswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/cashswap-backend/internal/platform/dbctx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

func as(email string) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID: uuid.New(),
		Email:  email,
	})
}

type fixture struct {
	store    *memstore.Store
	requests RequestService
	matches  MatchService
	convs    ConversationService
	messages MessageService
}

func newFixture() *fixture {
	log := logger.Nop()
	st := memstore.New(log, 0)
	convs := NewConversationService(log, st.Conversations, st.Messages, ConversationConfig{SummaryConcurrency: 4})
	return &fixture{
		store:    st,
		requests: NewRequestService(log, st.Requests),
		matches:  NewMatchService(log, st.Requests, MatchConfig{MaxDistance: DefaultMatchDistance}),
		convs:    convs,
		messages: NewMessageService(log, convs, st.Messages),
	}
}

func nilCtx() context.Context { return context.Background() }

func nopLog() *logger.Logger { return logger.Nop() }

func dbcOf(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }
