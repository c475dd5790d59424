package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/cashswap-backend/internal/data/memstore"
	httpH "github.com/yungbote/cashswap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cashswap-backend/internal/http/middleware"
	"github.com/yungbote/cashswap-backend/internal/platform/cache"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
	"github.com/yungbote/cashswap-backend/internal/services"
)

type codeBox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (b *codeBox) SendOTP(ctx context.Context, to, code string, validFor time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes[to] = code
	return nil
}

func (b *codeBox) get(to string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.codes[to]
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	mail   *codeBox
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	st := memstore.New(log, 0)
	mem := cache.NewMemory(log, time.Minute)
	t.Cleanup(func() { _ = mem.Close() })
	mail := &codeBox{codes: map[string]string{}}

	otp := services.NewOTPService(log, mem, mail, services.OTPConfig{})
	auth := services.NewAuthService(log, st.Users, otp, "router-test-secret", time.Hour)
	requests := services.NewRequestService(log, st.Requests)
	matches := services.NewMatchService(log, st.Requests, services.MatchConfig{})
	convs := services.NewConversationService(log, st.Conversations, st.Messages, services.ConversationConfig{})
	messages := services.NewMessageService(log, convs, st.Messages)

	engine := NewRouter(RouterConfig{
		Log:                 log,
		AuthMiddleware:      httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:       httpH.NewHealthHandler(),
		AuthHandler:         httpH.NewAuthHandler(auth),
		RequestHandler:      httpH.NewRequestHandler(requests),
		MatchHandler:        httpH.NewMatchHandler(matches),
		ConversationHandler: httpH.NewConversationHandler(convs, messages),
	})
	return &testAPI{t: t, engine: engine, mail: mail}
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

// register walks send-otp, signup and login and returns a bearer token.
func (a *testAPI) register(email, first string) string {
	a.t.Helper()
	rec, _ := a.do(http.MethodPost, "/api/auth/send-otp", "", gin.H{"email": email})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = a.do(http.MethodPost, "/api/auth/signup", "", gin.H{
		"first_name": first, "second_name": "Student", "email": email,
		"password": "Secret123", "otp": a.mail.get(email),
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, body := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "Secret123"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	tok, _ := body["access_token"].(string)
	require.NotEmpty(a.t, tok)
	return tok
}

func errCode(body map[string]any) string {
	env, _ := body["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/health", "/healthcheck"} {
		rec, body := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", body["status"])
	}
}

func TestCampusExchangeFlow(t *testing.T) {
	api := newTestAPI(t)
	john := api.register("john@college.edu", "John")
	jane := api.register("jane@college.edu", "Jane")

	rec, body := api.do(http.MethodPost, "/api/requests", john, gin.H{
		"have": "cash", "want": "digital", "amount": 20,
		"location": gin.H{"type": "Point", "coordinates": []float64{-73.935, 40.731}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	johnReq := body["request"].(map[string]any)
	assert.Equal(t, "john", johnReq["name"], "name defaults to the email local part")
	johnReqID := johnReq["id"].(string)

	rec, _ = api.do(http.MethodPost, "/api/requests", jane, gin.H{
		"have": "digital", "want": "cash", "amount": 20,
		"location": gin.H{"longitude": -73.935, "latitude": 40.730},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, body = api.do(http.MethodGet, "/api/requests", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["requests"], 2)

	rec, body = api.do(http.MethodPost, "/api/matches", john, gin.H{
		"have": "cash", "location": gin.H{"longitude": -73.935, "latitude": 40.731},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	matches := body["matches"].([]any)
	require.Len(t, matches, 1)
	first := matches[0].(map[string]any)
	assert.Equal(t, "jane@college.edu", first["request"].(map[string]any)["email"])
	assert.InDelta(t, 111, first["distance_m"].(float64), 5)

	rec, body = api.do(http.MethodPost, "/api/matches/derived", "", gin.H{"email": "jane@college.edu"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, body["matches"], 1)

	rec, body = api.do(http.MethodPost, "/api/conversations", jane, gin.H{
		"user2_email": "john@college.edu", "request_id": johnReqID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	convID := body["conversation"].(map[string]any)["id"].(string)

	rec, body = api.do(http.MethodPost, "/api/conversations", john, gin.H{
		"user1_email": "john@college.edu", "user2_email": "JANE@college.edu", "request_id": johnReqID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, convID, body["conversation"].(map[string]any)["id"], "swapped order yields the same conversation")

	rec, _ = api.do(http.MethodPost, "/api/conversations/"+convID+"/messages", jane, gin.H{"content": "meet at the library?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = api.do(http.MethodPost, "/api/conversations/"+convID+"/messages", jane, gin.H{"content": "I'm by the entrance"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body = api.do(http.MethodGet, "/api/conversations", john, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summaries := body["conversations"].([]any)
	require.Len(t, summaries, 1)
	s := summaries[0].(map[string]any)
	assert.Equal(t, float64(2), s["unread_count"])
	assert.Equal(t, "I'm by the entrance", s["last_message"])
	assert.Equal(t, []any{"jane@college.edu"}, s["participants"])

	rec, body = api.do(http.MethodGet, "/api/conversations/"+convID+"/unread", john, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["unread"])

	rec, body = api.do(http.MethodPost, "/api/conversations/"+convID+"/read", john, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["marked"])
	_, body = api.do(http.MethodPost, "/api/conversations/"+convID+"/read", john, nil)
	assert.Equal(t, float64(0), body["marked"], "mark read is idempotent")

	rec, body = api.do(http.MethodGet, "/api/conversations/"+convID+"/messages", john, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "meet at the library?", msgs[0].(map[string]any)["content"])
	assert.Equal(t, true, msgs[0].(map[string]any)["read"])

	rec, body = api.do(http.MethodGet, "/api/me", jane, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jane", body["user"].(map[string]any)["first_name"])
	assert.NotContains(t, body["user"], "password")
}

func TestErrorEnvelopes(t *testing.T) {
	api := newTestAPI(t)
	john := api.register("john@college.edu", "John")
	mike := api.register("mike@college.edu", "Mike")

	rec, body := api.do(http.MethodPost, "/api/requests", "", gin.H{"have": "cash"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errCode(body))

	rec, body = api.do(http.MethodPost, "/api/requests", john, gin.H{
		"have": "cash", "want": "cash", "amount": 5, "location": gin.H{"longitude": 0, "latitude": 0},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errCode(body))

	rec, body = api.do(http.MethodPost, "/api/requests", john, gin.H{
		"have": "cash", "want": "digital", "amount": 5, "location": gin.H{"coordinates": []float64{1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errCode(body))

	rec, body = api.do(http.MethodPost, "/api/matches/derived", "", gin.H{"email": "nobody@college.edu"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errCode(body))

	rec, body = api.do(http.MethodPost, "/api/matches/derived", "", gin.H{"email": "john@college.edu", "latitude": 40.7})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errCode(body))

	rec, _ = api.do(http.MethodGet, "/api/requests?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = api.do(http.MethodPost, "/api/conversations", john, gin.H{
		"user1_email": "john@college.edu", "user2_email": "john@college.edu", "request_id": "9b2f0e8e-2a4c-4c50-9f0b-6b7e3c1d2a10",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = api.do(http.MethodPost, "/api/conversations", john, gin.H{
		"user2_email": "jane@college.edu", "request_id": "9b2f0e8e-2a4c-4c50-9f0b-6b7e3c1d2a10",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	convID := body["conversation"].(map[string]any)["id"].(string)

	rec, body = api.do(http.MethodGet, "/api/conversations/"+convID+"/messages", mike, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errCode(body))

	rec, body = api.do(http.MethodGet, "/api/conversations/not-a-uuid/messages", john, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = api.do(http.MethodGet, "/api/conversations/9b2f0e8e-2a4c-4c50-9f0b-6b7e3c1d2a10/messages", john, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "john@college.edu", "password": "Wrong1234"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errCode(body))
}

func TestSignupLockout(t *testing.T) {
	api := newTestAPI(t)
	rec, _ := api.do(http.MethodPost, "/api/auth/send-otp", "", gin.H{"email": "jane@college.edu"})
	require.Equal(t, http.StatusOK, rec.Code)

	bad := gin.H{"first_name": "Jane", "second_name": "Doe", "email": "jane@college.edu", "password": "Secret123", "otp": "000000"}
	if api.mail.get("jane@college.edu") == "000000" {
		bad["otp"] = "111111"
	}
	for i := 0; i < 3; i++ {
		rec, _ = api.do(http.MethodPost, "/api/auth/signup", "", bad)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
	rec, body := api.do(http.MethodPost, "/api/auth/signup", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", errCode(body))
}
