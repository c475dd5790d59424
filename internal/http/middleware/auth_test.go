package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
	"github.com/yungbote/cashswap-backend/internal/services"
)

type stubAuth struct {
	services.AuthService
	userID uuid.UUID
}

func (s stubAuth) SetContextFromToken(ctx context.Context, tok string) (context.Context, error) {
	if tok != "good" {
		return ctx, domain.Unauthorized("auth.token", "Invalid or expired token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: s.userID, Email: "john@college.edu"}), nil
}

func (s stubAuth) GetAccessTTL() time.Duration { return time.Hour }

func authRouter(svc services.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.Nop(), svc).RequireAuth())
	r.GET("/whoami", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"email": rd.Email})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	r := authRouter(stubAuth{userID: uuid.New()})

	cases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing", "", http.StatusUnauthorized, "unauthorized"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "unauthorized"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "unauthorized"},
		{"ok", "Bearer good", http.StatusOK, ""},
		{"case insensitive scheme", "bearer good", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if tc.code == "" {
				return
			}
			var env struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code {
				t.Fatalf("code: got=%q want=%q", env.Error.Code, tc.code)
			}
		})
	}
}

func TestRequireAuthRejectsAnonymousIdentity(t *testing.T) {
	r := authRouter(stubAuth{userID: uuid.Nil})
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusForbidden)
	}
}
