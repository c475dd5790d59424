package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cashswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.Nop()))
	var seen *ctxutil.TraceData
	r.GET("/ping", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("unexpected trace data: %+v", seen)
	}
	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("request id header: got=%q", got)
	}
	if rec.Header().Get(headerTraceID) != seen.TraceID {
		t.Fatalf("trace id header mismatch")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Header().Get(headerRequestID) == "" {
		t.Fatalf("request id should be generated")
	}
}

func TestAttachTraceContextRejectsJunkIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, "has space")
	req.Header.Set(headerTraceID, strings.Repeat("a", maxInboundIDLen+1))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got == "" || got == "has space" {
		t.Fatalf("request id should be regenerated, got=%q", got)
	}
	if got := rec.Header().Get(headerTraceID); len(got) > maxInboundIDLen || got == "" {
		t.Fatalf("trace id should be regenerated, got=%q", got)
	}
}
