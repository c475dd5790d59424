package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yungbote/cashswap-backend/internal/domain"
)

func TestFromErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Validation("op", "have and want must differ"), http.StatusBadRequest, "validation_error"},
		{domain.NotFound("op", "no prior request"), http.StatusNotFound, "not_found"},
		{domain.Unauthorized("op", "invalid token"), http.StatusUnauthorized, "unauthorized"},
		{domain.Forbidden("op", "not a participant"), http.StatusForbidden, "forbidden"},
		{domain.Conflict("op", "email taken"), http.StatusConflict, "conflict"},
		{domain.RateLimited("op", "too many attempts"), http.StatusTooManyRequests, "rate_limited"},
	}
	for _, tc := range cases {
		got := FromError(tc.err)
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("%v: got status=%d code=%s", tc.err, got.Status, got.Code)
		}
		if got.Err.Error() != domain.MessageOf(tc.err) {
			t.Fatalf("message not preserved: %q", got.Err.Error())
		}
	}
}

func TestFromErrorHidesStoreDetails(t *testing.T) {
	got := FromError(domain.Store("repo.insert", errors.New(`pq: relation "conversation" does not exist`)))
	if got.Status != http.StatusInternalServerError || got.Err.Error() != "internal error" {
		t.Fatalf("store error leaked: %+v", got)
	}
	if !got.Internal() {
		t.Fatalf("store error should be internal")
	}
	if FromError(errors.New("boom")).Code != "store_error" {
		t.Fatalf("untagged error should map to store_error")
	}
}
