// Package httpx holds the retry policy shared by outbound HTTP clients.
package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusCoder is implemented by client errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatusCode() int
}

// Retryable treats timeouts and 408/429/5xx responses as transient.
// A cancelled context is never retried.
func Retryable(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc StatusCoder
	if !errors.As(err, &sc) {
		return false
	}
	code := sc.HTTPStatusCode()
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500 && code <= 599
}

// Backoff is an exponential retry schedule with +/-20% jitter. A Retry-After
// header on the failed response overrides the computed step, still capped by Max.
type Backoff struct {
	Base       time.Duration
	Max        time.Duration
	MaxRetries int

	// jitter is swapped in tests.
	jitter func() float64
}

// Delay returns how long to wait before retry number attempt (0-based) and
// whether a retry should happen at all.
func (b Backoff) Delay(attempt int, resp *http.Response, err error) (time.Duration, bool) {
	if attempt >= b.MaxRetries || !Retryable(err) {
		return 0, false
	}
	step := b.Base
	if step <= 0 {
		step = time.Second
	}
	for i := 0; i < attempt && (b.Max <= 0 || step < b.Max); i++ {
		step *= 2
	}
	if ra := retryAfter(resp); ra > 0 {
		step = ra
	}
	if b.Max > 0 && step > b.Max {
		step = b.Max
	}
	r := rand.Float64
	if b.jitter != nil {
		r = b.jitter
	}
	return time.Duration(float64(step) * (0.8 + 0.4*r())), true
}

// Wait sleeps for d unless ctx ends first.
func Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
