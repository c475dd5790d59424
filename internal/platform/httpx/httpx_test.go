package httpx

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestRetryable(t *testing.T) {
	cases := map[error]bool{
		nil:                      false,
		context.Canceled:         false,
		context.DeadlineExceeded: true,
		statusErr(408):           true,
		statusErr(429):           true,
		statusErr(503):           true,
		statusErr(400):           false,
	}
	for err, want := range cases {
		assert.Equal(t, want, Retryable(err), "Retryable(%v)", err)
	}
}

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 10 * time.Second, MaxRetries: 3, jitter: func() float64 { return 0.5 }}

	d, ok := b.Delay(0, nil, statusErr(503))
	assert.True(t, ok)
	assert.Equal(t, time.Second, d)

	d, _ = b.Delay(2, nil, statusErr(503))
	assert.Equal(t, 4*time.Second, d)

	resp := &http.Response{Header: http.Header{"Retry-After": []string{"30"}}}
	d, _ = b.Delay(0, resp, statusErr(429))
	assert.Equal(t, 10*time.Second, d, "Retry-After is capped by Max")

	_, ok = b.Delay(3, nil, statusErr(503))
	assert.False(t, ok, "out of retries")
	_, ok = b.Delay(0, nil, statusErr(400))
	assert.False(t, ok, "client errors are final")
}

func TestBackoffJitterBounds(t *testing.T) {
	b := Backoff{Base: time.Second, MaxRetries: 1}
	for i := 0; i < 20; i++ {
		d, _ := b.Delay(0, nil, context.DeadlineExceeded)
		assert.GreaterOrEqual(t, d, 800*time.Millisecond)
		assert.LessOrEqual(t, d, 1200*time.Millisecond)
	}
}

func TestWaitHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Wait(context.Background(), time.Millisecond))
}
