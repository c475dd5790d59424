package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestMemory() (*Memory, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(logger.Nop(), time.Hour)
	m.now = clk.now
	return m, clk
}

func TestMemoryExpiresEntries(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestMemory()

	if err := m.Put(ctx, "otp:a@x.edu", "123456", 5*time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if v, err := m.Get(ctx, "otp:a@x.edu"); err != nil || v != "123456" {
		t.Fatalf("Get before expiry: v=%q err=%v", v, err)
	}

	clk.t = clk.t.Add(5 * time.Minute)
	if _, err := m.Get(ctx, "otp:a@x.edu"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss at expiry, got %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("entry should linger until swept")
	}
	if n := m.Sweep(); n != 1 || m.Len() != 0 {
		t.Fatalf("sweep removed %d, len=%d", n, m.Len())
	}
}

func TestMemoryNoTTLAndDelete(t *testing.T) {
	ctx := context.Background()
	m, clk := newTestMemory()
	_ = m.Put(ctx, "k", "v", 0)
	clk.t = clk.t.Add(24 * time.Hour)
	if m.Sweep() != 0 {
		t.Fatalf("ttl<=0 entries must not expire")
	}
	_ = m.Delete(ctx, "k")
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestMemorySweeperLifecycle(t *testing.T) {
	m := NewMemory(logger.Nop(), 10*time.Millisecond)
	_ = m.Put(context.Background(), "gone", "v", time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for m.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sweeper never removed the expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// second Close is a no-op
	_ = m.Close()
}

func TestMemoryCloseWithoutStart(t *testing.T) {
	m := NewMemory(logger.Nop(), time.Second)
	done := make(chan struct{})
	go func() {
		_ = m.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Close blocked without a running sweeper")
	}
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	r, err := NewRedis(logger.Nop(), RedisConfig{Addr: addr, Prefix: "cashswap-test"})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer r.Close()

	ctx := context.Background()
	if err := r.Put(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if v, err := r.Get(ctx, "k"); err != nil || v != "v" {
		t.Fatalf("Get: v=%q err=%v", v, err)
	}
	_ = r.Delete(ctx, "k")
	if _, err := r.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
}
