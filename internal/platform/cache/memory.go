package cache

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type memEntry struct {
	value     string
	expiresAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is an in-process Cache. Expired entries are invisible to Get right away
// and are physically removed by the sweeper started with Start.
type Memory struct {
	log   *logger.Logger
	every time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]memEntry

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

func NewMemory(log *logger.Logger, sweepEvery time.Duration) *Memory {
	if log == nil {
		log = logger.Nop()
	}
	if sweepEvery <= 0 {
		sweepEvery = 5 * time.Minute
	}
	return &Memory{
		log:     log.With("cache", "Memory"),
		every:   sweepEvery,
		now:     time.Now,
		entries: map[string]memEntry{},
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the sweeper. It runs until ctx is cancelled or Close is called.
func (m *Memory) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		go m.run(ctx)
	})
}

func (m *Memory) run(ctx context.Context) {
	defer close(m.done)
	t := time.NewTicker(m.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				m.log.Debug("swept expired entries", "count", n)
			}
		}
	}
}

// Sweep drops expired entries and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

func (m *Memory) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || e.expired(m.now()) {
		return "", ErrMiss
	}
	return e.value, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close stops the sweeper (if started) and waits for it to exit.
func (m *Memory) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
		started := true
		m.startOnce.Do(func() { started = false })
		if started {
			<-m.done
		}
	})
	return nil
}

var _ Cache = (*Memory)(nil)
