package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/platform/cache"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
	fail  error
}

func (m *captureMailer) SendOTP(ctx context.Context, to, code string, validFor time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[to] = code
	return nil
}

func (m *captureMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

func newOTP(t *testing.T, mailer Mailer, cfg OTPConfig) (*otpService, *time.Time) {
	t.Helper()
	mem := cache.NewMemory(logger.Nop(), time.Hour)
	t.Cleanup(func() { _ = mem.Close() })
	svc := NewOTPService(logger.Nop(), mem, mailer, cfg).(*otpService)
	now := time.Now()
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestOTPSendAndVerify(t *testing.T) {
	mailer := &captureMailer{}
	svc, _ := newOTP(t, mailer, OTPConfig{})
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, " John@College.edu "))
	code := mailer.code("john@college.edu")
	require.Len(t, code, 6)
	assert.Regexp(t, `^[1-9][0-9]{5}$`, code)

	require.NoError(t, svc.Verify(ctx, "john@college.edu", code))
	err := svc.Verify(ctx, "john@college.edu", code)
	assert.True(t, domain.IsCode(err, domain.CodeValidation), "codes are single use")
}

func TestOTPAttemptBudget(t *testing.T) {
	mailer := &captureMailer{}
	svc, _ := newOTP(t, mailer, OTPConfig{MaxAttempts: 3})
	ctx := context.Background()
	svc.gen = func() (string, error) { return "654321", nil }

	require.NoError(t, svc.Send(ctx, "jane@college.edu"))
	for i := 0; i < 3; i++ {
		err := svc.Verify(ctx, "jane@college.edu", "000000")
		require.True(t, domain.IsCode(err, domain.CodeValidation), "attempt %d: %v", i, err)
	}
	err := svc.Verify(ctx, "jane@college.edu", "654321")
	assert.True(t, domain.IsCode(err, domain.CodeRateLimited), "budget exhausted: %v", err)

	err = svc.Verify(ctx, "jane@college.edu", "654321")
	assert.True(t, domain.IsCode(err, domain.CodeValidation), "code dropped after lockout: %v", err)
}

func TestOTPExpiry(t *testing.T) {
	mailer := &captureMailer{}
	svc, now := newOTP(t, mailer, OTPConfig{Expiry: 5 * time.Minute})
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "mike@college.edu"))
	*now = now.Add(5 * time.Minute)
	err := svc.Verify(ctx, "mike@college.edu", mailer.code("mike@college.edu"))
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestOTPDeliveryFailureIsStoreError(t *testing.T) {
	svc, _ := newOTP(t, &captureMailer{fail: errors.New("smtp down")}, OTPConfig{})
	err := svc.Send(context.Background(), "john@college.edu")
	assert.True(t, domain.IsCode(err, domain.CodeStore))

	err = svc.Send(context.Background(), "not-an-email")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}
