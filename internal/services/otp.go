package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/yungbote/cashswap-backend/internal/domain"
	"github.com/yungbote/cashswap-backend/internal/observability"
	"github.com/yungbote/cashswap-backend/internal/platform/cache"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type OTPService interface {
	// Send issues a fresh code for email and hands it to the mailer, replacing
	// any outstanding code.
	Send(ctx context.Context, email string) error
	// Verify consumes the code on success. Wrong codes count against the
	// attempt budget; once exhausted the code is dropped.
	Verify(ctx context.Context, email, code string) error
}

type OTPConfig struct {
	Expiry      time.Duration
	MaxAttempts int
}

type otpEntry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
}

type otpService struct {
	log    *logger.Logger
	cache  cache.Cache
	mailer Mailer
	cfg    OTPConfig
	now    func() time.Time
	gen    func() (string, error)
}

func NewOTPService(log *logger.Logger, c cache.Cache, mailer Mailer, cfg OTPConfig) OTPService {
	if cfg.Expiry <= 0 {
		cfg.Expiry = 5 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &otpService{
		log:    log.With("service", "OTPService"),
		cache:  c,
		mailer: mailer,
		cfg:    cfg,
		now:    time.Now,
		gen:    generateOTP,
	}
}

func otpKey(email string) string { return "otp:" + email }

func (s *otpService) Send(ctx context.Context, email string) error {
	email, err := normalizeEmail("otp.send", email)
	if err != nil {
		return err
	}
	code, err := s.gen()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	entry := otpEntry{Code: code, ExpiresAt: s.now().Add(s.cfg.Expiry)}
	if err := s.put(ctx, email, entry); err != nil {
		return domain.Store("otp.send", err)
	}
	if err := s.mailer.SendOTP(ctx, email, code, s.cfg.Expiry); err != nil {
		s.log.Error("otp delivery failed", "email", email, "error", err)
		_ = s.cache.Delete(ctx, otpKey(email))
		return domain.Store("otp.send", err)
	}
	observability.Current().IncEvent(observability.EventOTPSent)
	return nil
}

func (s *otpService) Verify(ctx context.Context, email, code string) error {
	const op = "otp.verify"
	email, err := normalizeEmail(op, email)
	if err != nil {
		return err
	}
	raw, err := s.cache.Get(ctx, otpKey(email))
	if errors.Is(err, cache.ErrMiss) {
		return domain.Validation(op, "OTP expired or invalid")
	}
	if err != nil {
		return domain.Store(op, err)
	}
	var entry otpEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		_ = s.cache.Delete(ctx, otpKey(email))
		return domain.Validation(op, "OTP expired or invalid")
	}
	if !s.now().Before(entry.ExpiresAt) {
		_ = s.cache.Delete(ctx, otpKey(email))
		return domain.Validation(op, "OTP expired or invalid")
	}
	if entry.Attempts >= s.cfg.MaxAttempts {
		_ = s.cache.Delete(ctx, otpKey(email))
		observability.Current().IncEvent(observability.EventOTPLockedOut)
		return domain.RateLimited(op, "Too many failed attempts. Please request a new OTP.")
	}
	if entry.Code != code {
		entry.Attempts++
		if err := s.put(ctx, email, entry); err != nil {
			return domain.Store(op, err)
		}
		return domain.Validation(op, "Invalid OTP")
	}
	if err := s.cache.Delete(ctx, otpKey(email)); err != nil {
		s.log.Warn("otp delete failed", "email", email, "error", err)
	}
	return nil
}

func (s *otpService) put(ctx context.Context, email string, entry otpEntry) error {
	ttl := entry.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.cache.Delete(ctx, otpKey(email))
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.cache.Put(ctx, otpKey(email), string(b), ttl)
}

// generateOTP returns a uniformly random six digit code (100000-999999).
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func normalizeEmail(op, email string) (string, error) {
	email = domain.NormalizeIdentity(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.Validation(op, "Invalid email format")
	}
	return email, nil
}
