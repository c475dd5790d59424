package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/cashswap-backend/internal/platform/logger"
	"github.com/yungbote/cashswap-backend/internal/platform/sendgrid"
)

// Mailer delivers one-time codes.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string, validFor time.Duration) error
}

type sendgridMailer struct {
	client sendgrid.Client
	log    *logger.Logger
}

func NewSendGridMailer(client sendgrid.Client, log *logger.Logger) Mailer {
	return &sendgridMailer{client: client, log: log.With("service", "SendGridMailer")}
}

func (m *sendgridMailer) SendOTP(ctx context.Context, to, code string, validFor time.Duration) error {
	res, err := m.client.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: to}},
		Subject:    "Your OTP for CashSwap Signup",
		Text:       otpText(code, validFor),
		Categories: []string{"otp"},
	})
	if err != nil {
		return err
	}
	m.log.Debug("otp mail accepted", "email", to, "message_id", res.MessageID)
	return nil
}

// logMailer writes the code to the log instead of sending it. Used when no
// mail provider is configured.
type logMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) Mailer {
	return &logMailer{log: log.With("service", "LogMailer")}
}

func (m *logMailer) SendOTP(ctx context.Context, to, code string, validFor time.Duration) error {
	m.log.Info("otp issued (not mailed)", "email", to, "code", code, "valid_for", validFor.String())
	return nil
}

func otpText(code string, validFor time.Duration) string {
	return fmt.Sprintf("Your OTP is: %s. It is valid for %d minutes.", code, int(validFor.Minutes()))
}
