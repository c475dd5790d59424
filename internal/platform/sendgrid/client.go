package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/cashswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/cashswap-backend/internal/platform/envutil"
	"github.com/yungbote/cashswap-backend/internal/platform/httpx"
	"github.com/yungbote/cashswap-backend/internal/platform/logger"
)

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error)
}

type Config struct {
	APIKey           string
	BaseURL          string
	DefaultFromEmail string
	DefaultFromName  string
	Timeout          time.Duration
	MaxRetries       int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:           envutil.String("SENDGRID_API_KEY", ""),
		BaseURL:          envutil.String("SENDGRID_BASE_URL", ""),
		DefaultFromEmail: envutil.String("SENDGRID_FROM_EMAIL", ""),
		DefaultFromName:  envutil.String("SENDGRID_FROM_NAME", "CashSwap Team"),
		Timeout:          envutil.Duration("SENDGRID_TIMEOUT_SECONDS", 30*time.Second, time.Second),
		MaxRetries:       envutil.Int("SENDGRID_MAX_RETRIES", 4),
	}
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "SendGridClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      httpx.Backoff{Base: time.Second, Max: 10 * time.Second, MaxRetries: cfg.MaxRetries},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	retry      httpx.Backoff
}

type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type SendEmailRequest struct {
	From       EmailAddress
	To         []EmailAddress
	Subject    string
	Text       string
	HTML       string
	Categories []string
}

type SendEmailResult struct {
	StatusCode int
	MessageID  string
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             EmailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Categories       []string          `json:"categories,omitempty"`
}

type personalization struct {
	To []EmailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) (*SendEmailResult, error) {
	payload, err := c.payload(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.post(ctxutil.Default(ctx), "/v3/mail/send", payload)
	if err != nil {
		return nil, err
	}
	return &SendEmailResult{
		StatusCode: resp.StatusCode,
		MessageID:  strings.TrimSpace(resp.Header.Get("X-Message-Id")),
	}, nil
}

// payload validates req and encodes the v3 mail/send body once so retries
// resend identical bytes.
func (c *client) payload(req SendEmailRequest) ([]byte, error) {
	from := req.From
	if strings.TrimSpace(from.Email) == "" {
		from = EmailAddress{Email: c.cfg.DefaultFromEmail, Name: c.cfg.DefaultFromName}
	}
	from.Email = strings.TrimSpace(from.Email)
	subject := strings.TrimSpace(req.Subject)

	switch {
	case from.Email == "":
		return nil, fmt.Errorf("sendgrid: sender address required (set SENDGRID_FROM_EMAIL)")
	case len(req.To) == 0:
		return nil, fmt.Errorf("sendgrid: at least one recipient required")
	case subject == "":
		return nil, fmt.Errorf("sendgrid: subject required")
	}

	var parts []mailContent
	for _, p := range []mailContent{{"text/plain", req.Text}, {"text/html", req.HTML}} {
		if v := strings.TrimSpace(p.Value); v != "" {
			parts = append(parts, mailContent{Type: p.Type, Value: v})
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("sendgrid: text or html body required")
	}

	return json.Marshal(mailSendRequest{
		Personalizations: []personalization{{To: req.To}},
		From:             from,
		Subject:          subject,
		Content:          parts,
		Categories:       req.Categories,
	})
}

type apiErrors struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// HTTPError is a non-2xx answer from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sendgrid http %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

func newHTTPError(status int, body []byte) *HTTPError {
	var ae apiErrors
	if json.Unmarshal(body, &ae) == nil && len(ae.Errors) > 0 && strings.TrimSpace(ae.Errors[0].Message) != "" {
		return &HTTPError{StatusCode: status, Message: ae.Errors[0].Message}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "<empty body>"
	} else if len(msg) > 512 {
		msg = msg[:512] + "..."
	}
	return &HTTPError{StatusCode: status, Message: msg}
}

func (c *client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.postOnce(ctx, path, body)
		if err == nil {
			return resp, nil
		}
		wait, ok := c.retry.Delay(attempt, resp, err)
		if !ok {
			return nil, err
		}
		c.log.Warn("sendgrid retry",
			"path", path,
			"attempt", attempt+1,
			"wait", wait.String(),
			"error", err.Error(),
		)
		if werr := httpx.Wait(ctx, wait); werr != nil {
			return nil, werr
		}
	}
}

func (c *client) postOnce(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return resp, err
	}
	if resp.StatusCode/100 != 2 {
		return resp, newHTTPError(resp.StatusCode, raw)
	}
	return resp, nil
}
