// Package mailer sends transactional email through the Brevo (formerly
// Sendinblue) HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const smtpEmailPath = "/v3/smtp/email"

// Logger is the minimal logging surface the client needs.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}

// Config carries the provider settings.
type Config struct {
	Endpoint    string
	APIKey      string
	SenderName  string
	SenderEmail string
}

// Client is a minimal Brevo transactional email client.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	senderName  string
	senderEmail string
	logger      Logger
}

type Option func(*Client)

func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:      cfg.APIKey,
		senderName:  cfg.SenderName,
		senderEmail: cfg.SenderEmail,
		logger:      noopLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type party struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
}

// Send delivers one HTML email to a single recipient.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	payload := sendRequest{
		Sender:      party{Name: c.senderName, Email: c.senderEmail},
		To:          []party{{Email: to}},
		Subject:     subject,
		HTMLContent: html,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode email payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+smtpEmailPath, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build email request")
	}

	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "email provider request failed")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		c.logger.Error("email provider rejected message",
			"status", res.StatusCode,
			"body", string(raw),
		)
		return errors.New("email provider rejected message", errors.CategoryOperation).
			WithCode(errors.CodeInternal).
			WithTextCode("EMAIL_PROVIDER_ERROR").
			WithMetadata(map[string]any{
				"status": res.StatusCode,
			})
	}

	c.logger.Debug("email accepted by provider", "to", to, "subject", subject)

	return nil
}
