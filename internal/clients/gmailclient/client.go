// Package gmailclient sends admin notices as e-mail through the Gmail API.
package gmailclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/service"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultSendInterval spaces consecutive sends to stay under Gmail's rate limits
const DefaultSendInterval = time.Second

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// Config holds the OAuth client and the default recipient
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	To           string

	SendInterval time.Duration

	// Endpoint and HTTPClient override the API host, for tests
	Endpoint   string
	HTTPClient *http.Client
}

// Client wraps the Gmail API client
type Client struct {
	service      *gmail.Service
	to           string
	interval     time.Duration
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a Gmail client that refreshes its access token from the configured refresh token
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.To == "" {
		return nil, apperrors.NewConfigurationError("gmail: recipient address is required")
	}

	opts := []option.ClientOption{}
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "":
		oauthConfig := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     googleEndpoint,
			Scopes:       []string{gmail.GmailSendScope},
		}
		httpClient := oauthConfig.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		opts = append(opts, option.WithHTTPClient(httpClient))
	default:
		return nil, apperrors.NewConfigurationError("gmail: client id, client secret and refresh token are required")
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	interval := cfg.SendInterval
	if interval == 0 {
		interval = DefaultSendInterval
	}

	return &Client{
		service:  svc,
		to:       cfg.To,
		interval: interval,
	}, nil
}

// SendEmail sends a plain-text e-mail. Consecutive sends are spaced by the send interval.
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		if wait := c.interval - time.Since(c.lastSendTime); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(buildMessage(to, subject, body))),
	}

	_, err := c.service.Users.Messages.Send("me", message).Context(ctx).Do()
	c.lastSendTime = time.Now()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return apperrors.NewDeliveryError("gmail", apiErr.Code, err)
		}
		return apperrors.NewDeliveryError("gmail", 0, err)
	}
	return nil
}

// Send implements service.Transport. The first line of the text becomes the subject.
func (c *Client) Send(ctx context.Context, msg service.OutboundMessage) error {
	to := c.to
	if strings.Contains(msg.RecipientID, "@") {
		to = msg.RecipientID
	}
	return c.SendEmail(ctx, to, subject(msg.Text), msg.Text)
}

func buildMessage(to, subject, body string) string {
	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

func subject(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "staff absence notice"
	}
	return line
}
