// Package lineclient talks to the LINE Messaging API: push and reply
// messages, channel access tokens and webhook signature checks.
package lineclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/logger"
	"staff-absence-backend/internal/service"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultBaseURL is the public Messaging API host
	DefaultBaseURL = "https://api.line.me"

	pushPath  = "/v2/bot/message/push"
	replyPath = "/v2/bot/message/reply"
	tokenPath = "/v2/oauth/accessToken"

	// maxTextLength is the Messaging API limit for one text message
	maxTextLength = 5000
)

// Config configures one LINE channel. Either AccessToken or ChannelID and
// ChannelSecret must be set; the latter issues short-lived tokens.
type Config struct {
	Name          string
	BaseURL       string
	AccessToken   string
	ChannelID     string
	ChannelSecret string

	// DefaultRecipient is used for messages without a recipient
	DefaultRecipient string
	Timeout          time.Duration
}

// Client sends messages over one LINE channel
type Client struct {
	name             string
	baseURL          string
	defaultRecipient string
	httpClient       *http.Client
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewClient creates a LINE client. ctx is used for token refreshes only.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Name == "" {
		cfg.Name = "line"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid LINE base URL %q: %w", cfg.BaseURL, err)
	}

	var tokens oauth2.TokenSource
	switch {
	case cfg.AccessToken != "":
		tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	case cfg.ChannelID != "" && cfg.ChannelSecret != "":
		credentials := clientcredentials.Config{
			ClientID:     cfg.ChannelID,
			ClientSecret: cfg.ChannelSecret,
			TokenURL:     baseURL + tokenPath,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		tokens = credentials.TokenSource(ctx)
	default:
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("%s: access token or channel credentials are required", cfg.Name))
	}

	httpClient := oauth2.NewClient(ctx, tokens)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		name:             cfg.Name,
		baseURL:          baseURL,
		defaultRecipient: cfg.DefaultRecipient,
		httpClient:       httpClient,
	}, nil
}

// Push sends text to one user. retryKey makes LINE drop duplicate pushes
// of the same message.
func (c *Client) Push(ctx context.Context, to, text, retryKey string) error {
	if to == "" {
		return apperrors.NewDeliveryError(c.name, http.StatusBadRequest, errors.New("recipient is required"))
	}
	body := pushRequest{To: to, Messages: []textMessage{{Type: "text", Text: truncate(text)}}}

	header := http.Header{}
	if retryKey != "" {
		header.Set("X-Line-Retry-Key", retryKey)
	}
	err := c.post(ctx, pushPath, body, header)
	if deliveryErr, ok := asDeliveryError(err); ok && deliveryErr.StatusCode == http.StatusConflict {
		// a request with this retry key was already accepted
		return nil
	}
	return err
}

// Reply answers a webhook event with its reply token
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	body := replyRequest{ReplyToken: replyToken, Messages: []textMessage{{Type: "text", Text: truncate(text)}}}
	return c.post(ctx, replyPath, body, nil)
}

// Send delivers an outbound message. A reply token is tried first since
// replies are free; an expired token falls back to a push.
func (c *Client) Send(ctx context.Context, msg service.OutboundMessage) error {
	recipient := msg.RecipientID
	if recipient == "" {
		recipient = c.defaultRecipient
	}

	if msg.ReplyHandle != "" {
		err := c.Reply(ctx, msg.ReplyHandle, msg.Text)
		if err == nil {
			return nil
		}
		if !apperrors.IsPermanentDelivery(err) {
			return err
		}
		logger.WithContext(ctx).WithError(err).WithField("message_id", msg.ID.String()).Debug("Reply token rejected, falling back to push")
	}

	return c.Push(ctx, recipient, msg.Text, msg.ID.String())
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, header http.Header) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewDeliveryError(c.name, 0, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewDeliveryError(c.name, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewDeliveryError(c.name, 0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr errorResponse
	message := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		message = apiErr.Message
	}
	return apperrors.NewDeliveryError(c.name, resp.StatusCode, errors.New(message))
}

func asDeliveryError(err error) (*apperrors.DeliveryError, bool) {
	var deliveryErr *apperrors.DeliveryError
	if errors.As(err, &deliveryErr) {
		return deliveryErr, true
	}
	return nil, false
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxTextLength {
		return text
	}
	return string(runes[:maxTextLength])
}
