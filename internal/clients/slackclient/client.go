// Package slackclient posts admin notices to a Slack incoming webhook.
package slackclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/service"
)

// Client sends messages to one incoming webhook
type Client struct {
	webhookURL string
	channel    string
	username   string
	httpClient *http.Client
}

type webhookMessage struct {
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text"`
}

// NewClient creates a Slack webhook client. channel overrides the webhook's default channel when set.
func NewClient(webhookURL, channel string) (*Client, error) {
	if webhookURL == "" {
		return nil, apperrors.NewConfigurationError("slack webhook URL is required")
	}
	return &Client{
		webhookURL: webhookURL,
		channel:    channel,
		username:   "staff-absence",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Post sends text to the webhook
func (c *Client) Post(ctx context.Context, text string) error {
	body, err := json.Marshal(webhookMessage{Channel: c.channel, Username: c.username, Text: text})
	if err != nil {
		return apperrors.NewDeliveryError("slack", 0, fmt.Errorf("failed to encode message: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewDeliveryError("slack", 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewDeliveryError("slack", 0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// slack answers with plain text such as "invalid_payload" or "channel_not_found"
		return apperrors.NewDeliveryError("slack", resp.StatusCode, errors.New(strings.TrimSpace(string(raw))))
	}
	return nil
}

// Send implements service.Transport. The recipient is ignored; the webhook decides.
func (c *Client) Send(ctx context.Context, msg service.OutboundMessage) error {
	return c.Post(ctx, msg.Text)
}
