package lineclient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	apperrors "staff-absence-backend/internal/errors"
)

// SignatureHeader carries the base64 HMAC-SHA256 of the request body
const SignatureHeader = "X-Line-Signature"

// WebhookPayload is the body of a webhook call
type WebhookPayload struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one webhook event. Only the fields the workflow uses are decoded.
type Event struct {
	Type            string          `json:"type"`
	WebhookEventID  string          `json:"webhookEventId"`
	ReplyToken      string          `json:"replyToken"`
	Timestamp       int64           `json:"timestamp"`
	Source          EventSource     `json:"source"`
	Message         *EventMessage   `json:"message,omitempty"`
	DeliveryContext DeliveryContext `json:"deliveryContext"`
}

// EventSource identifies who sent the event
type EventSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// EventMessage is the message of a "message" event
type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// DeliveryContext tells whether LINE is redelivering the event
type DeliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

// IsUserText reports whether the event is a text message from a user
func (e Event) IsUserText() bool {
	return e.Type == "message" &&
		e.Message != nil &&
		e.Message.Type == "text" &&
		e.Source.UserID != ""
}

// Time is the event timestamp
func (e Event) Time() time.Time {
	if e.Timestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.Timestamp)
}

// Sign returns the signature LINE sends for body
func Sign(channelSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against body in constant time
func VerifySignature(channelSecret string, body []byte, signature string) bool {
	if channelSecret == "" || signature == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return hmac.Equal(decoded, mac.Sum(nil))
}

// ParseWebhook verifies and decodes a webhook body
func ParseWebhook(channelSecret string, body []byte, signature string) (*WebhookPayload, error) {
	if !VerifySignature(channelSecret, body, signature) {
		return nil, apperrors.ErrInvalidSignature
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.NewValidationError("body", fmt.Sprintf("invalid webhook payload: %v", err))
	}
	return &payload, nil
}
