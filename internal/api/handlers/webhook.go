package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"staff-absence-backend/internal/clients/lineclient"
	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/logger"
	"staff-absence-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// MaxWebhookBodyBytes bounds the webhook request body
const MaxWebhookBodyBytes = 1 << 20

// EventSubmitter queues inbound events for the workflow
type EventSubmitter interface {
	Submit(ctx context.Context, event service.InboundEvent) error
}

// WebhookHandler receives the staff channel's LINE webhook
type WebhookHandler struct {
	channelSecret string
	submitter     EventSubmitter
	now           func() time.Time
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(channelSecret string, submitter EventSubmitter) *WebhookHandler {
	return &WebhookHandler{
		channelSecret: channelSecret,
		submitter:     submitter,
		now:           time.Now,
	}
}

// LineWebhook handles POST /webhook/line
// @Summary LINE webhook
// @Description Receive staff channel events. The body must be signed with the channel secret.
// @Description Text messages from users are queued for the absence workflow; other events are ignored.
// @Tags webhook
// @Accept json
// @Produce json
// @Param X-Line-Signature header string true "Base64 HMAC-SHA256 of the body"
// @Success 200 {object} map[string]interface{} "Events accepted"
// @Failure 400 {object} map[string]interface{} "Malformed payload"
// @Failure 401 {object} map[string]interface{} "Invalid signature"
// @Failure 413 {object} map[string]interface{} "Body too large"
// @Failure 503 {object} map[string]interface{} "Event queue is full, LINE will redeliver"
// @Router /webhook/line [post]
func (h *WebhookHandler) LineWebhook(c *gin.Context) {
	log := logger.WithContext(c.Request.Context())

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	payload, err := lineclient.ParseWebhook(h.channelSecret, body, c.GetHeader(lineclient.SignatureHeader))
	if err != nil {
		if apperrors.IsAuthentication(err) {
			log.Warn("Rejected webhook with invalid signature")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accepted, skipped := 0, 0
	for _, event := range payload.Events {
		if !event.IsUserText() {
			skipped++
			continue
		}

		receivedAt := event.Time()
		if receivedAt.IsZero() {
			receivedAt = h.now()
		}
		inboundEvent := service.InboundEvent{
			EventID:      event.WebhookEventID,
			SourceUserID: event.Source.UserID,
			RawText:      event.Message.Text,
			ReplyHandle:  event.ReplyToken,
			ReceivedAt:   receivedAt,
		}

		err := h.submitter.Submit(c.Request.Context(), inboundEvent)
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, apperrors.ErrDuplicateEvent):
			log.WithField("event_id", event.WebhookEventID).Info("Ignoring redelivered event")
			skipped++
		default:
			// a non-2xx makes LINE redeliver; events already queued are deduplicated then
			log.WithError(err).WithField("event_id", event.WebhookEventID).Error("Failed to queue inbound event")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event queue unavailable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"accepted": accepted, "skipped": skipped})
}
