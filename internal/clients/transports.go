// Package clients assembles the outbound transports for each notification channel.
package clients

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"staff-absence-backend/internal/clients/gmailclient"
	"staff-absence-backend/internal/clients/lineclient"
	"staff-absence-backend/internal/clients/slackclient"
	"staff-absence-backend/internal/config"
	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/logger"
	"staff-absence-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogTransport writes messages to the log instead of sending them
type LogTransport struct {
	log *logrus.Entry
}

// NewLogTransport creates a log transport. A nil entry uses the standard logger.
func NewLogTransport(log *logrus.Entry) *LogTransport {
	if log == nil {
		log = logger.New().Entry
	}
	return &LogTransport{log: log}
}

// Send logs msg and never fails
func (t *LogTransport) Send(ctx context.Context, msg service.OutboundMessage) error {
	t.log.WithFields(logrus.Fields{
		"message_id": msg.ID.String(),
		"channel":    string(msg.Channel),
		"recipient":  msg.RecipientID,
	}).Info(msg.Text)
	return nil
}

// Fanout sends each message to every target. It succeeds when at least
// one target accepts the message. A target that failed permanently is
// skipped when the same message is retried.
type Fanout struct {
	targets []service.Transport
	now     func() time.Time

	mu     sync.Mutex
	failed map[uuid.UUID]*fanoutState
}

type fanoutState struct {
	permanent []bool
	at        time.Time
}

// fanoutStateTTL bounds how long failed targets are remembered for a message
const fanoutStateTTL = time.Hour

// NewFanout creates a fanout over targets
func NewFanout(targets ...service.Transport) *Fanout {
	return &Fanout{
		targets: targets,
		now:     time.Now,
		failed:  make(map[uuid.UUID]*fanoutState),
	}
}

// Send delivers msg to every target not yet known to reject it. The error is
// permanent only when every remaining target failed permanently.
func (f *Fanout) Send(ctx context.Context, msg service.OutboundMessage) error {
	if len(f.targets) == 0 {
		return apperrors.ErrChannelNotConfigured
	}

	skip := f.skipped(msg.ID)
	var errs []error
	delivered := 0
	permanent := true
	for i, target := range f.targets {
		if skip[i] {
			continue
		}
		err := target.Send(ctx, msg)
		if err == nil {
			delivered++
			continue
		}
		errs = append(errs, err)
		if apperrors.IsPermanentDelivery(err) {
			skip[i] = true
		} else {
			permanent = false
		}
	}

	joined := errors.Join(errs...)
	switch {
	case delivered > 0:
		f.forget(msg.ID)
		if joined != nil {
			logger.WithContext(ctx).WithError(joined).WithField("message_id", msg.ID.String()).Warn("Some admin targets failed")
		}
		return nil
	case permanent:
		f.forget(msg.ID)
		return &apperrors.DeliveryError{Channel: string(msg.Channel), Permanent: true, Err: joined}
	default:
		f.remember(msg.ID, skip)
		return &apperrors.DeliveryError{Channel: string(msg.Channel), Permanent: false, Err: joined}
	}
}

func (f *Fanout) skipped(id uuid.UUID) []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	skip := make([]bool, len(f.targets))
	if state, ok := f.failed[id]; ok {
		copy(skip, state.permanent)
	}
	return skip
}

func (f *Fanout) remember(id uuid.UUID, skip []bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	for key, state := range f.failed {
		if now.Sub(state.at) > fanoutStateTTL {
			delete(f.failed, key)
		}
	}
	f.failed[id] = &fanoutState{permanent: skip, at: now}
}

func (f *Fanout) forget(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failed, id)
}

// Build creates one transport per channel from cfg. A channel without
// credentials is logged instead of sent unless the environment is production,
// where it stays unconfigured and every send fails permanently.
func Build(ctx context.Context, cfg *config.Config, log *logrus.Entry) (map[service.Channel]service.Transport, error) {
	if log == nil {
		log = logger.New().Entry
	}
	logTransport := NewLogTransport(log)
	transports := make(map[service.Channel]service.Transport, 3)

	fallback := func(channel service.Channel) {
		if cfg.IsProduction() {
			log.WithField("channel", string(channel)).Warn("Notification channel is not configured")
			return
		}
		transports[channel] = logTransport
	}

	staff, err := newLineClient(ctx, cfg, "line-staff", cfg.LineStaffAccessToken, cfg.LineStaffChannelID, cfg.LineStaffChannelSecret, cfg.AdminLineID)
	if err != nil {
		return nil, err
	}
	if staff != nil {
		transports[service.ChannelStaff] = staff
	} else {
		fallback(service.ChannelStaff)
	}

	customer, err := newLineClient(ctx, cfg, "line-customer", cfg.LineCustomerAccessToken, cfg.LineCustomerChannelID, cfg.LineCustomerChannelSecret, "")
	if err != nil {
		return nil, err
	}
	if customer != nil {
		transports[service.ChannelCustomer] = customer
	} else {
		fallback(service.ChannelCustomer)
	}

	var admins []service.Transport
	if staff != nil && cfg.AdminLineID != "" {
		admins = append(admins, staff)
	}
	if cfg.SlackWebhookURL != "" {
		slack, err := slackclient.NewClient(cfg.SlackWebhookURL, cfg.SlackChannel)
		if err != nil {
			return nil, err
		}
		admins = append(admins, slack)
	}
	if cfg.GmailRefreshToken != "" && cfg.AdminEmail != "" {
		gmail, err := gmailclient.NewClient(ctx, gmailclient.Config{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			To:           cfg.AdminEmail,
		})
		if err != nil {
			return nil, err
		}
		admins = append(admins, gmail)
	}

	switch len(admins) {
	case 0:
		fallback(service.ChannelAdmin)
	case 1:
		transports[service.ChannelAdmin] = admins[0]
	default:
		transports[service.ChannelAdmin] = NewFanout(admins...)
	}

	return transports, nil
}

// newLineClient returns nil when the channel has no credentials at all
func newLineClient(ctx context.Context, cfg *config.Config, name, token, channelID, secret, defaultRecipient string) (*lineclient.Client, error) {
	if token == "" && (channelID == "" || secret == "") {
		return nil, nil
	}
	client, err := lineclient.NewClient(ctx, lineclient.Config{
		Name:             name,
		BaseURL:          cfg.LineAPIBaseURL,
		AccessToken:      token,
		ChannelID:        channelID,
		ChannelSecret:    secret,
		DefaultRecipient: defaultRecipient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", name, err)
	}
	return client, nil
}
