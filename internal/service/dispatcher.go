package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Channel identifies an outbound audience
type Channel string

const (
	ChannelStaff    Channel = "staff"
	ChannelCustomer Channel = "customer"
	ChannelAdmin    Channel = "admin"
)

// OutboundMessage is one notification. ID stays the same across retries.
// An empty RecipientID on the admin channel means the transport's default
// recipient. ReplyHandle is an optional platform reply token.
type OutboundMessage struct {
	ID          uuid.UUID `json:"id"`
	Channel     Channel   `json:"channel"`
	RecipientID string    `json:"recipient_id"`
	Text        string    `json:"text"`
	ReplyHandle string    `json:"reply_handle,omitempty"`
}

// NewOutboundMessage creates a message with a fresh ID
func NewOutboundMessage(channel Channel, recipientID, text string) OutboundMessage {
	return OutboundMessage{
		ID:          uuid.New(),
		Channel:     channel,
		RecipientID: recipientID,
		Text:        text,
	}
}

// DispatchResult is the final outcome of sending one message
type DispatchResult struct {
	MessageID uuid.UUID
	Channel   Channel
	Delivered bool
	Attempts  int
	Err       error
}

// DispatcherOptions configures retries and the worker pool
type DispatcherOptions struct {
	MaxAttempts    int
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
	JitterMax      time.Duration
	AttemptTimeout time.Duration

	// Workers == 0 makes Dispatch send inline
	Workers   int
	QueueSize int

	Logger *logrus.Entry
	Rand   *rand.Rand
	Sleep  func(ctx context.Context, d time.Duration) error

	// OnFailure is called for every message Dispatch could not deliver
	OnFailure func(ctx context.Context, msg OutboundMessage, result DispatchResult)
}

func (o *DispatcherOptions) setDefaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BaseBackoff == 0 {
		o.BaseBackoff = 500 * time.Millisecond
	}
	if o.MaxBackoff == 0 {
		o.MaxBackoff = 5 * time.Second
	}
	if o.AttemptTimeout == 0 {
		o.AttemptTimeout = 10 * time.Second
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Logger == nil {
		o.Logger = logger.New().Entry
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
}

type dispatchJob struct {
	ctx context.Context
	msg OutboundMessage
}

// NotificationDispatcher delivers outbound messages through per-channel transports
type NotificationDispatcher struct {
	transports map[Channel]Transport
	opts       DispatcherOptions
	m          *dispatchMetrics

	randMu sync.Mutex

	mu        sync.RWMutex
	closed    bool
	queue     chan dispatchJob
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewNotificationDispatcher creates a dispatcher. Channels without a transport fail permanently.
func NewNotificationDispatcher(transports map[Channel]Transport, opts DispatcherOptions) *NotificationDispatcher {
	opts.setDefaults()

	d := &NotificationDispatcher{
		transports: make(map[Channel]Transport, len(transports)),
		opts:       opts,
		m:          getDispatchMetrics(),
	}
	for channel, transport := range transports {
		if transport != nil {
			d.transports[channel] = transport
		}
	}
	if opts.Workers > 0 {
		d.queue = make(chan dispatchJob, opts.QueueSize)
	}
	return d
}

// SetFailureHandler replaces the OnFailure callback. It must be called before Start.
func (d *NotificationDispatcher) SetFailureHandler(fn func(ctx context.Context, msg OutboundMessage, result DispatchResult)) {
	d.opts.OnFailure = fn
}

// Start launches the worker pool. Cancelling ctx closes the dispatcher after draining.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	if d.queue == nil {
		return
	}
	d.startOnce.Do(func() {
		for i := 0; i < d.opts.Workers; i++ {
			d.wg.Add(1)
			go d.worker(i)
		}
		go func() {
			<-ctx.Done()
			d.Close()
		}()
	})
}

// Close stops accepting messages and waits for queued ones to be delivered
func (d *NotificationDispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		if d.queue != nil {
			close(d.queue)
		}
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// Dispatch queues msg for asynchronous delivery, or delivers it inline when
// the dispatcher has no workers. Delivery failures go to OnFailure.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, msg OutboundMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}

	if d.queue == nil {
		d.mu.RLock()
		closed := d.closed
		d.mu.RUnlock()
		if closed {
			return apperrors.ErrDispatcherClosed
		}
		d.deliver(ctx, msg)
		return nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return apperrors.ErrDispatcherClosed
	}

	select {
	case d.queue <- dispatchJob{ctx: context.WithoutCancel(ctx), msg: msg}:
		d.m.queueDepth.Inc()
		return nil
	default:
		return apperrors.ErrDispatchQueueFull
	}
}

// Send delivers msg synchronously with retries and returns the outcome
func (d *NotificationDispatcher) Send(ctx context.Context, msg OutboundMessage) DispatchResult {
	result := DispatchResult{MessageID: msg.ID, Channel: msg.Channel}
	channel := string(msg.Channel)

	transport, ok := d.transports[msg.Channel]
	if !ok {
		result.Err = fmt.Errorf("%s: %w", channel, apperrors.ErrChannelNotConfigured)
		d.m.deliveriesTotal.WithLabelValues(channel, "failed").Inc()
		return result
	}

	log := logger.WithContext(ctx).WithFields(map[string]interface{}{
		"message_id": msg.ID.String(),
		"channel":    channel,
		"recipient":  msg.RecipientID,
	})

	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		result.Attempts = attempt

		attemptCtx, cancel := context.WithTimeout(ctx, d.opts.AttemptTimeout)
		start := time.Now()
		err := d.safeSend(attemptCtx, transport, msg)
		cancel()
		latency := time.Since(start)

		if err == nil {
			d.m.attemptsTotal.WithLabelValues(channel, "success").Inc()
			d.m.sendLatency.WithLabelValues(channel, "success").Observe(latency.Seconds())
			d.m.deliveriesTotal.WithLabelValues(channel, "delivered").Inc()
			result.Delivered = true
			result.Err = nil
			return result
		}

		d.m.attemptsTotal.WithLabelValues(channel, "error").Inc()
		d.m.sendLatency.WithLabelValues(channel, "error").Observe(latency.Seconds())
		result.Err = err

		if apperrors.IsPermanentDelivery(err) {
			log.WithError(err).WithField("attempt", attempt).Warn("Permanent delivery error, not retrying")
			break
		}
		if attempt == d.opts.MaxAttempts {
			break
		}

		wait := backoff(attempt, d.opts.BaseBackoff, d.opts.MaxBackoff) + d.jitter()
		log.WithError(err).WithFields(map[string]interface{}{
			"attempt": attempt,
			"backoff": wait.String(),
		}).Warn("Delivery attempt failed, retrying")

		if sleepErr := d.opts.Sleep(ctx, wait); sleepErr != nil {
			result.Err = fmt.Errorf("%w (retry aborted: %v)", err, sleepErr)
			break
		}
	}

	d.m.deliveriesTotal.WithLabelValues(channel, "failed").Inc()
	return result
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()
	for job := range d.queue {
		d.m.queueDepth.Dec()
		d.deliver(job.ctx, job.msg)
	}
	d.opts.Logger.WithField("worker", id).Debug("Dispatch worker stopped")
}

func (d *NotificationDispatcher) deliver(ctx context.Context, msg OutboundMessage) {
	result := d.Send(ctx, msg)
	if result.Delivered {
		return
	}

	logger.WithContext(ctx).WithError(result.Err).WithFields(map[string]interface{}{
		"message_id": msg.ID.String(),
		"channel":    string(msg.Channel),
		"recipient":  msg.RecipientID,
		"attempts":   result.Attempts,
	}).Error("Failed to deliver notification")

	if d.opts.OnFailure != nil {
		d.opts.OnFailure(ctx, msg, result)
	}
}

// safeSend turns a transport panic into an error
func (d *NotificationDispatcher) safeSend(ctx context.Context, transport Transport, msg OutboundMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()
	return transport.Send(ctx, msg)
}

func (d *NotificationDispatcher) jitter() time.Duration {
	d.randMu.Lock()
	defer d.randMu.Unlock()
	return jitter(d.opts.Rand, d.opts.JitterMax)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
