// Package inbound queues verified webhook events and hands them to the
// workflow on a bounded worker pool, so the webhook can acknowledge quickly.
package inbound

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/logger"
	"staff-absence-backend/internal/service"

	"github.com/sirupsen/logrus"
)

// Handler runs the workflow for one event
type Handler interface {
	HandleEvent(ctx context.Context, event service.InboundEvent) (*service.EventResult, error)
}

// Options configures a Processor
type Options struct {
	Workers        int
	QueueSize      int
	HandlerTimeout time.Duration

	// Dedup is optional; without it every event is processed
	Dedup  Deduplicator
	Logger *logrus.Entry
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.HandlerTimeout == 0 {
		o.HandlerTimeout = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logger.New().Entry
	}
}

type inboundJob struct {
	ctx   context.Context
	event service.InboundEvent
}

// Processor accepts inbound events and runs them asynchronously
type Processor struct {
	handler Handler
	opts    Options
	m       *inboundMetrics

	mu        sync.RWMutex
	closed    bool
	queue     chan inboundJob
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewProcessor creates a processor. Call Start before submitting events.
func NewProcessor(handler Handler, opts Options) *Processor {
	opts.setDefaults()
	return &Processor{
		handler: handler,
		opts:    opts,
		m:       inboundMetricsSingleton(),
		queue:   make(chan inboundJob, opts.QueueSize),
	}
}

// Start launches the workers. Cancelling ctx closes the processor after draining.
func (p *Processor) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.opts.Workers; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
		go func() {
			<-ctx.Done()
			p.Close()
		}()
	})
}

// Close stops accepting events and waits for the queued ones
func (p *Processor) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

// Submit queues event. A redelivered event id returns ErrDuplicateEvent.
// The event keeps the values of ctx but not its cancellation.
func (p *Processor) Submit(ctx context.Context, event service.InboundEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return apperrors.ErrInboundClosed
	}

	log := logger.WithContext(ctx).WithFields(map[string]interface{}{
		"event_id":    event.EventID,
		"source_user": event.SourceUserID,
	})

	tracked := false
	if p.opts.Dedup != nil && event.EventID != "" {
		seen, err := p.opts.Dedup.Seen(ctx, event.EventID)
		switch {
		case err != nil:
			log.WithError(err).Warn("Event deduplication unavailable, processing anyway")
		case seen:
			p.m.eventsTotal.WithLabelValues("duplicate").Inc()
			return apperrors.ErrDuplicateEvent
		default:
			tracked = true
		}
	}

	select {
	case p.queue <- inboundJob{ctx: context.WithoutCancel(ctx), event: event}:
		p.m.queueDepth.Inc()
		return nil
	default:
		p.m.eventsTotal.WithLabelValues("rejected").Inc()
		if tracked {
			// let the platform's redelivery through
			if err := p.opts.Dedup.Forget(ctx, event.EventID); err != nil {
				log.WithError(err).Warn("Failed to forget rejected event")
			}
		}
		return apperrors.ErrInboundQueueFull
	}
}

// Process runs event synchronously, bypassing the queue and deduplication
func (p *Processor) Process(ctx context.Context, event service.InboundEvent) (*service.EventResult, error) {
	return p.handle(ctx, event)
}

func (p *Processor) worker(id int) {
	defer p.wg.Done()
	for job := range p.queue {
		p.m.queueDepth.Dec()
		if _, err := p.handle(job.ctx, job.event); err != nil {
			logger.WithContext(job.ctx).WithError(err).WithFields(map[string]interface{}{
				"event_id":    job.event.EventID,
				"source_user": job.event.SourceUserID,
			}).Error("Failed to handle inbound event")
		}
	}
	p.opts.Logger.WithField("worker", id).Debug("Inbound worker stopped")
}

func (p *Processor) handle(ctx context.Context, event service.InboundEvent) (result *service.EventResult, err error) {
	ctx = logger.ContextWithEvent(ctx, event.EventID, event.SourceUserID)
	ctx, cancel := context.WithTimeout(ctx, p.opts.HandlerTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("inbound handler panic: %v", r)
		}
		p.m.handleDuration.Observe(time.Since(start).Seconds())
		p.m.eventsTotal.WithLabelValues(outcomeLabel(result, err)).Inc()
	}()

	return p.handler.HandleEvent(ctx, event)
}

func outcomeLabel(result *service.EventResult, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case err != nil:
		return "error"
	case result == nil:
		return "empty"
	default:
		return string(result.Outcome)
	}
}
