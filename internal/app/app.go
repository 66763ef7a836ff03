// Package app assembles the workflow from configuration: store, ledger,
// coordinator, dispatcher, orchestrator and inbound processor.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staff-absence-backend/internal/api/handlers"
	"staff-absence-backend/internal/classifier"
	"staff-absence-backend/internal/clients"
	"staff-absence-backend/internal/config"
	"staff-absence-backend/internal/database"
	"staff-absence-backend/internal/inbound"
	"staff-absence-backend/internal/logger"
	"staff-absence-backend/internal/repository"
	"staff-absence-backend/internal/service"
	"staff-absence-backend/internal/templates"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is a wired workflow
type App struct {
	Workflow   *service.WorkflowOrchestrator
	Dispatcher *service.NotificationDispatcher
	Processor  *inbound.Processor
	Location   *time.Location

	// DB is nil on the memory store; Redis is nil without REDIS_URL
	DB    *gorm.DB
	Redis *redis.Client

	log *logrus.Entry
}

// Options overrides parts of the assembly, mostly for tests and the CLI
type Options struct {
	Transports map[service.Channel]service.Transport
	Now        func() time.Time
	Logger     *logrus.Entry
}

type stores struct {
	staff    repository.StaffDirectoryInterface
	reports  repository.AbsenceReportRepositoryInterface
	requests repository.SubstituteRequestRepositoryInterface
}

// New wires the workflow. Transports default to clients built from cfg.
func New(ctx context.Context, cfg *config.Config, workflow *config.WorkflowConfig, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = logger.New().Entry
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().In(location) }
	}

	a := &App{Location: location, log: log}

	st, err := a.openStore(cfg, workflow)
	if err != nil {
		return nil, err
	}

	transports := opts.Transports
	if transports == nil {
		transports, err = clients.Build(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
	}

	v := validator.New()
	ledger, err := service.NewAbsenceLedger(st.reports, st.staff, v, now)
	if err != nil {
		return nil, err
	}
	coordinator := service.NewRecruitmentCoordinator(ledger, st.requests, now)

	a.Dispatcher = service.NewNotificationDispatcher(transports, service.DispatcherOptions{
		MaxAttempts:    cfg.DispatchMaxAttempts,
		BaseBackoff:    cfg.DispatchBaseBackoff,
		MaxBackoff:     cfg.DispatchMaxBackoff,
		JitterMax:      cfg.DispatchJitter,
		AttemptTimeout: cfg.DispatchAttemptTimeout,
		Workers:        cfg.DispatchWorkers,
		QueueSize:      cfg.DispatchQueueSize,
		Logger:         log.WithField("component", "dispatcher"),
	})

	a.Workflow = service.NewWorkflowOrchestrator(
		classifier.New(workflow.Classifier, now),
		ledger,
		coordinator,
		a.Dispatcher,
		templates.NewRenderer(workflow.Templates),
		workflow,
		v,
		location,
	)
	a.Dispatcher.SetFailureHandler(a.Workflow.HandleDeliveryFailure)

	dedup, err := a.deduplicator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Processor = inbound.NewProcessor(a.Workflow, inbound.Options{
		Workers:   cfg.InboundWorkers,
		QueueSize: cfg.InboundQueueSize,
		Dedup:     dedup,
		Logger:    log.WithField("component", "inbound"),
	})

	return a, nil
}

// Start launches the dispatcher and inbound workers. Cancelling ctx drains them.
func (a *App) Start(ctx context.Context) {
	a.Dispatcher.Start(ctx)
	a.Processor.Start(ctx)
}

// Close drains queued events and then queued notifications, and releases connections
func (a *App) Close() {
	a.Processor.Close()
	a.Dispatcher.Close()

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis client")
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log.WithError(err).Warn("Failed to close database")
			}
		}
	}
}

// HealthChecks probes the store and cache the app depends on
func (a *App) HealthChecks() map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{}
	if a.DB != nil {
		checks["database"] = handlers.DatabaseCheck(a.DB)
	}
	if a.Redis != nil {
		client := a.Redis
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

func (a *App) openStore(cfg *config.Config, workflow *config.WorkflowConfig) (*stores, error) {
	if cfg.StoreDriver != config.StorePostgres {
		store := repository.NewMemoryStore(workflow.Staff)
		a.log.WithField("staff", len(workflow.Staff)).Info("Using in-memory store")
		return &stores{staff: store.Staff, reports: store.Reports, requests: store.Requests}, nil
	}

	db, err := database.Initialize(cfg.DatabaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.SeedStaff(db, workflow.Staff); err != nil {
		return nil, err
	}
	a.DB = db
	a.log.WithField("staff", len(workflow.Staff)).Info("Using postgres store")

	return &stores{
		staff:    repository.NewStaffRepository(db),
		reports:  repository.NewAbsenceReportRepository(db),
		requests: repository.NewSubstituteRequestRepository(db),
	}, nil
}

// deduplicator shares seen event ids through Redis when REDIS_URL is set
func (a *App) deduplicator(ctx context.Context, cfg *config.Config) (inbound.Deduplicator, error) {
	if cfg.RedisURL == "" {
		return inbound.NewMemoryDeduplicator(cfg.DedupWindow), nil
	}

	client, err := NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		a.log.WithError(err).Warn("Redis is not reachable yet, event deduplication fails open until it is")
	}
	a.Redis = client
	return inbound.NewRedisDeduplicator(client, "", cfg.DedupTTL), nil
}

// NewRedisClient accepts a redis:// URL or a bare host:port
func NewRedisClient(url string) (*redis.Client, error) {
	if !strings.Contains(url, "://") {
		return redis.NewClient(&redis.Options{Addr: url}), nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}
