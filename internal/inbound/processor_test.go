package inbound_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/inbound"
	"staff-absence-backend/internal/logger"
	"staff-absence-backend/internal/mocks"
	"staff-absence-backend/internal/service"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type failingDedup struct{}

func (failingDedup) Seen(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (failingDedup) Forget(context.Context, string) error { return nil }

// ProcessorTestSuite tests queueing, deduplication and shutdown
type ProcessorTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	handler *mocks.MockWorkflowServiceInterface
}

func (suite *ProcessorTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.handler = mocks.NewMockWorkflowServiceInterface(suite.ctrl)
}

func (suite *ProcessorTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func event(id string) service.InboundEvent {
	return service.InboundEvent{
		EventID:      id,
		SourceUserID: "U1234567890",
		RawText:      "明日、体調不良のため欠勤させていただきます。",
		ReceivedAt:   time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
	}
}

func (suite *ProcessorTestSuite) TestSubmitHandlesEvent() {
	p := inbound.NewProcessor(suite.handler, inbound.Options{Workers: 2})
	p.Start(context.Background())

	done := make(chan service.InboundEvent, 1)
	suite.handler.EXPECT().HandleEvent(gomock.Any(), event("ev-1")).
		DoAndReturn(func(ctx context.Context, e service.InboundEvent) (*service.EventResult, error) {
			done <- e
			return &service.EventResult{Outcome: service.EventAbsenceReported}, nil
		})

	suite.Require().NoError(p.Submit(context.Background(), event("ev-1")))

	select {
	case got := <-done:
		suite.Equal("ev-1", got.EventID)
	case <-time.After(2 * time.Second):
		suite.Fail("event was not handled")
	}
	p.Close()
}

func (suite *ProcessorTestSuite) TestSubmitRejectsDuplicate() {
	dedup := inbound.NewMemoryDeduplicator(16)
	p := inbound.NewProcessor(suite.handler, inbound.Options{Workers: 1, Dedup: dedup})
	p.Start(context.Background())

	suite.handler.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).
		Return(&service.EventResult{Outcome: service.EventAbsenceReported}, nil).Times(1)

	suite.Require().NoError(p.Submit(context.Background(), event("ev-1")))
	err := p.Submit(context.Background(), event("ev-1"))

	suite.ErrorIs(err, apperrors.ErrDuplicateEvent)
	p.Close()
}

func (suite *ProcessorTestSuite) TestSubmitWithoutEventIDSkipsDedup() {
	dedup := inbound.NewMemoryDeduplicator(16)
	p := inbound.NewProcessor(suite.handler, inbound.Options{Workers: 1, Dedup: dedup})
	p.Start(context.Background())

	suite.handler.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).
		Return(&service.EventResult{Outcome: service.EventUnrecognized}, nil).Times(2)

	suite.NoError(p.Submit(context.Background(), event("")))
	suite.NoError(p.Submit(context.Background(), event("")))
	p.Close()

	suite.Equal(0, dedup.Len())
}

func (suite *ProcessorTestSuite) TestSubmitFailsOpenWhenDedupErrors() {
	p := inbound.NewProcessor(suite.handler, inbound.Options{Workers: 1, Dedup: failingDedup{}})
	p.Start(context.Background())

	suite.handler.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).
		Return(&service.EventResult{Outcome: service.EventAbsenceReported}, nil).Times(2)

	suite.NoError(p.Submit(context.Background(), event("ev-1")))
	suite.NoError(p.Submit(context.Background(), event("ev-1")))
	p.Close()
}

func (suite *ProcessorTestSuite) TestSubmitQueueFullForgetsEvent() {
	dedup := inbound.NewMemoryDeduplicator(16)
	p := inbound.NewProcessor(suite.handler, inbound.Options{Workers: 1, QueueSize: 1, Dedup: dedup})
	p.Start(context.Background())

	entered := make(chan struct{})
	release := make(chan struct{})
	first := suite.handler.EXPECT().HandleEvent(gomock.Any(), event("ev-1")).
		DoAndReturn(func(ctx context.Context, e service.InboundEvent) (*service.EventResult, error) {
			close(entered)
			<-release
			return &service.EventResult{Outcome: service.EventAbsenceReported}, nil
		})
	suite.handler.EXPECT().HandleEvent(gomock.Any(), event("ev-2")).
		Return(&service.EventResult{Outcome: service.EventAbsenceReported}, nil).After(first)

	suite.Require().NoError(p.Submit(context.Background(), event("ev-1")))
	<-entered
	suite.Require().NoError(p.Submit(context.Background(), event("ev-2")))

	err := p.Submit(context.Background(), event("ev-3"))
	suite.ErrorIs(err, apperrors.ErrInboundQueueFull)

	seen, seenErr := dedup.Seen(context.Background(), "ev-3")
	suite.NoError(seenErr)
	suite.False(seen, "a rejected event must be accepted on redelivery")

	close(release)
	p.Close()
}

func (suite *ProcessorTestSuite) TestSubmitAfterClose() {
	p := inbound.NewProcessor(suite.handler, inbound.Options{})
	p.Close()

	err := p.Submit(context.Background(), event("ev-1"))

	suite.ErrorIs(err, apperrors.ErrInboundClosed)
}

func (suite *ProcessorTestSuite) TestCloseDrainsQueue() {
	p := inbound.NewProcessor(suite.handler, inbound.Options{Workers: 2, QueueSize: 32})
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	var handled atomic.Int32
	suite.handler.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e service.InboundEvent) (*service.EventResult, error) {
			time.Sleep(5 * time.Millisecond)
			handled.Add(1)
			return &service.EventResult{Outcome: service.EventUnrecognized}, nil
		}).Times(10)

	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		suite.Require().NoError(p.Submit(context.Background(), event(id)))
	}
	cancel()

	suite.Eventually(func() bool {
		return handled.Load() == 10
	}, 2*time.Second, 10*time.Millisecond)
	p.Close()
	suite.ErrorIs(p.Submit(context.Background(), event("k")), apperrors.ErrInboundClosed)
}

func (suite *ProcessorTestSuite) TestQueuedEventOutlivesRequestContext() {
	p := inbound.NewProcessor(suite.handler, inbound.Options{Workers: 1})
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), logger.RequestIDKey, "req-1"))

	done := make(chan error, 1)
	suite.handler.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e service.InboundEvent) (*service.EventResult, error) {
			suite.Equal("req-1", ctx.Value(logger.RequestIDKey))
			suite.Equal("ev-1", ctx.Value(logger.EventIDKey))
			done <- ctx.Err()
			return &service.EventResult{Outcome: service.EventAbsenceReported}, nil
		})

	suite.Require().NoError(p.Submit(ctx, event("ev-1")))
	cancel()
	p.Start(context.Background())

	select {
	case err := <-done:
		suite.NoError(err)
	case <-time.After(2 * time.Second):
		suite.Fail("event was not handled")
	}
	p.Close()
}

func (suite *ProcessorTestSuite) TestProcessRecoversPanic() {
	p := inbound.NewProcessor(suite.handler, inbound.Options{})

	suite.handler.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e service.InboundEvent) (*service.EventResult, error) {
			panic("nil map")
		})

	result, err := p.Process(context.Background(), event("ev-1"))

	suite.Nil(result)
	suite.ErrorContains(err, "inbound handler panic: nil map")
}

func (suite *ProcessorTestSuite) TestProcessAppliesTimeout() {
	p := inbound.NewProcessor(suite.handler, inbound.Options{HandlerTimeout: 20 * time.Millisecond})

	suite.handler.EXPECT().HandleEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e service.InboundEvent) (*service.EventResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	_, err := p.Process(context.Background(), event("ev-1"))

	suite.ErrorIs(err, context.DeadlineExceeded)
}

func (suite *ProcessorTestSuite) TestProcessReturnsResult() {
	p := inbound.NewProcessor(suite.handler, inbound.Options{})
	want := &service.EventResult{Outcome: service.EventSubstituteAccepted, CustomersNotified: 1}

	suite.handler.EXPECT().HandleEvent(gomock.Any(), event("ev-1")).Return(want, nil)

	got, err := p.Process(context.Background(), event("ev-1"))

	suite.NoError(err)
	suite.Equal(want, got)
}

func TestProcessorTestSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}
