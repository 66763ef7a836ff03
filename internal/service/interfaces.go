package service

import (
	"context"
)

//go:generate mockgen -source=interfaces.go -destination=../mocks/service_mocks.go -package=mocks

// Transport delivers one message over one channel. Errors created with
// apperrors.NewDeliveryError carry whether a retry can help.
type Transport interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

// Notifier hands messages to the delivery pipeline
type Notifier interface {
	Dispatch(ctx context.Context, msg OutboundMessage) error
}

// WorkflowServiceInterface defines the interface for the absence workflow
type WorkflowServiceInterface interface {
	HandleEvent(ctx context.Context, event InboundEvent) (*EventResult, error)
	Stats() (*StatsResponse, error)
	ListReports() ([]AbsenceReportResponse, error)
	ListRequests() ([]SubstituteRequestResponse, error)
}
