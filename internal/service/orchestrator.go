package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"staff-absence-backend/internal/classifier"
	"staff-absence-backend/internal/config"
	"staff-absence-backend/internal/database/models"
	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/logger"
	"staff-absence-backend/internal/templates"

	"github.com/Rhymond/go-money"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const reportTimeLayout = "2006-01-02 15:04"

// InboundEvent is one text message received from a staff member
type InboundEvent struct {
	EventID      string    `json:"event_id"`
	SourceUserID string    `json:"source_user_id" validate:"required"`
	RawText      string    `json:"raw_text" validate:"required"`
	ReplyHandle  string    `json:"reply_handle,omitempty"`
	ReceivedAt   time.Time `json:"received_at"`
}

// EventOutcome summarizes what HandleEvent did
type EventOutcome string

const (
	EventAbsenceReported    EventOutcome = "absence_reported"
	EventUnknownStaff       EventOutcome = "unknown_staff"
	EventSubstituteAccepted EventOutcome = "substitute_accepted"
	EventSubstituteDeclined EventOutcome = "substitute_declined"
	EventTooLate            EventOutcome = "too_late"
	EventAlreadyResolved    EventOutcome = "already_resolved"
	EventUnrecognized       EventOutcome = "unrecognized"
	EventWorkflowError      EventOutcome = "workflow_error"
)

// EventResult is returned by HandleEvent
type EventResult struct {
	Outcome              EventOutcome              `json:"outcome"`
	Kind                 classifier.Kind           `json:"kind"`
	ReportID             *uuid.UUID                `json:"report_id,omitempty"`
	Absence              *classifier.AbsenceFields `json:"absence,omitempty"`
	CandidatesNotified   int                       `json:"candidates_notified"`
	CustomersNotified    int                       `json:"customers_notified"`
	RecruitmentExhausted bool                      `json:"recruitment_exhausted"`
}

// StatsResponse is the dashboard counter block
type StatsResponse struct {
	TotalAbsenceReports     int `json:"total_absence_reports"`
	TotalSubstituteRequests int `json:"total_substitute_requests"`
	AcceptedSubstitutes     int `json:"accepted_substitutes"`
	DeclinedSubstitutes     int `json:"declined_substitutes"`
}

// AbsenceReportResponse is one row of the dashboard report list
type AbsenceReportResponse struct {
	ID        uuid.UUID           `json:"id"`
	StaffName string              `json:"staff_name"`
	Date      string              `json:"date"`
	Time      string              `json:"time"`
	Reason    string              `json:"reason"`
	Timestamp string              `json:"timestamp"`
	Status    models.ReportStatus `json:"status"`
}

// SubstituteRequestResponse is one row of the dashboard request list
type SubstituteRequestResponse struct {
	ReportID  uuid.UUID            `json:"report_id"`
	StaffName string               `json:"staff_name"`
	Status    models.RequestStatus `json:"status"`
	Timestamp string               `json:"timestamp"`
}

// WorkflowOrchestrator routes inbound events through the ledger and the
// coordinator and fans the resulting notifications out
type WorkflowOrchestrator struct {
	classifier  *classifier.Classifier
	ledger      *AbsenceLedger
	coordinator *RecruitmentCoordinator
	notifier    Notifier
	renderer    *templates.Renderer
	workflow    *config.WorkflowConfig
	validator   *validator.Validate
	location    *time.Location
}

// NewWorkflowOrchestrator creates a new workflow orchestrator
func NewWorkflowOrchestrator(
	classifier *classifier.Classifier,
	ledger *AbsenceLedger,
	coordinator *RecruitmentCoordinator,
	notifier Notifier,
	renderer *templates.Renderer,
	workflow *config.WorkflowConfig,
	validator *validator.Validate,
	location *time.Location,
) *WorkflowOrchestrator {
	if location == nil {
		location = time.Local
	}
	return &WorkflowOrchestrator{
		classifier:  classifier,
		ledger:      ledger,
		coordinator: coordinator,
		notifier:    notifier,
		renderer:    renderer,
		workflow:    workflow,
		validator:   validator,
		location:    location,
	}
}

// HandleEvent classifies one message and runs the matching workflow step.
// Business rejections are reported through the result; only internal
// failures return an error, after the sender has been told.
func (o *WorkflowOrchestrator) HandleEvent(ctx context.Context, event InboundEvent) (*EventResult, error) {
	if err := o.validator.Struct(event); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}

	ctx = logger.ContextWithEvent(ctx, event.EventID, event.SourceUserID)
	intent := o.classifier.Classify(event.RawText)

	var (
		result *EventResult
		err    error
	)
	switch intent.Kind {
	case classifier.KindAbsenceNotice:
		result, err = o.handleAbsence(ctx, event, intent.Absence)
	case classifier.KindSubstituteAccept, classifier.KindSubstituteDecline:
		result, err = o.handleResponse(ctx, event, intent.Kind == classifier.KindSubstituteAccept)
	default:
		o.reply(ctx, event, templates.Unrecognized, nil)
		result = &EventResult{Outcome: EventUnrecognized}
	}

	if err != nil {
		logger.WithContext(ctx).WithError(err).WithField("kind", string(intent.Kind)).Error("Failed to handle inbound event")
		o.reply(ctx, event, templates.InternalError, nil)
		return nil, err
	}

	result.Kind = intent.Kind
	return result, nil
}

func (o *WorkflowOrchestrator) handleAbsence(ctx context.Context, event InboundEvent, fields *classifier.AbsenceFields) (*EventResult, error) {
	log := logger.WithContext(ctx)

	staff, err := o.ledger.Staff().GetByID(event.SourceUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Absence notice from unknown staff")
			o.reply(ctx, event, templates.UnknownStaff, nil)
			return &EventResult{Outcome: EventUnknownStaff}, nil
		}
		return nil, fmt.Errorf("failed to look up staff: %w", err)
	}

	report, err := o.ledger.CreateReport(staff.ID, *fields, event.RawText)
	if err != nil {
		if errors.Is(err, apperrors.ErrStaffNotFound) {
			o.reply(ctx, event, templates.UnknownStaff, nil)
			return &EventResult{Outcome: EventUnknownStaff}, nil
		}
		return nil, err
	}

	result := &EventResult{
		Outcome:  EventAbsenceReported,
		ReportID: &report.ID,
		Absence:  fields,
	}

	requests, err := o.coordinator.StartRecruitment(report.ID, staff.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyRecruiting) || apperrors.IsTransition(err) {
			o.escalateWorkflowError(ctx, "report "+report.ID.String(), err)
			result.Outcome = EventWorkflowError
			return result, nil
		}
		return nil, err
	}

	vars := o.reportVars(report, event.ReceivedAt)
	vars["staff_phone"] = staff.Phone
	vars["candidate_count"] = strconv.Itoa(len(requests))

	for _, request := range requests {
		o.notify(ctx, NewOutboundMessage(ChannelStaff, request.CandidateID, o.renderer.Text(templates.SubstituteRequest, vars)))
	}
	result.CandidatesNotified = len(requests)

	o.notifyAdmins(ctx, templates.EmergencyNotification, vars)
	o.reply(ctx, event, templates.AbsenceNotification, vars)

	if len(requests) == 0 {
		log.WithField("report_id", report.ID.String()).Warn("No substitute candidates, recruitment exhausted")
		o.notifyAdmins(ctx, templates.RecruitmentExhausted, vars)
		result.RecruitmentExhausted = true
	}

	log.WithFields(map[string]interface{}{
		"report_id":  report.ID.String(),
		"sequence":   report.Sequence,
		"candidates": len(requests),
	}).Info("Absence reported, recruitment started")

	return result, nil
}

func (o *WorkflowOrchestrator) handleResponse(ctx context.Context, event InboundEvent, accepted bool) (*EventResult, error) {
	log := logger.WithContext(ctx)

	if _, err := o.ledger.Staff().GetByID(event.SourceUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Substitute reply from unknown staff")
			o.reply(ctx, event, templates.UnknownStaff, nil)
			return &EventResult{Outcome: EventUnknownStaff}, nil
		}
		return nil, fmt.Errorf("failed to look up staff: %w", err)
	}

	report, err := o.routeReply(event.SourceUserID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		o.reply(ctx, event, templates.Unrecognized, nil)
		return &EventResult{Outcome: EventUnrecognized}, nil
	}

	response, err := o.coordinator.RecordResponse(report.ID, event.SourceUserID, accepted)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSubstituteRequestNotFound):
			o.reply(ctx, event, templates.Unrecognized, nil)
			return &EventResult{Outcome: EventUnrecognized}, nil
		case apperrors.IsTransition(err):
			o.escalateWorkflowError(ctx, "report "+report.ID.String(), err)
			return &EventResult{Outcome: EventWorkflowError, ReportID: &report.ID}, nil
		}
		return nil, err
	}

	vars := o.reportVars(&response.Report, event.ReceivedAt)
	vars["staff_name"] = response.Request.CandidateName
	vars["substitute_staff_name"] = response.Request.CandidateName
	result := &EventResult{ReportID: &report.ID}

	switch response.Outcome {
	case OutcomeAccepted:
		vars["allowance"] = o.allowance()
		appointments := o.workflow.AppointmentsFor(response.Report.StaffID, response.Report.AbsenceDate)
		vars["customer_count"] = strconv.Itoa(len(appointments))

		o.reply(ctx, event, templates.SubstituteAccepted, vars)
		o.notifyAdmins(ctx, templates.SubstituteFilledAdmin, vars)
		for _, appointment := range appointments {
			customerVars := copyVars(vars)
			customerVars["customer_name"] = appointment.CustomerName
			customerVars["appointment_date"] = appointment.Date
			customerVars["appointment_time"] = appointment.Time
			o.notify(ctx, NewOutboundMessage(ChannelCustomer, appointment.CustomerLineID, o.renderer.Text(templates.CustomerNotification, customerVars)))
		}
		result.Outcome = EventSubstituteAccepted
		result.CustomersNotified = len(appointments)

	case OutcomeDeclined:
		o.reply(ctx, event, templates.SubstituteDeclined, vars)
		if response.RecruitmentExhausted {
			o.notifyAdmins(ctx, templates.RecruitmentExhausted, vars)
			result.RecruitmentExhausted = true
		}
		result.Outcome = EventSubstituteDeclined

	case OutcomeTooLate:
		o.reply(ctx, event, templates.SubstituteTooLate, vars)
		result.Outcome = EventTooLate

	default:
		o.reply(ctx, event, templates.AlreadyAnswered, vars)
		result.Outcome = EventAlreadyResolved
	}

	log.WithFields(map[string]interface{}{
		"report_id": report.ID.String(),
		"outcome":   string(response.Outcome),
		"exhausted": response.RecruitmentExhausted,
	}).Info("Substitute response recorded")

	return result, nil
}

// routeReply picks the report a candidate's reply refers to: the oldest
// recruiting report still waiting on them, else the newest report where
// their request was superseded before they answered. Nil means none.
func (o *WorkflowOrchestrator) routeReply(candidateID string) (*models.AbsenceReport, error) {
	requests, err := o.coordinator.RequestsForCandidate(candidateID)
	if err != nil {
		return nil, err
	}

	var pending, superseded *models.AbsenceReport
	for _, request := range requests {
		open := request.Status == models.RequestStatusPending
		late := request.Status == models.RequestStatusSuperseded && !request.Answered()
		if !open && !late {
			continue
		}

		report, err := o.ledger.Get(request.ReportID)
		if err != nil {
			if errors.Is(err, apperrors.ErrReportNotFound) {
				continue
			}
			return nil, err
		}

		if open && report.Status == models.ReportStatusRecruiting {
			if pending == nil || report.Sequence < pending.Sequence {
				pending = report
			}
		}
		if late && (superseded == nil || report.Sequence > superseded.Sequence) {
			superseded = report
		}
	}

	if pending != nil {
		return pending, nil
	}
	return superseded, nil
}

// HandleDeliveryFailure logs an undeliverable message and tells the admins,
// unless the message was itself meant for them
func (o *WorkflowOrchestrator) HandleDeliveryFailure(ctx context.Context, msg OutboundMessage, result DispatchResult) {
	log := logger.WithContext(ctx).WithFields(map[string]interface{}{
		"message_id": msg.ID.String(),
		"channel":    string(msg.Channel),
		"attempts":   result.Attempts,
	})
	if msg.Channel == ChannelAdmin {
		log.WithError(result.Err).Error("Admin notification could not be delivered")
		return
	}

	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}
	o.notifyAdmins(ctx, templates.DeliveryFailedAdmin, map[string]string{
		"channel":   string(msg.Channel),
		"recipient": msg.RecipientID,
		"attempts":  strconv.Itoa(result.Attempts),
		"error":     errText,
	})
}

// Stats returns the dashboard counters
func (o *WorkflowOrchestrator) Stats() (*StatsResponse, error) {
	reports, err := o.ledger.List()
	if err != nil {
		return nil, err
	}
	requests, err := o.coordinator.AllRequests()
	if err != nil {
		return nil, err
	}

	stats := &StatsResponse{
		TotalAbsenceReports:     len(reports),
		TotalSubstituteRequests: len(requests),
	}
	for _, request := range requests {
		switch request.Status {
		case models.RequestStatusAccepted:
			stats.AcceptedSubstitutes++
		case models.RequestStatusDeclined:
			stats.DeclinedSubstitutes++
		}
	}
	return stats, nil
}

// ListReports returns every report in creation order
func (o *WorkflowOrchestrator) ListReports() ([]AbsenceReportResponse, error) {
	reports, err := o.ledger.List()
	if err != nil {
		return nil, err
	}

	responses := make([]AbsenceReportResponse, 0, len(reports))
	for _, report := range reports {
		responses = append(responses, AbsenceReportResponse{
			ID:        report.ID,
			StaffName: report.StaffName,
			Date:      report.AbsenceDate,
			Time:      report.TimeRange,
			Reason:    report.Reason,
			Timestamp: report.CreatedAt.In(o.location).Format(time.RFC3339),
			Status:    report.Status,
		})
	}
	return responses, nil
}

// ListRequests returns every substitute request. The timestamp is the reply
// time when the candidate answered, else the time the request was sent.
func (o *WorkflowOrchestrator) ListRequests() ([]SubstituteRequestResponse, error) {
	requests, err := o.coordinator.AllRequests()
	if err != nil {
		return nil, err
	}

	responses := make([]SubstituteRequestResponse, 0, len(requests))
	for _, request := range requests {
		at := request.RequestedAt
		if request.RespondedAt != nil {
			at = *request.RespondedAt
		}
		responses = append(responses, SubstituteRequestResponse{
			ReportID:  request.ReportID,
			StaffName: request.CandidateName,
			Status:    request.Status,
			Timestamp: at.In(o.location).Format(time.RFC3339),
		})
	}
	return responses, nil
}

func (o *WorkflowOrchestrator) reportVars(report *models.AbsenceReport, receivedAt time.Time) map[string]string {
	return map[string]string{
		"salon_name":        o.workflow.Salon.Name,
		"salon_phone":       o.workflow.Salon.Phone,
		"management_url":    o.workflow.Salon.ManagementURL,
		"staff_name":        report.StaffName,
		"absent_staff_name": report.StaffName,
		"absence_date":      report.AbsenceDate,
		"absence_time":      report.TimeRange,
		"absence_reason":    report.Reason,
		"report_time":       receivedAt.In(o.location).Format(reportTimeLayout),
	}
}

func (o *WorkflowOrchestrator) allowance() string {
	return money.New(o.workflow.Salon.SubstituteAllowance, o.workflow.Salon.Currency).Display()
}

func (o *WorkflowOrchestrator) escalateWorkflowError(ctx context.Context, subject string, err error) {
	logger.WithContext(ctx).WithError(err).WithField("subject", subject).Warn("Workflow rejected an operation")
	o.notifyAdmins(ctx, templates.WorkflowError, map[string]string{
		"subject": subject,
		"error":   err.Error(),
	})
}

func (o *WorkflowOrchestrator) reply(ctx context.Context, event InboundEvent, key string, vars map[string]string) {
	msg := NewOutboundMessage(ChannelStaff, event.SourceUserID, o.renderer.Text(key, vars))
	msg.ReplyHandle = event.ReplyHandle
	o.notify(ctx, msg)
}

func (o *WorkflowOrchestrator) notifyAdmins(ctx context.Context, key string, vars map[string]string) {
	text := o.renderer.Text(key, vars)
	recipients := o.workflow.AdminRecipients
	if len(recipients) == 0 {
		recipients = []string{""}
	}
	for _, recipient := range recipients {
		o.notify(ctx, NewOutboundMessage(ChannelAdmin, recipient, text))
	}
}

// notify never fails the workflow; a message that cannot be queued is logged
func (o *WorkflowOrchestrator) notify(ctx context.Context, msg OutboundMessage) {
	if err := o.notifier.Dispatch(ctx, msg); err != nil {
		logger.WithContext(ctx).WithError(err).WithFields(map[string]interface{}{
			"message_id": msg.ID.String(),
			"channel":    string(msg.Channel),
			"recipient":  msg.RecipientID,
		}).Error("Failed to queue notification")
	}
}

func copyVars(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars)+3)
	for key, value := range vars {
		out[key] = value
	}
	return out
}
