package service

import (
	"errors"
	"fmt"
	"time"

	"staff-absence-backend/internal/database/models"
	apperrors "staff-absence-backend/internal/errors"
	"staff-absence-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResponseOutcome is how a candidate's reply was resolved
type ResponseOutcome string

const (
	OutcomeAccepted        ResponseOutcome = "accepted"
	OutcomeDeclined        ResponseOutcome = "declined"
	OutcomeTooLate         ResponseOutcome = "too_late"
	OutcomeAlreadyResolved ResponseOutcome = "already_resolved"
)

// ResponseResult describes the state after a reply was recorded
type ResponseResult struct {
	Outcome ResponseOutcome
	Report  models.AbsenceReport
	Request models.SubstituteRequest
	// Superseded lists the requests closed by this acceptance
	Superseded []models.SubstituteRequest
	// RecruitmentExhausted is set on the decline that left no candidate
	RecruitmentExhausted bool
}

// RecruitmentCoordinator fans a report out to candidates and resolves their replies
type RecruitmentCoordinator struct {
	ledger   *AbsenceLedger
	requests repository.SubstituteRequestRepositoryInterface
	locks    *reportLocks
	now      func() time.Time
}

// NewRecruitmentCoordinator creates a new recruitment coordinator
func NewRecruitmentCoordinator(ledger *AbsenceLedger, requests repository.SubstituteRequestRepositoryInterface, now func() time.Time) *RecruitmentCoordinator {
	if now == nil {
		now = time.Now
	}
	return &RecruitmentCoordinator{
		ledger:   ledger,
		requests: requests,
		locks:    newReportLocks(),
		now:      now,
	}
}

// StartRecruitment creates a pending request for every staff member other
// than the absent one and moves the report to recruiting. With no candidate
// the report goes straight to unfilled and the empty set is returned.
func (c *RecruitmentCoordinator) StartRecruitment(reportID uuid.UUID, absentStaffID string) ([]models.SubstituteRequest, error) {
	unlock := c.locks.Lock(reportID)
	defer unlock()

	report, err := c.ledger.Get(reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != models.ReportStatusReported {
		return nil, apperrors.ErrAlreadyRecruiting
	}

	staff, err := c.ledger.Staff().List()
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	now := c.now()
	requests := make([]models.SubstituteRequest, 0, len(staff))
	for _, candidate := range staff {
		if candidate.ID == absentStaffID {
			continue
		}
		requests = append(requests, models.SubstituteRequest{
			BaseModel: models.BaseModel{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ReportID:      reportID,
			CandidateID:   candidate.ID,
			CandidateName: candidate.Name,
			Status:        models.RequestStatusPending,
			RequestedAt:   now,
		})
	}

	if len(requests) > 0 {
		if err := c.requests.CreateBatch(requests); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrSubstituteRequestExists
			}
			return nil, fmt.Errorf("failed to create substitute requests: %w", err)
		}
	}

	if _, err := c.ledger.Transition(reportID, models.ReportStatusRecruiting); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		if _, err := c.ledger.Transition(reportID, models.ReportStatusUnfilled); err != nil {
			return nil, err
		}
	}

	return requests, nil
}

// RecordResponse resolves one candidate's accept or decline for a report.
// The first accepted reply fills the report; every other outcome is derived
// from the request's stored state, so repeated replies are idempotent. A
// resolution that lost a race with another writer is re-evaluated against
// the fresh state, so a late acceptor gets TooLate.
func (c *RecruitmentCoordinator) RecordResponse(reportID uuid.UUID, candidateID string, accepted bool) (*ResponseResult, error) {
	unlock := c.locks.Lock(reportID)
	defer unlock()

	for attempt := 0; attempt < maxTransitionRetries; attempt++ {
		result, resolution, err := c.evaluateResponse(reportID, candidateID, accepted)
		if err != nil {
			return nil, err
		}
		if resolution == nil {
			return result, nil
		}

		err = c.requests.ResolveRecruitment(resolution)
		switch {
		case err == nil:
			if resolution.TransitionsReport() {
				result.Report.Status = resolution.ReportTo
			}
			applied := resolution.Updates[0]
			result.Request.Status = applied.To
			result.Request.RespondedAt = applied.RespondedAt
			return result, nil
		case errors.Is(err, apperrors.ErrStatusConflict):
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.ErrReportNotFound
		default:
			return nil, fmt.Errorf("failed to resolve recruitment: %w", err)
		}
	}

	return nil, apperrors.ErrStatusConflict
}

// evaluateResponse reads the current state and decides the reply's outcome.
// A nil resolution means nothing needs to be written.
func (c *RecruitmentCoordinator) evaluateResponse(reportID uuid.UUID, candidateID string, accepted bool) (*ResponseResult, *repository.Resolution, error) {
	request, err := c.requests.Get(reportID, candidateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrSubstituteRequestNotFound
		}
		return nil, nil, fmt.Errorf("failed to get substitute request: %w", err)
	}
	report, err := c.ledger.Get(reportID)
	if err != nil {
		return nil, nil, err
	}
	siblings, err := c.requests.GetByReportID(reportID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get substitute requests: %w", err)
	}

	now := c.now()
	result := &ResponseResult{Report: *report, Request: *request}
	resolution := &repository.Resolution{ReportID: reportID, ReportFrom: report.Status}

	switch {
	case request.Status == models.RequestStatusPending && accepted:
		if hasStatus(siblings, request.ID, models.RequestStatusAccepted) {
			resolution.Updates = append(resolution.Updates, respond(request, models.RequestStatusSuperseded, now))
			result.Outcome = OutcomeTooLate
			break
		}
		if !report.Status.CanTransitionTo(models.ReportStatusFilled) {
			return nil, nil, apperrors.NewTransitionError(string(report.Status), string(models.ReportStatusFilled))
		}
		resolution.ReportTo = models.ReportStatusFilled
		resolution.Updates = append(resolution.Updates, respond(request, models.RequestStatusAccepted, now))
		for _, sibling := range siblings {
			if sibling.ID == request.ID || sibling.Status != models.RequestStatusPending {
				continue
			}
			resolution.Updates = append(resolution.Updates, repository.RequestUpdate{
				RequestID: sibling.ID,
				From:      models.RequestStatusPending,
				To:        models.RequestStatusSuperseded,
			})
			sibling.Status = models.RequestStatusSuperseded
			result.Superseded = append(result.Superseded, sibling)
		}
		result.Outcome = OutcomeAccepted

	case request.Status == models.RequestStatusPending:
		resolution.Updates = append(resolution.Updates, respond(request, models.RequestStatusDeclined, now))
		if !hasStatus(siblings, request.ID, models.RequestStatusPending, models.RequestStatusAccepted) {
			if !report.Status.CanTransitionTo(models.ReportStatusUnfilled) {
				return nil, nil, apperrors.NewTransitionError(string(report.Status), string(models.ReportStatusUnfilled))
			}
			resolution.ReportTo = models.ReportStatusUnfilled
			result.RecruitmentExhausted = true
		}
		result.Outcome = OutcomeDeclined

	case request.Status == models.RequestStatusSuperseded && !request.Answered() && accepted:
		// a late acceptor is told the slot is taken; the stamp makes a repeat AlreadyResolved
		resolution.Updates = append(resolution.Updates, respond(request, models.RequestStatusSuperseded, now))
		result.Outcome = OutcomeTooLate

	default:
		result.Outcome = OutcomeAlreadyResolved
		return result, nil, nil
	}

	return result, resolution, nil
}

// RequestsForCandidate lists every request sent to candidateID
func (c *RecruitmentCoordinator) RequestsForCandidate(candidateID string) ([]models.SubstituteRequest, error) {
	requests, err := c.requests.GetByCandidateID(candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get substitute requests: %w", err)
	}
	return requests, nil
}

// RequestsForReport lists the requests of one report
func (c *RecruitmentCoordinator) RequestsForReport(reportID uuid.UUID) ([]models.SubstituteRequest, error) {
	unlock := c.locks.RLock(reportID)
	defer unlock()

	requests, err := c.requests.GetByReportID(reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get substitute requests: %w", err)
	}
	return requests, nil
}

// AllRequests lists every substitute request
func (c *RecruitmentCoordinator) AllRequests() ([]models.SubstituteRequest, error) {
	requests, err := c.requests.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list substitute requests: %w", err)
	}
	return requests, nil
}

func respond(request *models.SubstituteRequest, to models.RequestStatus, at time.Time) repository.RequestUpdate {
	respondedAt := at
	return repository.RequestUpdate{
		RequestID:   request.ID,
		From:        request.Status,
		To:          to,
		RespondedAt: &respondedAt,
	}
}

// hasStatus reports whether any request other than self has one of statuses
func hasStatus(requests []models.SubstituteRequest, self uuid.UUID, statuses ...models.RequestStatus) bool {
	for _, request := range requests {
		if request.ID == self {
			continue
		}
		for _, status := range statuses {
			if request.Status == status {
				return true
			}
		}
	}
	return false
}
